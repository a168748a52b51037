package domain

import "time"

// User is an account as returned by the task API.
type User struct {
	ID        string     `json:"_id"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Initial returns the upper-cased first letter of the email, or "?".
func (u User) Initial() string {
	for _, r := range u.Email {
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		return string(r)
	}
	return "?"
}

// Session pairs a bearer token with the user it was issued for.
// Both are set and cleared together.
type Session struct {
	Token string
	User  User
}
