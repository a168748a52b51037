package domain

// Group is a set of members sharing tasks, joined through its invite code.
type Group struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	InviteLink string `json:"inviteLink,omitempty"`
	Members    []User `json:"members"`
	CreatedBy  *Ref   `json:"createdBy,omitempty"`
}

// Capabilities are display hints for the group screen. The API is the one
// enforcing them.
type Capabilities struct {
	CanDelete        bool
	CanRemoveMembers bool
	CanLeave         bool
}

// CapabilitiesFor derives what viewer may be offered on g. Nothing is offered
// when the creator or the viewer is unknown.
func CapabilitiesFor(g Group, viewer User) Capabilities {
	if g.CreatedBy == nil || viewer.ID == "" {
		return Capabilities{}
	}
	creator := g.CreatedBy.Is(viewer.ID)
	return Capabilities{
		CanDelete:        creator,
		CanRemoveMembers: creator,
		CanLeave:         !creator,
	}
}

// HasMember reports whether userID is in the member list.
func (g Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}
