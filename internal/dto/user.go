package dto

import "github.com/fatim-sangare/frontend-test-nan/internal/domain"

// Credentials is the JSON body for POST /auth/register and POST /auth/login.
type Credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// RegisterResponse is returned by POST /auth/register.
type RegisterResponse struct {
	Message string      `json:"message"`
	User    domain.User `json:"user"`
}

// ErrorResponse is the error body every API failure carries.
type ErrorResponse struct {
	Message string `json:"message"`
}
