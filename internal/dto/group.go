package dto

import "github.com/fatim-sangare/frontend-test-nan/internal/domain"

// CreateGroupRequest is the JSON body for POST /groups.
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required,min=1,max=120"`
}

// JoinGroupResponse is returned by POST /groups/join/:inviteCode.
type JoinGroupResponse struct {
	Message string       `json:"message"`
	Group   domain.Group `json:"group"`
}

// MessageResponse is the body of mutations that return no entity.
type MessageResponse struct {
	Message string `json:"message"`
}
