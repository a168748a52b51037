package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
)

// CreateTaskRequest is the JSON body for POST /tasks. Group is empty for a
// personal task.
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Description *string    `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Group       string     `json:"group,omitempty"`
}

// TaskStatusPatch is the PUT /tasks/:id body sent by the done toggle.
type TaskStatusPatch struct {
	Status domain.Status `json:"status"`
}

// TaskEditPatch is the PUT /tasks/:id body sent by the edit forms. A nil
// description or deadline is sent as null and clears the field.
type TaskEditPatch struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Deadline    *time.Time `json:"deadline"`
}

// TaskPatch is how the API reads PUT /tasks/:id: absent fields stay as they
// are, null clears.
type TaskPatch struct {
	Title       *string             `json:"title"`
	Description Optional[string]    `json:"description"`
	Deadline    Optional[time.Time] `json:"deadline"`
	Status      *domain.Status      `json:"status"`
}

// Optional tells an absent JSON field apart from an explicit null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
