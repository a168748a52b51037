package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ref points at another entity. The API sends it either as a bare id string
// or as a populated object; both forms decode into a Ref.
type Ref struct {
	ID    string `json:"_id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	if data[0] != '{' {
		return fmt.Errorf("ref: expected id string or object, got %s", data)
	}
	type plain Ref
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Ref(p)
	return nil
}

// Label is the most readable identification of the referenced entity.
func (r *Ref) Label() string {
	if r == nil {
		return ""
	}
	switch {
	case r.Name != "":
		return r.Name
	case r.Email != "":
		return r.Email
	}
	return r.ID
}

// Is reports whether the reference points at id.
func (r *Ref) Is(id string) bool {
	return r != nil && id != "" && r.ID == id
}
