package domain

import "time"

// Status is the lifecycle state of a task, as spelled on the wire.
type Status string

const (
	StatusTodo       Status = "A_FAIRE"
	StatusInProgress Status = "EN_COURS"
	StatusDone       Status = "TERMINE"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Done reports whether the task is finished.
func (s Status) Done() bool { return s == StatusDone }

// Toggle flips between done and not done. A finished task goes back to
// in-progress; anything else becomes done.
func (s Status) Toggle() Status {
	if s.Done() {
		return StatusInProgress
	}
	return StatusDone
}

// Label is the human readable status.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "À faire"
	case StatusInProgress:
		return "En cours"
	case StatusDone:
		return "Terminé"
	}
	return string(s)
}

// Task is a personal task (no group) or a group-scoped one.
type Task struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Group       *Ref       `json:"group,omitempty"`
	Owner       *Ref       `json:"owner,omitempty"`
	AssignedTo  *Ref       `json:"assignedTo,omitempty"`
}

// IsPersonal reports whether the task belongs to no group.
func (t Task) IsPersonal() bool { return t.Group == nil }

// Partition splits tasks into personal and group tasks, keeping order.
func Partition(tasks []Task) (personal, group []Task) {
	for _, t := range tasks {
		if t.IsPersonal() {
			personal = append(personal, t)
		} else {
			group = append(group, t)
		}
	}
	return personal, group
}
