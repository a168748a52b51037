// Package stubapi is an in-memory implementation of the task API, for local
// development and end-to-end tests of the web client.
package stubapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	nanoid "github.com/jaevor/go-nanoid"

	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
	"github.com/fatim-sangare/frontend-test-nan/internal/dto"
)

// Invite codes avoid look-alike characters (0/O, 1/I).
const (
	inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	inviteLength   = 8
)

var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrBadRequest = errors.New("bad request")
)

// apiError carries the message shown to the user next to one of the
// sentinel errors above.
type apiError struct {
	kind error
	msg  string
}

func (e *apiError) Error() string { return e.msg }
func (e *apiError) Unwrap() error { return e.kind }

func fail(kind error, msg string) error { return &apiError{kind: kind, msg: msg} }

type userRecord struct {
	domain.User
	PasswordHash string
}

type groupRecord struct {
	ID         string
	Name       string
	InviteCode string
	CreatedBy  string
	Members    []string
	CreatedAt  time.Time
}

func (g *groupRecord) hasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

type taskRecord struct {
	ID          string
	Title       string
	Description string
	Status      domain.Status
	Deadline    *time.Time
	GroupID     string
	OwnerID     string
	AssignedTo  string
	CreatedAt   time.Time
	seq         int64
}

// Store holds users, groups and tasks in memory.
type Store struct {
	mu      sync.RWMutex
	users   map[string]*userRecord
	byEmail map[string]string
	groups  map[string]*groupRecord
	tasks   map[string]*taskRecord
	seq     int64
	invite  func() string
	now     func() time.Time
}

// NewStore returns an empty Store.
func NewStore() (*Store, error) {
	gen, err := nanoid.CustomASCII(inviteAlphabet, inviteLength)
	if err != nil {
		return nil, err
	}
	return &Store{
		users:   make(map[string]*userRecord),
		byEmail: make(map[string]string),
		groups:  make(map[string]*groupRecord),
		tasks:   make(map[string]*taskRecord),
		invite:  gen,
		now:     time.Now,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// createUser inserts a user; the email must be unused.
func (s *Store) createUser(email, passwordHash string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := normalizeEmail(email)
	if _, ok := s.byEmail[key]; ok {
		return domain.User{}, fail(ErrConflict, "Cet email est déjà utilisé")
	}
	now := s.now().UTC()
	u := &userRecord{
		User:         domain.User{ID: uuid.NewString(), Email: key, CreatedAt: &now},
		PasswordHash: passwordHash,
	}
	s.users[u.ID] = u
	s.byEmail[key] = u.ID
	return u.User, nil
}

func (s *Store) userByEmail(email string) (userRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return userRecord{}, false
	}
	return *s.users[id], true
}

func (s *Store) userExists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok
}

// CreateGroup creates a group with the caller as creator and first member.
func (s *Store) CreateGroup(userID, name string) (domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Group{}, fail(ErrBadRequest, "Le nom du groupe est requis")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g := &groupRecord{
		ID:         uuid.NewString(),
		Name:       name,
		InviteCode: s.uniqueInviteLocked(),
		CreatedBy:  userID,
		Members:    []string{userID},
		CreatedAt:  s.now().UTC(),
	}
	s.groups[g.ID] = g
	return s.groupViewLocked(g), nil
}

func (s *Store) uniqueInviteLocked() string {
	for {
		code := s.invite()
		taken := false
		for _, g := range s.groups {
			if g.InviteCode == code {
				taken = true
				break
			}
		}
		if !taken {
			return code
		}
	}
}

// ListGroups returns the caller's groups, newest first.
func (s *Store) ListGroups(userID string) []domain.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var recs []*groupRecord
	for _, g := range s.groups {
		if g.hasMember(userID) {
			recs = append(recs, g)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	out := make([]domain.Group, 0, len(recs))
	for _, g := range recs {
		out = append(out, s.groupViewLocked(g))
	}
	return out
}

// GetGroup returns a group the caller belongs to.
func (s *Store) GetGroup(userID, groupID string) (domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, err := s.memberGroupLocked(userID, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	return s.groupViewLocked(g), nil
}

// DeleteGroup deletes a group and its tasks. Creator only.
func (s *Store) DeleteGroup(userID, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return fail(ErrNotFound, "Groupe introuvable")
	}
	if g.CreatedBy != userID {
		return fail(ErrForbidden, "Seul le créateur peut supprimer le groupe")
	}
	for id, t := range s.tasks {
		if t.GroupID == groupID {
			delete(s.tasks, id)
		}
	}
	delete(s.groups, groupID)
	return nil
}

// JoinGroup adds the caller to the group with the invite code. Joining twice
// is not an error.
func (s *Store) JoinGroup(userID, code string) (domain.Group, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.InviteCode != code {
			continue
		}
		if !g.hasMember(userID) {
			g.Members = append(g.Members, userID)
		}
		return s.groupViewLocked(g), nil
	}
	return domain.Group{}, fail(ErrNotFound, "Code d'invitation invalide")
}

// LeaveGroup removes the caller. The creator cannot leave.
func (s *Store) LeaveGroup(userID, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.memberGroupLocked(userID, groupID)
	if err != nil {
		return err
	}
	if g.CreatedBy == userID {
		return fail(ErrBadRequest, "Le créateur ne peut pas quitter le groupe")
	}
	s.removeMemberLocked(g, userID)
	return nil
}

// RemoveMember removes another member and unassigns their tasks in the
// group. Creator only.
func (s *Store) RemoveMember(userID, groupID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return fail(ErrNotFound, "Groupe introuvable")
	}
	if g.CreatedBy != userID {
		return fail(ErrForbidden, "Seul le créateur peut retirer un membre")
	}
	if memberID == g.CreatedBy {
		return fail(ErrBadRequest, "Le créateur ne peut pas être retiré")
	}
	if !g.hasMember(memberID) {
		return fail(ErrNotFound, "Membre introuvable")
	}
	s.removeMemberLocked(g, memberID)
	return nil
}

func (s *Store) removeMemberLocked(g *groupRecord, memberID string) {
	kept := g.Members[:0]
	for _, m := range g.Members {
		if m != memberID {
			kept = append(kept, m)
		}
	}
	g.Members = kept
	for _, t := range s.tasks {
		if t.GroupID == g.ID && t.AssignedTo == memberID {
			t.AssignedTo = ""
		}
	}
}

func (s *Store) memberGroupLocked(userID, groupID string) (*groupRecord, error) {
	g, ok := s.groups[groupID]
	if !ok {
		return nil, fail(ErrNotFound, "Groupe introuvable")
	}
	if !g.hasMember(userID) {
		return nil, fail(ErrForbidden, "Vous n'êtes pas membre de ce groupe")
	}
	return g, nil
}

// CreateTask creates a personal task, or a group task when req.Group is set
// and the caller is a member.
func (s *Store) CreateTask(userID string, req dto.CreateTaskRequest) (domain.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Task{}, fail(ErrBadRequest, "Le titre est requis")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Group != "" {
		if _, err := s.memberGroupLocked(userID, req.Group); err != nil {
			return domain.Task{}, err
		}
	}
	s.seq++
	t := &taskRecord{
		ID:        uuid.NewString(),
		Title:     title,
		Status:    domain.StatusTodo,
		Deadline:  req.Deadline,
		GroupID:   req.Group,
		OwnerID:   userID,
		CreatedAt: s.now().UTC(),
		seq:       s.seq,
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Group != "" {
		t.AssignedTo = userID
	}
	s.tasks[t.ID] = t
	return s.taskViewLocked(t), nil
}

// ListTasks returns the caller's own tasks and the tasks of their groups,
// newest first.
func (s *Store) ListTasks(userID string) []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(func(t *taskRecord) bool { return s.canSeeLocked(userID, t) })
}

// ListGroupTasks returns the tasks of a group the caller belongs to.
func (s *Store) ListGroupTasks(userID, groupID string) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.memberGroupLocked(userID, groupID); err != nil {
		return nil, err
	}
	return s.collectLocked(func(t *taskRecord) bool { return t.GroupID == groupID }), nil
}

// GetTask returns a task visible to the caller.
func (s *Store) GetTask(userID, taskID string) (domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.visibleTaskLocked(userID, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	return s.taskViewLocked(t), nil
}

// UpdateTask applies a partial update. Absent fields are kept, null clears.
func (s *Store) UpdateTask(userID, taskID string, p dto.TaskPatch) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.visibleTaskLocked(userID, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	next := *t
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return domain.Task{}, fail(ErrBadRequest, "Le titre est requis")
		}
		next.Title = title
	}
	if p.Description.Set {
		next.Description = ""
		if p.Description.Value != nil {
			next.Description = *p.Description.Value
		}
	}
	if p.Deadline.Set {
		next.Deadline = p.Deadline.Value
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return domain.Task{}, fail(ErrBadRequest, "Statut invalide")
		}
		next.Status = *p.Status
	}
	*t = next
	return s.taskViewLocked(t), nil
}

// DeleteTask deletes a task. Allowed to its owner and to the creator of its
// group.
func (s *Store) DeleteTask(userID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.visibleTaskLocked(userID, taskID)
	if err != nil {
		return err
	}
	if t.OwnerID != userID {
		g, ok := s.groups[t.GroupID]
		if !ok || g.CreatedBy != userID {
			return fail(ErrForbidden, "Vous ne pouvez pas supprimer cette tâche")
		}
	}
	delete(s.tasks, taskID)
	return nil
}

func (s *Store) canSeeLocked(userID string, t *taskRecord) bool {
	if t.OwnerID == userID {
		return true
	}
	if t.GroupID == "" {
		return false
	}
	g, ok := s.groups[t.GroupID]
	return ok && g.hasMember(userID)
}

func (s *Store) visibleTaskLocked(userID, taskID string) (*taskRecord, error) {
	t, ok := s.tasks[taskID]
	if !ok || !s.canSeeLocked(userID, t) {
		return nil, fail(ErrNotFound, "Tâche introuvable")
	}
	return t, nil
}

func (s *Store) collectLocked(keep func(*taskRecord) bool) []domain.Task {
	var recs []*taskRecord
	for _, t := range s.tasks {
		if keep(t) {
			recs = append(recs, t)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })
	out := make([]domain.Task, 0, len(recs))
	for _, t := range recs {
		out = append(out, s.taskViewLocked(t))
	}
	return out
}

func (s *Store) userRefLocked(id string) *domain.Ref {
	if id == "" {
		return nil
	}
	ref := &domain.Ref{ID: id}
	if u, ok := s.users[id]; ok {
		ref.Email = u.Email
	}
	return ref
}

func (s *Store) groupViewLocked(g *groupRecord) domain.Group {
	members := make([]domain.User, 0, len(g.Members))
	for _, id := range g.Members {
		if u, ok := s.users[id]; ok {
			members = append(members, u.User)
		} else {
			members = append(members, domain.User{ID: id})
		}
	}
	return domain.Group{
		ID:         g.ID,
		Name:       g.Name,
		InviteLink: g.InviteCode,
		Members:    members,
		CreatedBy:  s.userRefLocked(g.CreatedBy),
	}
}

func (s *Store) taskViewLocked(t *taskRecord) domain.Task {
	out := domain.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Deadline:    t.Deadline,
		Owner:       s.userRefLocked(t.OwnerID),
		AssignedTo:  s.userRefLocked(t.AssignedTo),
	}
	if t.GroupID != "" {
		ref := &domain.Ref{ID: t.GroupID}
		if g, ok := s.groups[t.GroupID]; ok {
			ref.Name = g.Name
		}
		out.Group = ref
	}
	return out
}
