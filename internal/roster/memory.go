package roster

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	users   map[string]User
	classes map[string]Class
	members map[string]map[string]struct{} // classID → member emails
	domains map[string]string              // normalized institution name → domain
	nextSeq int
	audit   []AuditEntry
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory roster store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]User),
		classes: make(map[string]Class),
		members: make(map[string]map[string]struct{}),
		domains: make(map[string]string),
		nextSeq: domainSeq,
	}
}

func (s *MemoryStore) User(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Email]; ok {
		return ErrExists
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.users[u.Email] = u
	return nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Email]; !ok {
		return ErrNotFound
	}
	s.users[u.Email] = u
	return nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[email]; !ok {
		return ErrNotFound
	}
	delete(s.users, email)
	for _, members := range s.members {
		delete(members, email)
	}
	return nil
}

func (s *MemoryStore) UsersByInstitution(_ context.Context, institution string) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []User
	for _, u := range s.users {
		if u.Institution == institution {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *MemoryStore) Class(_ context.Context, id string) (Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.classes[id]
	if !ok {
		return Class{}, ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) SaveClass(_ context.Context, c Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	s.classes[c.ID] = c
	return nil
}

func (s *MemoryStore) DeleteClass(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.classes[id]; !ok {
		return ErrNotFound
	}
	delete(s.classes, id)
	delete(s.members, id)
	return nil
}

func (s *MemoryStore) ClassesByTeacher(_ context.Context, teacherEmail string) ([]Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Class
	for _, c := range s.classes {
		if c.TeacherEmail == teacherEmail {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) AddMember(_ context.Context, classID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.members[classID]
	if !ok {
		members = make(map[string]struct{})
		s.members[classID] = members
	}
	members[email] = struct{}{}
	return nil
}

func (s *MemoryStore) RemoveMember(_ context.Context, classID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.members[classID], email)
	return nil
}

func (s *MemoryStore) MemberEmails(_ context.Context, classID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.members[classID]))
	for email := range s.members[classID] {
		out = append(out, email)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) InstitutionDomain(_ context.Context, name string) (string, error) {
	name = NormalizeInstitution(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if domain, ok := s.domains[name]; ok {
		return domain, nil
	}
	domain := fmt.Sprintf("institute%04d", s.nextSeq)
	s.nextSeq++
	s.domains[name] = domain
	return domain, nil
}

func (s *MemoryStore) AppendAudit(_ context.Context, e AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.At.IsZero() {
		e.At = time.Now()
	}
	s.audit = append(s.audit, e)
	return nil
}

// AuditEntries returns a copy of the recorded audit trail, oldest first.
func (s *MemoryStore) AuditEntries() []AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]AuditEntry(nil), s.audit...)
}
