package roster

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Service wraps a Store with account lifecycle rules: password hashing,
// institution domain assignment, ghost filtering, and the audit trail.
type Service struct {
	store Store
}

// NewService creates a roster service.
func NewService(store Store) *Service {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Service{store: store}
}

// Store exposes the underlying store for read paths that need it directly.
func (s *Service) Store() Store {
	return s.store
}

// CreateUser registers an account. Students get a synthetic email derived
// from their student id and the institution's domain; everyone gets a bcrypt
// password hash. The raw password is never stored.
func (s *Service) CreateUser(ctx context.Context, actorEmail string, u User, password string) (User, error) {
	if !u.Role.Valid() {
		return User{}, fmt.Errorf("unknown role %q", u.Role)
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	u.Institution = NormalizeInstitution(u.Institution)

	if u.Role == RoleStudent {
		if u.StudentID == "" {
			return User{}, fmt.Errorf("student accounts need a student id")
		}
		domain, err := s.store.InstitutionDomain(ctx, u.Institution)
		if err != nil {
			return User{}, fmt.Errorf("allocate institution domain: %w", err)
		}
		u.Email = StudentEmail(u.StudentID, domain)
	}
	if u.Email == "" {
		return User{}, fmt.Errorf("email is required")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return User{}, err
	}
	u.PasswordHash = hash

	if err := s.store.CreateUser(ctx, u); err != nil {
		return User{}, err
	}
	s.audit(ctx, AuditUserCreated, actorEmail, u.Email)
	return u, nil
}

// Authenticate checks credentials and returns the account. Ghost accounts
// cannot log in.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.store.User(ctx, email)
	if err != nil {
		return User{}, ErrBadCredentials
	}
	if u.Status == StatusGhost {
		return User{}, ErrBadCredentials
	}
	if err := CheckPassword(u.PasswordHash, password); err != nil {
		return User{}, err
	}
	return u, nil
}

// Archive turns an account into a ghost: it keeps its study history but
// disappears from rosters, leaderboards, and login.
func (s *Service) Archive(ctx context.Context, actorEmail, email string) error {
	u, err := s.store.User(ctx, email)
	if err != nil {
		return err
	}
	u.Status = StatusGhost
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return err
	}
	s.audit(ctx, AuditUserDeleted, actorEmail, email)
	return nil
}

// AddStars credits a student's star balance.
func (s *Service) AddStars(ctx context.Context, email string, stars int) error {
	if stars <= 0 {
		return nil
	}
	u, err := s.store.User(ctx, email)
	if err != nil {
		return err
	}
	u.Stars += stars
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return err
	}
	s.audit(ctx, AuditUserUpdated, "", email)
	return nil
}

// StudentEmails returns the active students of a class, ghosts excluded.
// Satisfies the curriculum service's roster dependency.
func (s *Service) StudentEmails(ctx context.Context, classID string) ([]string, error) {
	emails, err := s.store.MemberEmails(ctx, classID)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(emails))
	for _, email := range emails {
		u, err := s.store.User(ctx, email)
		if err != nil {
			// Membership rows can outlive hard-deleted accounts.
			slog.Warn("class member without account", "class_id", classID, "email", email)
			continue
		}
		if u.Status == StatusGhost {
			continue
		}
		out = append(out, email)
	}
	return out, nil
}

// Leaderboard returns an institution's top students by stars, ghosts
// excluded. Ties keep email order for a stable listing.
func (s *Service) Leaderboard(ctx context.Context, institution string, limit int) ([]User, error) {
	users, err := s.store.UsersByInstitution(ctx, NormalizeInstitution(institution))
	if err != nil {
		return nil, err
	}

	students := make([]User, 0, len(users))
	for _, u := range users {
		if u.Role != RoleStudent || u.Status == StatusGhost {
			continue
		}
		students = append(students, u)
	}
	sort.SliceStable(students, func(i, j int) bool {
		return students[i].Stars > students[j].Stars
	})

	if limit > 0 && len(students) > limit {
		students = students[:limit]
	}
	return students, nil
}

func (s *Service) audit(ctx context.Context, action, actorEmail, targetEmail string) {
	err := s.store.AppendAudit(ctx, AuditEntry{
		Action:      action,
		ActorEmail:  actorEmail,
		TargetEmail: targetEmail,
	})
	if err != nil {
		slog.Warn("audit append failed", "action", action, "target", targetEmail, "error", err)
	}
}
