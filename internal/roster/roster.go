// Package roster manages the people side of the platform: user accounts,
// classes, membership, and the institution domains student emails live under.
package roster

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a user or class does not exist.
	ErrNotFound = errors.New("not found")
	// ErrExists is returned when creating a user whose email is taken.
	ErrExists = errors.New("already exists")
)

// Role is a user's permission tier.
type Role string

const (
	RoleMaster     Role = "master"
	RoleAdmin      Role = "admin"
	RoleTeacher    Role = "teacher"
	RoleStudent    Role = "student"
	RoleIndividual Role = "individual"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleMaster, RoleAdmin, RoleTeacher, RoleStudent, RoleIndividual:
		return true
	}
	return false
}

// Status is a user's account state. Ghost accounts keep their study history
// but disappear from rosters and leaderboards.
type Status string

const (
	StatusActive Status = "active"
	StatusGhost  Status = "ghost"
)

// User is one account. Students are identified by a synthetic email of the
// form {studentID}@{institution domain}.
type User struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Institution  string    `json:"institution,omitempty"`
	TeacherEmail string    `json:"teacher_email,omitempty"`
	Grade        string    `json:"grade,omitempty"`
	StudentID    string    `json:"student_id,omitempty"`
	VocabLevel   int       `json:"vocab_level,omitempty"`
	Stars        int       `json:"stars"`
	Status       Status    `json:"status"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Class is a teacher-owned group of students sharing one curriculum.
type Class struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	TeacherEmail string    `json:"teacher_email"`
	Institution  string    `json:"institution,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuditEntry records one mutation of the roster for later review.
type AuditEntry struct {
	Action      string    `json:"action"`
	ActorEmail  string    `json:"actor_email,omitempty"`
	TargetEmail string    `json:"target_email"`
	At          time.Time `json:"at"`
}

// Audit actions.
const (
	AuditUserCreated = "user.created"
	AuditUserUpdated = "user.updated"
	AuditUserDeleted = "user.deleted"
)

// Store persists users, classes, membership, institution domains, and the
// audit trail.
type Store interface {
	// User returns the account with the given email, or ErrNotFound.
	User(ctx context.Context, email string) (User, error)
	// CreateUser inserts a new account, or ErrExists.
	CreateUser(ctx context.Context, u User) error
	// UpdateUser rewrites an existing account, or ErrNotFound.
	UpdateUser(ctx context.Context, u User) error
	// DeleteUser removes an account, or ErrNotFound.
	DeleteUser(ctx context.Context, email string) error
	// UsersByInstitution returns every account of one institution.
	UsersByInstitution(ctx context.Context, institution string) ([]User, error)

	// Class returns the class with the given id, or ErrNotFound.
	Class(ctx context.Context, id string) (Class, error)
	// SaveClass upserts a class.
	SaveClass(ctx context.Context, c Class) error
	// DeleteClass removes a class and its memberships.
	DeleteClass(ctx context.Context, id string) error
	// ClassesByTeacher returns the classes a teacher owns.
	ClassesByTeacher(ctx context.Context, teacherEmail string) ([]Class, error)

	// AddMember enrols a student in a class; enrolling twice is a no-op.
	AddMember(ctx context.Context, classID, email string) error
	// RemoveMember withdraws a student from a class.
	RemoveMember(ctx context.Context, classID, email string) error
	// MemberEmails returns the emails of a class's members, sorted.
	MemberEmails(ctx context.Context, classID string) ([]string, error)

	// InstitutionDomain returns the domain allocated to an institution name,
	// allocating a fresh one on first use.
	InstitutionDomain(ctx context.Context, name string) (string, error)

	// AppendAudit records a roster mutation.
	AppendAudit(ctx context.Context, e AuditEntry) error
}
