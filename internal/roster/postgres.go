package roster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed roster store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

const userColumns = `email, name, role, institution, teacher_email, grade,
	student_id, vocab_level, stars, status, password_hash, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	var institution, teacherEmail, grade, studentID *string
	err := row.Scan(
		&u.Email, &u.Name, &u.Role, &institution, &teacherEmail, &grade,
		&studentID, &u.VocabLevel, &u.Stars, &u.Status, &u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		return User{}, err
	}
	u.Institution = deref(institution)
	u.TeacherEmail = deref(teacherEmail)
	u.Grade = deref(grade)
	u.StudentID = deref(studentID)
	return u, nil
}

func (s *PostgresStore) User(ctx context.Context, email string) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u User) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		u.Email, u.Name, string(u.Role),
		nullIfEmpty(u.Institution), nullIfEmpty(u.TeacherEmail),
		nullIfEmpty(u.Grade), nullIfEmpty(u.StudentID),
		u.VocabLevel, u.Stars, string(u.Status), u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, u User) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET name = $2, role = $3, institution = $4, teacher_email = $5,
		     grade = $6, student_id = $7, vocab_level = $8, stars = $9,
		     status = $10, password_hash = $11
		 WHERE email = $1`,
		u.Email, u.Name, string(u.Role),
		nullIfEmpty(u.Institution), nullIfEmpty(u.TeacherEmail),
		nullIfEmpty(u.Grade), nullIfEmpty(u.StudentID),
		u.VocabLevel, u.Stars, string(u.Status), u.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UsersByInstitution(ctx context.Context, institution string) ([]User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE institution = $1 ORDER BY email`,
		institution)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Class(ctx context.Context, id string) (Class, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var c Class
	var institution *string
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, teacher_email, institution, created_at
		 FROM classes WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.TeacherEmail, &institution, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Class{}, ErrNotFound
		}
		return Class{}, fmt.Errorf("get class: %w", err)
	}
	c.Institution = deref(institution)
	return c, nil
}

func (s *PostgresStore) SaveClass(ctx context.Context, c Class) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO classes (id, name, teacher_email, institution, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name,
		     teacher_email = EXCLUDED.teacher_email,
		     institution = EXCLUDED.institution`,
		c.ID, c.Name, c.TeacherEmail, nullIfEmpty(c.Institution), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save class: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteClass(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	// class_members and curriculums cascade via FK.
	tag, err := s.pool.Exec(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ClassesByTeacher(ctx context.Context, teacherEmail string) ([]Class, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, teacher_email, institution, created_at
		 FROM classes WHERE teacher_email = $1 ORDER BY id`,
		teacherEmail)
	if err != nil {
		return nil, fmt.Errorf("query classes: %w", err)
	}
	defer rows.Close()

	var out []Class
	for rows.Next() {
		var c Class
		var institution *string
		if err := rows.Scan(&c.ID, &c.Name, &c.TeacherEmail, &institution, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan class: %w", err)
		}
		c.Institution = deref(institution)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate classes: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) AddMember(ctx context.Context, classID, email string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO class_members (class_id, user_email)
		 VALUES ($1, $2)
		 ON CONFLICT (class_id, user_email) DO NOTHING`,
		classID, email)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveMember(ctx context.Context, classID, email string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`DELETE FROM class_members WHERE class_id = $1 AND user_email = $2`,
		classID, email)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

func (s *PostgresStore) MemberEmails(ctx context.Context, classID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT user_email FROM class_members WHERE class_id = $1 ORDER BY user_email`,
		classID)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) InstitutionDomain(ctx context.Context, name string) (string, error) {
	name = NormalizeInstitution(name)

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var domain string
	err := s.pool.QueryRow(ctx,
		`SELECT domain FROM institution_domains WHERE name = $1`, name,
	).Scan(&domain)
	if err == nil {
		return domain, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("get institution domain: %w", err)
	}

	// First sight of this institution. A concurrent insert loses the race
	// harmlessly; ON CONFLICT keeps the winner and the RETURNING reread
	// below picks it up.
	err = s.pool.QueryRow(ctx,
		`INSERT INTO institution_domains (name, domain)
		 VALUES ($1, 'institute' || lpad(nextval('institution_domain_seq')::text, 4, '0'))
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING domain`,
		name,
	).Scan(&domain)
	if err != nil {
		// Sequence unavailable, fall back to a name-derived domain.
		domain = fallbackDomain(name)
		_, insErr := s.pool.Exec(ctx,
			`INSERT INTO institution_domains (name, domain)
			 VALUES ($1, $2)
			 ON CONFLICT (name) DO NOTHING`,
			name, domain)
		if insErr != nil {
			return "", fmt.Errorf("allocate institution domain: %w", insErr)
		}
	}
	return domain, nil
}

func (s *PostgresStore) AppendAudit(ctx context.Context, e AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO roster_audit (action, actor_email, target_email, at)
		 VALUES ($1, $2, $3, $4)`,
		e.Action, nullIfEmpty(e.ActorEmail), e.TargetEmail, e.At)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
