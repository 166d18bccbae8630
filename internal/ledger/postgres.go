package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// Postgres is a PostgreSQL-backed Recorder over the study_logs table.
type Postgres struct {
	pool     *pgxpool.Pool
	onAppend []func(Record)
}

// NewPostgres creates a PostgreSQL-backed recorder.
func NewPostgres(pool *pgxpool.Pool) (*Postgres, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &Postgres{pool: pool}, nil
}

// OnAppend registers an observer called after every successful append.
func (p *Postgres) OnAppend(fn func(Record)) {
	p.onAppend = append(p.onAppend, fn)
}

func (p *Postgres) Append(ctx context.Context, rec Record) error {
	if rec.StudentEmail == "" {
		return fmt.Errorf("student email is required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	details := map[string]string{}
	if rec.ActivityID != "" {
		details["activity_id"] = rec.ActivityID
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err = p.pool.Exec(ctx,
		`INSERT INTO study_logs
		   (user_email, user_name, institution, class_id, class_name,
		    activity_type, activity_title, level, score, total_questions,
		    details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12)`,
		rec.StudentEmail,
		nullIfEmpty(rec.StudentName),
		nullIfEmpty(rec.Institution),
		nullIfEmpty(rec.ClassID),
		nullIfEmpty(rec.ClassName),
		string(rec.ActivityType),
		nullIfEmpty(rec.ActivityTitle),
		rec.Level,
		rec.Score,
		rec.TotalQuestions,
		string(detailsJSON),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert study log: %w", err)
	}

	for _, fn := range p.onAppend {
		fn(rec)
	}
	return nil
}

func (p *Postgres) CompletedActivityIDs(ctx context.Context, studentEmail, classID string) (map[string]struct{}, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := p.pool.Query(ctx,
		`SELECT details->>'activity_id'
		 FROM study_logs
		 WHERE user_email = $1
		   AND class_id = $2
		   AND details->>'activity_id' IS NOT NULL`,
		studentEmail,
		classID,
	)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		out[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completions: %w", err)
	}
	return out, nil
}

func (p *Postgres) CompletedByStudent(ctx context.Context, classID string) (map[string]map[string]struct{}, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := p.pool.Query(ctx,
		`SELECT user_email, details->>'activity_id'
		 FROM study_logs
		 WHERE class_id = $1
		   AND details->>'activity_id' IS NOT NULL`,
		classID,
	)
	if err != nil {
		return nil, fmt.Errorf("query class completions: %w", err)
	}
	defer rows.Close()

	out := make(map[string]map[string]struct{})
	for rows.Next() {
		var email, id string
		if err := rows.Scan(&email, &id); err != nil {
			return nil, fmt.Errorf("scan class completion: %w", err)
		}
		set, ok := out[email]
		if !ok {
			set = make(map[string]struct{})
			out[email] = set
		}
		set[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate class completions: %w", err)
	}
	return out, nil
}

func (p *Postgres) CompletersForActivity(ctx context.Context, classID, activityID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := p.pool.Query(ctx,
		`SELECT DISTINCT user_email
		 FROM study_logs
		 WHERE class_id = $1
		   AND details->>'activity_id' = $2`,
		classID,
		activityID,
	)
	if err != nil {
		return nil, fmt.Errorf("query completers: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan completer: %w", err)
		}
		out = append(out, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completers: %w", err)
	}
	return out, nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
