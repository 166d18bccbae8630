package curriculum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed curriculum store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Curriculum(ctx context.Context, classID string) (Curriculum, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var cur Curriculum
	var format []byte
	var started []int32
	err := s.pool.QueryRow(ctx,
		`SELECT number_of_days, class_format, started_days
		 FROM curriculums
		 WHERE class_id = $1`,
		classID,
	).Scan(&cur.NumberOfDays, &format, &started)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Curriculum{}, ErrNotFound
		}
		return Curriculum{}, fmt.Errorf("get curriculum: %w", err)
	}

	if err := validateClassFormat(format); err != nil {
		return Curriculum{}, fmt.Errorf("curriculum for class %s: %w", classID, err)
	}
	if err := json.Unmarshal(format, &cur.ClassFormat); err != nil {
		return Curriculum{}, fmt.Errorf("decode class format: %w", err)
	}

	cur.StartedDays = make([]int, len(started))
	for i, d := range started {
		cur.StartedDays[i] = int(d)
	}
	return cur, nil
}

func (s *PostgresStore) SaveCurriculum(ctx context.Context, classID string, cur Curriculum) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	format, err := json.Marshal(cur.ClassFormat)
	if err != nil {
		return fmt.Errorf("encode class format: %w", err)
	}

	started := make([]int32, len(cur.StartedDays))
	for i, d := range cur.StartedDays {
		started[i] = int32(d)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO curriculums (class_id, number_of_days, class_format, started_days)
		 VALUES ($1, $2, $3::jsonb, $4)
		 ON CONFLICT (class_id) DO UPDATE
		 SET number_of_days = EXCLUDED.number_of_days,
		     class_format = EXCLUDED.class_format,
		     started_days = EXCLUDED.started_days`,
		classID,
		cur.NumberOfDays,
		string(format),
		started,
	)
	if err != nil {
		return fmt.Errorf("save curriculum: %w", err)
	}
	return nil
}

func (s *PostgresStore) Overrides(ctx context.Context, classID string) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT activity_id, material_id
		 FROM curriculum_overrides
		 WHERE class_id = $1`,
		classID,
	)
	if err != nil {
		return nil, fmt.Errorf("query overrides: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var activityID, materialID string
		if err := rows.Scan(&activityID, &materialID); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		out[activityID] = materialID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overrides: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpsertOverride(ctx context.Context, ov Override) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO curriculum_overrides (class_id, activity_id, material_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (class_id, activity_id) DO UPDATE
		 SET material_id = EXCLUDED.material_id`,
		ov.ClassID,
		ov.ActivityID,
		ov.MaterialID,
	)
	if err != nil {
		return fmt.Errorf("upsert override: %w", err)
	}
	return nil
}
