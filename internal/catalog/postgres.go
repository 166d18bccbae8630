package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// Postgres is a PostgreSQL-backed Catalog over the materials table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgreSQL-backed catalog.
func NewPostgres(pool *pgxpool.Pool) (*Postgres, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &Postgres{pool: pool}, nil
}

// itemBody is the jsonb payload column: everything that is not part of the
// catalog ordering key.
type itemBody struct {
	Questions []MCQ    `json:"questions,omitempty"`
	Passage   string   `json:"passage,omitempty"`
	Script    string   `json:"script,omitempty"`
	MCQs      []MCQ    `json:"mcqs,omitempty"`
	VocabIDs  []string `json:"vocab_ids,omitempty"`
}

func (p *Postgres) Items(ctx context.Context, typ ActivityType, level int) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := p.pool.Query(ctx,
		`SELECT id, activity_type, level, position, title, payload
		 FROM materials
		 WHERE activity_type = $1 AND level = $2
		 ORDER BY position ASC, id ASC`,
		string(typ),
		level,
	)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var payload []byte
		if err := rows.Scan(&it.ID, &it.Type, &it.Level, &it.Position, &it.Title, &payload); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		if len(payload) > 0 {
			var body itemBody
			if err := json.Unmarshal(payload, &body); err != nil {
				return nil, fmt.Errorf("decode material %s: %w", it.ID, err)
			}
			it.Questions = body.Questions
			it.Passage = body.Passage
			it.Script = body.Script
			it.MCQs = body.MCQs
			it.VocabIDs = body.VocabIDs
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}

	return items, nil
}

// Upsert writes an item, keyed by id. Used by content import tooling.
func (p *Postgres) Upsert(ctx context.Context, item Item) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	payload, err := json.Marshal(itemBody{
		Questions: item.Questions,
		Passage:   item.Passage,
		Script:    item.Script,
		MCQs:      item.MCQs,
		VocabIDs:  item.VocabIDs,
	})
	if err != nil {
		return fmt.Errorf("encode material %s: %w", item.ID, err)
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO materials (id, activity_type, level, position, title, payload)
		 VALUES ($1, $2, $3, $4, $5, $6::jsonb)
		 ON CONFLICT (id) DO UPDATE
		 SET activity_type = EXCLUDED.activity_type,
		     level = EXCLUDED.level,
		     position = EXCLUDED.position,
		     title = EXCLUDED.title,
		     payload = EXCLUDED.payload`,
		item.ID,
		string(item.Type),
		item.Level,
		item.Position,
		item.Title,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("upsert material %s: %w", item.ID, err)
	}
	return nil
}
