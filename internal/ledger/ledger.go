// Package ledger is the append-only log of activity completions. Day-unlock
// state is always recomputed from this log; nothing here is ever updated or
// deleted.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oneday-english/oneday/internal/catalog"
)

// Record is one submitted attempt. Students may retry an activity, producing
// multiple records for the same activity id; completion checks use set
// membership, so duplicates are harmless.
type Record struct {
	StudentEmail   string               `json:"student_email"`
	StudentName    string               `json:"student_name,omitempty"`
	Institution    string               `json:"institution,omitempty"`
	ClassID        string               `json:"class_id,omitempty"`
	ClassName      string               `json:"class_name,omitempty"`
	ActivityType   catalog.ActivityType `json:"activity_type"`
	ActivityTitle  string               `json:"activity_title,omitempty"`
	Level          int                  `json:"level"`
	Score          int                  `json:"score"`
	TotalQuestions int                  `json:"total_questions"`
	ActivityID     string               `json:"activity_id,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// Recorder persists completion records and answers completion queries.
type Recorder interface {
	Append(ctx context.Context, rec Record) error
	// CompletedActivityIDs returns the set of activity ids a student has
	// completed in a class.
	CompletedActivityIDs(ctx context.Context, studentEmail, classID string) (map[string]struct{}, error)
	// CompletedByStudent returns completed activity ids for every student
	// with records in a class.
	CompletedByStudent(ctx context.Context, classID string) (map[string]map[string]struct{}, error)
	// CompletersForActivity returns the emails of students who completed one
	// concrete activity.
	CompletersForActivity(ctx context.Context, classID, activityID string) ([]string, error)
}

// Memory is an in-memory Recorder implementation.
type Memory struct {
	records  []Record
	onAppend []func(Record)
	mu       sync.RWMutex
}

// NewMemory creates a new in-memory recorder.
func NewMemory() *Memory {
	return &Memory{}
}

// OnAppend registers an observer called after every successful append.
// Observers run synchronously on the appending goroutine.
func (m *Memory) OnAppend(fn func(Record)) {
	m.mu.Lock()
	m.onAppend = append(m.onAppend, fn)
	m.mu.Unlock()
}

func (m *Memory) Append(_ context.Context, rec Record) error {
	if rec.StudentEmail == "" {
		return fmt.Errorf("student email is required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	m.mu.Lock()
	m.records = append(m.records, rec)
	observers := m.onAppend
	m.mu.Unlock()

	for _, fn := range observers {
		fn(rec)
	}
	return nil
}

func (m *Memory) CompletedActivityIDs(_ context.Context, studentEmail, classID string) (map[string]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]struct{})
	for _, rec := range m.records {
		if rec.StudentEmail == studentEmail && rec.ClassID == classID && rec.ActivityID != "" {
			out[rec.ActivityID] = struct{}{}
		}
	}
	return out, nil
}

func (m *Memory) CompletedByStudent(_ context.Context, classID string) (map[string]map[string]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]map[string]struct{})
	for _, rec := range m.records {
		if rec.ClassID != classID || rec.ActivityID == "" {
			continue
		}
		set, ok := out[rec.StudentEmail]
		if !ok {
			set = make(map[string]struct{})
			out[rec.StudentEmail] = set
		}
		set[rec.ActivityID] = struct{}{}
	}
	return out, nil
}

func (m *Memory) CompletersForActivity(_ context.Context, classID, activityID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, rec := range m.records {
		if rec.ClassID != classID || rec.ActivityID != activityID {
			continue
		}
		if _, ok := seen[rec.StudentEmail]; ok {
			continue
		}
		seen[rec.StudentEmail] = struct{}{}
		out = append(out, rec.StudentEmail)
	}
	return out, nil
}

// Records returns a copy of all appended records, oldest first.
func (m *Memory) Records() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Record(nil), m.records...)
}
