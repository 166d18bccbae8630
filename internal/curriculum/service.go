package curriculum

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oneday-english/oneday/internal/catalog"
)

// CompletionSource reads activity completions from the ledger.
type CompletionSource interface {
	// CompletedActivityIDs returns the set of activity ids a student has
	// completed in a class.
	CompletedActivityIDs(ctx context.Context, studentEmail, classID string) (map[string]struct{}, error)
	// CompletedByStudent returns completed activity ids for every student
	// with records in a class, keyed by student email.
	CompletedByStudent(ctx context.Context, classID string) (map[string]map[string]struct{}, error)
}

// Roster lists the students enrolled in a class.
type Roster interface {
	StudentEmails(ctx context.Context, classID string) ([]string, error)
}

// ServiceConfig holds dependencies for the curriculum service.
type ServiceConfig struct {
	Store       Store
	Catalog     catalog.Catalog
	Completions CompletionSource
	Roster      Roster
	Events      *Publisher // optional
}

// Service coordinates curriculum edits, day state, and teacher overrides.
type Service struct {
	store       Store
	catalog     catalog.Catalog
	completions CompletionSource
	roster      Roster
	events      *Publisher
	resolver    *Resolver
}

// NewService creates a curriculum service.
func NewService(cfg ServiceConfig) *Service {
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	return &Service{
		store:       store,
		catalog:     cfg.Catalog,
		completions: cfg.Completions,
		roster:      cfg.Roster,
		events:      cfg.Events,
		resolver:    NewResolver(store, cfg.Catalog),
	}
}

// Resolver returns the content resolver bound to this service's store.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// Days returns the curriculum's days with lock state computed for a student.
func (s *Service) Days(ctx context.Context, studentEmail, classID string) ([]Day, error) {
	cur, err := s.store.Curriculum(ctx, classID)
	if err != nil {
		return nil, err
	}
	completed, err := s.completions.CompletedActivityIDs(ctx, studentEmail, classID)
	if err != nil {
		return nil, fmt.Errorf("load completions: %w", err)
	}
	return BuildDays(cur, completed), nil
}

// Progress summarizes a student's position in the day sequence.
type Progress struct {
	CompletedDays int
	TotalDays     int
}

// StudentProgress returns how many days a student has completed.
func (s *Service) StudentProgress(ctx context.Context, studentEmail, classID string) (Progress, error) {
	cur, err := s.store.Curriculum(ctx, classID)
	if err != nil {
		return Progress{}, err
	}
	completed, err := s.completions.CompletedActivityIDs(ctx, studentEmail, classID)
	if err != nil {
		return Progress{}, fmt.Errorf("load completions: %w", err)
	}
	return Progress{
		CompletedDays: CompletedDayCount(cur, completed),
		TotalDays:     cur.NumberOfDays,
	}, nil
}

// MaxCompletedDays returns the furthest day index any enrolled student has
// completed, per the unlock rules. Classes without students report zero.
func (s *Service) MaxCompletedDays(ctx context.Context, classID string) (int, error) {
	cur, err := s.store.Curriculum(ctx, classID)
	if err != nil {
		return 0, err
	}

	emails, err := s.roster.StudentEmails(ctx, classID)
	if err != nil {
		return 0, fmt.Errorf("load roster: %w", err)
	}
	if len(emails) == 0 {
		return 0, nil
	}

	byStudent, err := s.completions.CompletedByStudent(ctx, classID)
	if err != nil {
		return 0, fmt.Errorf("load completions: %w", err)
	}

	max := 0
	for _, email := range emails {
		if n := CompletedDayCount(cur, byStudent[email]); n > max {
			max = n
		}
	}
	return max, nil
}

// SaveCurriculum validates and persists a class's curriculum. Reducing the
// day count below the furthest completed day of any student fails with
// ErrCurriculumShrink so no in-progress position is orphaned.
func (s *Service) SaveCurriculum(ctx context.Context, classID string, cur Curriculum) error {
	if err := cur.Validate(); err != nil {
		return err
	}

	if _, err := s.store.Curriculum(ctx, classID); err == nil {
		maxCompleted, err := s.MaxCompletedDays(ctx, classID)
		if err != nil {
			return err
		}
		if cur.NumberOfDays < maxCompleted {
			return fmt.Errorf("%w: students completed through day %d, cannot shrink to %d",
				ErrCurriculumShrink, maxCompleted, cur.NumberOfDays)
		}
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	if err := s.store.SaveCurriculum(ctx, classID, cur); err != nil {
		return err
	}

	s.events.Publish(Event{Type: EventCurriculumUpdated, ClassID: classID})
	return nil
}

// StartDay opens a day for student access regardless of completion state.
func (s *Service) StartDay(ctx context.Context, classID string, day int) error {
	cur, err := s.store.Curriculum(ctx, classID)
	if err != nil {
		return err
	}
	if day < 1 || day > cur.NumberOfDays {
		return fmt.Errorf("day %d is outside 1..%d", day, cur.NumberOfDays)
	}

	cur.StartDay(day)
	if err := s.store.SaveCurriculum(ctx, classID, cur); err != nil {
		return err
	}

	s.events.Publish(Event{Type: EventDayStarted, ClassID: classID, Day: day})
	return nil
}

// CancelDay withdraws a teacher-started day. Students who have not completed
// the prior day see it locked again.
func (s *Service) CancelDay(ctx context.Context, classID string, day int) error {
	cur, err := s.store.Curriculum(ctx, classID)
	if err != nil {
		return err
	}

	cur.CancelDay(day)
	if err := s.store.SaveCurriculum(ctx, classID, cur); err != nil {
		return err
	}

	s.events.Publish(Event{Type: EventDayCancelled, ClassID: classID, Day: day})
	return nil
}

// ApplyOverride pins teacher-chosen material for a concrete activity. With
// ScopeSequential the rotation is re-based from the chosen item forward: each
// later day advances one catalog position, wrapping at the catalog end. An
// activity whose (type, level) no longer appears in the class format is a
// no-op.
func (s *Service) ApplyOverride(ctx context.Context, classID string, day int, act Activity, newMaterialID string, scope OverrideScope) error {
	if scope == ScopeSingle {
		if err := s.store.UpsertOverride(ctx, Override{
			ClassID:    classID,
			ActivityID: act.ID,
			MaterialID: newMaterialID,
		}); err != nil {
			return err
		}
		s.events.Publish(Event{Type: EventCurriculumUpdated, ClassID: classID, Day: day})
		return nil
	}

	cur, err := s.store.Curriculum(ctx, classID)
	if err != nil {
		return err
	}

	slotIndex := -1
	for i, slot := range cur.ClassFormat {
		if slot.Type == act.Type && slot.Level == act.Level {
			slotIndex = i
			break
		}
	}
	if slotIndex == -1 {
		slog.Warn("override target not in class format",
			"class_id", classID,
			"type", act.Type,
			"level", act.Level,
		)
		return nil
	}

	items, err := s.catalog.Items(ctx, act.Type, act.Level)
	if err != nil {
		return fmt.Errorf("load materials: %w", err)
	}
	base := -1
	for i, item := range items {
		if item.ID == newMaterialID {
			base = i
			break
		}
	}
	if base == -1 {
		slog.Warn("override material not in catalog",
			"class_id", classID,
			"material_id", newMaterialID,
		)
		return nil
	}

	for d := day; d <= cur.NumberOfDays; d++ {
		idx := (base + (d - day)) % len(items)
		if err := s.store.UpsertOverride(ctx, Override{
			ClassID:    classID,
			ActivityID: ActivityID(d, slotIndex),
			MaterialID: items[idx].ID,
		}); err != nil {
			return err
		}
	}

	s.events.Publish(Event{Type: EventCurriculumUpdated, ClassID: classID, Day: day})
	return nil
}
