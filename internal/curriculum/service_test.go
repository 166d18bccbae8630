package curriculum_test

import (
	"context"
	"errors"
	"testing"

	"github.com/oneday-english/oneday/internal/catalog"
	"github.com/oneday-english/oneday/internal/curriculum"
	"github.com/oneday-english/oneday/internal/ledger"
)

// staticRoster is a fixed class membership for tests.
type staticRoster map[string][]string

func (r staticRoster) StudentEmails(_ context.Context, classID string) ([]string, error) {
	return r[classID], nil
}

type serviceFixture struct {
	svc    *curriculum.Service
	store  *curriculum.MemoryStore
	cat    *catalog.Memory
	rec    *ledger.Memory
	events []curriculum.Event
}

func newServiceFixture(t *testing.T, roster staticRoster) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		store: curriculum.NewMemoryStore(),
		cat:   catalog.NewMemory(),
		rec:   ledger.NewMemory(),
	}
	pub := curriculum.NewPublisher()
	pub.Subscribe(func(e curriculum.Event) { f.events = append(f.events, e) })

	f.svc = curriculum.NewService(curriculum.ServiceConfig{
		Store:       f.store,
		Catalog:     f.cat,
		Completions: f.rec,
		Roster:      roster,
		Events:      pub,
	})
	return f
}

func (f *serviceFixture) complete(t *testing.T, email, classID string, activityIDs ...string) {
	t.Helper()
	for _, id := range activityIDs {
		err := f.rec.Append(t.Context(), ledger.Record{
			StudentEmail: email,
			ClassID:      classID,
			ActivityID:   id,
		})
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
}

func oneSlotCurriculum(days int) curriculum.Curriculum {
	return curriculum.Curriculum{
		NumberOfDays: days,
		ClassFormat:  []curriculum.Slot{{Type: catalog.TypeVocab, Level: 1}},
	}
}

func TestService_SaveCurriculum_New(t *testing.T) {
	f := newServiceFixture(t, staticRoster{})

	if err := f.svc.SaveCurriculum(t.Context(), "c1", oneSlotCurriculum(10)); err != nil {
		t.Fatalf("SaveCurriculum() error = %v", err)
	}

	got, err := f.store.Curriculum(t.Context(), "c1")
	if err != nil || got.NumberOfDays != 10 {
		t.Errorf("stored curriculum = %+v, err = %v", got, err)
	}
	if len(f.events) != 1 || f.events[0].Type != curriculum.EventCurriculumUpdated {
		t.Errorf("events = %+v, want one curriculum update", f.events)
	}
}

func TestService_SaveCurriculum_RejectsInvalid(t *testing.T) {
	f := newServiceFixture(t, staticRoster{})

	err := f.svc.SaveCurriculum(t.Context(), "c1", curriculum.Curriculum{NumberOfDays: 0})
	if err == nil {
		t.Fatal("SaveCurriculum() should reject an invalid curriculum")
	}
	if len(f.events) != 0 {
		t.Errorf("events published for a rejected save: %+v", f.events)
	}
}

func TestService_ShrinkGuard(t *testing.T) {
	f := newServiceFixture(t, staticRoster{"c1": {"a@x", "b@x"}})
	ctx := t.Context()

	if err := f.svc.SaveCurriculum(ctx, "c1", oneSlotCurriculum(10)); err != nil {
		t.Fatalf("SaveCurriculum() error = %v", err)
	}

	// Student a has finished days 1 through 4; b only day 1.
	f.complete(t, "a@x", "c1",
		"day-1-activity-0", "day-2-activity-0", "day-3-activity-0", "day-4-activity-0")
	f.complete(t, "b@x", "c1", "day-1-activity-0")

	if got, err := f.svc.MaxCompletedDays(ctx, "c1"); err != nil || got != 4 {
		t.Fatalf("MaxCompletedDays() = %d, %v, want 4", got, err)
	}

	err := f.svc.SaveCurriculum(ctx, "c1", oneSlotCurriculum(3))
	if !errors.Is(err, curriculum.ErrCurriculumShrink) {
		t.Errorf("shrink to 3 days: error = %v, want ErrCurriculumShrink", err)
	}

	// Shrinking to exactly the furthest completed day is allowed.
	if err := f.svc.SaveCurriculum(ctx, "c1", oneSlotCurriculum(4)); err != nil {
		t.Errorf("shrink to 4 days: error = %v", err)
	}
}

func TestService_ShrinkGuard_EmptyClass(t *testing.T) {
	f := newServiceFixture(t, staticRoster{})
	ctx := t.Context()

	if err := f.svc.SaveCurriculum(ctx, "c1", oneSlotCurriculum(10)); err != nil {
		t.Fatalf("SaveCurriculum() error = %v", err)
	}
	if err := f.svc.SaveCurriculum(ctx, "c1", oneSlotCurriculum(1)); err != nil {
		t.Errorf("shrink with no students: error = %v", err)
	}
}

func TestService_StartAndCancelDay(t *testing.T) {
	f := newServiceFixture(t, staticRoster{"c1": {"a@x"}})
	ctx := t.Context()

	if err := f.svc.SaveCurriculum(ctx, "c1", oneSlotCurriculum(10)); err != nil {
		t.Fatalf("SaveCurriculum() error = %v", err)
	}

	if err := f.svc.StartDay(ctx, "c1", 5); err != nil {
		t.Fatalf("StartDay() error = %v", err)
	}
	days, err := f.svc.Days(ctx, "a@x", "c1")
	if err != nil {
		t.Fatalf("Days() error = %v", err)
	}
	if days[4].Locked {
		t.Error("day 5 still locked after StartDay")
	}
	if days[1].Locked != true {
		t.Error("day 2 should remain locked")
	}

	if err := f.svc.CancelDay(ctx, "c1", 5); err != nil {
		t.Fatalf("CancelDay() error = %v", err)
	}
	days, _ = f.svc.Days(ctx, "a@x", "c1")
	if !days[4].Locked {
		t.Error("day 5 unlocked after CancelDay")
	}

	if err := f.svc.StartDay(ctx, "c1", 11); err == nil {
		t.Error("StartDay() past the curriculum end should fail")
	}

	types := []string{}
	for _, e := range f.events {
		types = append(types, e.Type)
	}
	want := []string{
		curriculum.EventCurriculumUpdated,
		curriculum.EventDayStarted,
		curriculum.EventDayCancelled,
	}
	if len(types) != len(want) {
		t.Fatalf("event types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, types[i], want[i])
		}
	}
}

func TestService_StudentProgress(t *testing.T) {
	f := newServiceFixture(t, staticRoster{"c1": {"a@x"}})
	ctx := t.Context()

	if err := f.svc.SaveCurriculum(ctx, "c1", oneSlotCurriculum(10)); err != nil {
		t.Fatalf("SaveCurriculum() error = %v", err)
	}
	f.complete(t, "a@x", "c1", "day-1-activity-0", "day-2-activity-0")

	p, err := f.svc.StudentProgress(ctx, "a@x", "c1")
	if err != nil {
		t.Fatalf("StudentProgress() error = %v", err)
	}
	if p.CompletedDays != 2 || p.TotalDays != 10 {
		t.Errorf("StudentProgress() = %+v, want 2 of 10", p)
	}
}

func TestService_ApplyOverride_Single(t *testing.T) {
	f := newServiceFixture(t, staticRoster{})
	ctx := t.Context()

	if err := f.svc.SaveCurriculum(ctx, "c1", oneSlotCurriculum(10)); err != nil {
		t.Fatalf("SaveCurriculum() error = %v", err)
	}
	seedCatalog(f.cat, catalog.TypeVocab, 1, 5)

	act := curriculum.Activity{ID: "day-3-activity-0", Type: catalog.TypeVocab, Level: 1}
	if err := f.svc.ApplyOverride(ctx, "c1", 3, act, "vocab-1-005", curriculum.ScopeSingle); err != nil {
		t.Fatalf("ApplyOverride() error = %v", err)
	}

	r := f.svc.Resolver()
	item, err := r.Resolve(ctx, "c1", 3, 0)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if item.ID != "vocab-1-005" {
		t.Errorf("day 3 = %s, want vocab-1-005", item.ID)
	}

	// Later days are untouched.
	item, _ = r.Resolve(ctx, "c1", 4, 0)
	if item.ID != "vocab-1-004" {
		t.Errorf("day 4 = %s, want vocab-1-004", item.ID)
	}
}

func TestService_ApplyOverride_Sequential(t *testing.T) {
	f := newServiceFixture(t, staticRoster{})
	ctx := t.Context()

	if err := f.svc.SaveCurriculum(ctx, "c1", oneSlotCurriculum(6)); err != nil {
		t.Fatalf("SaveCurriculum() error = %v", err)
	}
	seedCatalog(f.cat, catalog.TypeVocab, 1, 4)

	// From day 3 onward, restart the rotation at item 001.
	act := curriculum.Activity{ID: "day-3-activity-0", Type: catalog.TypeVocab, Level: 1}
	if err := f.svc.ApplyOverride(ctx, "c1", 3, act, "vocab-1-001", curriculum.ScopeSequential); err != nil {
		t.Fatalf("ApplyOverride() error = %v", err)
	}

	r := f.svc.Resolver()
	want := map[int]string{
		1: "vocab-1-001", // before the override, plain rotation
		2: "vocab-1-002",
		3: "vocab-1-001", // re-based here
		4: "vocab-1-002",
		5: "vocab-1-003",
		6: "vocab-1-004",
	}
	for day, wantID := range want {
		item, err := r.Resolve(ctx, "c1", day, 0)
		if err != nil {
			t.Fatalf("Resolve(day %d) error = %v", day, err)
		}
		if item.ID != wantID {
			t.Errorf("day %d = %s, want %s", day, item.ID, wantID)
		}
	}
}

func TestService_ApplyOverride_Sequential_UnknownMaterialIsNoOp(t *testing.T) {
	f := newServiceFixture(t, staticRoster{})
	ctx := t.Context()

	if err := f.svc.SaveCurriculum(ctx, "c1", oneSlotCurriculum(6)); err != nil {
		t.Fatalf("SaveCurriculum() error = %v", err)
	}
	seedCatalog(f.cat, catalog.TypeVocab, 1, 4)

	act := curriculum.Activity{ID: "day-3-activity-0", Type: catalog.TypeVocab, Level: 1}
	if err := f.svc.ApplyOverride(ctx, "c1", 3, act, "vocab-1-gone", curriculum.ScopeSequential); err != nil {
		t.Fatalf("ApplyOverride() error = %v", err)
	}

	overrides, _ := f.store.Overrides(ctx, "c1")
	if len(overrides) != 0 {
		t.Errorf("overrides = %v, want none for an unknown material", overrides)
	}
}

func TestService_ApplyOverride_Sequential_SlotGoneIsNoOp(t *testing.T) {
	f := newServiceFixture(t, staticRoster{})
	ctx := t.Context()

	if err := f.svc.SaveCurriculum(ctx, "c1", oneSlotCurriculum(6)); err != nil {
		t.Fatalf("SaveCurriculum() error = %v", err)
	}
	seedCatalog(f.cat, catalog.TypeVocab, 1, 4)
	seedCatalog(f.cat, catalog.TypeReading, 2, 4)

	// The activity references a (type, level) the class format no longer has.
	act := curriculum.Activity{ID: "day-3-activity-0", Type: catalog.TypeReading, Level: 2}
	if err := f.svc.ApplyOverride(ctx, "c1", 3, act, "reading-2-001", curriculum.ScopeSequential); err != nil {
		t.Fatalf("ApplyOverride() error = %v", err)
	}

	overrides, _ := f.store.Overrides(ctx, "c1")
	if len(overrides) != 0 {
		t.Errorf("overrides = %v, want none when the slot left the format", overrides)
	}
}
