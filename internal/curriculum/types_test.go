package curriculum_test

import (
	"testing"

	"github.com/oneday-english/oneday/internal/catalog"
	"github.com/oneday-english/oneday/internal/curriculum"
)

func TestCurriculum_Validate(t *testing.T) {
	valid := curriculum.Curriculum{
		NumberOfDays: 20,
		ClassFormat: []curriculum.Slot{
			{Type: catalog.TypeVocab, Level: 1},
			{Type: catalog.TypeReading, Level: 3},
		},
	}

	tests := []struct {
		name    string
		mutate  func(*curriculum.Curriculum)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(c *curriculum.Curriculum) {},
		},
		{
			name:    "zero days",
			mutate:  func(c *curriculum.Curriculum) { c.NumberOfDays = 0 },
			wantErr: true,
		},
		{
			name:    "empty format",
			mutate:  func(c *curriculum.Curriculum) { c.ClassFormat = nil },
			wantErr: true,
		},
		{
			name: "too many slots",
			mutate: func(c *curriculum.Curriculum) {
				for len(c.ClassFormat) <= 6 {
					c.ClassFormat = append(c.ClassFormat, curriculum.Slot{Type: catalog.TypeVocab, Level: 1})
				}
			},
			wantErr: true,
		},
		{
			name: "unknown activity type",
			mutate: func(c *curriculum.Curriculum) {
				c.ClassFormat[0].Type = "karaoke"
			},
			wantErr: true,
		},
		{
			name: "level out of range",
			mutate: func(c *curriculum.Curriculum) {
				c.ClassFormat[0].Level = 10
			},
			wantErr: true,
		},
		{
			name: "empty slot ignores level",
			mutate: func(c *curriculum.Curriculum) {
				c.ClassFormat[0] = curriculum.Slot{Type: catalog.TypeEmpty}
			},
		},
		{
			name: "started day out of range",
			mutate: func(c *curriculum.Curriculum) {
				c.StartedDays = []int{21}
			},
			wantErr: true,
		},
		{
			name: "started day in range",
			mutate: func(c *curriculum.Curriculum) {
				c.StartedDays = []int{5}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := valid
			cur.ClassFormat = append([]curriculum.Slot(nil), valid.ClassFormat...)
			tt.mutate(&cur)

			err := cur.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestActivityID_RoundTrip(t *testing.T) {
	id := curriculum.ActivityID(12, 3)
	if id != "day-12-activity-3" {
		t.Fatalf("ActivityID(12, 3) = %q", id)
	}

	day, slot, err := curriculum.ParseActivityID(id)
	if err != nil {
		t.Fatalf("ParseActivityID() error = %v", err)
	}
	if day != 12 || slot != 3 {
		t.Errorf("ParseActivityID() = (%d, %d), want (12, 3)", day, slot)
	}
}

func TestParseActivityID_Malformed(t *testing.T) {
	bad := []string{
		"",
		"day-1",
		"day-1-activity",
		"activity-1-day-2",
		"day-x-activity-1",
		"day-1-activity-x",
		"day-0-activity-1",
		"day-1-activity--1",
	}
	for _, id := range bad {
		if _, _, err := curriculum.ParseActivityID(id); err == nil {
			t.Errorf("ParseActivityID(%q) should fail", id)
		}
	}
}

func TestCurriculum_StartAndCancelDay(t *testing.T) {
	cur := curriculum.Curriculum{NumberOfDays: 10}

	cur.StartDay(5)
	cur.StartDay(2)
	cur.StartDay(5) // idempotent

	if got := cur.StartedDays; len(got) != 2 || got[0] != 2 || got[1] != 5 {
		t.Fatalf("StartedDays = %v, want [2 5]", got)
	}
	if !cur.DayStarted(5) || cur.DayStarted(3) {
		t.Error("DayStarted() mismatch")
	}

	cur.CancelDay(5)
	if cur.DayStarted(5) {
		t.Error("day 5 still started after cancel")
	}
	cur.CancelDay(7) // cancelling a never-started day is a no-op
	if len(cur.StartedDays) != 1 {
		t.Errorf("StartedDays = %v, want [2]", cur.StartedDays)
	}
}

func TestCurriculum_Activities_IncludesEmptySlots(t *testing.T) {
	cur := curriculum.Curriculum{
		NumberOfDays: 5,
		ClassFormat: []curriculum.Slot{
			{Type: catalog.TypeVocab, Level: 2},
			{Type: catalog.TypeEmpty},
			{Type: catalog.TypeGrammar, Level: 4},
		},
	}

	acts := cur.Activities(3)
	if len(acts) != 3 {
		t.Fatalf("len(acts) = %d, want 3", len(acts))
	}
	if acts[0].ID != "day-3-activity-0" || acts[2].ID != "day-3-activity-2" {
		t.Errorf("ids = %q, %q", acts[0].ID, acts[2].ID)
	}
	if acts[1].Type != catalog.TypeEmpty {
		t.Errorf("slot 1 type = %q, want empty placeholder", acts[1].Type)
	}
}
