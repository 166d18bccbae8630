// Package curriculum implements day-based class curricula: the activity
// format shared by every day, the deterministic rotation that maps a
// (day, slot) position to catalog material, teacher overrides, and the
// day-unlock rules driven by student completions.
package curriculum

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/oneday-english/oneday/internal/catalog"
)

const (
	minFormatSlots = 1
	maxFormatSlots = 6
	minLevel       = 1
	maxLevel       = 9
)

// Slot is one fixed position in a class's activity format, characterized by
// activity type and difficulty level.
type Slot struct {
	Type  catalog.ActivityType `json:"type"`
	Level int                  `json:"level"`
}

// Curriculum is the per-class plan: a fixed format repeated for every day,
// the number of days it spans, and the days a teacher has explicitly opened.
type Curriculum struct {
	NumberOfDays int    `json:"number_of_days"`
	ClassFormat  []Slot `json:"class_format"`
	StartedDays  []int  `json:"started_days,omitempty"`
}

// Validate checks the structural invariants of a curriculum.
func (c Curriculum) Validate() error {
	if c.NumberOfDays < 1 {
		return fmt.Errorf("number of days must be at least 1, got %d", c.NumberOfDays)
	}
	if len(c.ClassFormat) < minFormatSlots || len(c.ClassFormat) > maxFormatSlots {
		return fmt.Errorf("class format must have %d to %d slots, got %d",
			minFormatSlots, maxFormatSlots, len(c.ClassFormat))
	}
	for i, slot := range c.ClassFormat {
		if !slot.Type.Valid() {
			return fmt.Errorf("slot %d: unknown activity type %q", i, slot.Type)
		}
		if slot.Type == catalog.TypeEmpty {
			continue
		}
		if slot.Level < minLevel || slot.Level > maxLevel {
			return fmt.Errorf("slot %d: level must be %d to %d, got %d",
				i, minLevel, maxLevel, slot.Level)
		}
	}
	for _, d := range c.StartedDays {
		if d < 1 || d > c.NumberOfDays {
			return fmt.Errorf("started day %d is outside 1..%d", d, c.NumberOfDays)
		}
	}
	return nil
}

// DayStarted reports whether a teacher has explicitly opened day.
func (c Curriculum) DayStarted(day int) bool {
	return slices.Contains(c.StartedDays, day)
}

// StartDay adds day to the started set.
func (c *Curriculum) StartDay(day int) {
	if c.DayStarted(day) {
		return
	}
	c.StartedDays = append(c.StartedDays, day)
	slices.Sort(c.StartedDays)
}

// CancelDay removes day from the started set.
func (c *Curriculum) CancelDay(day int) {
	c.StartedDays = slices.DeleteFunc(c.StartedDays, func(d int) bool { return d == day })
}

// Activity is a concrete (day, slot) pair with its derived stable identifier.
type Activity struct {
	ID    string               `json:"id"`
	Type  catalog.ActivityType `json:"type"`
	Level int                  `json:"level"`
}

// ActivityID derives the stable identifier for a (day, slot) pair. The id is
// positional: reordering the class format changes the meaning of every
// previously derived id, which invalidates stored overrides and completion
// matching. Known limitation, kept for compatibility with stored data.
func ActivityID(day, slotIndex int) string {
	return fmt.Sprintf("day-%d-activity-%d", day, slotIndex)
}

// ParseActivityID extracts the day number and slot index from an activity id.
func ParseActivityID(id string) (day, slotIndex int, err error) {
	parts := strings.Split(id, "-")
	if len(parts) != 4 || parts[0] != "day" || parts[2] != "activity" {
		return 0, 0, fmt.Errorf("malformed activity id %q", id)
	}
	day, err = strconv.Atoi(parts[1])
	if err != nil || day < 1 {
		return 0, 0, fmt.Errorf("malformed activity id %q", id)
	}
	slotIndex, err = strconv.Atoi(parts[3])
	if err != nil || slotIndex < 0 {
		return 0, 0, fmt.Errorf("malformed activity id %q", id)
	}
	return day, slotIndex, nil
}

// Activities expands the class format into the concrete activities of day.
// Empty slots are included so positional indices stay stable; callers skip
// them for resolution and completion checks.
func (c Curriculum) Activities(day int) []Activity {
	acts := make([]Activity, len(c.ClassFormat))
	for i, slot := range c.ClassFormat {
		acts[i] = Activity{
			ID:    ActivityID(day, i),
			Type:  slot.Type,
			Level: slot.Level,
		}
	}
	return acts
}

// OverrideScope selects how far a teacher's material choice propagates.
type OverrideScope string

const (
	// ScopeSingle pins material for exactly one concrete activity.
	ScopeSingle OverrideScope = "single"
	// ScopeSequential re-bases the rotation from the chosen item forward
	// across all remaining days.
	ScopeSequential OverrideScope = "sequential"
)

// Override pins a specific material item for one concrete activity.
type Override struct {
	ClassID    string
	ActivityID string
	MaterialID string
}
