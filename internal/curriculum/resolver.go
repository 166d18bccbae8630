package curriculum

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oneday-english/oneday/internal/catalog"
)

// Resolver maps a (class, day, slot) position to concrete catalog material.
// Resolution is a pure function of curriculum shape, day/slot position, and
// catalog contents; there is no randomness and no hidden state.
type Resolver struct {
	store   Store
	catalog catalog.Catalog
}

// NewResolver creates a resolver over the given store and catalog.
func NewResolver(store Store, cat catalog.Catalog) *Resolver {
	return &Resolver{store: store, catalog: cat}
}

// MaterialIndex computes the rotation index for the slot at slotIndex on
// day. Distinct slots sharing a (type, level) within one day get consecutive
// indices, and successive days advance past all of them, so same-day slots
// never collide and the catalog is cycled before any item repeats.
func MaterialIndex(format []Slot, day, slotIndex int) int {
	slot := format[slotIndex]

	sameSlotCount := 0
	for _, s := range format {
		if s.Type == slot.Type && s.Level == slot.Level {
			sameSlotCount++
		}
	}

	ordinal := 0
	for i := 0; i < slotIndex; i++ {
		if format[i].Type == slot.Type && format[i].Level == slot.Level {
			ordinal++
		}
	}

	return (day-1)*sameSlotCount + ordinal
}

// Resolve returns the material item a student sees for the slot at slotIndex
// on day. A teacher override wins when it still references live catalog
// content; a stale override silently falls back to the rotation.
func (r *Resolver) Resolve(ctx context.Context, classID string, day, slotIndex int) (catalog.Item, error) {
	cur, err := r.store.Curriculum(ctx, classID)
	if err != nil {
		return catalog.Item{}, err
	}

	if day < 1 || day > cur.NumberOfDays {
		return catalog.Item{}, fmt.Errorf("day %d is outside 1..%d", day, cur.NumberOfDays)
	}
	if slotIndex < 0 || slotIndex >= len(cur.ClassFormat) {
		return catalog.Item{}, fmt.Errorf("slot index %d is outside the class format", slotIndex)
	}
	slot := cur.ClassFormat[slotIndex]
	if slot.Type == catalog.TypeEmpty {
		return catalog.Item{}, fmt.Errorf("slot %d on day %d is empty", slotIndex, day)
	}

	items, err := r.catalog.Items(ctx, slot.Type, slot.Level)
	if err != nil {
		return catalog.Item{}, fmt.Errorf("load materials: %w", err)
	}

	activityID := ActivityID(day, slotIndex)
	overrides, err := r.store.Overrides(ctx, classID)
	if err != nil {
		return catalog.Item{}, fmt.Errorf("load overrides: %w", err)
	}

	if materialID, ok := overrides[activityID]; ok {
		if item, found := catalog.Find(items, materialID); found {
			return item, nil
		}
		slog.Debug("stale override ignored",
			"class_id", classID,
			"activity_id", activityID,
			"material_id", materialID,
		)
	}

	if len(items) == 0 {
		return catalog.Item{}, fmt.Errorf("%w for %s level %d", ErrNoMaterial, slot.Type, slot.Level)
	}

	idx := MaterialIndex(cur.ClassFormat, day, slotIndex)
	return items[idx%len(items)], nil
}
