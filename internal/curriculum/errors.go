package curriculum

import "errors"

var (
	// ErrNotFound indicates no curriculum exists for the class.
	ErrNotFound = errors.New("curriculum not found")

	// ErrNoMaterial indicates the catalog holds no items for the requested
	// type and level. Fatal to the single activity-start request.
	ErrNoMaterial = errors.New("no material available")

	// ErrCurriculumShrink indicates a save would reduce the day count below
	// the furthest day any student has completed.
	ErrCurriculumShrink = errors.New("curriculum shorter than completed progress")
)
