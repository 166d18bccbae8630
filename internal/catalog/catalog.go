// Package catalog holds the material catalog: ordered collections of
// interchangeable content items per activity type and difficulty level.
package catalog

import "context"

// ActivityType identifies the kind of activity a material serves.
type ActivityType string

const (
	TypeVocab     ActivityType = "vocab"
	TypeListening ActivityType = "listening"
	TypeReading   ActivityType = "reading"
	TypeGrammar   ActivityType = "grammar"

	// TypeEmpty marks a placeholder slot in a class format. It occupies a
	// positional index but has no materials behind it.
	TypeEmpty ActivityType = "empty"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case TypeVocab, TypeListening, TypeReading, TypeGrammar, TypeEmpty:
		return true
	}
	return false
}

// MCQ is a single multiple-choice question.
type MCQ struct {
	Prompt  string   `json:"prompt" yaml:"prompt"`
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
	Answer  string   `json:"answer" yaml:"answer"`
}

// Item is one content unit for a given (type, level): a question set for
// vocab/grammar, or a passage/script with comprehension questions for
// reading/listening. Items within a level are totally ordered by Position
// (ties broken by ID) to support deterministic rotation.
type Item struct {
	ID       string       `json:"id" yaml:"id"`
	Type     ActivityType `json:"type" yaml:"type"`
	Level    int          `json:"level" yaml:"level"`
	Position int          `json:"position" yaml:"position"`
	Title    string       `json:"title" yaml:"title"`

	// Vocab and grammar question sets.
	Questions []MCQ `json:"questions,omitempty" yaml:"questions,omitempty"`

	// Reading passage or listening script, with comprehension questions.
	Passage string `json:"passage,omitempty" yaml:"passage,omitempty"`
	Script  string `json:"script,omitempty" yaml:"script,omitempty"`
	MCQs    []MCQ  `json:"mcqs,omitempty" yaml:"mcqs,omitempty"`

	// Vocabulary referenced by the unit.
	VocabIDs []string `json:"vocab_ids,omitempty" yaml:"vocab_ids,omitempty"`
}

// Catalog is a read-only view over the material collections.
type Catalog interface {
	// Items returns the ordered item list for (typ, level). An unknown
	// combination yields an empty slice, not an error.
	Items(ctx context.Context, typ ActivityType, level int) ([]Item, error)
}

// Find returns the item with the given id from items, if present.
func Find(items []Item, id string) (Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
