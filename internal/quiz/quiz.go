// Package quiz assembles the multiple-choice quizzes students sit for an
// activity, and scores star awards for self-study vocab sets.
package quiz

import (
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/oneday-english/oneday/internal/catalog"
)

// maxQuestions caps a single quiz sitting.
const maxQuestions = 10

// optionCount is the fixed choice count per question.
const optionCount = 4

// dummyPool pads distractor options when a material has too few answers to
// borrow from.
var dummyPool = []string{"Apple", "Book", "Car", "Desk", "Run", "Study"}

// Question is one multiple-choice question as presented to a student.
type Question struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// Quiz is a ready-to-sit question sequence built from one material item.
type Quiz struct {
	MaterialID string     `json:"material_id"`
	Title      string     `json:"title"`
	Questions  []Question `json:"questions"`
}

// Options tunes quiz assembly.
type Options struct {
	// Start rotates the question order to begin at this index.
	Start int
	// Pin names the prompt of a question forced into first position, for
	// teacher-picked starting points. Unknown prompts are ignored.
	Pin string
	// Rand drives option shuffling. Defaults to a time-seeded source.
	Rand *rand.Rand
}

// Build assembles a quiz from a resolved material item. Vocab and grammar
// items carry their question set directly; reading and listening items use
// their comprehension questions. Questions without prepared options get
// generated ones.
func Build(item catalog.Item, opts Options) (Quiz, error) {
	source := item.Questions
	if len(source) == 0 {
		source = item.MCQs
	}
	if len(source) == 0 {
		return Quiz{}, fmt.Errorf("material %s has no questions", item.ID)
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	ordered := rotate(source, opts.Start)
	if opts.Pin != "" {
		ordered = pinFirst(ordered, opts.Pin)
	}
	if len(ordered) > maxQuestions {
		ordered = ordered[:maxQuestions]
	}

	pool := answerPool(source)
	questions := make([]Question, len(ordered))
	for i, q := range ordered {
		options := q.Options
		if len(options) == 0 {
			options = generateOptions(q.Answer, pool, rng)
		}
		questions[i] = Question{
			Prompt:  q.Prompt,
			Options: options,
			Answer:  q.Answer,
		}
	}

	return Quiz{
		MaterialID: item.ID,
		Title:      item.Title,
		Questions:  questions,
	}, nil
}

// rotate returns qs reordered to start at index start, wrapping around.
func rotate(qs []catalog.MCQ, start int) []catalog.MCQ {
	n := len(qs)
	start = ((start % n) + n) % n

	out := make([]catalog.MCQ, 0, n)
	out = append(out, qs[start:]...)
	out = append(out, qs[:start]...)
	return out
}

// pinFirst moves the question with the given prompt to the front, keeping
// the rest in order.
func pinFirst(qs []catalog.MCQ, prompt string) []catalog.MCQ {
	for i, q := range qs {
		if q.Prompt != prompt {
			continue
		}
		out := make([]catalog.MCQ, 0, len(qs))
		out = append(out, q)
		out = append(out, qs[:i]...)
		out = append(out, qs[i+1:]...)
		return out
	}
	return qs
}

// answerPool collects the distinct answers of a question set, the distractor
// source for generated options.
func answerPool(qs []catalog.MCQ) []string {
	seen := make(map[string]struct{}, len(qs))
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		if _, ok := seen[q.Answer]; ok {
			continue
		}
		seen[q.Answer] = struct{}{}
		out = append(out, q.Answer)
	}
	return out
}

// generateOptions builds a shuffled choice list: the correct answer plus
// distractors drawn from the pool, padded from the dummy pool when the
// material is too small.
func generateOptions(answer string, pool []string, rng *rand.Rand) []string {
	options := []string{answer}

	candidates := make([]string, 0, len(pool))
	for _, c := range pool {
		if c != answer {
			candidates = append(candidates, c)
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	for _, c := range candidates {
		if len(options) == optionCount {
			break
		}
		options = append(options, c)
	}

	for _, d := range dummyPool {
		if len(options) == optionCount {
			break
		}
		if d != answer && !slices.Contains(options, d) {
			options = append(options, d)
		}
	}

	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

// Score counts correct answers in a submitted answer sheet. Missing entries
// count as wrong.
func Score(q Quiz, answers []string) int {
	score := 0
	for i, question := range q.Questions {
		if i < len(answers) && answers[i] == question.Answer {
			score++
		}
	}
	return score
}

// AwardStars converts a self-study vocab result into stars. Only the
// five-question set size awards stars: a perfect run earns 3, one miss
// earns 2, anything else earns 1.
func AwardStars(score, total int) int {
	if total != 5 {
		return 0
	}
	switch score {
	case 5:
		return 3
	case 4:
		return 2
	default:
		return 1
	}
}
