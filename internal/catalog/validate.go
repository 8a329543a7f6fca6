package catalog

import (
	"fmt"
	"strings"

	"github.com/p-n-ai/pai-course/internal/content"
)

// ValidationError reports malformed catalog content. It is a load-time error:
// a catalog that fails validation is never returned.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid content: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid content: %d problems: %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// Validate checks catalog-wide and per-lesson invariants: unique positive lesson
// ids, positive month and week, a known difficulty, unique question ids within a
// lesson, and each question's own invariant.
func Validate(lessons []content.Lesson) error {
	verr := &ValidationError{}
	seen := make(map[int]bool, len(lessons))

	for _, l := range lessons {
		if l.ID <= 0 {
			verr.add("lesson %d: id must be positive", l.ID)
		}
		if seen[l.ID] {
			verr.add("lesson %d: duplicate lesson id", l.ID)
		}
		seen[l.ID] = true

		if l.Month <= 0 || l.Week <= 0 {
			verr.add("lesson %d: month and week must be positive, got month=%d week=%d", l.ID, l.Month, l.Week)
		}
		if !l.Difficulty.Valid() {
			verr.add("lesson %d: unknown difficulty %q", l.ID, l.Difficulty)
		}
		if strings.TrimSpace(l.Title) == "" {
			verr.add("lesson %d: title is empty", l.ID)
		}

		qids := make(map[string]bool, len(l.Questions))
		for i, q := range l.Questions {
			if q == nil {
				verr.add("lesson %d: question %d is nil", l.ID, i)
				continue
			}
			if qids[q.QuestionID()] {
				verr.add("lesson %d: duplicate question id %q", l.ID, q.QuestionID())
			}
			qids[q.QuestionID()] = true

			if err := q.Validate(); err != nil {
				verr.add("lesson %d: question %q: %s", l.ID, q.QuestionID(), flatten(err))
			}
		}
	}

	return verr.orNil()
}

// flatten joins the lines of an errors.Join result.
func flatten(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", ", ")
}
