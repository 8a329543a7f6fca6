// Package catalog holds the validated, read-only collection of lessons.
//
// A Catalog is built once at startup and never mutated afterwards, so it can be
// shared by any number of goroutines without locking.
package catalog

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/crypto/blake2b"

	"github.com/p-n-ai/pai-course/internal/content"
)

// Catalog is an ordered, id-indexed set of lessons.
type Catalog struct {
	lessons     []content.Lesson
	byID        map[int]int
	fingerprint string
}

// New validates lessons and builds a catalog ordered by month, week and id.
// All content problems are reported together in a *ValidationError.
func New(lessons []content.Lesson) (*Catalog, error) {
	if err := Validate(lessons); err != nil {
		return nil, err
	}

	sorted := make([]content.Lesson, len(lessons))
	for i, l := range lessons {
		sorted[i] = cloneLesson(l)
	}
	slices.SortStableFunc(sorted, content.Compare)

	byID := make(map[int]int, len(sorted))
	for i, l := range sorted {
		byID[l.ID] = i
	}

	fp, err := fingerprint(sorted)
	if err != nil {
		return nil, fmt.Errorf("fingerprinting catalog: %w", err)
	}

	return &Catalog{lessons: sorted, byID: byID, fingerprint: fp}, nil
}

// All returns copies of every lesson in catalog order.
func (c *Catalog) All() []content.Lesson {
	out := make([]content.Lesson, len(c.lessons))
	for i, l := range c.lessons {
		out[i] = cloneLesson(l)
	}
	return out
}

// Lesson returns the lesson with the given id.
func (c *Catalog) Lesson(id int) (content.Lesson, bool) {
	i, ok := c.byID[id]
	if !ok {
		return content.Lesson{}, false
	}
	return cloneLesson(c.lessons[i]), true
}

// ByMonth returns the lessons scheduled in month, in catalog order.
func (c *Catalog) ByMonth(month int) []content.Lesson {
	var out []content.Lesson
	for _, l := range c.lessons {
		if l.Month == month {
			out = append(out, cloneLesson(l))
		}
	}
	return out
}

// Months returns the distinct months that have lessons, ascending.
func (c *Catalog) Months() []int {
	var months []int
	for _, l := range c.lessons {
		if n := len(months); n == 0 || months[n-1] != l.Month {
			months = append(months, l.Month)
		}
	}
	return months
}

// Len returns the number of lessons.
func (c *Catalog) Len() int {
	return len(c.lessons)
}

// Fingerprint identifies the catalog content. Catalogs built from the same
// lessons have the same fingerprint regardless of input order.
func (c *Catalog) Fingerprint() string {
	return c.fingerprint
}

func fingerprint(lessons []content.Lesson) (string, error) {
	docs := make([]lessonDoc, len(lessons))
	for i, l := range lessons {
		docs[i] = docFromLesson(l)
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func cloneLesson(l content.Lesson) content.Lesson {
	if l.Questions == nil {
		return l
	}
	qs := make([]content.Question, len(l.Questions))
	for i, q := range l.Questions {
		switch q := q.(type) {
		case content.SingleChoice:
			q.Options = slices.Clone(q.Options)
			qs[i] = q
		case content.Descriptive:
			q.Keywords = slices.Clone(q.Keywords)
			qs[i] = q
		default:
			qs[i] = q
		}
	}
	l.Questions = qs
	return l
}

func logLoaded(c *Catalog, source string) {
	questions := 0
	for _, l := range c.lessons {
		questions += len(l.Questions)
	}
	slog.Info("catalog loaded",
		"source", source,
		"lessons", c.Len(),
		"questions", questions,
		"fingerprint", c.fingerprint[:12],
	)
}
