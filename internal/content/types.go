// Package content defines the lesson and question model shared by the catalog,
// the grading engine and assessment sessions.
package content

import (
	"fmt"
	"strings"
)

// Difficulty is the authored difficulty level of a lesson.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// ParseDifficulty maps an authored level onto a Difficulty, ignoring case.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return Beginner, nil
	case "intermediate":
		return Intermediate, nil
	case "advanced":
		return Advanced, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

// Valid reports whether d is one of the known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// Lesson is a unit of curriculum content with its assessment questions.
type Lesson struct {
	ID          int
	Title       string
	Description string
	Month       int
	Week        int
	Difficulty  Difficulty
	Category    string
	// Content is the formatted lesson body. It is passed through untouched.
	Content   string
	Questions []Question
}

// Question returns the lesson question with the given id.
func (l Lesson) Question(id string) (Question, bool) {
	for _, q := range l.Questions {
		if q.QuestionID() == id {
			return q, true
		}
	}
	return nil, false
}

// Less orders lessons by month, then week, then id.
func Less(a, b Lesson) bool {
	if a.Month != b.Month {
		return a.Month < b.Month
	}
	if a.Week != b.Week {
		return a.Week < b.Week
	}
	return a.ID < b.ID
}

// Compare is the three-way form of Less, for slices.SortFunc.
func Compare(a, b Lesson) int {
	switch {
	case Less(a, b):
		return -1
	case Less(b, a):
		return 1
	default:
		return 0
	}
}
