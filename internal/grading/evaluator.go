// Package grading decides whether a submitted answer to a question is acceptable.
//
// Single-choice questions are graded by exact, case-sensitive match against the
// correct option after whitespace normalisation. Descriptive questions are graded
// by keyword coverage: the fraction of expected keywords that occur, case-insensitively,
// as substrings of the answer.
package grading

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/p-n-ai/pai-course/internal/content"
)

// DefaultPassThreshold is the keyword coverage a descriptive answer needs to be accepted.
const DefaultPassThreshold = 0.5

// ErrInvalidQuestion is returned when a question fails its own invariant.
var ErrInvalidQuestion = errors.New("invalid question")

// Config holds the grading policy.
type Config struct {
	// PassThreshold is the minimum keyword coverage, in (0, 1], for a
	// descriptive answer to count as correct.
	PassThreshold float64
}

// Result is the outcome of grading one submission.
type Result struct {
	QuestionID      string       `json:"question_id"`
	Kind            content.Kind `json:"kind"`
	IsCorrect       bool         `json:"is_correct"`
	Score           float64      `json:"score"`
	MatchedKeywords []string     `json:"matched_keywords,omitempty"`
	MissingKeywords []string     `json:"missing_keywords,omitempty"`
	Explanation     string       `json:"explanation"`
}

// Evaluator grades answers. It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	passThreshold float64
}

// New creates an evaluator. An out-of-range threshold falls back to DefaultPassThreshold.
func New(cfg Config) *Evaluator {
	threshold := cfg.PassThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultPassThreshold
	}
	return &Evaluator{passThreshold: threshold}
}

// PassThreshold returns the coverage needed to accept a descriptive answer.
func (e *Evaluator) PassThreshold() float64 {
	return e.passThreshold
}

// Evaluate grades answer against q. Any answer string is a legal submission;
// an error is returned only when q itself is malformed.
func (e *Evaluator) Evaluate(q content.Question, answer string) (Result, error) {
	if q == nil {
		return Result{}, fmt.Errorf("%w: nil question", ErrInvalidQuestion)
	}
	if err := q.Validate(); err != nil {
		slog.Warn("refusing to grade invalid question",
			"question_id", q.QuestionID(),
			"error", err,
		)
		return Result{}, fmt.Errorf("%w %s: %w", ErrInvalidQuestion, q.QuestionID(), err)
	}

	switch q := q.(type) {
	case content.SingleChoice:
		return e.evaluateSingleChoice(q, answer), nil
	case content.Descriptive:
		return e.evaluateDescriptive(q, answer), nil
	default:
		return Result{}, fmt.Errorf("%w %s: unsupported kind %q", ErrInvalidQuestion, q.QuestionID(), q.Kind())
	}
}

func (e *Evaluator) evaluateSingleChoice(q content.SingleChoice, answer string) Result {
	correct := content.NormalizeChoice(answer) == content.NormalizeChoice(q.CorrectAnswer)
	score := 0.0
	if correct {
		score = 1.0
	}
	return Result{
		QuestionID:  q.ID,
		Kind:        content.KindSingleChoice,
		IsCorrect:   correct,
		Score:       score,
		Explanation: q.Explanation,
	}
}

func (e *Evaluator) evaluateDescriptive(q content.Descriptive, answer string) Result {
	haystack := content.FoldText(answer)

	matched := make([]string, 0, len(q.Keywords))
	missing := make([]string, 0, len(q.Keywords))
	for _, k := range q.Keywords {
		if strings.Contains(haystack, content.FoldText(k)) {
			matched = append(matched, k)
		} else {
			missing = append(missing, k)
		}
	}

	score := float64(len(matched)) / float64(len(q.Keywords))
	return Result{
		QuestionID:      q.ID,
		Kind:            content.KindDescriptive,
		IsCorrect:       score >= e.passThreshold,
		Score:           score,
		MatchedKeywords: matched,
		MissingKeywords: missing,
		Explanation:     q.Explanation,
	}
}
