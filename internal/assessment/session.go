// Package assessment runs a learner through the questions of one lesson and
// aggregates the graded results.
package assessment

import (
	"errors"
	"fmt"
	"time"

	"github.com/p-n-ai/pai-course/internal/content"
	"github.com/p-n-ai/pai-course/internal/grading"
)

// ErrUnknownQuestion is returned when an answer names a question outside the session's lesson.
var ErrUnknownQuestion = errors.New("unknown question")

// State is the progress of a session.
type State string

const (
	InProgress State = "in_progress"
	// Complete means every question has a recorded result. Answers may still be revised.
	Complete State = "complete"
)

// Summary aggregates the recorded results of a session.
type Summary struct {
	TotalQuestions int `json:"total_questions"`
	AnsweredCount  int `json:"answered_count"`
	CorrectCount   int `json:"correct_count"`
	// AverageScore is the mean score of answered questions, nil until one is answered.
	AverageScore *float64 `json:"average_score"`
	State        State    `json:"state"`
}

// Session accumulates results for one learner's attempt at one lesson.
// A Session is not safe for concurrent use.
type Session struct {
	lesson    content.Lesson
	evaluator *grading.Evaluator
	results   map[string]grading.Result
	startedAt time.Time
}

// Start begins a session over lesson's questions in their authored order.
func Start(lesson content.Lesson, ev *grading.Evaluator) *Session {
	return &Session{
		lesson:    lesson,
		evaluator: ev,
		results:   make(map[string]grading.Result, len(lesson.Questions)),
		startedAt: time.Now().UTC(),
	}
}

// Lesson returns the lesson being assessed.
func (s *Session) Lesson() content.Lesson {
	return s.lesson
}

// Submit grades answer for the question and records the result, replacing
// any earlier result for the same question.
func (s *Session) Submit(questionID, answer string) (grading.Result, error) {
	q, ok := s.lesson.Question(questionID)
	if !ok {
		return grading.Result{}, fmt.Errorf("%w %q in lesson %d", ErrUnknownQuestion, questionID, s.lesson.ID)
	}

	res, err := s.evaluator.Evaluate(q, answer)
	if err != nil {
		return grading.Result{}, err
	}
	s.results[questionID] = res
	return res, nil
}

// State reports whether every question has been answered.
func (s *Session) State() State {
	if len(s.results) >= len(s.lesson.Questions) {
		return Complete
	}
	return InProgress
}

// Summary folds the recorded results.
func (s *Session) Summary() Summary {
	sum := Summary{
		TotalQuestions: len(s.lesson.Questions),
		AnsweredCount:  len(s.results),
		State:          s.State(),
	}
	if len(s.results) == 0 {
		return sum
	}

	total := 0.0
	for _, r := range s.results {
		if r.IsCorrect {
			sum.CorrectCount++
		}
		total += r.Score
	}
	avg := total / float64(len(s.results))
	sum.AverageScore = &avg
	return sum
}

// Results returns the recorded results in the lesson's question order.
func (s *Session) Results() []grading.Result {
	out := make([]grading.Result, 0, len(s.results))
	for _, q := range s.lesson.Questions {
		if r, ok := s.results[q.QuestionID()]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Snapshot is the serialisable state of a session.
type Snapshot struct {
	ID        string                    `json:"id"`
	LessonID  int                       `json:"lesson_id"`
	Results   map[string]grading.Result `json:"results"`
	StartedAt time.Time                 `json:"started_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// Snapshot captures the session under id.
func (s *Session) Snapshot(id string) Snapshot {
	results := make(map[string]grading.Result, len(s.results))
	for k, v := range s.results {
		results[k] = v
	}
	return Snapshot{
		ID:        id,
		LessonID:  s.lesson.ID,
		Results:   results,
		StartedAt: s.startedAt,
		UpdatedAt: time.Now().UTC(),
	}
}

// Restore rebuilds a session from a snapshot. Results for questions no longer
// in the lesson are dropped.
func Restore(snap Snapshot, lesson content.Lesson, ev *grading.Evaluator) (*Session, error) {
	if snap.LessonID != lesson.ID {
		return nil, fmt.Errorf("snapshot is for lesson %d, not %d", snap.LessonID, lesson.ID)
	}
	s := Start(lesson, ev)
	if !snap.StartedAt.IsZero() {
		s.startedAt = snap.StartedAt
	}
	for qid, r := range snap.Results {
		if _, ok := lesson.Question(qid); ok {
			s.results[qid] = r
		}
	}
	return s, nil
}
