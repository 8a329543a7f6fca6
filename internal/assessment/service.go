package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/p-n-ai/pai-course/internal/catalog"
	"github.com/p-n-ai/pai-course/internal/content"
	"github.com/p-n-ai/pai-course/internal/grading"
)

// ErrLessonNotFound is returned when a session refers to a lesson the catalog does not hold.
var ErrLessonNotFound = errors.New("lesson not found")

// ServiceConfig holds dependencies for the assessment service.
type ServiceConfig struct {
	Catalog   *catalog.Catalog
	Evaluator *grading.Evaluator
	Store     Store
	Events    EventLogger
}

// Service runs sessions whose state lives in a Store, so that one attempt can
// span several requests.
type Service struct {
	catalog   *catalog.Catalog
	evaluator *grading.Evaluator
	store     Store
	events    EventLogger
}

// View is the externally visible state of a stored session.
type View struct {
	SessionID string           `json:"session_id"`
	LessonID  int              `json:"lesson_id"`
	Summary   Summary          `json:"summary"`
	Results   []grading.Result `json:"results"`
}

// NewService creates an assessment service. Store defaults to an in-memory store
// and Events to a no-op logger.
func NewService(cfg ServiceConfig) *Service {
	ev := cfg.Evaluator
	if ev == nil {
		ev = grading.New(grading.Config{})
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore(0)
	}
	events := cfg.Events
	if events == nil {
		events = NopEventLogger{}
	}
	return &Service{
		catalog:   cfg.Catalog,
		evaluator: ev,
		store:     store,
		events:    events,
	}
}

// Evaluator returns the evaluator sessions are graded with.
func (s *Service) Evaluator() *grading.Evaluator {
	return s.evaluator
}

// Start opens a session for the lesson and returns its id.
func (s *Service) Start(ctx context.Context, lessonID int) (View, error) {
	lesson, err := s.lesson(lessonID)
	if err != nil {
		return View{}, err
	}

	sess := Start(lesson, s.evaluator)
	id, err := s.store.Create(ctx, sess.Snapshot(""))
	if err != nil {
		return View{}, fmt.Errorf("storing session: %w", err)
	}

	slog.Info("assessment session started",
		"session_id", id,
		"lesson_id", lessonID,
		"questions", len(lesson.Questions),
	)
	s.logEvent(Event{SessionID: id, LessonID: lessonID, EventType: EventSessionStarted})

	return View{SessionID: id, LessonID: lessonID, Summary: sess.Summary(), Results: sess.Results()}, nil
}

// Submit grades an answer within a stored session and records the result.
func (s *Service) Submit(ctx context.Context, sessionID, questionID, answer string) (grading.Result, Summary, error) {
	var (
		res       grading.Result
		sum       Summary
		lessonID  int
		completed bool
	)

	err := s.store.Update(ctx, sessionID, func(snap *Snapshot) error {
		sess, err := s.restore(*snap)
		if err != nil {
			return err
		}
		before := sess.State()

		res, err = sess.Submit(questionID, answer)
		if err != nil {
			return err
		}

		sum = sess.Summary()
		lessonID = snap.LessonID
		completed = before == InProgress && sum.State == Complete
		*snap = sess.Snapshot(sessionID)
		return nil
	})
	if err != nil {
		return grading.Result{}, Summary{}, err
	}

	slog.Debug("answer graded",
		"session_id", sessionID,
		"question_id", questionID,
		"correct", res.IsCorrect,
		"score", res.Score,
	)
	s.logEvent(Event{
		SessionID: sessionID,
		LessonID:  lessonID,
		EventType: EventAnswerSubmitted,
		Data: map[string]any{
			"question_id": questionID,
			"kind":        string(res.Kind),
			"is_correct":  res.IsCorrect,
			"score":       res.Score,
		},
	})
	if completed {
		slog.Info("assessment session completed",
			"session_id", sessionID,
			"lesson_id", lessonID,
			"correct", sum.CorrectCount,
			"total", sum.TotalQuestions,
		)
		s.logEvent(Event{
			SessionID: sessionID,
			LessonID:  lessonID,
			EventType: EventSessionCompleted,
			Data: map[string]any{
				"correct_count": sum.CorrectCount,
				"average_score": *sum.AverageScore,
			},
		})
	}

	return res, sum, nil
}

// Get returns the summary and recorded results of a stored session.
func (s *Service) Get(ctx context.Context, sessionID string) (View, error) {
	snap, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	sess, err := s.restore(snap)
	if err != nil {
		return View{}, err
	}
	return View{
		SessionID: sessionID,
		LessonID:  snap.LessonID,
		Summary:   sess.Summary(),
		Results:   sess.Results(),
	}, nil
}

func (s *Service) restore(snap Snapshot) (*Session, error) {
	lesson, err := s.lesson(snap.LessonID)
	if err != nil {
		return nil, err
	}
	return Restore(snap, lesson, s.evaluator)
}

func (s *Service) lesson(id int) (content.Lesson, error) {
	if s.catalog == nil {
		return content.Lesson{}, fmt.Errorf("%w: %d", ErrLessonNotFound, id)
	}
	l, ok := s.catalog.Lesson(id)
	if !ok {
		return content.Lesson{}, fmt.Errorf("%w: %d", ErrLessonNotFound, id)
	}
	return l, nil
}

func (s *Service) logEvent(e Event) {
	if err := s.events.LogEvent(e); err != nil {
		slog.Warn("failed to log assessment event",
			"type", e.EventType,
			"session_id", e.SessionID,
			"error", err,
		)
	}
}
