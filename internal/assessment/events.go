package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// Event types emitted by the Service.
const (
	EventSessionStarted   = "session_started"
	EventAnswerSubmitted  = "answer_submitted"
	EventSessionCompleted = "session_completed"
)

// Event is an assessment analytics event.
type Event struct {
	SessionID string
	LessonID  int
	EventType string
	Data      map[string]any
	CreatedAt time.Time
}

// EventLogger records assessment events.
type EventLogger interface {
	LogEvent(event Event) error
}

// validateEvent checks the fields every assessment_events row needs.
func validateEvent(e Event) error {
	if e.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if e.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	return nil
}

// NopEventLogger discards events, rejecting the same malformed ones the
// database would.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(e Event) error {
	return validateEvent(e)
}

// MemoryEventLogger keeps events in memory, in arrival order.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{}
}

func (l *MemoryEventLogger) LogEvent(e Event) error {
	if err := validateEvent(e); err != nil {
		return err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

// Events returns a copy of every recorded event.
func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.events)
}

// ForSession returns the events recorded for one assessment session.
func (l *MemoryEventLogger) ForSession(sessionID string) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for _, e := range l.events {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out
}

// PostgresEventLogger inserts events into the assessment_events table.
type PostgresEventLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresEventLogger(pool *pgxpool.Pool) *PostgresEventLogger {
	return &PostgresEventLogger{pool: pool}
}

func (l *PostgresEventLogger) LogEvent(event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if err := validateEvent(event); err != nil {
		return err
	}

	payload := event.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if _, err := l.pool.Exec(ctx,
		`INSERT INTO assessment_events (session_id, lesson_id, event_type, data, created_at)
		 VALUES ($1, $2, $3, $4::jsonb, $5)`,
		event.SessionID,
		event.LessonID,
		event.EventType,
		string(data),
		createdAt,
	); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	slog.Debug("event logged",
		"type", event.EventType,
		"session_id", event.SessionID,
		"lesson_id", event.LessonID,
	)
	return nil
}
