package assessment_test

import (
	"strings"
	"testing"

	"github.com/p-n-ai/pai-course/internal/assessment"
)

func TestMemoryEventLogger_LogEvent(t *testing.T) {
	logger := assessment.NewMemoryEventLogger()

	err := logger.LogEvent(assessment.Event{
		SessionID: "sess-1",
		LessonID:  5,
		EventType: assessment.EventAnswerSubmitted,
		Data: map[string]any{
			"question_id": "5-1",
		},
	})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}

	events := logger.Events()
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].EventType != assessment.EventAnswerSubmitted {
		t.Errorf("EventType = %q, want answer_submitted", events[0].EventType)
	}
	if events[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestMemoryEventLogger_RequiresType(t *testing.T) {
	logger := assessment.NewMemoryEventLogger()
	if err := logger.LogEvent(assessment.Event{SessionID: "sess-1"}); err == nil {
		t.Fatal("expected error for empty event type")
	}
	if len(logger.Events()) != 0 {
		t.Error("rejected event should not be stored")
	}
}

func TestMemoryEventLogger_RequiresSessionID(t *testing.T) {
	logger := assessment.NewMemoryEventLogger()
	err := logger.LogEvent(assessment.Event{LessonID: 5, EventType: assessment.EventSessionStarted})
	if err == nil || !strings.Contains(err.Error(), "session_id") {
		t.Fatalf("LogEvent() error = %v, want session_id is required", err)
	}
	if len(logger.Events()) != 0 {
		t.Error("rejected event should not be stored")
	}
}

func TestMemoryEventLogger_ForSession(t *testing.T) {
	logger := assessment.NewMemoryEventLogger()
	for _, e := range []assessment.Event{
		{SessionID: "a", EventType: assessment.EventSessionStarted},
		{SessionID: "b", EventType: assessment.EventSessionStarted},
		{SessionID: "a", EventType: assessment.EventAnswerSubmitted},
	} {
		if err := logger.LogEvent(e); err != nil {
			t.Fatalf("LogEvent() error = %v", err)
		}
	}

	got := logger.ForSession("a")
	if len(got) != 2 || got[0].EventType != assessment.EventSessionStarted || got[1].EventType != assessment.EventAnswerSubmitted {
		t.Errorf("ForSession(a) = %+v, want started then answer_submitted", got)
	}
	if n := len(logger.ForSession("missing")); n != 0 {
		t.Errorf("ForSession(missing) returned %d events, want 0", n)
	}
}

func TestNopEventLogger_ValidatesEvents(t *testing.T) {
	var logger assessment.NopEventLogger
	if err := logger.LogEvent(assessment.Event{SessionID: "sess-1", EventType: assessment.EventSessionStarted}); err != nil {
		t.Errorf("LogEvent() error = %v", err)
	}
	if err := logger.LogEvent(assessment.Event{EventType: assessment.EventSessionStarted}); err == nil {
		t.Error("LogEvent() should require a session id")
	}
}

func TestPostgresEventLogger_LogEvent_NilPool(t *testing.T) {
	logger := assessment.NewPostgresEventLogger(nil)

	err := logger.LogEvent(assessment.Event{
		SessionID: "sess-1",
		EventType: assessment.EventSessionStarted,
	})
	if err == nil {
		t.Fatal("expected error for nil pool")
	}
}
