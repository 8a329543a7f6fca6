package assessment_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/p-n-ai/pai-course/internal/assessment"
	"github.com/p-n-ai/pai-course/internal/platform/database"
)

func TestPostgresEventLogger_LogEvent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("course"),
		postgres.WithUsername("course"),
		postgres.WithPassword("course"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("starting postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := ctr.Terminate(context.Background()); err != nil {
			t.Logf("terminating postgres: %v", err)
		}
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	logger := assessment.NewPostgresEventLogger(pool)
	err = logger.LogEvent(assessment.Event{
		SessionID: "sess-1",
		LessonID:  5,
		EventType: assessment.EventAnswerSubmitted,
		Data:      map[string]any{"question_id": "5-1", "is_correct": true},
	})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}

	var (
		lessonID   int
		questionID string
	)
	err = pool.QueryRow(ctx,
		`SELECT lesson_id, data->>'question_id' FROM assessment_events WHERE session_id = $1`,
		"sess-1",
	).Scan(&lessonID, &questionID)
	if err != nil {
		t.Fatalf("reading event: %v", err)
	}
	if lessonID != 5 || questionID != "5-1" {
		t.Errorf("stored event = lesson %d question %q, want 5 and 5-1", lessonID, questionID)
	}

	if err := logger.LogEvent(assessment.Event{EventType: assessment.EventSessionStarted}); err == nil {
		t.Error("LogEvent() should require a session id")
	}
}
