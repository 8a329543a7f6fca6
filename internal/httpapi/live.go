package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/pai-course/internal/assessment"
	"github.com/p-n-ai/pai-course/internal/grading"
)

// Live frame types.
const (
	frameLesson = "lesson"
	frameResult = "result"
	frameError  = "error"
)

// liveFrame is a server-to-client message on the live endpoint.
type liveFrame struct {
	Type    string              `json:"type"`
	Lesson  *lessonView         `json:"lesson,omitempty"`
	Result  *grading.Result     `json:"result,omitempty"`
	Summary *assessment.Summary `json:"summary,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// handleLive runs one assessment session per WebSocket connection. The session
// lives only as long as the connection.
func (s *server) handleLive(w http.ResponseWriter, r *http.Request) {
	lesson, ok := s.lessonFromPath(w, r)
	if !ok {
		return
	}

	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer c.CloseNow()

	ctx := r.Context()
	sess := assessment.Start(lesson, s.service.Evaluator())
	slog.Info("live session opened", "lesson_id", lesson.ID, "remote", r.RemoteAddr)

	lv := viewLesson(lesson)
	sum := sess.Summary()
	if err := wsjson.Write(ctx, c, liveFrame{Type: frameLesson, Lesson: &lv, Summary: &sum}); err != nil {
		slog.Warn("live write failed", "error", err)
		return
	}

	for {
		var req answerRequest
		if err := wsjson.Read(ctx, c, &req); err != nil {
			logLiveClose(lesson.ID, err)
			return
		}

		frame := s.answerLive(sess, req)
		if err := wsjson.Write(ctx, c, frame); err != nil {
			slog.Warn("live write failed", "error", err)
			return
		}
	}
}

func (s *server) answerLive(sess *assessment.Session, req answerRequest) liveFrame {
	if req.QuestionID == "" {
		return liveFrame{Type: frameError, Error: "question_id is required"}
	}
	res, err := sess.Submit(req.QuestionID, req.Answer)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			slog.Error("live grading failed", "question_id", req.QuestionID, "error", err)
			return liveFrame{Type: frameError, Error: "internal error"}
		}
		return liveFrame{Type: frameError, Error: err.Error()}
	}
	sum := sess.Summary()
	return liveFrame{Type: frameResult, Result: &res, Summary: &sum}
}

func logLiveClose(lessonID int, err error) {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		slog.Info("live session closed", "lesson_id", lessonID)
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		slog.Info("live session dropped", "lesson_id", lessonID)
		return
	}
	slog.Warn("live session read failed", "lesson_id", lessonID, "error", err)
}
