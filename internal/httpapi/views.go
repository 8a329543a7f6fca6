package httpapi

import (
	"github.com/p-n-ai/pai-course/internal/assessment"
	"github.com/p-n-ai/pai-course/internal/content"
	"github.com/p-n-ai/pai-course/internal/grading"
)

// lessonSummary is a lesson without its body or questions, used in listings.
type lessonSummary struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Month         int    `json:"month"`
	Week          int    `json:"week"`
	Difficulty    string `json:"difficulty"`
	Category      string `json:"category"`
	QuestionCount int    `json:"question_count"`
}

// lessonView is the learner-facing lesson. Answer keys and explanations are left out.
type lessonView struct {
	lessonSummary
	Content   string         `json:"content"`
	Questions []questionView `json:"questions"`
}

type questionView struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

func summarizeLesson(l content.Lesson) lessonSummary {
	return lessonSummary{
		ID:            l.ID,
		Title:         l.Title,
		Description:   l.Description,
		Month:         l.Month,
		Week:          l.Week,
		Difficulty:    string(l.Difficulty),
		Category:      l.Category,
		QuestionCount: len(l.Questions),
	}
}

func viewLesson(l content.Lesson) lessonView {
	v := lessonView{
		lessonSummary: summarizeLesson(l),
		Content:       l.Content,
		Questions:     make([]questionView, 0, len(l.Questions)),
	}
	for _, q := range l.Questions {
		qv := questionView{
			ID:       q.QuestionID(),
			Type:     string(q.Kind()),
			Question: q.QuestionText(),
		}
		if sc, ok := q.(content.SingleChoice); ok {
			qv.Options = append([]string(nil), sc.Options...)
		}
		v.Questions = append(v.Questions, qv)
	}
	return v
}

type answerRequest struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

type answerResponse struct {
	Result  grading.Result     `json:"result"`
	Summary assessment.Summary `json:"summary"`
}

type errorResponse struct {
	Error string `json:"error"`
}
