package catalog

import (
	"fmt"

	"github.com/p-n-ai/pai-course/internal/content"
)

// lessonDoc is the authored form of a lesson, one per YAML file.
type lessonDoc struct {
	ID          int           `yaml:"id" json:"id"`
	Title       string        `yaml:"title" json:"title"`
	Description string        `yaml:"description" json:"description"`
	Month       int           `yaml:"month" json:"month"`
	Week        int           `yaml:"week" json:"week"`
	Difficulty  string        `yaml:"difficulty" json:"difficulty"`
	Category    string        `yaml:"category" json:"category"`
	Content     string        `yaml:"content" json:"content"`
	Questions   []questionDoc `yaml:"questions" json:"questions"`
}

// questionDoc carries both variants; Type selects which fields apply.
type questionDoc struct {
	ID            string   `yaml:"id" json:"id"`
	Type          string   `yaml:"type" json:"type"`
	Question      string   `yaml:"question" json:"question"`
	Options       []string `yaml:"options,omitempty" json:"options,omitempty"`
	CorrectAnswer string   `yaml:"correct_answer,omitempty" json:"correct_answer,omitempty"`
	Keywords      []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Explanation   string   `yaml:"explanation" json:"explanation"`
}

func (d lessonDoc) toLesson() (content.Lesson, error) {
	diff, err := content.ParseDifficulty(d.Difficulty)
	if err != nil {
		return content.Lesson{}, fmt.Errorf("lesson %d: %w", d.ID, err)
	}

	l := content.Lesson{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Month:       d.Month,
		Week:        d.Week,
		Difficulty:  diff,
		Category:    d.Category,
		Content:     d.Content,
		Questions:   make([]content.Question, 0, len(d.Questions)),
	}
	for _, qd := range d.Questions {
		q, err := qd.toQuestion()
		if err != nil {
			return content.Lesson{}, fmt.Errorf("lesson %d: question %q: %w", d.ID, qd.ID, err)
		}
		l.Questions = append(l.Questions, q)
	}
	return l, nil
}

func (d questionDoc) toQuestion() (content.Question, error) {
	kind, err := content.ParseKind(d.Type)
	if err != nil {
		return nil, err
	}
	switch kind {
	case content.KindSingleChoice:
		return content.SingleChoice{
			ID:            d.ID,
			Prompt:        d.Question,
			Options:       d.Options,
			CorrectAnswer: d.CorrectAnswer,
			Explanation:   d.Explanation,
		}, nil
	default:
		return content.Descriptive{
			ID:          d.ID,
			Prompt:      d.Question,
			Keywords:    d.Keywords,
			Explanation: d.Explanation,
		}, nil
	}
}

func docFromLesson(l content.Lesson) lessonDoc {
	d := lessonDoc{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Month:       l.Month,
		Week:        l.Week,
		Difficulty:  string(l.Difficulty),
		Category:    l.Category,
		Content:     l.Content,
		Questions:   make([]questionDoc, 0, len(l.Questions)),
	}
	for _, q := range l.Questions {
		qd := questionDoc{
			ID:          q.QuestionID(),
			Type:        string(q.Kind()),
			Question:    q.QuestionText(),
			Explanation: q.QuestionExplanation(),
		}
		switch q := q.(type) {
		case content.SingleChoice:
			qd.Options = q.Options
			qd.CorrectAnswer = q.CorrectAnswer
		case content.Descriptive:
			qd.Keywords = q.Keywords
		}
		d.Questions = append(d.Questions, qd)
	}
	return d
}
