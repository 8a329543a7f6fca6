package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/p-n-ai/pai-course/internal/content"
)

const loadTimeout = 30 * time.Second

// Querier is the subset of pgxpool.Pool the PostgreSQL source needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// LoadPostgres builds the catalog from the lessons and lesson_questions tables.
// It reads the tables once; later changes to the rows are not observed.
func LoadPostgres(ctx context.Context, db Querier) (*Catalog, error) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	lessons, err := queryLessons(ctx, db)
	if err != nil {
		return nil, err
	}

	index := make(map[int]int, len(lessons))
	for i, l := range lessons {
		index[l.ID] = i
	}

	rows, err := db.Query(ctx,
		`SELECT lesson_id, id, kind, prompt, options, correct_answer, keywords, explanation
		 FROM lesson_questions
		 ORDER BY lesson_id, position`,
	)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			lessonID int
			qd       questionDoc
		)
		if err := rows.Scan(
			&lessonID,
			&qd.ID,
			&qd.Type,
			&qd.Question,
			&qd.Options,
			&qd.CorrectAnswer,
			&qd.Keywords,
			&qd.Explanation,
		); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}

		i, ok := index[lessonID]
		if !ok {
			return nil, fmt.Errorf("question %q references unknown lesson %d", qd.ID, lessonID)
		}
		q, err := qd.toQuestion()
		if err != nil {
			return nil, &ValidationError{Problems: []string{
				fmt.Sprintf("lesson %d: question %q: %v", lessonID, qd.ID, err),
			}}
		}
		lessons[i].Questions = append(lessons[i].Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}

	c, err := New(lessons)
	if err != nil {
		return nil, err
	}
	logLoaded(c, "postgres")
	return c, nil
}

func queryLessons(ctx context.Context, db Querier) ([]content.Lesson, error) {
	rows, err := db.Query(ctx,
		`SELECT id, title, description, month, week, difficulty, category, content
		 FROM lessons
		 ORDER BY month, week, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []content.Lesson
	for rows.Next() {
		var (
			l    content.Lesson
			diff string
		)
		if err := rows.Scan(
			&l.ID,
			&l.Title,
			&l.Description,
			&l.Month,
			&l.Week,
			&diff,
			&l.Category,
			&l.Content,
		); err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		// Unknown values are reported by Validate alongside other content problems.
		if d, err := content.ParseDifficulty(diff); err == nil {
			l.Difficulty = d
		} else {
			l.Difficulty = content.Difficulty(diff)
		}
		lessons = append(lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}
	return lessons, nil
}
