package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-course/internal/content"
)

const (
	lessonsSheet   = "Lessons"
	questionsSheet = "Questions"
)

// WriteXLSX writes the catalog as a workbook with a Lessons sheet and a
// Questions sheet, for offline content review.
func WriteXLSX(w io.Writer, c *Catalog) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", lessonsSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(questionsSheet); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	lessonHeader := []any{"ID", "Month", "Week", "Title", "Difficulty", "Category", "Questions"}
	questionHeader := []any{"Lesson ID", "Question ID", "Type", "Question", "Options", "Correct Answer", "Keywords", "Explanation"}
	if err := writeRow(f, lessonsSheet, 1, lessonHeader); err != nil {
		return err
	}
	if err := writeRow(f, questionsSheet, 1, questionHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(lessonsSheet, "A1", "G1", bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	if err := f.SetCellStyle(questionsSheet, "A1", "H1", bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	qrow := 2
	for i, l := range c.lessons {
		if err := writeRow(f, lessonsSheet, i+2, []any{
			l.ID, l.Month, l.Week, l.Title, string(l.Difficulty), l.Category, len(l.Questions),
		}); err != nil {
			return err
		}
		for _, q := range l.Questions {
			if err := writeRow(f, questionsSheet, qrow, questionRow(l.ID, q)); err != nil {
				return err
			}
			qrow++
		}
	}

	if err := f.SetColWidth(lessonsSheet, "D", "D", 40); err != nil {
		return fmt.Errorf("sizing column: %w", err)
	}
	if err := f.SetColWidth(questionsSheet, "D", "H", 40); err != nil {
		return fmt.Errorf("sizing column: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func questionRow(lessonID int, q content.Question) []any {
	row := []any{lessonID, q.QuestionID(), string(q.Kind()), q.QuestionText(), "", "", "", q.QuestionExplanation()}
	switch q := q.(type) {
	case content.SingleChoice:
		row[4] = strings.Join(q.Options, " | ")
		row[5] = q.CorrectAnswer
	case content.Descriptive:
		row[6] = strings.Join(q.Keywords, ", ")
	}
	return row
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}
