package catalog_test

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-course/internal/catalog"
)

func TestWriteXLSX(t *testing.T) {
	c, err := catalog.New(sampleLessons())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var buf bytes.Buffer
	if err := catalog.WriteXLSX(&buf, c); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	lessons, err := f.GetRows("Lessons")
	if err != nil {
		t.Fatalf("GetRows(Lessons) error = %v", err)
	}
	if len(lessons) != 5 {
		t.Fatalf("Lessons rows = %d, want header + 4", len(lessons))
	}
	if lessons[1][0] != "7" {
		t.Errorf("first lesson id = %q, want 7 (catalog order)", lessons[1][0])
	}

	questions, err := f.GetRows("Questions")
	if err != nil {
		t.Fatalf("GetRows(Questions) error = %v", err)
	}
	if len(questions) != 4 {
		t.Fatalf("Questions rows = %d, want header + 3", len(questions))
	}
	if questions[1][1] != "3-1" || questions[1][4] != "map | filter | reduce" || questions[1][5] != "map" {
		t.Errorf("single-choice row = %v", questions[1])
	}
	if questions[2][6] != "accumulator" {
		t.Errorf("descriptive keywords cell = %q, want accumulator", questions[2][6])
	}
}
