package grading_test

import (
	"errors"
	"math"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/p-n-ai/pai-course/internal/content"
	"github.com/p-n-ai/pai-course/internal/grading"
)

func arrayMethodQuestion() content.SingleChoice {
	return content.SingleChoice{
		ID:            "3-1",
		Prompt:        "Which method returns a new array of transformed elements?",
		Options:       []string{"map", "filter", "reduce"},
		CorrectAnswer: "map",
		Explanation:   "map calls the callback once per element and collects the results.",
	}
}

func promiseQuestion() content.Descriptive {
	return content.Descriptive{
		ID:          "7-2",
		Prompt:      "Why use Promise.all instead of awaiting in a loop?",
		Keywords:    []string{"parallel", "sequential", "Promise.all"},
		Explanation: "Promise.all starts every promise at once so they run in parallel rather than sequential.",
	}
}

func TestEvaluate_SingleChoice(t *testing.T) {
	ev := grading.New(grading.Config{})
	q := arrayMethodQuestion()

	tests := []struct {
		name      string
		answer    string
		wantOK    bool
		wantScore float64
	}{
		{"exact", "map", true, 1},
		{"case differs", "Map", false, 0},
		{"surrounding whitespace", "  map\n", true, 1},
		{"other option", "filter", false, 0},
		{"not an option", "flatMap", false, 0},
		{"empty", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ev.Evaluate(q, tt.answer)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if res.IsCorrect != tt.wantOK {
				t.Errorf("IsCorrect = %v, want %v", res.IsCorrect, tt.wantOK)
			}
			if res.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", res.Score, tt.wantScore)
			}
			if res.QuestionID != "3-1" {
				t.Errorf("QuestionID = %q, want 3-1", res.QuestionID)
			}
			if res.Explanation != q.Explanation {
				t.Errorf("Explanation = %q, want the authored explanation", res.Explanation)
			}
			if res.MatchedKeywords != nil || res.MissingKeywords != nil {
				t.Error("single-choice results should carry no keyword feedback")
			}
		})
	}
}

func TestEvaluate_SingleChoiceCollapsesInternalWhitespace(t *testing.T) {
	ev := grading.New(grading.Config{})
	q := content.SingleChoice{
		ID:            "4-1",
		Options:       []string{"Array.prototype.map", "Array  prototype   filter"},
		CorrectAnswer: "Array  prototype   filter",
	}

	res, err := ev.Evaluate(q, "Array prototype\tfilter")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !res.IsCorrect {
		t.Error("answer differing only in internal whitespace should be correct")
	}
}

func TestEvaluate_EveryOptionAgainstCorrectAnswer(t *testing.T) {
	ev := grading.New(grading.Config{})
	q := content.SingleChoice{
		ID:            "5-1",
		Options:       []string{"let", "Let", "const", "var"},
		CorrectAnswer: "let",
	}

	for _, opt := range q.Options {
		res, err := ev.Evaluate(q, opt)
		if err != nil {
			t.Fatalf("Evaluate(%q) error = %v", opt, err)
		}
		want := opt == q.CorrectAnswer
		if res.IsCorrect != want {
			t.Errorf("Evaluate(%q).IsCorrect = %v, want %v", opt, res.IsCorrect, want)
		}
	}
}

func TestEvaluate_RejectsOptionsEqualWhenGraded(t *testing.T) {
	ev := grading.New(grading.Config{})

	tests := []struct {
		name    string
		options []string
		correct string
	}{
		{"internal whitespace", []string{"a b", "a  b"}, "a b"},
		{"leading space", []string{"x", " x"}, "x"},
		{"trailing newline", []string{"x\n", "x", "y"}, "y"},
		{"composed and decomposed", []string{"caf\u00e9", "cafe\u0301"}, "caf\u00e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := content.SingleChoice{ID: "5-2", Options: tt.options, CorrectAnswer: tt.correct}
			for _, opt := range tt.options {
				res, err := ev.Evaluate(q, opt)
				if !errors.Is(err, grading.ErrInvalidQuestion) {
					t.Fatalf("Evaluate(%q) = %+v, %v; want ErrInvalidQuestion", opt, res, err)
				}
			}
		})
	}
}

func TestEvaluate_Descriptive(t *testing.T) {
	ev := grading.New(grading.Config{})
	q := promiseQuestion()

	tests := []struct {
		name        string
		answer      string
		wantOK      bool
		wantScore   float64
		wantMatched []string
	}{
		{
			name:        "two of three",
			answer:      "Promise.all runs things in parallel",
			wantOK:      true,
			wantScore:   2.0 / 3.0,
			wantMatched: []string{"parallel", "Promise.all"},
		},
		{
			name:        "none",
			answer:      "it's faster",
			wantOK:      false,
			wantScore:   0,
			wantMatched: []string{},
		},
		{
			name:        "case-insensitive",
			answer:      "PROMISE.ALL avoids SEQUENTIAL waits by running in PARALLEL",
			wantOK:      true,
			wantScore:   1,
			wantMatched: []string{"parallel", "sequential", "Promise.all"},
		},
		{
			name:        "substring inside a longer word",
			answer:      "unparallelled speed",
			wantOK:      false,
			wantScore:   1.0 / 3.0,
			wantMatched: []string{"parallel"},
		},
		{
			name:        "empty",
			answer:      "",
			wantOK:      false,
			wantScore:   0,
			wantMatched: []string{},
		},
		{
			name:        "whitespace only",
			answer:      "   \t ",
			wantOK:      false,
			wantScore:   0,
			wantMatched: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ev.Evaluate(q, tt.answer)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if res.IsCorrect != tt.wantOK {
				t.Errorf("IsCorrect = %v, want %v", res.IsCorrect, tt.wantOK)
			}
			if math.Abs(res.Score-tt.wantScore) > 1e-9 {
				t.Errorf("Score = %v, want %v", res.Score, tt.wantScore)
			}
			if !slices.Equal(res.MatchedKeywords, tt.wantMatched) {
				t.Errorf("MatchedKeywords = %v, want %v", res.MatchedKeywords, tt.wantMatched)
			}
			if len(res.MatchedKeywords)+len(res.MissingKeywords) != len(q.Keywords) {
				t.Errorf("matched %d + missing %d != %d keywords",
					len(res.MatchedKeywords), len(res.MissingKeywords), len(q.Keywords))
			}
			if res.Explanation != q.Explanation {
				t.Errorf("Explanation = %q, want the model answer", res.Explanation)
			}
		})
	}
}

func TestEvaluate_KeywordMatchedAsWritten(t *testing.T) {
	ev := grading.New(grading.Config{})
	q := content.Descriptive{ID: "6-1", Keywords: []string{"single value", "accumulator"}}

	res, err := ev.Evaluate(q, "reduce folds into a SINGLE VALUE")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !slices.Equal(res.MatchedKeywords, []string{"single value"}) {
		t.Errorf("MatchedKeywords = %v, want [single value]", res.MatchedKeywords)
	}

	res, err = ev.Evaluate(q, "reduce folds into a singlevalue")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(res.MatchedKeywords) != 0 {
		t.Errorf("MatchedKeywords = %v, want none when the inner space is missing", res.MatchedKeywords)
	}

	padded := content.Descriptive{ID: "6-2", Keywords: []string{" map ", "filter"}}
	if _, err := ev.Evaluate(padded, "roadmap filter"); !errors.Is(err, grading.ErrInvalidQuestion) {
		t.Errorf("Evaluate() with a padded keyword error = %v, want ErrInvalidQuestion", err)
	}
}

func TestEvaluate_ThresholdBoundary(t *testing.T) {
	ev := grading.New(grading.Config{})
	q := content.Descriptive{
		ID:       "8-1",
		Keywords: []string{"closure", "scope", "function", "variable"},
	}

	half, err := ev.Evaluate(q, "a closure keeps its scope")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !half.IsCorrect || half.Score != 0.5 {
		t.Errorf("exactly half: IsCorrect = %v, Score = %v; want true, 0.5", half.IsCorrect, half.Score)
	}

	below, err := ev.Evaluate(q, "a closure")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if below.IsCorrect {
		t.Errorf("one fewer than half: IsCorrect = true, want false (score %v)", below.Score)
	}
}

func TestEvaluate_ConfigurableThreshold(t *testing.T) {
	q := promiseQuestion()
	answer := "Promise.all runs things in parallel"

	strict := grading.New(grading.Config{PassThreshold: 0.9})
	res, err := strict.Evaluate(q, answer)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if res.IsCorrect {
		t.Error("2/3 coverage should fail a 0.9 threshold")
	}

	lenient := grading.New(grading.Config{PassThreshold: 0.3})
	res, err = lenient.Evaluate(q, "in parallel")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !res.IsCorrect {
		t.Error("1/3 coverage should pass a 0.3 threshold")
	}
}

func TestNew_ThresholdFallback(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, grading.DefaultPassThreshold},
		{-1, grading.DefaultPassThreshold},
		{1.5, grading.DefaultPassThreshold},
		{1, 1},
		{0.75, 0.75},
	}

	for _, tt := range tests {
		got := grading.New(grading.Config{PassThreshold: tt.in}).PassThreshold()
		if got != tt.want {
			t.Errorf("New(%v).PassThreshold() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEvaluate_DescriptiveMonotonicity(t *testing.T) {
	ev := grading.New(grading.Config{})
	q := content.Descriptive{
		ID:       "9-1",
		Keywords: []string{"event loop", "call stack", "microtask", "callback queue", "non-blocking"},
	}

	fragments := []string{
		"The event loop",
		" moves work from the callback queue",
		" onto the call stack",
		" once it is empty; microtask jobs run first",
		" which keeps I/O non-blocking.",
	}

	prev := -1.0
	var answer strings.Builder
	for _, f := range fragments {
		answer.WriteString(f)
		res, err := ev.Evaluate(q, answer.String())
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if res.Score < prev {
			t.Errorf("score dropped from %v to %v after appending %q", prev, res.Score, f)
		}
		prev = res.Score
	}
	if prev != 1 {
		t.Errorf("final score = %v, want 1", prev)
	}
}

func TestEvaluate_InvalidQuestion(t *testing.T) {
	ev := grading.New(grading.Config{})

	tests := []struct {
		name string
		q    content.Question
	}{
		{"nil", nil},
		{"dangling correct answer", content.SingleChoice{ID: "1-1", Options: []string{"a", "b"}, CorrectAnswer: "c"}},
		{"no keywords", content.Descriptive{ID: "1-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ev.Evaluate(tt.q, "anything")
			if !errors.Is(err, grading.ErrInvalidQuestion) {
				t.Errorf("Evaluate() error = %v, want ErrInvalidQuestion", err)
			}
		})
	}
}

func TestEvaluate_ConcurrentUse(t *testing.T) {
	ev := grading.New(grading.Config{})
	q := promiseQuestion()

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := ev.Evaluate(q, "parallel, not sequential")
			if err != nil {
				t.Errorf("Evaluate() error = %v", err)
				return
			}
			if !res.IsCorrect {
				t.Error("IsCorrect = false, want true")
			}
		}()
	}
	wg.Wait()
}
