package content

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names a question variant.
type Kind string

const (
	KindSingleChoice Kind = "mcq"
	KindDescriptive  Kind = "descriptive"
)

// ParseKind maps the authored type discriminator onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindSingleChoice:
		return KindSingleChoice, nil
	case KindDescriptive:
		return KindDescriptive, nil
	default:
		return "", fmt.Errorf("unknown question type %q", s)
	}
}

// Question is an assessable prompt. The set of implementations is closed:
// SingleChoice and Descriptive are the only variants.
type Question interface {
	QuestionID() string
	QuestionText() string
	QuestionExplanation() string
	Kind() Kind
	// Validate checks the variant's class invariant.
	Validate() error

	question()
}

// SingleChoice is a question with one correct option.
type SingleChoice struct {
	ID            string
	Prompt        string
	Options       []string
	CorrectAnswer string
	Explanation   string
}

func (q SingleChoice) QuestionID() string          { return q.ID }
func (q SingleChoice) QuestionText() string        { return q.Prompt }
func (q SingleChoice) QuestionExplanation() string { return q.Explanation }
func (SingleChoice) Kind() Kind                    { return KindSingleChoice }
func (SingleChoice) question()                     {}

// Validate requires at least two options that stay distinct under
// NormalizeChoice, one of which is the correct answer.
func (q SingleChoice) Validate() error {
	var errs []error
	if strings.TrimSpace(q.ID) == "" {
		errs = append(errs, errors.New("question id is empty"))
	}
	if len(q.Options) < 2 {
		errs = append(errs, fmt.Errorf("needs at least 2 options, has %d", len(q.Options)))
	}
	correct := NormalizeChoice(q.CorrectAnswer)
	seen := make(map[string]string, len(q.Options))
	found := false
	for _, opt := range q.Options {
		key := NormalizeChoice(opt)
		if prev, ok := seen[key]; ok {
			if prev == opt {
				errs = append(errs, fmt.Errorf("duplicate option %q", opt))
			} else {
				errs = append(errs, fmt.Errorf("options %q and %q are indistinguishable when graded", prev, opt))
			}
			continue
		}
		seen[key] = opt
		if key == correct {
			found = true
		}
	}
	if !found {
		errs = append(errs, fmt.Errorf("correct answer %q is not one of the options", q.CorrectAnswer))
	}
	return errors.Join(errs...)
}

// Descriptive is a free-form question graded by keyword coverage.
type Descriptive struct {
	ID       string
	Prompt   string
	Keywords []string
	// Explanation is the model answer shown after grading.
	Explanation string
}

func (q Descriptive) QuestionID() string          { return q.ID }
func (q Descriptive) QuestionText() string        { return q.Prompt }
func (q Descriptive) QuestionExplanation() string { return q.Explanation }
func (Descriptive) Kind() Kind                    { return KindDescriptive }
func (Descriptive) question()                     {}

// Validate requires a non-empty keyword set. Keywords are matched exactly as
// written, so blank entries and entries with surrounding whitespace are rejected.
func (q Descriptive) Validate() error {
	var errs []error
	if strings.TrimSpace(q.ID) == "" {
		errs = append(errs, errors.New("question id is empty"))
	}
	if len(q.Keywords) == 0 {
		errs = append(errs, errors.New("keywords are empty"))
	}
	seen := make(map[string]bool, len(q.Keywords))
	for i, k := range q.Keywords {
		if strings.TrimSpace(k) == "" {
			errs = append(errs, fmt.Errorf("keyword %d is blank", i))
			continue
		}
		if strings.TrimSpace(k) != k {
			errs = append(errs, fmt.Errorf("keyword %q has surrounding whitespace", k))
		}
		// Keywords form a set under the same folding used for matching.
		fk := FoldText(k)
		if seen[fk] {
			errs = append(errs, fmt.Errorf("duplicate keyword %q", k))
		}
		seen[fk] = true
	}
	return errors.Join(errs...)
}
