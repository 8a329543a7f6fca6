package content

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeChoice is the form single-choice options and answers are compared in:
// NFC, trimmed, internal whitespace runs collapsed to one space. Case is preserved.
func NormalizeChoice(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// FoldText is the form descriptive answers and keywords are matched in: NFC, lower-cased.
func FoldText(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}
