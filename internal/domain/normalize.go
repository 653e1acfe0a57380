package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// Normalize trims and case-folds s. It is the identity key for participants
// and the comparison form for answers.
func Normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// AnswerMatches reports whether answer equals correct after normalization.
func AnswerMatches(answer, correct string) bool {
	return Normalize(answer) == Normalize(correct)
}
