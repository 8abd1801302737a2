package question

import "regexp"

// Type categorizes a question by expected answer shape.
type Type string

const (
	TypeMCQ   Type = "MCQ"
	TypeShort Type = "Short Answer"
	TypeBroad Type = "Broad Answer"
	TypeOther Type = "Other"
)

// Keyword rules are applied in fixed order; a later rule overrides an
// earlier one, so the MCQ check wins when several match.
var (
	shortAnswerRe = regexp.MustCompile(`(?i)\b(define|what is|what are)\b`)
	broadAnswerRe = regexp.MustCompile(`(?i)\b(explain|describe|discuss|elaborate)\b`)
	mcqRe         = regexp.MustCompile(`(?i)\b(choose|option|mcq)\b|\ba\)\b`)
)

// Classify assigns a question type from keyword rules.
func Classify(text string) Type {
	t := TypeOther
	if shortAnswerRe.MatchString(text) {
		t = TypeShort
	}
	if broadAnswerRe.MatchString(text) {
		t = TypeBroad
	}
	if mcqRe.MatchString(text) {
		t = TypeMCQ
	}
	return t
}

// ValidType reports whether s is one of the known question types.
func ValidType(s string) bool {
	switch Type(s) {
	case TypeMCQ, TypeShort, TypeBroad, TypeOther:
		return true
	}
	return false
}
