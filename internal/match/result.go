// Package match scores exam questions against a syllabus catalog and
// produces per-question attributions with a confidence value.
package match

import (
	"github.com/qpaper/qmapper/internal/question"
)

// NotFound is the canonical sentinel for attribution fields that could not
// be determined. Distinct from an empty string.
const NotFound = "Not Found"

// Source identifies which strategy produced a result.
type Source string

const (
	SourceAI        Source = "ai_assisted"
	SourceHeuristic Source = "heuristic_fallback"
)

// Result is one scored attribution for a question unit. Results are created
// fresh per question and never mutated afterwards.
type Result struct {
	Index         int           `json:"index"`
	QuestionText  string        `json:"question_text"`
	QuestionType  question.Type `json:"question_type"`
	SubjectName   string        `json:"subject_name"`
	SubjectCode   string        `json:"subject_code"`
	Year          string        `json:"year"`
	Semester      string        `json:"semester"`
	ProbableTopic string        `json:"probable_topic"`
	CourseOutcome string        `json:"course_outcome"`
	Confidence    float64       `json:"confidence_score"`
	Source        Source        `json:"source"`
	ErrorMessage  string        `json:"error_message,omitempty"`
}

// notFoundResult is the unresolved-attribution result for a question: all
// sentinel fields, zero confidence. The question type is still classified.
func notFoundResult(text string, source Source) Result {
	return Result{
		QuestionText:  text,
		QuestionType:  question.Classify(text),
		SubjectName:   NotFound,
		SubjectCode:   NotFound,
		Year:          NotFound,
		Semester:      NotFound,
		ProbableTopic: NotFound,
		CourseOutcome: NotFound,
		Confidence:    0.0,
		Source:        source,
	}
}
