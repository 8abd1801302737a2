// Package syllabus turns structured or OCR-extracted syllabus input into a
// normalized catalog of subject records.
package syllabus

import "errors"

// ErrInvalidFormat is returned when structured syllabus input is not an
// ordered sequence of subject mappings.
var ErrInvalidFormat = errors.New("syllabus: structured input must be a list of subjects")

// Subject is one normalized syllabus entry.
type Subject struct {
	Name           string   `json:"subject_name" yaml:"subject_name"`
	Code           string   `json:"subject_code" yaml:"subject_code"`
	Year           string   `json:"year" yaml:"year"`
	Semester       string   `json:"semester" yaml:"semester"`
	Topics         []string `json:"topics" yaml:"topics"`
	CourseOutcomes []string `json:"course_outcomes" yaml:"course_outcomes"`
	RawText        string   `json:"raw_text,omitempty" yaml:"raw_text,omitempty"`
}

// Catalog is an ordered sequence of subjects, built once per syllabus upload
// and treated as read-only for the duration of an analysis run.
type Catalog []Subject
