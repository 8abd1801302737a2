package syllabus

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// structuredSchema constrains structured syllabus input: a sequence whose
// mapping elements are validated per-key when present; unknown keys are
// allowed. Non-mapping elements pass validation and are skipped during
// normalization, so one stray scalar does not reject the whole document.
const structuredSchema = `{
	"type": "array",
	"items": {
		"anyOf": [
			{"not": {"type": "object"}},
			{
				"type": "object",
				"properties": {
					"subject":      {"type": "string"},
					"subject_name": {"type": "string"},
					"title":        {"type": "string"},
					"subject_code": {"type": "string"},
					"code":         {"type": "string"},
					"year":         {"type": ["string", "number"]},
					"semester":     {"type": ["string", "number"]},
					"topics":       {"type": ["array", "string"]},
					"syllabus":     {"type": ["array", "string"]},
					"course_outcomes": {"type": ["array", "string"]},
					"course_outcome":  {"type": ["array", "string"]},
					"raw_text":     {"type": "string"}
				}
			}
		]
	}
}`

var schemaLoader = gojsonschema.NewStringLoader(structuredSchema)

// ParseStructuredJSON validates and normalizes a structured syllabus JSON
// document. Malformed JSON, a non-sequence top level, or schema violations
// all surface as ErrInvalidFormat.
func ParseStructuredJSON(data []byte) (Catalog, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, strings.Join(msgs, "; "))
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return NormalizeStructured(v)
}
