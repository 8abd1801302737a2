package syllabus

import (
	"errors"
	"testing"
)

func TestParseStructuredJSON(t *testing.T) {
	data := []byte(`[
		{"subject": "Computer Networks", "subject_code": "IT/PC/B/T/225",
		 "topics": ["Network Routing: Dijkstra's Algorithm"], "course_outcomes": []},
		{"subject_name": "Operating Systems", "code": "IT/PC/B/T/223",
		 "topics": "Processes; Scheduling"}
	]`)

	catalog, err := ParseStructuredJSON(data)
	if err != nil {
		t.Fatalf("ParseStructuredJSON() error = %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("got %d subjects, want 2", len(catalog))
	}
	if catalog[0].Code != "IT/PC/B/T/225" {
		t.Errorf("Code = %q, want %q", catalog[0].Code, "IT/PC/B/T/225")
	}
	if catalog[1].Name != "Operating Systems" {
		t.Errorf("Name = %q, want %q", catalog[1].Name, "Operating Systems")
	}
}

func TestParseStructuredJSON_SkipsNonMappingItems(t *testing.T) {
	data := []byte(`[
		{"subject": "Computer Networks", "subject_code": "IT/PC/B/T/225"},
		"junk",
		42,
		["not", "a", "subject"]
	]`)

	catalog, err := ParseStructuredJSON(data)
	if err != nil {
		t.Fatalf("ParseStructuredJSON() error = %v", err)
	}
	if len(catalog) != 1 {
		t.Fatalf("got %d subjects, want 1", len(catalog))
	}
	if catalog[0].Name != "Computer Networks" {
		t.Errorf("Name = %q, want %q", catalog[0].Name, "Computer Networks")
	}
}

func TestParseStructuredJSON_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"mapping instead of sequence", `{"subject": "Computer Networks"}`},
		{"malformed JSON", `[{"subject": "CN"`},
		{"wrong field type", `[{"subject": 42}]`},
		{"scalar top level", `"syllabus"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStructuredJSON([]byte(tt.data))
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("error = %v, want ErrInvalidFormat", err)
			}
		})
	}
}
