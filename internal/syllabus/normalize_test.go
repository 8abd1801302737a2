package syllabus

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeStructured(t *testing.T) {
	input := []any{
		map[string]any{
			"subject":         "Computer Networks",
			"subject_code":    "IT/PC/B/T/225",
			"topics":          []any{"Network Routing: Dijkstra's Algorithm"},
			"course_outcomes": []any{},
		},
		"not a mapping",
		map[string]any{
			"title": "Operating Systems",
			"code":  "IT/PC/B/T/223",
			// single delimited string split on newlines/bullets/semicolons
			"topics": "Processes; Scheduling\n• Deadlocks",
		},
		map[string]any{
			"subject_code": "IT/XX/1",
			// no name under any alias: record is dropped
		},
	}

	catalog, err := NormalizeStructured(input)
	if err != nil {
		t.Fatalf("NormalizeStructured() error = %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("got %d subjects, want 2", len(catalog))
	}

	if catalog[0].Name != "Computer Networks" {
		t.Errorf("Name = %q, want %q", catalog[0].Name, "Computer Networks")
	}
	if catalog[0].Code != "IT/PC/B/T/225" {
		t.Errorf("Code = %q, want %q", catalog[0].Code, "IT/PC/B/T/225")
	}
	if len(catalog[0].Topics) != 1 {
		t.Errorf("Topics = %v, want one entry", catalog[0].Topics)
	}

	wantTopics := []string{"Processes", "Scheduling", "Deadlocks"}
	if !reflect.DeepEqual(catalog[1].Topics, wantTopics) {
		t.Errorf("Topics = %v, want %v", catalog[1].Topics, wantTopics)
	}
}

func TestNormalizeStructured_NotASequence(t *testing.T) {
	_, err := NormalizeStructured(map[string]any{"subject": "CN"})
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("error = %v, want ErrInvalidFormat", err)
	}
}

func TestNormalizeStructured_Idempotent(t *testing.T) {
	input := []any{
		map[string]any{
			"subject":         "Databases",
			"subject_code":    "IT/PC/B/T/222",
			"topics":          []any{"SQL", "Normalization", "SQL"},
			"course_outcomes": []any{"CO1 design schemas"},
		},
	}

	first, err := NormalizeStructured(input)
	if err != nil {
		t.Fatalf("NormalizeStructured() error = %v", err)
	}
	second, err := NormalizeStructured(input)
	if err != nil {
		t.Fatalf("NormalizeStructured() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("catalogs differ between runs:\n%v\n%v", first, second)
	}
}

func TestNormalizeStructured_DeduplicatesTopics(t *testing.T) {
	catalog, err := NormalizeStructured([]any{
		map[string]any{
			"subject": "Data Structures",
			"topics":  []any{"Arrays", "Trees", "Arrays", " Trees "},
		},
	})
	if err != nil {
		t.Fatalf("NormalizeStructured() error = %v", err)
	}

	want := []string{"Arrays", "Trees"}
	if !reflect.DeepEqual(catalog[0].Topics, want) {
		t.Errorf("Topics = %v, want %v", catalog[0].Topics, want)
	}
}

func TestParseText_HeadingBlock(t *testing.T) {
	raw := "(IT/PC/B/T/211) Data Structures\nIntroduction: arrays, lists.\nCourse Outcomes: CO1 understand structures"

	catalog := ParseText(raw)
	if len(catalog) != 1 {
		t.Fatalf("got %d subjects, want 1", len(catalog))
	}

	subj := catalog[0]
	if subj.Code != "IT/PC/B/T/211" {
		t.Errorf("Code = %q, want %q", subj.Code, "IT/PC/B/T/211")
	}
	if subj.Name != "Data Structures" {
		t.Errorf("Name = %q, want %q", subj.Name, "Data Structures")
	}

	foundTopic := false
	for _, topic := range subj.Topics {
		if strings.Contains(topic, "Introduction") {
			foundTopic = true
		}
	}
	if !foundTopic {
		t.Errorf("Topics = %v, want one containing %q", subj.Topics, "Introduction")
	}

	foundOutcome := false
	for _, co := range subj.CourseOutcomes {
		if strings.Contains(co, "CO1") {
			foundOutcome = true
		}
	}
	if !foundOutcome {
		t.Errorf("CourseOutcomes = %v, want one containing %q", subj.CourseOutcomes, "CO1")
	}
}

func TestParseText_MultipleSubjects(t *testing.T) {
	raw := strings.Join([]string{
		"(IT/PC/B/T/211) Data Structures",
		"Arrays, linked lists, trees",
		"(IT/PC/B/T/225) Computer Networks",
		"Routing: Dijkstra's algorithm",
		"Course Outcomes: CO1 design networks",
	}, "\n")

	catalog := ParseText(raw)
	if len(catalog) != 2 {
		t.Fatalf("got %d subjects, want 2", len(catalog))
	}
	if catalog[0].Name != "Data Structures" {
		t.Errorf("first subject = %q, want %q", catalog[0].Name, "Data Structures")
	}
	if catalog[1].Name != "Computer Networks" {
		t.Errorf("second subject = %q, want %q", catalog[1].Name, "Computer Networks")
	}
	if len(catalog[0].CourseOutcomes) != 0 {
		t.Errorf("first subject outcomes = %v, want none", catalog[0].CourseOutcomes)
	}
	if len(catalog[1].CourseOutcomes) != 1 {
		t.Errorf("second subject outcomes = %v, want one", catalog[1].CourseOutcomes)
	}
}

func TestParseText_Empty(t *testing.T) {
	if catalog := ParseText(""); len(catalog) != 0 {
		t.Errorf("ParseText(\"\") = %v, want empty catalog", catalog)
	}
}

func TestParseText_ParagraphFallback(t *testing.T) {
	// No course-code heading anywhere: blank-line paragraphs become records
	// with code-less headings.
	raw := "Discrete Mathematics\nSets, relations, functions\n\nGraph Theory\nPaths, cycles, connectivity"

	catalog := ParseText(raw)
	if len(catalog) != 2 {
		t.Fatalf("got %d subjects, want 2", len(catalog))
	}
	if catalog[0].Name != "Discrete Mathematics" {
		t.Errorf("Name = %q, want %q", catalog[0].Name, "Discrete Mathematics")
	}
	if catalog[0].Code != "" {
		t.Errorf("Code = %q, want empty", catalog[0].Code)
	}
}

func TestParseText_YearSemesterBackfill(t *testing.T) {
	raw := "2nd Year 1st Semester\n(IT/PC/B/T/211) Data Structures\nArrays and lists"

	catalog := ParseText(raw)
	if len(catalog) != 1 {
		t.Fatalf("got %d subjects, want 1", len(catalog))
	}
	if catalog[0].Year != "2nd Year" {
		t.Errorf("Year = %q, want %q", catalog[0].Year, "2nd Year")
	}
	if catalog[0].Semester != "1st Semester" {
		t.Errorf("Semester = %q, want %q", catalog[0].Semester, "1st Semester")
	}
}

func TestParseText_NoDuplicateTopics(t *testing.T) {
	raw := "(IT/PC/B/T/211) Data Structures\nArrays and lists\nArrays and lists\nTrees and graphs"

	catalog := ParseText(raw)
	if len(catalog) != 1 {
		t.Fatalf("got %d subjects, want 1", len(catalog))
	}
	seen := make(map[string]bool)
	for _, topic := range catalog[0].Topics {
		if seen[topic] {
			t.Errorf("duplicate topic %q", topic)
		}
		seen[topic] = true
	}
}
