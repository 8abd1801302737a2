package syllabus

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// subjectHeadingRe matches lines that open a subject block: an optional
// parenthesis, a course-code token of uppercase letters/digits/slashes, an
// optional separator, then the subject title.
var subjectHeadingRe = regexp.MustCompile(`^\s*\(?([A-Z0-9/]+)\)?\s*[-:)]?\s*(.+)$`)

// yearSemRe finds a document-wide "2nd Year 1st Semester" style marker.
var (
	yearSemRe  = regexp.MustCompile(`(?i)(\d+(?:st|nd|rd|th)\s+Year).{0,40}?(\d+(?:st|nd|rd|th)\s+Semester)`)
	yearOnlyRe = regexp.MustCompile(`(?i)(\d+(?:st|nd|rd|th)\s+Year)`)
	semOnlyRe  = regexp.MustCompile(`(?i)(\d+(?:st|nd|rd|th)\s+Semester)`)
)

// listSplitRe splits a delimited topic/outcome string on newlines, bullet
// glyphs, and semicolons.
var listSplitRe = regexp.MustCompile(`[\n;•\-–]+`)

var (
	coTriggers = []string{
		"course outcome",
		"course outcomes",
		"learning outcomes",
		"outcomes",
		"course objective",
	}
	coPrefixRe     = regexp.MustCompile(`(?i)^(course outcomes?|learning outcomes?|course objectives?)[:\-\s]*`)
	moduleHeaderRe = regexp.MustCompile(`(?i)^(Module|Unit|Chapter)\b`)
)

// catchAllTopicTokens is the maximum token count for the permissive
// "short line is probably a topic" rule. Carried over from the source
// heuristics; known to misclassify prose on dense syllabus layouts.
const catchAllTopicTokens = 12

// NormalizeStructured validates pre-structured syllabus input and produces a
// catalog. The input must be an ordered sequence; elements that are not
// key-value mappings are skipped, and records whose resolved subject name is
// empty are dropped.
func NormalizeStructured(v any) (Catalog, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrInvalidFormat, v)
	}

	var catalog Catalog
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		name := strings.TrimSpace(stringField(m, "subject", "subject_name", "title"))
		if name == "" {
			continue
		}
		catalog = append(catalog, Subject{
			Name:           name,
			Code:           strings.TrimSpace(stringField(m, "subject_code", "code")),
			Year:           strings.TrimSpace(stringField(m, "year")),
			Semester:       strings.TrimSpace(stringField(m, "semester")),
			Topics:         cleanList(stringList(m, "topics", "syllabus")),
			CourseOutcomes: cleanList(stringList(m, "course_outcomes", "course_outcome")),
			RawText:        stringField(m, "raw_text"),
		})
	}
	return catalog, nil
}

// ParseText heuristically structures a raw syllabus text block. Empty or
// unparseable input yields an empty catalog, never an error; callers must
// treat an empty catalog as a terminal condition.
func ParseText(raw string) Catalog {
	lines := strings.Split(raw, "\n")

	var headingIdx []int
	for i, line := range lines {
		if matchHeading(line) != nil {
			headingIdx = append(headingIdx, i)
		}
	}

	var catalog Catalog
	if len(headingIdx) == 0 {
		catalog = parseParagraphs(raw)
	} else {
		for n, start := range headingIdx {
			end := len(lines)
			if n+1 < len(headingIdx) {
				end = headingIdx[n+1]
			}
			block := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
			code, title := splitHeading(lines[start])
			topics, outcomes := extractTopicsAndOutcomes(block)
			catalog = append(catalog, Subject{
				Name:           title,
				Code:           code,
				Topics:         topics,
				CourseOutcomes: outcomes,
				RawText:        block,
			})
		}
	}

	// A single document-wide year/semester marker backfills records that did
	// not carry their own.
	year, sem := findYearSemester(raw)
	for i := range catalog {
		if catalog[i].Year == "" {
			catalog[i].Year = year
		}
		if catalog[i].Semester == "" {
			catalog[i].Semester = sem
		}
	}
	return catalog
}

// parseParagraphs is the fallback when no subject heading is found: each
// blank-line-delimited paragraph becomes one record, its first line the
// (possibly code-less) heading.
func parseParagraphs(raw string) Catalog {
	var catalog Catalog
	for _, p := range strings.Split(raw, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		first := strings.SplitN(p, "\n", 2)[0]
		code, title := splitHeading(first)
		topics, outcomes := extractTopicsAndOutcomes(p)
		catalog = append(catalog, Subject{
			Name:           title,
			Code:           code,
			Topics:         topics,
			CourseOutcomes: outcomes,
			RawText:        p,
		})
	}
	return catalog
}

// matchHeading returns the submatches of the subject-heading pattern, or nil.
// The code token must contain a digit or slash and be at least two characters,
// so that ordinary capitalized words ("Introduction:", "SQL based", ...) and
// ordinals ("2nd Year ...") do not open new blocks.
func matchHeading(line string) []string {
	m := subjectHeadingRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	if len(m[1]) < 2 || !strings.ContainsAny(m[1], "0123456789/") {
		return nil
	}
	return m
}

// splitHeading extracts (code, title) from a heading line. Lines that do not
// match the heading pattern become code-less titles.
func splitHeading(line string) (code, title string) {
	if m := matchHeading(line); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return "", strings.TrimSpace(line)
}

// extractTopicsAndOutcomes scans the lines of one subject block, after the
// heading line. A course-outcomes region starts at the first trigger line and
// runs to block end; everything before it is classified line-by-line as topic
// or ignored.
func extractTopicsAndOutcomes(block string) (topics, outcomes []string) {
	var lines []string
	for _, l := range strings.Split(block, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	coMode := false
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		low := strings.ToLower(line)

		if !coMode && containsAny(low, coTriggers) {
			coMode = true
			if rest := strings.TrimSpace(coPrefixRe.ReplaceAllString(line, "")); rest != "" {
				outcomes = append(outcomes, rest)
			}
			continue
		}
		if coMode {
			outcomes = append(outcomes, line)
			continue
		}

		switch {
		case strings.HasPrefix(line, "•"), strings.HasPrefix(line, "-"), strings.HasPrefix(line, "*"):
			topics = append(topics, line)
		case strings.Contains(line, ","), strings.Contains(line, ":"):
			topics = append(topics, line)
		case moduleHeaderRe.MatchString(line):
			topics = append(topics, line)
		case len(strings.Fields(line)) <= catchAllTopicTokens:
			topics = append(topics, line)
		}
	}
	return cleanList(topics), cleanList(outcomes)
}

func findYearSemester(text string) (year, sem string) {
	if m := yearSemRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	if m := yearOnlyRe.FindStringSubmatch(text); m != nil {
		year = strings.TrimSpace(m[1])
	}
	if m := semOnlyRe.FindStringSubmatch(text); m != nil {
		sem = strings.TrimSpace(m[1])
	}
	return year, sem
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// cleanList trims entries, drops blanks, and removes exact duplicates
// preserving first occurrence.
func cleanList(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// stringField resolves the first non-empty value among the given key aliases.
func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := asString(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// stringList resolves a field that may be an already-split sequence or a
// single delimited string.
func stringList(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case []any:
			out := make([]string, 0, len(v))
			for _, e := range v {
				out = append(out, asString(e))
			}
			if len(out) > 0 {
				return out
			}
		case string:
			if v != "" {
				return listSplitRe.Split(v, -1)
			}
		}
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
