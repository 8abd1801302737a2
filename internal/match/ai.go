package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/qpaper/qmapper/internal/ai"
	"github.com/qpaper/qmapper/internal/question"
	"github.com/qpaper/qmapper/internal/syllabus"
)

// ErrUnparseableResponse is returned when no valid JSON object can be
// recovered from the AI response text.
var ErrUnparseableResponse = errors.New("match: no JSON object in AI response")

const systemPrompt = `You are an expert question-to-syllabus mapper.
Given a single exam question and a syllabus (a JSON list of subjects with
subject_name, subject_code, year, semester, topics, course_outcomes), return
a STRICT JSON object (only JSON, no prose) with the keys:
question_text, question_type, probable_topic, course_outcome, subject_name,
subject_code, year, semester, confidence_score

If something cannot be determined, set its string value to "Not Found" and
confidence_score to 0.0. question_type must be one of: "MCQ", "Short Answer",
"Broad Answer", "Other". confidence_score is a number from 0.0 to 1.0.`

// BuildPrompt serializes the catalog and question into the matching prompt.
func BuildPrompt(text string, catalog syllabus.Catalog) (string, error) {
	catalogJSON, err := json.Marshal(catalog)
	if err != nil {
		return "", fmt.Errorf("marshal catalog: %w", err)
	}
	return fmt.Sprintf("Syllabus JSON:\n%s\n\nQuestion:\n\"\"\"%s\"\"\"\n\nReturn only JSON.", catalogJSON, text), nil
}

// AIMatch runs the AI-assisted strategy for one question. Transport errors
// and unparseable responses surface to the caller, which must fall back to
// the heuristic strategy exactly once.
func AIMatch(ctx context.Context, provider ai.Provider, model, text string, catalog syllabus.Catalog) (Result, error) {
	prompt, err := BuildPrompt(text, catalog)
	if err != nil {
		return Result{}, err
	}

	resp, err := provider.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Model:     model,
		MaxTokens: 512,
	})
	if err != nil {
		return Result{}, fmt.Errorf("ai completion: %w", err)
	}

	payload, err := decodePayload(resp.Content)
	if err != nil {
		return Result{}, err
	}
	return payload.toResult(text), nil
}

// aiPayload is the strict-JSON object the model is asked to return. Models
// occasionally emit numbers where strings are expected (year, semester), so
// those fields decode leniently.
type aiPayload struct {
	QuestionType  string     `json:"question_type"`
	ProbableTopic flexString `json:"probable_topic"`
	CourseOutcome flexString `json:"course_outcome"`
	SubjectName   flexString `json:"subject_name"`
	SubjectCode   flexString `json:"subject_code"`
	Year          flexString `json:"year"`
	Semester      flexString `json:"semester"`
	Confidence    float64    `json:"confidence_score"`
}

func (p aiPayload) toResult(text string) Result {
	qt := question.Type(p.QuestionType)
	if !question.ValidType(p.QuestionType) {
		qt = question.Classify(text)
	}

	conf := p.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}

	return Result{
		QuestionText:  text,
		QuestionType:  qt,
		SubjectName:   orNotFound(string(p.SubjectName)),
		SubjectCode:   orNotFound(string(p.SubjectCode)),
		Year:          orNotFound(string(p.Year)),
		Semester:      orNotFound(string(p.Semester)),
		ProbableTopic: orNotFound(string(p.ProbableTopic)),
		CourseOutcome: orNotFound(string(p.CourseOutcome)),
		Confidence:    conf,
		Source:        SourceAI,
	}
}

// decodePayload recovers the JSON object from the model output: strip code
// fences, try a direct decode, then fall back to the first balanced {...}
// substring.
func decodePayload(raw string) (aiPayload, error) {
	raw = stripCodeFences(raw)

	var p aiPayload
	if err := json.Unmarshal([]byte(raw), &p); err == nil {
		return p, nil
	}

	obj := firstJSONObject(raw)
	if obj == "" {
		return aiPayload{}, fmt.Errorf("%w: %q", ErrUnparseableResponse, truncate(raw, 200))
	}
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return aiPayload{}, fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
	}
	return p, nil
}

// stripCodeFences removes surrounding ``` markers, keeping the fenced part
// that looks like a JSON object.
func stripCodeFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	for _, part := range strings.Split(raw, "```") {
		part = strings.TrimSpace(part)
		part = strings.TrimPrefix(part, "json")
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "{") {
			return part
		}
	}
	return raw
}

// firstJSONObject returns the first balanced {...} substring, tracking
// string literals so braces inside values do not confuse the depth count.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// flexString decodes a JSON string, number, or null into a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(strconv.FormatFloat(n, 'f', -1, 64))
		return nil
	}
	return fmt.Errorf("flexString: cannot decode %s", string(data))
}
