package analyze

import (
	"context"
	"testing"

	"github.com/qpaper/qmapper/internal/match"
	"github.com/qpaper/qmapper/internal/question"
)

func sampleResults() []match.Result {
	return []match.Result{
		{
			Index:         1,
			QuestionText:  "Explain the working of Link State Routing algorithm.",
			QuestionType:  question.TypeBroad,
			SubjectName:   "Computer Networks",
			SubjectCode:   "IT/PC/B/T/225",
			Year:          "2nd Year",
			Semester:      "2nd Semester",
			ProbableTopic: "routing",
			CourseOutcome: "CO1 design networks",
			Confidence:    0.35,
			Source:        match.SourceHeuristic,
		},
		{
			Index:         2,
			QuestionText:  "Translate this poem into French.",
			QuestionType:  question.TypeOther,
			SubjectName:   match.NotFound,
			SubjectCode:   match.NotFound,
			Year:          match.NotFound,
			Semester:      match.NotFound,
			ProbableTopic: match.NotFound,
			CourseOutcome: match.NotFound,
			Confidence:    0.0,
			Source:        match.SourceHeuristic,
			ErrorMessage:  "ai completion: service unavailable",
		},
	}
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.CreateRun(ctx, sampleResults())
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	if id == "" {
		t.Fatal("CreateRun() returned empty id")
	}

	run, err := store.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.QuestionCount != 2 {
		t.Errorf("QuestionCount = %d, want 2", run.QuestionCount)
	}
	if len(run.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(run.Results))
	}
	if run.Results[0].SubjectCode != "IT/PC/B/T/225" {
		t.Errorf("SubjectCode = %q, want %q", run.Results[0].SubjectCode, "IT/PC/B/T/225")
	}
	if run.Results[1].ErrorMessage == "" {
		t.Error("second result lost its error message")
	}
	if run.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.GetRun(context.Background(), "nope"); err == nil {
		t.Fatal("GetRun() should fail for unknown id")
	}
}

func TestMemoryStore_ListRuns(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, err := store.CreateRun(ctx, sampleResults())
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	second, err := store.CreateRun(ctx, sampleResults()[:1])
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	if first == second {
		t.Fatal("run ids should be unique")
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	for _, r := range runs {
		if len(r.Results) != 0 {
			t.Errorf("ListRuns() should return metadata only, run %s has %d results", r.ID, len(r.Results))
		}
	}
}
