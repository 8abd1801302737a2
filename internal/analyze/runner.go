// Package analyze orchestrates a full question-to-syllabus analysis run and
// persists its results.
package analyze

import (
	"context"
	"errors"
	"log/slog"

	"github.com/qpaper/qmapper/internal/match"
	"github.com/qpaper/qmapper/internal/question"
	"github.com/qpaper/qmapper/internal/syllabus"
)

var (
	// ErrEmptyCatalog means syllabus parsing yielded zero usable subject
	// records; matching cannot proceed.
	ErrEmptyCatalog = errors.New("analyze: syllabus catalog is empty")

	// ErrNoQuestionsFound means segmentation yielded zero question units.
	ErrNoQuestionsFound = errors.New("analyze: no questions found in paper text")
)

// ProgressFunc is invoked after each question completes, in question order.
type ProgressFunc func(done, total int, r match.Result)

// Runner processes question units sequentially against a read-only catalog.
// A single question's failure never aborts the batch: the matcher degrades
// per question and records the reason on the result.
type Runner struct {
	matcher *match.Matcher
}

// NewRunner creates a runner around the given matcher.
func NewRunner(m *match.Matcher) *Runner {
	return &Runner{matcher: m}
}

// Run matches every question unit in order and returns one result per unit,
// index-aligned with the input. Cancelling the context abandons the
// remaining questions and returns the results produced so far alongside the
// context error.
func (r *Runner) Run(ctx context.Context, catalog syllabus.Catalog, units []question.Unit, progress ProgressFunc) ([]match.Result, error) {
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}
	if len(units) == 0 {
		return nil, ErrNoQuestionsFound
	}

	results := make([]match.Result, 0, len(units))
	for i, unit := range units {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := r.matcher.Match(ctx, unit, catalog)
		results = append(results, res)
		if progress != nil {
			progress(i+1, len(units), res)
		}
	}

	slog.Info("analysis run complete",
		"questions", len(units),
		"subjects", len(catalog),
	)
	return results, nil
}
