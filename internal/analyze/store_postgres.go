package analyze

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qpaper/qmapper/internal/match"
	"github.com/qpaper/qmapper/internal/question"
)

const (
	dbTimeout    = 5 * time.Second
	listRunLimit = 100
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	question_count INT NOT NULL
);
CREATE TABLE IF NOT EXISTS run_results (
	run_id UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	idx INT NOT NULL,
	question_text TEXT NOT NULL,
	question_type TEXT NOT NULL,
	subject_name TEXT NOT NULL,
	subject_code TEXT NOT NULL,
	year TEXT NOT NULL,
	semester TEXT NOT NULL,
	probable_topic TEXT NOT NULL,
	course_outcome TEXT NOT NULL,
	confidence_score DOUBLE PRECISION NOT NULL,
	source TEXT NOT NULL,
	error_message TEXT,
	PRIMARY KEY (run_id, idx)
);
`

// PostgresStore is a PostgreSQL-backed RunStore implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed run store and ensures the
// schema exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, results []match.Result) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx,
		`INSERT INTO runs (question_count)
		 VALUES ($1)
		 RETURNING id::text`,
		len(results),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, r := range results {
		batch.Queue(
			`INSERT INTO run_results (run_id, idx, question_text, question_type,
			    subject_name, subject_code, year, semester, probable_topic,
			    course_outcome, confidence_score, source, error_message)
			 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			id, r.Index, r.QuestionText, r.QuestionType,
			r.SubjectName, r.SubjectCode, r.Year, r.Semester, r.ProbableTopic,
			r.CourseOutcome, r.Confidence, r.Source, nullIfEmpty(r.ErrorMessage),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return "", fmt.Errorf("insert results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, id string) (*Run, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	run := &Run{Results: []match.Result{}}
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, created_at, question_count
		 FROM runs
		 WHERE id = $1::uuid`,
		id,
	).Scan(&run.ID, &run.CreatedAt, &run.QuestionCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("run not found: %s", id)
		}
		return nil, fmt.Errorf("get run: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT idx, question_text, question_type, subject_name, subject_code,
		    year, semester, probable_topic, course_outcome, confidence_score,
		    source, error_message
		 FROM run_results
		 WHERE run_id = $1::uuid
		 ORDER BY idx ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r match.Result
		var qtype, source string
		var errMsg *string
		if err := rows.Scan(
			&r.Index,
			&r.QuestionText,
			&qtype,
			&r.SubjectName,
			&r.SubjectCode,
			&r.Year,
			&r.Semester,
			&r.ProbableTopic,
			&r.CourseOutcome,
			&r.Confidence,
			&source,
			&errMsg,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.QuestionType = question.Type(qtype)
		r.Source = match.Source(source)
		if errMsg != nil {
			r.ErrorMessage = *errMsg
		}
		run.Results = append(run.Results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}

	return run, nil
}

// ListRuns returns run metadata without results, newest first.
func (s *PostgresStore) ListRuns(ctx context.Context) ([]Run, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, created_at, question_count
		 FROM runs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		listRunLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.QuestionCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
