package analyze

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/qpaper/qmapper/internal/match"
)

// Run is a completed analysis: one result per segmented question.
type Run struct {
	ID            string         `json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	QuestionCount int            `json:"question_count"`
	Results       []match.Result `json:"results"`
}

// RunStore persists analysis runs.
type RunStore interface {
	CreateRun(ctx context.Context, results []match.Result) (string, error)
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context) ([]Run, error)
}

// MemoryStore is an in-memory implementation of RunStore, used when no
// database is configured.
type MemoryStore struct {
	runs map[string]*Run
	mu   sync.RWMutex
}

// NewMemoryStore creates a new in-memory run store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]*Run),
	}
}

func (s *MemoryStore) CreateRun(ctx context.Context, results []match.Result) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := generateID()
	stored := make([]match.Result, len(results))
	copy(stored, results)
	s.runs[id] = &Run{
		ID:            id,
		CreatedAt:     time.Now(),
		QuestionCount: len(stored),
		Results:       stored,
	}
	return id, nil
}

func (s *MemoryStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	return run, nil
}

// ListRuns returns run metadata without results, newest first.
func (s *MemoryStore) ListRuns(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]Run, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, Run{
			ID:            r.ID,
			CreatedAt:     r.CreatedAt,
			QuestionCount: r.QuestionCount,
		})
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
