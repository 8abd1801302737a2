package match

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/qpaper/qmapper/internal/ai"
	"github.com/qpaper/qmapper/internal/platform/cache"
	"github.com/qpaper/qmapper/internal/question"
	"github.com/qpaper/qmapper/internal/syllabus"
)

const defaultCacheTTL = 24 * time.Hour

// Matcher attributes questions to syllabus entries. With a provider it tries
// the AI-assisted strategy first and falls back to the heuristic scorer on
// any failure — once, never retrying the AI for the same question. Without a
// provider the heuristic scorer is the sole strategy.
type Matcher struct {
	provider ai.Provider
	cache    *cache.Cache
	model    string
	ttl      time.Duration
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithCache enables caching of AI-assisted results.
func WithCache(c *cache.Cache) Option {
	return func(m *Matcher) { m.cache = c }
}

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(m *Matcher) { m.model = model }
}

// WithCacheTTL overrides the default 24h cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(m *Matcher) { m.ttl = ttl }
}

// NewMatcher creates a matcher. A nil provider means heuristic-only.
func NewMatcher(provider ai.Provider, opts ...Option) *Matcher {
	m := &Matcher{provider: provider, ttl: defaultCacheTTL}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match produces one result for the question unit. It never returns an
// error: AI failures degrade to the heuristic strategy with the failure
// reason recorded on the result.
func (m *Matcher) Match(ctx context.Context, unit question.Unit, catalog syllabus.Catalog) Result {
	if m.provider == nil {
		r := Heuristic(unit.Text, catalog)
		r.Index = unit.Index
		return r
	}

	key := m.cacheKey(unit.Text, catalog)
	if r, ok := m.cached(ctx, key); ok {
		r.Index = unit.Index
		return r
	}

	r, err := AIMatch(ctx, m.provider, m.model, unit.Text, catalog)
	if err != nil {
		slog.Warn("AI match failed, using heuristic fallback",
			"question_index", unit.Index,
			"error", err,
		)
		r = Heuristic(unit.Text, catalog)
		r.ErrorMessage = err.Error()
		r.Index = unit.Index
		return r
	}

	r.Index = unit.Index
	m.store(ctx, key, r)
	return r
}

// cacheKey hashes the catalog and question together so a cached attribution
// is only reused against the identical catalog.
func (m *Matcher) cacheKey(text string, catalog syllabus.Catalog) string {
	h := sha256.New()
	if data, err := json.Marshal(catalog); err == nil {
		h.Write(data)
	}
	h.Write([]byte{0})
	h.Write([]byte(text))
	return "match:" + hex.EncodeToString(h.Sum(nil))
}

func (m *Matcher) cached(ctx context.Context, key string) (Result, bool) {
	if m.cache == nil {
		return Result{}, false
	}
	data, err := m.cache.Client.Get(ctx, key).Bytes()
	if err != nil {
		return Result{}, false
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, false
	}
	return r, true
}

func (m *Matcher) store(ctx context.Context, key string, r Result) {
	if m.cache == nil {
		return
	}
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := m.cache.Client.Set(ctx, key, data, m.ttl).Err(); err != nil {
		slog.Debug("match cache write failed", "error", err)
	}
}
