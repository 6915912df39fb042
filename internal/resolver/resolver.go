// Package resolver turns a batch of requested words into definition records.
//
// Each distinct word is answered by the first tier that knows it: the volatile
// cache, then the persistent store, then the generation service. Generated
// records are persisted in one batch and written back to the cache. A failure
// for one word never aborts the others.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/scanvoca/scanvoca/internal/cache"
	"github.com/scanvoca/scanvoca/internal/dictionary"
	"github.com/scanvoca/scanvoca/internal/inference"
	"github.com/scanvoca/scanvoca/internal/metrics"
)

const (
	// DefaultCacheTTL is how long resolved records stay in the cache.
	DefaultCacheTTL = 24 * time.Hour
	// DefaultMaxConcurrency is the number of generation calls allowed at once.
	DefaultMaxConcurrency = 8

	usageUpdateTimeout = 10 * time.Second
)

// Source names the tier that resolved a word.
type Source string

const (
	SourceCache     Source = "cache"
	SourceStore     Source = "store"
	SourceGenerated Source = "generated"
	SourceError     Source = "error"
)

// Outcome is the result for one position of the request.
type Outcome struct {
	RequestedWord string             `json:"requestedWord" yaml:"requestedWord"`
	Source        Source             `json:"resolutionSource" yaml:"resolutionSource"`
	Record        *dictionary.Record `json:"record,omitempty" yaml:"record,omitempty"`
	Error         string             `json:"errorDetail,omitempty" yaml:"errorDetail,omitempty"`
}

// Batch is the result of one Resolve call.
// Outcomes has the length and order of the request. The counters are per distinct key.
type Batch struct {
	ID              uuid.UUID `json:"id" yaml:"id"`
	Outcomes        []Outcome `json:"outcomes" yaml:"outcomes"`
	CacheHits       int       `json:"cacheHits" yaml:"cacheHits"`
	StoreHits       int       `json:"storeHits" yaml:"storeHits"`
	GenerationCalls int       `json:"generationCalls" yaml:"generationCalls"`
	Errors          int       `json:"errors" yaml:"errors"`
}

// Resolver resolves batches of words. It is safe for concurrent use.
type Resolver struct {
	cache          cache.Cache
	repo           dictionary.Repository
	generator      inference.Generator
	cacheTTL       time.Duration
	maxConcurrency int
	batchTimeout   time.Duration
	logger         *slog.Logger

	usage sync.WaitGroup
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCacheTTL sets the TTL of records written to the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.cacheTTL = ttl
		}
	}
}

// WithMaxConcurrency caps the number of simultaneous generation calls.
func WithMaxConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxConcurrency = n
		}
	}
}

// WithBatchTimeout bounds a whole Resolve call. Words still unresolved at the
// deadline are reported as errors. Zero disables the bound.
func WithBatchTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.batchTimeout = d
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a Resolver. A nil cache behaves as an always-missing one.
func New(c cache.Cache, repo dictionary.Repository, generator inference.Generator, opts ...Option) *Resolver {
	if c == nil {
		c = cache.Unavailable{}
	}
	r := &Resolver{
		cache:          c,
		repo:           repo,
		generator:      generator,
		cacheTTL:       DefaultCacheTTL,
		maxConcurrency: DefaultMaxConcurrency,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Wait blocks until every background usage update has finished.
func (r *Resolver) Wait() {
	r.usage.Wait()
}

type resolution struct {
	source Source
	record *dictionary.Record
	detail string
}

// batchState is the working set of one Resolve call.
type batchState struct {
	id       uuid.UUID
	resolved map[string]resolution
	// usageKeys are store hits whose usage count is incremented after assembly.
	usageKeys []string
}

func (s *batchState) resolve(key string, source Source, rec dictionary.Record) {
	s.resolved[key] = resolution{source: source, record: &rec}
}

func (s *batchState) fail(key, detail string) {
	s.resolved[key] = resolution{source: SourceError, detail: detail}
}

func (s *batchState) unresolved(keys []string) []string {
	var pending []string
	for _, key := range keys {
		if _, ok := s.resolved[key]; !ok {
			pending = append(pending, key)
		}
	}
	return pending
}

// Resolve resolves words and never fails as a whole; per-word failures are
// reported in the outcomes.
func (r *Resolver) Resolve(ctx context.Context, words []string) Batch {
	batch := Batch{ID: uuid.New(), Outcomes: make([]Outcome, 0, len(words))}
	if len(words) == 0 {
		return batch
	}
	if r.batchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.batchTimeout)
		defer cancel()
	}

	state := &batchState{id: batch.ID, resolved: make(map[string]resolution, len(words))}
	keys := make([]string, len(words))
	var distinct []string
	seen := make(map[string]struct{}, len(words))
	for i, word := range words {
		key := dictionary.Normalize(word)
		keys[i] = key
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		switch {
		case key == "":
			state.fail(key, "word is empty")
		case utf8.RuneCountInString(key) > dictionary.MaxWordLength:
			state.fail(key, fmt.Sprintf("word is longer than %d characters", dictionary.MaxWordLength))
		default:
			distinct = append(distinct, key)
		}
	}
	metrics.BatchSize.Observe(float64(len(seen)))

	r.lookupCache(ctx, state, distinct)
	r.lookupStore(ctx, state, state.unresolved(distinct))
	r.generate(ctx, state, state.unresolved(distinct))
	for _, key := range state.unresolved(distinct) {
		state.fail(key, "failed to fetch word definition")
	}
	r.incrementUsage(ctx, state)

	for i, word := range words {
		res := state.resolved[keys[i]]
		batch.Outcomes = append(batch.Outcomes, Outcome{
			RequestedWord: word,
			Source:        res.source,
			Record:        res.record,
			Error:         res.detail,
		})
	}
	for _, res := range state.resolved {
		switch res.source {
		case SourceCache:
			batch.CacheHits++
		case SourceStore:
			batch.StoreHits++
		case SourceGenerated:
			batch.GenerationCalls++
		default:
			batch.Errors++
		}
		metrics.ResolvedWordsTotal.WithLabelValues(string(res.source)).Inc()
	}

	r.logger.Debug("batch resolved",
		"batchID", batch.ID,
		"words", len(words),
		"cacheHits", batch.CacheHits,
		"storeHits", batch.StoreHits,
		"generationCalls", batch.GenerationCalls,
		"errors", batch.Errors)
	return batch
}

func (r *Resolver) lookupCache(ctx context.Context, state *batchState, keys []string) {
	for _, key := range keys {
		if rec, ok := r.cache.Get(ctx, key); ok {
			state.resolve(key, SourceCache, rec)
		}
	}
}

func (r *Resolver) lookupStore(ctx context.Context, state *batchState, keys []string) {
	if len(keys) == 0 {
		return
	}
	records, err := r.repo.GetMany(ctx, keys)
	if err != nil {
		// Unreadable store is treated as a miss; the insert below reports persistence failures.
		r.logger.Warn("store lookup failed",
			"batchID", state.id,
			"keys", keys,
			"error", err)
		return
	}
	r.acceptStoreHits(ctx, state, keys, records)
}

// acceptStoreHits resolves the pending keys found in records. Rows for keys
// that were not asked for are dropped.
func (r *Resolver) acceptStoreHits(ctx context.Context, state *batchState, keys []string, records []dictionary.Record) {
	for _, rec := range r.matching(state, keys, records) {
		state.resolve(rec.Word, SourceStore, rec)
		state.usageKeys = append(state.usageKeys, rec.Word)
		r.cache.Set(ctx, rec.Word, rec, r.cacheTTL)
	}
}

type generation struct {
	key    string
	record dictionary.Record
	err    error
}

func (r *Resolver) generate(ctx context.Context, state *batchState, keys []string) {
	if len(keys) == 0 {
		return
	}
	if r.generator == nil {
		for _, key := range keys {
			state.fail(key, errorDetail(inference.ErrNotConfigured))
		}
		return
	}

	results := make([]generation, len(keys))
	var g errgroup.Group
	g.SetLimit(r.maxConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			start := time.Now()
			rec, err := r.generator.Generate(ctx, key)
			outcome := metrics.OutcomeSuccess
			if err != nil {
				outcome = metrics.OutcomeFailure
			}
			metrics.SetDurationObserver(metrics.GenerationDuration.WithLabelValues(outcome), start)
			results[i] = generation{key: key, record: rec, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var generated []dictionary.Record
	for _, res := range results {
		if res.err != nil {
			r.logger.Warn("generation failed",
				"batchID", state.id,
				"word", res.key,
				"error", res.err)
			state.fail(res.key, errorDetail(res.err))
			continue
		}
		res.record.Word = res.key
		generated = append(generated, res.record)
	}
	r.persist(ctx, state, generated)

	for _, rec := range generated {
		if _, ok := state.resolved[rec.Word]; !ok {
			r.logger.Error("stored word was not read back",
				"batchID", state.id,
				"word", rec.Word)
			state.fail(rec.Word, "definition was generated but could not be saved")
		}
	}
}

// persist inserts generated records in one batch. A duplicate key means another
// batch stored some of the words first: those are re-read as store hits and the
// rest is inserted once more.
func (r *Resolver) persist(ctx context.Context, state *batchState, generated []dictionary.Record) {
	if len(generated) == 0 {
		return
	}
	inserted, err := r.repo.InsertMany(ctx, generated)
	if err == nil {
		r.acceptGenerated(ctx, state, generated, inserted)
		return
	}
	if !errors.Is(err, dictionary.ErrDuplicateKey) {
		r.failPersist(state, generated, err)
		return
	}

	keys := make([]string, len(generated))
	for i, rec := range generated {
		keys[i] = rec.Word
	}
	existing, err := r.repo.GetMany(ctx, keys)
	if err != nil {
		r.failPersist(state, generated, err)
		return
	}
	r.logger.Info("generated words were stored concurrently",
		"batchID", state.id,
		"words", len(existing))
	r.acceptStoreHits(ctx, state, keys, existing)

	var remaining []dictionary.Record
	for _, rec := range generated {
		if _, ok := state.resolved[rec.Word]; !ok {
			remaining = append(remaining, rec)
		}
	}
	if len(remaining) == 0 {
		return
	}
	inserted, err = r.repo.InsertMany(ctx, remaining)
	if err != nil {
		r.failPersist(state, remaining, err)
		return
	}
	r.acceptGenerated(ctx, state, remaining, inserted)
}

func (r *Resolver) acceptGenerated(ctx context.Context, state *batchState, generated, inserted []dictionary.Record) {
	keys := make([]string, len(generated))
	for i, rec := range generated {
		keys[i] = rec.Word
	}
	for _, rec := range r.matching(state, keys, inserted) {
		state.resolve(rec.Word, SourceGenerated, rec)
		r.cache.Set(ctx, rec.Word, rec, r.cacheTTL)
	}
}

// matching returns the records whose word is one of keys and not yet resolved.
// A store comparing words loosely may return rows for other keys.
func (r *Resolver) matching(state *batchState, keys []string, records []dictionary.Record) []dictionary.Record {
	pending := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := state.resolved[key]; !ok {
			pending[key] = struct{}{}
		}
	}
	matched := make([]dictionary.Record, 0, len(records))
	for _, rec := range records {
		if _, ok := pending[rec.Word]; !ok {
			r.logger.Warn("store returned a word that was not requested",
				"batchID", state.id,
				"word", rec.Word)
			continue
		}
		delete(pending, rec.Word)
		matched = append(matched, rec)
	}
	return matched
}

func (r *Resolver) failPersist(state *batchState, records []dictionary.Record, err error) {
	r.logger.Error("failed to store generated words",
		"batchID", state.id,
		"words", len(records),
		"error", err)
	for _, rec := range records {
		state.fail(rec.Word, "definition was generated but could not be saved")
	}
}

// incrementUsage updates store hits in the background, detached from the
// request's cancellation. Lost updates are only logged.
func (r *Resolver) incrementUsage(ctx context.Context, state *batchState) {
	if len(state.usageKeys) == 0 {
		return
	}
	keys := state.usageKeys
	ctx = context.WithoutCancel(ctx)
	r.usage.Add(1)
	go func() {
		defer r.usage.Done()
		ctx, cancel := context.WithTimeout(ctx, usageUpdateTimeout)
		defer cancel()
		if err := r.repo.IncrementUsage(ctx, keys); err != nil {
			r.logger.Warn("failed to increment usage",
				"batchID", state.id,
				"keys", keys,
				"error", err)
		}
	}()
}

func errorDetail(err error) string {
	switch {
	case errors.Is(err, inference.ErrNotConfigured):
		return "generation service is not configured"
	case errors.Is(err, inference.ErrMalformedResponse):
		return "generation service returned an unreadable definition"
	case errors.Is(err, inference.ErrService):
		return "generation service is unavailable"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "resolution timed out"
	default:
		return "failed to fetch word definition"
	}
}
