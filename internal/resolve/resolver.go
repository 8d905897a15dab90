package resolve

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/filmatch/filmatch/internal/config"
	"github.com/filmatch/filmatch/internal/resolve/cache"
	"github.com/filmatch/filmatch/internal/resolve/normalize"
	"github.com/filmatch/filmatch/internal/store"
)

// ReasonCached marks results served from a cache tier, where the original
// decision trace is no longer available.
const ReasonCached = "cached"

// CacheStore is the persistent cache tier the resolver writes through to.
// *store.Store satisfies it; tests substitute in-memory fakes.
type CacheStore interface {
	Get(ctx context.Context, hash string) (*store.CacheEntry, error)
	Upsert(ctx context.Context, entry store.CacheEntry) error
}

// runtimeCaches are the per-category in-process caches. Each is locked
// independently; there is never a cross-cache critical section.
type runtimeCaches struct {
	lookups  *cache.Cache // payload hash -> LookupResult
	persons  *cache.Cache // person name -> []int
	credits  *cache.Cache // person ID -> *tmdb.PersonCredits
	searches *cache.Cache // title variant -> []tmdb.MovieResult
	details  *cache.Cache // movie ID -> *MovieDetails
}

func newRuntimeCaches() *runtimeCaches {
	return &runtimeCaches{
		lookups:  cache.NewCache(),
		persons:  cache.NewCache(),
		credits:  cache.NewCache(),
		searches: cache.NewCache(),
		details:  cache.NewCache(),
	}
}

func (c *runtimeCaches) clear() {
	c.lookups.Clear()
	c.persons.Clear()
	c.credits.Clear()
	c.searches.Clear()
	c.details.Clear()
}

// Resolver turns raw lookup requests into confident TMDB IDs. It owns the
// in-process caches, the single-flight group and the write-through to the
// persistent store; a single instance is shared across all callers.
type Resolver struct {
	cfg     config.ResolverConfig
	fetcher *fetcher
	store   CacheStore
	caches  *runtimeCaches
	flights *cache.Group
	events  *eventLog
	logger  zerolog.Logger

	// storeDown latches on the first persistent-cache failure; store I/O is
	// skipped until Reset. Transitions log exactly once.
	storeDown atomic.Bool
}

// New creates a resolver. cacheStore may be nil for memory-only operation.
func New(client MetadataClient, cacheStore CacheStore, cfg config.ResolverConfig, logger zerolog.Logger) *Resolver {
	caches := newRuntimeCaches()
	log := logger.With().Str("component", "resolver").Logger()
	return &Resolver{
		cfg:     cfg,
		fetcher: newFetcher(client, caches, logger),
		store:   cacheStore,
		caches:  caches,
		flights: cache.NewGroup(),
		events:  newEventLog(0),
		logger:  log,
	}
}

// Resolve runs the full lookup pipeline for one request: canonicalize,
// short-circuit non-movie events, then memory cache, persistent cache,
// single-flight coordination and finally network resolution. Concurrent
// calls with an identical payload share one network resolution.
func (r *Resolver) Resolve(ctx context.Context, req LookupRequest) (LookupResult, error) {
	payload := BuildPayload(req)

	if normalize.IsProbablyNonMovieEvent(payload.Title, payload.Directors, payload.Actors) {
		result := rejected(ReasonNonMovieEvent, DecisionTrace{})
		r.logger.Debug().Str("title", payload.Title).Msg("non-movie event, skipping lookup")
		r.record(payload, "", EventSourceSkipped, result)
		return result, nil
	}

	hash := payload.Hash()
	waitTimeout := r.cfg.SingleflightWaitTimeout()
	if waitTimeout <= 0 {
		waitTimeout = 45 * time.Second
	}

	for {
		if cached, ok := r.caches.lookups.Get(hash); ok {
			result := cached.(LookupResult)
			r.record(payload, hash, EventSourceMemory, result)
			return result, nil
		}

		if result, ok := r.storeGet(ctx, hash); ok {
			r.caches.lookups.Set(hash, result)
			r.record(payload, hash, EventSourceStore, result)
			return result, nil
		}

		owner, wait := r.flights.Acquire(hash)
		if owner {
			result := r.resolveOwned(ctx, hash, payload)
			r.record(payload, hash, EventSourceNetwork, result)
			return result, nil
		}

		timer := time.NewTimer(waitTimeout)
		select {
		case <-wait:
			timer.Stop()
			// Owner finished; loop re-checks the memory cache.
		case <-timer.C:
			// Liveness safeguard: take over ownership on the next pass
			// instead of failing the caller.
			r.logger.Warn().Str("hash", hash).Msg("single-flight wait timed out, re-attempting")
		case <-ctx.Done():
			timer.Stop()
			return LookupResult{}, ctx.Err()
		}
	}
}

// resolveOwned performs the network resolution as the single-flight owner
// and writes the result through both cache tiers before releasing the key,
// so woken waiters always observe it.
func (r *Resolver) resolveOwned(ctx context.Context, hash string, payload LookupPayload) LookupResult {
	defer r.flights.Release(hash)

	result := r.resolveNetwork(ctx, payload)

	r.caches.lookups.Set(hash, result)
	r.storePut(ctx, store.CacheEntry{
		LookupHash: hash,
		Payload:    payload.CanonicalJSON(),
		TmdbID:     result.TmdbID,
		Confidence: result.Confidence,
	})
	return result
}

// resolveNetwork runs pool building, classification, enrichment and the
// decision engine. It never returns an error: degraded sub-queries shrink
// the pool and an unresolvable lookup is a rejected result.
func (r *Resolver) resolveNetwork(ctx context.Context, payload LookupPayload) LookupResult {
	pool := r.fetcher.buildPool(ctx, payload)
	if len(pool) == 0 {
		return rejected(ReasonNoCandidates, DecisionTrace{})
	}

	quals := make([]CandidateQuality, 0, len(pool))
	for _, c := range pool {
		quals = append(quals, classifyCandidate(payload, c))
	}

	if needsEnrichment(quals) {
		quals = r.enrichCandidates(ctx, payload, quals)
	}

	ratio := r.cfg.PopularityRatio
	if ratio <= 0 {
		ratio = 1.8
	}
	delta := r.cfg.PopularityDelta
	if delta <= 0 {
		delta = 10.0
	}

	result := decide(quals, ratio, delta)
	r.logger.Info().
		Str("title", payload.Title).
		Str("status", result.Trace.Status).
		Str("reason", result.Trace.Reason).
		Int("candidates", len(pool)).
		Msg("lookup resolved")
	return result
}

// needsEnrichment reports whether a details fetch could change the
// decision: either the top tier is contested, or the only viable candidate
// is too weak to accept on listing fields alone.
func needsEnrichment(quals []CandidateQuality) bool {
	top := QualityContradictory
	count := 0
	for _, q := range quals {
		if q.Discard {
			continue
		}
		switch {
		case q.Combined > top:
			top = q.Combined
			count = 1
		case q.Combined == top:
			count++
		}
	}
	return count > 1 || (count == 1 && top < QualityGood)
}

// storeGet reads the persistent tier, honoring the degradation latch.
func (r *Resolver) storeGet(ctx context.Context, hash string) (LookupResult, bool) {
	if r.store == nil || r.storeDown.Load() {
		return LookupResult{}, false
	}

	entry, err := r.store.Get(ctx, hash)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			r.markStoreDown(err)
		}
		return LookupResult{}, false
	}

	return resultFromEntry(entry), true
}

// storePut writes the persistent tier, honoring the degradation latch.
func (r *Resolver) storePut(ctx context.Context, entry store.CacheEntry) {
	if r.store == nil || r.storeDown.Load() {
		return
	}
	if err := r.store.Upsert(ctx, entry); err != nil {
		r.markStoreDown(err)
	}
}

func (r *Resolver) markStoreDown(err error) {
	if r.storeDown.CompareAndSwap(false, true) {
		r.logger.Warn().Err(err).Msg("persistent cache unavailable, degrading to memory-only")
	}
}

func resultFromEntry(entry *store.CacheEntry) LookupResult {
	status := StatusRejected
	if entry.TmdbID != nil {
		status = StatusAccepted
	}
	return LookupResult{
		TmdbID:     entry.TmdbID,
		Confidence: entry.Confidence,
		Trace:      DecisionTrace{Status: status, Reason: ReasonCached},
	}
}

// OverrideResult reports what a manual override computed and stored.
type OverrideResult struct {
	LookupHash string  `json:"lookupHash"`
	Payload    string  `json:"payload"`
	TmdbID     int     `json:"tmdbId"`
	Confidence float64 `json:"confidence"`
}

// Override force-writes a (payload, tmdb_id, confidence) pairing into both
// cache tiers, bypassing resolution. Used to correct known-bad matches.
// Unlike regular lookups it does not honor the degradation latch: an
// operator explicitly asked for a durable write, so store errors surface.
func (r *Resolver) Override(ctx context.Context, req LookupRequest, tmdbID int, confidence float64) (OverrideResult, error) {
	payload := BuildPayload(req)
	hash := payload.Hash()
	canonical := payload.CanonicalJSON()

	id := tmdbID
	conf := confidence
	result := LookupResult{
		TmdbID:     &id,
		Confidence: &conf,
		Trace:      DecisionTrace{Status: StatusAccepted, Reason: ReasonAccepted, Disambiguation: "override"},
	}
	r.caches.lookups.Set(hash, result)

	if r.store != nil {
		err := r.store.Upsert(ctx, store.CacheEntry{
			LookupHash: hash,
			Payload:    canonical,
			TmdbID:     &id,
			Confidence: &conf,
		})
		if err != nil {
			return OverrideResult{}, err
		}
	}

	r.logger.Info().
		Str("title", payload.Title).
		Int("tmdbId", tmdbID).
		Float64("confidence", confidence).
		Msg("manual override stored")

	return OverrideResult{
		LookupHash: hash,
		Payload:    canonical,
		TmdbID:     tmdbID,
		Confidence: confidence,
	}, nil
}

// Reset clears every in-process cache, wakes all single-flight waiters and
// re-enables persistent-cache I/O. Used between test runs and on
// configuration reload.
func (r *Resolver) Reset() {
	r.caches.clear()
	r.flights.Wake()
	if r.storeDown.CompareAndSwap(true, false) {
		r.logger.Info().Msg("persistent cache re-enabled")
	}
}

// ConsumeLookupEvents drains the resolution audit log.
func (r *Resolver) ConsumeLookupEvents() []Event {
	return r.events.drain()
}

func (r *Resolver) record(payload LookupPayload, hash, source string, result LookupResult) {
	r.events.record(Event{
		LookupHash: hash,
		Title:      payload.Title,
		Source:     source,
		TmdbID:     result.TmdbID,
		Confidence: result.Confidence,
		Trace:      result.Trace,
	})
}
