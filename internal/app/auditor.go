// Package app wires the audit pipeline together: enumerate, collect,
// normalize, cache-check, analyze, merge.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"iamaudit/internal/analysis"
	"iamaudit/internal/domain"
	"iamaudit/internal/logging"
	"iamaudit/internal/store"
)

// Lister enumerates principals of one kind with their policy references
type Lister interface {
	ListPrincipals(ctx context.Context, kind domain.PrincipalKind) ([]domain.Principal, error)
}

// Analyzer is the analysis-service boundary consumed by the orchestrator
type Analyzer interface {
	AnalyzeEntity(ctx context.Context, payload string) (domain.AnalysisResult, error)
	AnalyzePolicy(ctx context.Context, document string) string
}

// Options tunes one batch run
type Options struct {
	MaxConcurrent   int
	SkipAnalysis    bool
	AnalyzePolicies bool
	CacheTTL        time.Duration
}

// Auditor drives the full enrichment pipeline for one principal kind
type Auditor struct {
	lister   Lister
	analyzer Analyzer
	cache    *analysis.ResultCache
	state    store.KV
	opts     Options
}

// Batch is the complete result of one audit run: exactly one record per
// enumerated principal, in enumeration order.
type Batch struct {
	ID         string               `json:"id"`
	Kind       domain.PrincipalKind `json:"kind"`
	Started    time.Time            `json:"started"`
	Finished   time.Time            `json:"finished"`
	FromCache  bool                 `json:"fromCache"`
	Principals []domain.Principal   `json:"principals"`
}

// NewAuditor returns an Auditor over the given collaborators
func NewAuditor(lister Lister, analyzer Analyzer, cache *analysis.ResultCache, state store.KV, opts Options) *Auditor {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 5
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = analysis.DefaultCacheTTL
	}
	return &Auditor{
		lister:   lister,
		analyzer: analyzer,
		cache:    cache,
		state:    state,
		opts:     opts,
	}
}

// Run executes the pipeline for one kind. The returned batch always has one
// record per listed principal; individual enrichment failures degrade their
// own record and never abort siblings.
func (a *Auditor) Run(ctx context.Context, kind domain.PrincipalKind) (*Batch, error) {
	batch := &Batch{
		ID:      uuid.NewString(),
		Kind:    kind,
		Started: time.Now(),
	}

	if cached, ok := a.cachedListing(kind); ok {
		logging.LogInfo("Using cached listing", map[string]interface{}{"kind": string(kind)})
		batch.Principals = cached
		batch.FromCache = true
		batch.Finished = time.Now()
		return batch, nil
	}

	principals, err := a.lister.ListPrincipals(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate %ss: %w", kind, err)
	}

	if !a.opts.SkipAnalysis {
		a.analyzeAll(ctx, principals)
	}

	batch.Principals = principals
	batch.Finished = time.Now()
	a.persistListing(kind, principals)

	logging.LogInfo("Batch complete", map[string]interface{}{
		"kind":       string(kind),
		"principals": len(principals),
		"metrics":    logging.GetMetrics().Summary(),
	})
	return batch, nil
}

// analyzeAll enriches every non-degraded principal with an analysis verdict,
// concurrently, consulting the result cache before each service call.
func (a *Auditor) analyzeAll(ctx context.Context, principals []domain.Principal) {
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, a.opts.MaxConcurrent)

	for i := range principals {
		wg.Add(1)
		go func(p *domain.Principal) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			a.analyzePrincipal(ctx, p)
		}(&principals[i])
	}
	wg.Wait()
}

func (a *Auditor) analyzePrincipal(ctx context.Context, p *domain.Principal) {
	// Degraded records keep their Error status; there is nothing to analyze.
	if p.Status == domain.StatusError {
		return
	}

	result, ok := a.cache.GetResult(p.ID)
	if !ok {
		payload := analysis.BuildOverviewPayload(*p)
		var err error
		result, err = a.analyzer.AnalyzeEntity(ctx, payload)
		if err != nil {
			logging.LogDegradedUnit("analysis", p.ID, err)
			result = domain.UnavailableAnalysis()
		}
		a.cache.PutResult(p.ID, result)
	}

	p.Analysis = &result
	p.Status = domain.StatusFor(result)

	if a.opts.AnalyzePolicies {
		a.analyzePolicies(ctx, p)
	}
}

// analyzePolicies attaches a free-text summary to every available policy
// reference, keyed by policy name in both the TTL cache and the state store.
func (a *Auditor) analyzePolicies(ctx context.Context, p *domain.Principal) {
	summarize := func(refs []domain.PolicyReference) {
		for i := range refs {
			ref := &refs[i]
			if ref.Unavailable {
				continue
			}
			if text, ok := a.cache.GetText(ref.Name); ok {
				ref.Analysis = text
				continue
			}
			text := a.analyzer.AnalyzePolicy(ctx, ref.Document)
			ref.Analysis = text
			a.cache.PutText(ref.Name, text)
			if a.state != nil {
				if err := a.state.Set(store.AnalysisKey(ref.Name), text); err != nil {
					logging.LogWarn("Failed to persist policy analysis", map[string]interface{}{
						"policy": ref.Name,
						"error":  err.Error(),
					})
				}
			}
		}
	}
	summarize(p.InlinePolicies)
	summarize(p.AttachedPolicies)
}

// cachedListing returns the stored batch for kind when the state store holds
// one younger than the cache TTL.
func (a *Auditor) cachedListing(kind domain.PrincipalKind) ([]domain.Principal, bool) {
	if a.state == nil {
		return nil, false
	}
	rawTS, ok := a.state.Get(store.KeyCacheTimestamp)
	if !ok {
		return nil, false
	}
	millis, err := strconv.ParseInt(rawTS, 10, 64)
	if err != nil {
		return nil, false
	}
	if time.Since(time.UnixMilli(millis)) >= a.opts.CacheTTL {
		return nil, false
	}

	raw, ok := a.state.Get(store.ListingKey(string(kind)))
	if !ok {
		return nil, false
	}
	var principals []domain.Principal
	if err := json.Unmarshal([]byte(raw), &principals); err != nil {
		return nil, false
	}
	return principals, true
}

func (a *Auditor) persistListing(kind domain.PrincipalKind, principals []domain.Principal) {
	if a.state == nil {
		return
	}
	raw, err := json.Marshal(principals)
	if err != nil {
		return
	}
	if err := a.state.Set(store.ListingKey(string(kind)), string(raw)); err != nil {
		logging.LogWarn("Failed to persist listing cache", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := a.state.Set(store.KeyCacheTimestamp, strconv.FormatInt(time.Now().UnixMilli(), 10)); err != nil {
		logging.LogWarn("Failed to persist cache timestamp", map[string]interface{}{"error": err.Error()})
	}
}
