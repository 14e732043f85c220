package app

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"iamaudit/internal/analysis"
	"iamaudit/internal/domain"
	"iamaudit/internal/store"
)

type fakeLister struct {
	principals []domain.Principal
	err        error
	calls      atomic.Int32
}

func (f *fakeLister) ListPrincipals(ctx context.Context, kind domain.PrincipalKind) ([]domain.Principal, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Principal, len(f.principals))
	copy(out, f.principals)
	return out, nil
}

type fakeAnalyzer struct {
	result      domain.AnalysisResult
	err         error
	entityCalls atomic.Int32
	policyCalls atomic.Int32
}

func (f *fakeAnalyzer) AnalyzeEntity(ctx context.Context, payload string) (domain.AnalysisResult, error) {
	f.entityCalls.Add(1)
	if f.err != nil {
		return domain.UnavailableAnalysis(), f.err
	}
	return f.result, nil
}

func (f *fakeAnalyzer) AnalyzePolicy(ctx context.Context, document string) string {
	f.policyCalls.Add(1)
	return "Grants read access to S3."
}

func healthyPrincipal(name string) domain.Principal {
	return domain.Principal{
		ID:     "arn:aws:iam::123456789012:role/" + name,
		Kind:   domain.KindRole,
		Name:   name,
		Status: domain.StatusNotAnalyzed,
		InlinePolicies: []domain.PolicyReference{
			{Name: name + "-inline", Document: "{}", Source: domain.PolicySourceInline},
		},
		AttachedPolicies: []domain.PolicyReference{},
		Role:             &domain.RolePayload{},
	}
}

func newTestAuditor(lister Lister, analyzer Analyzer, state store.KV, opts Options) *Auditor {
	return NewAuditor(lister, analyzer, analysis.NewResultCache(time.Minute), state, opts)
}

func TestRunAnalyzesEveryPrincipal(t *testing.T) {
	lister := &fakeLister{principals: []domain.Principal{
		healthyPrincipal("role-a"),
		healthyPrincipal("role-b"),
		healthyPrincipal("role-c"),
	}}
	analyzer := &fakeAnalyzer{result: domain.AnalysisResult{
		Capabilities:     "S3 read",
		BestPractice:     "Yes",
		SecurityConcerns: "No",
	}}

	batch, err := newTestAuditor(lister, analyzer, store.NewMemory(), Options{MaxConcurrent: 2}).Run(context.Background(), domain.KindRole)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if batch.ID == "" {
		t.Error("batch must carry an ID")
	}
	if len(batch.Principals) != 3 {
		t.Fatalf("got %d principals, want 3", len(batch.Principals))
	}
	for i, name := range []string{"role-a", "role-b", "role-c"} {
		p := batch.Principals[i]
		if p.Name != name {
			t.Errorf("principals[%d].Name = %q, want %q", i, p.Name, name)
		}
		if p.Analysis == nil {
			t.Errorf("%s has no analysis", name)
			continue
		}
		if p.Status != domain.StatusBestPractice {
			t.Errorf("%s Status = %q, want %q", name, p.Status, domain.StatusBestPractice)
		}
	}
	if got := analyzer.entityCalls.Load(); got != 3 {
		t.Errorf("entity calls = %d, want 3", got)
	}
}

// A failing analysis degrades its own record; siblings keep their verdicts and
// the batch stays complete.
func TestRunDegradesFailedAnalysis(t *testing.T) {
	lister := &fakeLister{principals: []domain.Principal{healthyPrincipal("role-a")}}
	analyzer := &fakeAnalyzer{err: errors.New("malformed reply")}

	batch, err := newTestAuditor(lister, analyzer, store.NewMemory(), Options{}).Run(context.Background(), domain.KindRole)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	p := batch.Principals[0]
	if p.Analysis == nil {
		t.Fatal("degraded analysis must still attach a result")
	}
	if *p.Analysis != domain.UnavailableAnalysis() {
		t.Errorf("analysis = %+v, want all-sentinel", *p.Analysis)
	}
	if p.Status != domain.StatusNotAnalyzed {
		t.Errorf("Status = %q, want %q", p.Status, domain.StatusNotAnalyzed)
	}
}

// Degraded enumeration records skip the analysis stage and keep Error status.
func TestRunSkipsDegradedRecords(t *testing.T) {
	degraded := domain.Principal{
		ID:               "role-broken",
		Kind:             domain.KindRole,
		Name:             "role-broken",
		Status:           domain.StatusError,
		MoreInfo:         domain.InfoNotFound,
		InlinePolicies:   []domain.PolicyReference{},
		AttachedPolicies: []domain.PolicyReference{},
	}
	lister := &fakeLister{principals: []domain.Principal{degraded}}
	analyzer := &fakeAnalyzer{}

	batch, err := newTestAuditor(lister, analyzer, store.NewMemory(), Options{}).Run(context.Background(), domain.KindRole)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if batch.Principals[0].Status != domain.StatusError {
		t.Errorf("Status = %q, want %q", batch.Principals[0].Status, domain.StatusError)
	}
	if got := analyzer.entityCalls.Load(); got != 0 {
		t.Errorf("entity calls = %d, want 0", got)
	}
}

// A cached verdict short-circuits the service call on the second run.
func TestRunUsesResultCache(t *testing.T) {
	lister := &fakeLister{principals: []domain.Principal{healthyPrincipal("role-a")}}
	analyzer := &fakeAnalyzer{result: domain.AnalysisResult{SecurityConcerns: "Yes"}}
	auditor := newTestAuditor(lister, analyzer, nil, Options{})

	for run := 0; run < 2; run++ {
		batch, err := auditor.Run(context.Background(), domain.KindRole)
		if err != nil {
			t.Fatalf("run %d returned error: %v", run, err)
		}
		if batch.Principals[0].Status != domain.StatusSecurityConcern {
			t.Errorf("run %d Status = %q", run, batch.Principals[0].Status)
		}
	}
	if got := analyzer.entityCalls.Load(); got != 1 {
		t.Errorf("entity calls = %d, want 1 (second run served from cache)", got)
	}
}

func TestRunServesFreshListingFromState(t *testing.T) {
	lister := &fakeLister{principals: []domain.Principal{healthyPrincipal("role-a")}}
	analyzer := &fakeAnalyzer{result: domain.AnalysisResult{BestPractice: "Yes"}}
	state := store.NewMemory()
	auditor := newTestAuditor(lister, analyzer, state, Options{CacheTTL: time.Minute})

	first, err := auditor.Run(context.Background(), domain.KindRole)
	if err != nil {
		t.Fatalf("first run returned error: %v", err)
	}
	if first.FromCache {
		t.Error("first run must not come from cache")
	}

	second, err := auditor.Run(context.Background(), domain.KindRole)
	if err != nil {
		t.Fatalf("second run returned error: %v", err)
	}
	if !second.FromCache {
		t.Error("second run within the TTL must come from the state store")
	}
	if got := lister.calls.Load(); got != 1 {
		t.Errorf("lister calls = %d, want 1", got)
	}
	if len(second.Principals) != 1 || second.Principals[0].Name != "role-a" {
		t.Errorf("cached principals = %+v", second.Principals)
	}
}

func TestRunIgnoresStaleListing(t *testing.T) {
	lister := &fakeLister{principals: []domain.Principal{healthyPrincipal("role-a")}}
	state := store.NewMemory()
	stale := time.Now().Add(-time.Hour).UnixMilli()
	state.Set(store.KeyCacheTimestamp, strconv.FormatInt(stale, 10))
	state.Set(store.ListingKey("role"), `[{"id":"old","kind":"role","name":"old"}]`)

	auditor := newTestAuditor(lister, &fakeAnalyzer{}, state, Options{CacheTTL: time.Minute})
	batch, err := auditor.Run(context.Background(), domain.KindRole)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if batch.FromCache {
		t.Error("stale listing must be re-enumerated")
	}
	if got := lister.calls.Load(); got != 1 {
		t.Errorf("lister calls = %d, want 1", got)
	}
}

func TestRunEnumerationFailure(t *testing.T) {
	lister := &fakeLister{err: errors.New("expired credentials")}
	_, err := newTestAuditor(lister, &fakeAnalyzer{}, nil, Options{}).Run(context.Background(), domain.KindRole)
	if err == nil {
		t.Fatal("expected an error when enumeration fails")
	}
}

func TestRunSkipAnalysis(t *testing.T) {
	lister := &fakeLister{principals: []domain.Principal{healthyPrincipal("role-a")}}
	analyzer := &fakeAnalyzer{}

	batch, err := newTestAuditor(lister, analyzer, nil, Options{SkipAnalysis: true}).Run(context.Background(), domain.KindRole)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if batch.Principals[0].Analysis != nil {
		t.Error("analysis must be skipped")
	}
	if batch.Principals[0].Status != domain.StatusNotAnalyzed {
		t.Errorf("Status = %q", batch.Principals[0].Status)
	}
	if got := analyzer.entityCalls.Load(); got != 0 {
		t.Errorf("entity calls = %d, want 0", got)
	}
}

func TestRunAnalyzePolicies(t *testing.T) {
	p := healthyPrincipal("role-a")
	p.InlinePolicies = append(p.InlinePolicies, domain.UnavailablePolicy("broken", domain.PolicySourceInline))
	lister := &fakeLister{principals: []domain.Principal{p}}
	analyzer := &fakeAnalyzer{result: domain.AnalysisResult{BestPractice: "Yes"}}
	state := store.NewMemory()

	batch, err := newTestAuditor(lister, analyzer, state, Options{AnalyzePolicies: true}).Run(context.Background(), domain.KindRole)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	refs := batch.Principals[0].InlinePolicies
	if refs[0].Analysis != "Grants read access to S3." {
		t.Errorf("policy analysis = %q", refs[0].Analysis)
	}
	// Unavailable references are never sent to the analysis service.
	if refs[1].Analysis != "" {
		t.Errorf("degraded policy got an analysis: %q", refs[1].Analysis)
	}
	if got := analyzer.policyCalls.Load(); got != 1 {
		t.Errorf("policy calls = %d, want 1", got)
	}
	if _, ok := state.Get(store.AnalysisKey("role-a-inline")); !ok {
		t.Error("policy analysis must be written through to the state store")
	}
}
