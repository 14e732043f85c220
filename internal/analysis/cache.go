package analysis

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"iamaudit/internal/domain"
)

// DefaultCacheTTL is how long an analysis result stays valid
const DefaultCacheTTL = 15 * time.Minute

// ResultCache memoizes analysis results per analyzable unit: structured
// verdicts keyed by principal ID, free-text summaries keyed by policy name.
// Entries expire after the TTL; an expired entry behaves as absent and is
// replaced on the next Put.
type ResultCache struct {
	results *expirable.LRU[string, domain.AnalysisResult]
	texts   *expirable.LRU[string, string]
}

// NewResultCache returns a cache whose entries expire after ttl
func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResultCache{
		results: expirable.NewLRU[string, domain.AnalysisResult](0, nil, ttl),
		texts:   expirable.NewLRU[string, string](0, nil, ttl),
	}
}

// GetResult returns the cached structured verdict for key, if still valid
func (c *ResultCache) GetResult(key string) (domain.AnalysisResult, bool) {
	return c.results.Get(key)
}

// PutResult stores a structured verdict for key
func (c *ResultCache) PutResult(key string, result domain.AnalysisResult) {
	c.results.Add(key, result)
}

// GetText returns the cached free-text summary for key, if still valid
func (c *ResultCache) GetText(key string) (string, bool) {
	return c.texts.Get(key)
}

// PutText stores a free-text summary for key
func (c *ResultCache) PutText(key, text string) {
	c.texts.Add(key, text)
}
