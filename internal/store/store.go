// Package store provides the opaque string key/value state store consumed by
// the pipeline: credential-adjacent metadata, per-kind listing caches, the
// batch timestamp and cached per-unit analysis text. The pipeline never
// assumes a storage technology beyond Get/Set/Contains.
package store

import "sync"

// Well-known keys. Per-kind listing caches and per-unit analysis entries are
// built with the prefix helpers below.
const (
	KeyCacheTimestamp = "cacheTimestamp"
	KeyCallerARN      = "callerArn"

	listingPrefix  = "listing_"
	analysisPrefix = "analysis_"
)

// ListingKey returns the state key for the cached listing of one kind
func ListingKey(kind string) string {
	return listingPrefix + kind
}

// AnalysisKey returns the state key for one cached analysis text
func AnalysisKey(unit string) string {
	return analysisPrefix + unit
}

// KV is the state store contract. Implementations are safe for concurrent
// use; each call is a single atomic key operation.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Contains(key string) bool
}

// Memory is an in-process KV, used when no state file is wanted
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Contains(key string) bool {
	_, ok := m.Get(key)
	return ok
}
