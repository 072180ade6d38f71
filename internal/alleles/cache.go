// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package alleles

import (
	"sync"

	"github.com/pdiddy/donor-match/pkg/types"
)

// historicalNames holds, per locus, every allele name that appears in a
// version's history records.
type historicalNames map[types.Locus]map[string]bool

func (h historicalNames) contains(locus types.Locus, name string) bool {
	return h[locus][name]
}

// HistoryCache memoises historical names per nomenclature version. Entries
// are written once and read many times. Two goroutines may compute the same
// version concurrently; both results are identical and the first stored wins.
type HistoryCache struct {
	mu      sync.RWMutex
	entries map[string]historicalNames
}

// NewHistoryCache returns an empty cache.
func NewHistoryCache() *HistoryCache {
	return &HistoryCache{entries: make(map[string]historicalNames)}
}

func (c *HistoryCache) getOrCompute(version string, compute func() historicalNames) historicalNames {
	c.mu.RLock()
	h, ok := c.entries[version]
	c.mu.RUnlock()
	if ok {
		return h
	}

	computed := compute()

	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.entries[version]; ok {
		return h
	}
	c.entries[version] = computed
	return computed
}

// Len returns the number of cached versions.
func (c *HistoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
