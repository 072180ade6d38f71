// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compile

import (
	"sort"
	"strings"

	"github.com/pdiddy/donor-match/pkg/types"
)

// Dictionary is the compiled artifact for one nomenclature version. It is
// built once and never mutated, so concurrent readers need no locking.
type Dictionary struct {
	version string
	records map[types.LookupKey]types.LookupRecord
	keys    []types.LookupKey
}

// NewDictionary assembles records into a dictionary for version. Two records
// with the same key are a *types.DataConsistencyError.
func NewDictionary(version string, records []types.LookupRecord) (*Dictionary, error) {
	d := &Dictionary{
		version: version,
		records: make(map[types.LookupKey]types.LookupRecord, len(records)),
		keys:    make([]types.LookupKey, 0, len(records)),
	}
	for _, r := range records {
		if _, dup := d.records[r.Key]; dup {
			return nil, &types.DataConsistencyError{
				Locus:  r.Key.Locus,
				Name:   r.Key.Name,
				Reason: "duplicate " + string(r.Key.Method) + " lookup key",
			}
		}
		r.Version = version
		d.records[r.Key] = r
		d.keys = append(d.keys, r.Key)
	}
	sortKeys(d.keys)
	return d, nil
}

func sortKeys(keys []types.LookupKey) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Method != b.Method {
			return a.Method < b.Method
		}
		if a.Locus != b.Locus {
			return a.Locus < b.Locus
		}
		return a.Name < b.Name
	})
}

// Version returns the nomenclature version the dictionary was compiled for.
func (d *Dictionary) Version() string {
	return d.version
}

// Len returns the number of lookup records.
func (d *Dictionary) Len() int {
	return len(d.records)
}

// Count returns the number of records with the given typing method.
func (d *Dictionary) Count(method types.TypingMethod) int {
	n := 0
	for _, k := range d.keys {
		if k.Method == method {
			n++
		}
	}
	return n
}

// Record returns the lookup record for key.
func (d *Dictionary) Record(key types.LookupKey) (types.LookupRecord, bool) {
	r, ok := d.records[normalizeKey(key)]
	return r, ok
}

// Lookup returns the matching payload for a name.
func (d *Dictionary) Lookup(locus types.Locus, name string, method types.TypingMethod) (types.MatchingInfo, bool) {
	r, ok := d.Record(types.LookupKey{Locus: locus, Name: name, Method: method})
	if !ok {
		return types.MatchingInfo{}, false
	}
	return r.Matching, true
}

// ScoringLookup returns the scoring payload for a name.
func (d *Dictionary) ScoringLookup(locus types.Locus, name string, method types.TypingMethod) (types.ScoringInfo, bool) {
	r, ok := d.Record(types.LookupKey{Locus: locus, Name: name, Method: method})
	if !ok {
		return nil, false
	}
	return r.Scoring, true
}

// Records returns every record ordered by method, locus, then name.
func (d *Dictionary) Records() []types.LookupRecord {
	out := make([]types.LookupRecord, len(d.keys))
	for i, k := range d.keys {
		out[i] = d.records[k]
	}
	return out
}

// normalizeKey strips a WMDA locus prefix ("A*", "DRB1*") and surrounding
// whitespace from the name.
func normalizeKey(key types.LookupKey) types.LookupKey {
	name := strings.TrimSpace(key.Name)
	if i := strings.Index(name, "*"); i >= 0 {
		name = name[i+1:]
	}
	key.Name = name
	return key
}
