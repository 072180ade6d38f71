// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compile turns one nomenclature version of the reference dataset
// into an immutable Dictionary of matching and scoring lookup records, and
// manages compiled dictionaries across versions.
package compile

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/donor-match/internal/alleles"
	"github.com/pdiddy/donor-match/internal/crossmap"
	"github.com/pdiddy/donor-match/internal/logging"
	"github.com/pdiddy/donor-match/internal/metrics"
	"github.com/pdiddy/donor-match/internal/serology"
	"github.com/pdiddy/donor-match/pkg/types"
)

// Options configures a compilation run.
type Options struct {
	// Workers bounds the per-typing worker pool. Zero uses runtime.NumCPU().
	Workers int

	// Resolver supplies allele name mappings. A shared resolver keeps its
	// historical-name cache across versions; nil creates a fresh one.
	Resolver *alleles.Resolver

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// Summary reports what a compilation run produced and omitted.
type Summary struct {
	Version          string
	Serologies       int
	Alleles          int
	SerologyRecords  int
	MolecularRecords int

	// Unresolved lists lookup names omitted because none of their current
	// names is a compiled allele.
	Unresolved []*types.UnresolvedNameError

	// InvalidNames lists allele names that could not be parsed.
	InvalidNames []error

	Duration time.Duration
}

type locusName struct {
	locus types.Locus
	name  string
}

// Compile builds the dictionary for ds. It is a pure function of ds: the
// only state it touches is the resolver's cache, whose entries are
// deterministic per version. Any *types.DataConsistencyError aborts the run
// and no dictionary is returned.
func Compile(ctx context.Context, ds *types.Dataset, opts Options) (*Dictionary, Summary, error) {
	start := time.Now()
	log := logging.Component(opts.Logger, "compile")

	dict, summary, err := compile(ctx, ds, opts)
	summary.Duration = time.Since(start)
	opts.Metrics.ObserveCompile(summary.Duration, err)

	if err != nil {
		log.Error().Err(err).Str("version", summary.Version).Msg("compilation failed")
		return nil, summary, err
	}

	opts.Metrics.SetLookupRecords(summary.Version, string(types.MethodSerology), summary.SerologyRecords)
	opts.Metrics.SetLookupRecords(summary.Version, string(types.MethodMolecular), summary.MolecularRecords)
	opts.Metrics.AddUnresolved(summary.Version, len(summary.Unresolved))

	for _, u := range summary.Unresolved {
		log.Debug().Str("version", summary.Version).Str("locus", string(u.Locus)).Str("name", u.Name).Msg("lookup name omitted")
	}
	log.Info().
		Str("version", summary.Version).
		Int("serologies", summary.Serologies).
		Int("alleles", summary.Alleles).
		Int("records", dict.Len()).
		Int("unresolved", len(summary.Unresolved)).
		Int("invalid", len(summary.InvalidNames)).
		Dur("duration", summary.Duration).
		Msg("dictionary compiled")

	return dict, summary, nil
}

func compile(ctx context.Context, ds *types.Dataset, opts Options) (*Dictionary, Summary, error) {
	if ds == nil || ds.Version == "" {
		return nil, Summary{}, fmt.Errorf("dataset has no nomenclature version")
	}
	summary := Summary{Version: ds.Version}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = alleles.NewResolver()
	}

	// (a) serology expansion.
	idx := serology.NewIndex(ds.SerologyRelationships, ds.Serologies)
	serologies, err := expandSerologies(ctx, idx, serologyNames(ds), workers)
	if err != nil {
		return nil, summary, fmt.Errorf("expanding serologies: %w", err)
	}
	summary.Serologies = len(serologies)

	// Cross-typing mapping needs the complete serology expansion set.
	mapper := crossmap.NewMapper(ds.AlleleSerologyRelationships, serologies)

	groups, err := indexGroups(ds)
	if err != nil {
		return nil, summary, err
	}

	// (b) allele expansion.
	typings, invalid, err := parseAlleles(ds)
	if err != nil {
		return nil, summary, err
	}
	summary.InvalidNames = invalid
	summary.Alleles = len(typings)

	matched, err := expandAlleles(ctx, typings, mapper, groups, workers)
	if err != nil {
		return nil, summary, fmt.Errorf("expanding alleles: %w", err)
	}
	attachSerologyGroups(serologies, mapper, groups)

	// (c) molecular subtype entries.
	molecular, byName := molecularEntries(typings, matched)

	// (d) names from the allele name resolver.
	resolved := resolver.Resolve(ds)
	summary.InvalidNames = append(summary.InvalidNames, resolved.Invalid...)
	summary.Unresolved = extendWithNames(molecular, byName, resolved.Mappings)

	// (e) assembly.
	records := serologyRecords(serologies)
	records = append(records, molecularRecords(molecular, byName)...)

	dict, err := NewDictionary(ds.Version, records)
	if err != nil {
		return nil, summary, err
	}
	summary.SerologyRecords = dict.Count(types.MethodSerology)
	summary.MolecularRecords = dict.Count(types.MethodMolecular)
	return dict, summary, nil
}

// parallel runs fn(0..n-1) on at most workers goroutines and returns the
// first error. Each call must write only to its own output slot.
func parallel(ctx context.Context, workers, n int, fn func(i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// serologyNames collects every serology named by the dataset, from the
// serology list and from the relationship records.
func serologyNames(ds *types.Dataset) []locusName {
	seen := make(map[locusName]bool)
	add := func(locus types.Locus, name string) {
		if name != "" {
			seen[locusName{locus, name}] = true
		}
	}
	for _, s := range ds.Serologies {
		add(s.Locus, s.Name)
	}
	for _, r := range ds.SerologyRelationships {
		add(r.Locus, r.Name)
		for _, n := range r.SplitAntigens {
			add(r.Locus, n)
		}
		for _, n := range r.AssociatedAntigens {
			add(r.Locus, n)
		}
	}

	out := make([]locusName, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].locus != out[j].locus {
			return out[i].locus < out[j].locus
		}
		return out[i].name < out[j].name
	})
	return out
}

func expandSerologies(ctx context.Context, idx *serology.Index, names []locusName, workers int) ([]types.MatchedTyping, error) {
	out := make([]types.MatchedTyping, len(names))
	err := parallel(ctx, workers, len(names), func(i int) error {
		typing, set, err := idx.Matches(names[i].locus, names[i].name)
		if err != nil {
			return err
		}
		out[i] = types.MatchedTyping{
			Source:     typing.Typing,
			Subtype:    typing.Subtype,
			Serologies: set,
		}
		return nil
	})
	return out, err
}

type alleleGroups struct {
	p map[locusName]string
	g map[locusName]string
}

func indexGroups(ds *types.Dataset) (alleleGroups, error) {
	groups := alleleGroups{
		p: make(map[locusName]string),
		g: make(map[locusName]string),
	}
	if err := indexGroupKind(groups.p, ds.PGroups, "P"); err != nil {
		return groups, err
	}
	if err := indexGroupKind(groups.g, ds.GGroups, "G"); err != nil {
		return groups, err
	}
	return groups, nil
}

func indexGroupKind(dst map[locusName]string, src []types.AlleleGroup, kind string) error {
	for _, group := range src {
		for _, allele := range group.Alleles {
			k := locusName{group.Locus, allele}
			if existing, ok := dst[k]; ok && existing != group.Name {
				return &types.DataConsistencyError{
					Locus:  group.Locus,
					Name:   allele,
					Reason: fmt.Sprintf("allele is in %s-groups %s and %s", kind, existing, group.Name),
				}
			}
			dst[k] = group.Name
		}
	}
	return nil
}

// parseAlleles builds allele typings. Unparseable names are returned as
// non-fatal errors; a name listed twice at one locus is fatal.
func parseAlleles(ds *types.Dataset) ([]types.AlleleTyping, []error, error) {
	var (
		typings []types.AlleleTyping
		invalid []error
	)
	seen := make(map[locusName]bool, len(ds.Alleles))
	for _, rec := range ds.Alleles {
		k := locusName{rec.Locus, rec.Name}
		if seen[k] {
			return nil, nil, &types.DataConsistencyError{
				Locus:  rec.Locus,
				Name:   rec.Name,
				Reason: "duplicate molecular lookup key",
			}
		}
		seen[k] = true

		typing, err := types.NewAlleleTyping(rec.Locus, rec.Name, rec.IsDeleted)
		if err != nil {
			invalid = append(invalid, err)
			continue
		}
		typings = append(typings, typing)
	}
	return typings, invalid, nil
}

func expandAlleles(ctx context.Context, typings []types.AlleleTyping, mapper *crossmap.Mapper, groups alleleGroups, workers int) ([]types.MatchedTyping, error) {
	out := make([]types.MatchedTyping, len(typings))
	err := parallel(ctx, workers, len(typings), func(i int) error {
		a := typings[i]
		k := locusName{a.Locus, a.Name}
		out[i] = types.MatchedTyping{
			Source:     a.Typing,
			PGroups:    types.UnionStrings([]string{groups.p[k]}),
			GGroups:    types.UnionStrings([]string{groups.g[k]}),
			Serologies: mapper.SerologiesForAllele(a.Typing),
		}
		return nil
	})
	return out, err
}

// attachSerologyGroups gives each serology the P- and G-groups of every
// allele that maps to it.
func attachSerologyGroups(serologies []types.MatchedTyping, mapper *crossmap.Mapper, groups alleleGroups) {
	for i := range serologies {
		s := &serologies[i]
		var p, g []string
		for _, allele := range mapper.AllelesForSerology(s.Source.Locus, s.Serologies) {
			k := locusName{s.Source.Locus, allele}
			p = append(p, groups.p[k])
			g = append(g, groups.g[k])
		}
		s.PGroups = types.UnionStrings(p)
		s.GGroups = types.UnionStrings(g)
	}
}

func alleleInfo(m types.MatchedTyping, subtype types.MolecularSubtype) types.MatchingInfo {
	return types.MatchingInfo{
		MolecularSubtype: subtype,
		AlleleNames:      []string{m.Source.Name},
		PGroups:          m.PGroups,
		GGroups:          m.GGroups,
		Serologies:       m.Serologies,
	}
}

// molecularEntries expands every allele into its complete, two-field and
// first-field lookup names, merging entries that share a name. Deleted
// alleles get no entries here; their names reach the dictionary only through
// the name resolver, as renames or reserved names.
func molecularEntries(typings []types.AlleleTyping, matched []types.MatchedTyping) (map[types.LookupKey]types.MatchingInfo, map[locusName]types.MatchedTyping) {
	entries := make(map[types.LookupKey]types.MatchingInfo)
	byName := make(map[locusName]types.MatchedTyping, len(typings))

	add := func(locus types.Locus, name string, info types.MatchingInfo) {
		k := types.LookupKey{Locus: locus, Name: name, Method: types.MethodMolecular}
		if existing, ok := entries[k]; ok {
			info = existing.Merge(info)
		}
		entries[k] = info
	}

	for i, a := range typings {
		m := matched[i]
		byName[locusName{a.Locus, a.Name}] = m
		if a.IsDeleted {
			continue
		}

		add(a.Locus, a.Name, alleleInfo(m, types.MolecularComplete))
		add(a.Locus, a.TwoFieldNameWithoutSuffix, alleleInfo(m, types.MolecularTwoField))
		add(a.Locus, a.FirstField, alleleInfo(m, types.MolecularFirstField))
	}
	return entries, byName
}

// extendWithNames adds resolver lookup names not already present. A name
// none of whose current names is compiled is returned as unresolved.
func extendWithNames(entries map[types.LookupKey]types.MatchingInfo, byName map[locusName]types.MatchedTyping, mappings []alleles.NameMapping) []*types.UnresolvedNameError {
	var unresolved []*types.UnresolvedNameError
	for _, m := range mappings {
		k := types.LookupKey{Locus: m.Locus, Name: m.LookupName, Method: types.MethodMolecular}
		if _, ok := entries[k]; ok {
			continue
		}

		var info types.MatchingInfo
		found := 0
		for _, current := range m.CurrentNames {
			matched, ok := byName[locusName{m.Locus, current}]
			if !ok {
				continue
			}
			info = info.Merge(alleleInfo(matched, types.MolecularNone))
			found++
		}
		if found == 0 {
			unresolved = append(unresolved, &types.UnresolvedNameError{Locus: m.Locus, Name: m.LookupName})
			continue
		}

		info.MolecularSubtype = resolvedSubtype(m.LookupName, found)
		entries[k] = info
	}
	return unresolved
}

// resolvedSubtype classifies a resolver name: one field is a first-field
// name, otherwise a name standing for one allele is complete and a name
// standing for several is two-field.
func resolvedSubtype(name string, alleleCount int) types.MolecularSubtype {
	if !strings.Contains(name, ":") {
		return types.MolecularFirstField
	}
	if alleleCount == 1 {
		return types.MolecularComplete
	}
	return types.MolecularTwoField
}

func serologyRecords(serologies []types.MatchedTyping) []types.LookupRecord {
	out := make([]types.LookupRecord, len(serologies))
	for i, s := range serologies {
		out[i] = types.LookupRecord{
			Key: types.LookupKey{Locus: s.Source.Locus, Name: s.Source.Name, Method: types.MethodSerology},
			Matching: types.MatchingInfo{
				SerologySubtype: s.Subtype,
				PGroups:         s.PGroups,
				GGroups:         s.GGroups,
				Serologies:      s.Serologies,
			},
			Scoring: types.SerologyScoringInfo{Serologies: s.Serologies},
		}
	}
	return out
}

func molecularRecords(entries map[types.LookupKey]types.MatchingInfo, byName map[locusName]types.MatchedTyping) []types.LookupRecord {
	out := make([]types.LookupRecord, 0, len(entries))
	for k, info := range entries {
		out = append(out, types.LookupRecord{
			Key:      k,
			Matching: info,
			Scoring:  scoringInfoFor(k.Locus, info, byName),
		})
	}
	return out
}

// scoringInfoFor picks the scoring variant: first-field names consolidate
// to groups, a single allele keeps its own groups, and anything else lists
// its alleles.
func scoringInfoFor(locus types.Locus, info types.MatchingInfo, byName map[locusName]types.MatchedTyping) types.ScoringInfo {
	if info.MolecularSubtype == types.MolecularFirstField {
		return types.ConsolidatedMolecularScoringInfo{
			PGroups:    info.PGroups,
			GGroups:    info.GGroups,
			Serologies: info.Serologies,
		}
	}

	singles := make([]types.SingleAlleleScoringInfo, 0, len(info.AlleleNames))
	for _, name := range info.AlleleNames {
		singles = append(singles, singleAllele(byName[locusName{locus, name}]))
	}
	if len(singles) == 1 {
		return singles[0]
	}
	return types.MultipleAlleleScoringInfo{Alleles: singles}
}

func singleAllele(m types.MatchedTyping) types.SingleAlleleScoringInfo {
	s := types.SingleAlleleScoringInfo{
		AlleleName: m.Source.Name,
		Serologies: m.Serologies,
	}
	if len(m.PGroups) > 0 {
		s.PGroup = m.PGroups[0]
	}
	if len(m.GGroups) > 0 {
		s.GGroup = m.GGroups[0]
	}
	return s
}
