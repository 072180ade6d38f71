// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fixtures provides a small, internally consistent reference
// dataset. Tests compile it; `mage sample` writes it out as a dataset file.
package fixtures

import "github.com/pdiddy/donor-match/pkg/types"

// Version is the nomenclature version of Dataset.
const Version = "3400"

// Dataset returns a fresh copy of the sample dataset.
//
// Serology families: A2 (not-split, associated 203 and 210), A9 (broad,
// splits 23 and 24, with 2403 associated to 24), A10 (broad, 34 deleted),
// B21 (broad, splits 49 and 50, associated 4005), B14 (broad).
//
// Allele histories: A*01:01:01 was renamed 01:01:01:01; A*01:01:02 was
// deleted as identical to 01:01:01:01; A*05:01 vanished without trace;
// A*07:01:01:01 is current in the history but missing from the allele list.
func Dataset() *types.Dataset {
	return &types.Dataset{
		Version: Version,
		Serologies: []types.SerologyRecord{
			{Locus: types.LocusA, Name: "1"},
			{Locus: types.LocusA, Name: "2"},
			{Locus: types.LocusA, Name: "203"},
			{Locus: types.LocusA, Name: "210"},
			{Locus: types.LocusA, Name: "9"},
			{Locus: types.LocusA, Name: "23"},
			{Locus: types.LocusA, Name: "24"},
			{Locus: types.LocusA, Name: "2403"},
			{Locus: types.LocusA, Name: "10"},
			{Locus: types.LocusA, Name: "25"},
			{Locus: types.LocusA, Name: "26"},
			{Locus: types.LocusA, Name: "34", IsDeleted: true},
			{Locus: types.LocusA, Name: "66"},
			{Locus: types.LocusB, Name: "8"},
			{Locus: types.LocusB, Name: "14"},
			{Locus: types.LocusB, Name: "64"},
			{Locus: types.LocusB, Name: "65"},
			{Locus: types.LocusB, Name: "21"},
			{Locus: types.LocusB, Name: "49"},
			{Locus: types.LocusB, Name: "50"},
			{Locus: types.LocusB, Name: "4005"},
		},
		SerologyRelationships: []types.SerologyRelationship{
			{Locus: types.LocusA, Name: "2", AssociatedAntigens: []string{"203", "210"}},
			{Locus: types.LocusA, Name: "9", SplitAntigens: []string{"23", "24"}},
			{Locus: types.LocusA, Name: "24", AssociatedAntigens: []string{"2403"}},
			{Locus: types.LocusA, Name: "10", SplitAntigens: []string{"25", "26", "34", "66"}},
			{Locus: types.LocusB, Name: "14", SplitAntigens: []string{"64", "65"}},
			{Locus: types.LocusB, Name: "21", SplitAntigens: []string{"49", "50"}, AssociatedAntigens: []string{"4005"}},
		},
		AlleleSerologyRelationships: []types.AlleleSerologyRelationship{
			{Locus: types.LocusA, AlleleName: "01:01:01:01", Serologies: []string{"1"}},
			{Locus: types.LocusA, AlleleName: "01:02", Serologies: []string{"1"}},
			{Locus: types.LocusA, AlleleName: "02:01:01:01", Serologies: []string{"2"}},
			{Locus: types.LocusA, AlleleName: "02:01:01:02L", Serologies: []string{"2"}},
			{Locus: types.LocusA, AlleleName: "23:01:01:01", Serologies: []string{"23"}},
			{Locus: types.LocusA, AlleleName: "24:02:01:01", Serologies: []string{"24"}},
			{Locus: types.LocusA, AlleleName: "24:03:01:01", Serologies: []string{"2403"}},
			{Locus: types.LocusB, AlleleName: "08:01:01:01", Serologies: []string{"8"}},
			{Locus: types.LocusB, AlleleName: "40:05:01:01", Serologies: []string{"4005"}},
			{Locus: types.LocusB, AlleleName: "49:01:01:01", Serologies: []string{"49"}},
			{Locus: types.LocusB, AlleleName: "50:01:01:01", Serologies: []string{"50"}},
		},
		Alleles: []types.AlleleRecord{
			{Locus: types.LocusA, Name: "01:01:01:01"},
			{Locus: types.LocusA, Name: "01:01:01:02N"},
			{Locus: types.LocusA, Name: "01:02"},
			{Locus: types.LocusA, Name: "02:01:01:01"},
			{Locus: types.LocusA, Name: "02:01:01:02L"},
			{Locus: types.LocusA, Name: "23:01:01:01"},
			{Locus: types.LocusA, Name: "24:02:01:01"},
			{Locus: types.LocusA, Name: "24:03:01:01"},
			{Locus: types.LocusA, Name: "01:01:02", IsDeleted: true, IdenticalTo: "01:01:01:01"},
			{Locus: types.LocusA, Name: "99:01", IsDeleted: true},
			{Locus: types.LocusB, Name: "08:01:01:01"},
			{Locus: types.LocusB, Name: "40:05:01:01"},
			{Locus: types.LocusB, Name: "49:01:01:01"},
			{Locus: types.LocusB, Name: "50:01:01:01"},
		},
		Histories: []types.AlleleNameHistory{
			{Locus: types.LocusA, ID: "HLA00001", Names: []types.VersionedName{
				{Version: "3300", Name: "01:01:01"},
				{Version: "3400", Name: "01:01:01:01"},
			}},
			{Locus: types.LocusA, ID: "HLA00002", Names: []types.VersionedName{
				{Version: "3300", Name: "01:01:02"},
				{Version: "3400"},
			}},
			{Locus: types.LocusA, ID: "HLA00003", Names: []types.VersionedName{
				{Version: "3300", Name: "05:01"},
				{Version: "3400"},
			}},
			{Locus: types.LocusA, ID: "HLA00007", Names: []types.VersionedName{
				{Version: "3400", Name: "07:01:01:01"},
			}},
		},
		PGroups: []types.AlleleGroup{
			{Locus: types.LocusA, Name: "01:01P", Alleles: []string{"01:01:01:01"}},
			{Locus: types.LocusA, Name: "01:02P", Alleles: []string{"01:02"}},
			{Locus: types.LocusA, Name: "02:01P", Alleles: []string{"02:01:01:01", "02:01:01:02L"}},
			{Locus: types.LocusA, Name: "23:01P", Alleles: []string{"23:01:01:01"}},
			{Locus: types.LocusA, Name: "24:02P", Alleles: []string{"24:02:01:01"}},
			{Locus: types.LocusA, Name: "24:03P", Alleles: []string{"24:03:01:01"}},
			{Locus: types.LocusB, Name: "08:01P", Alleles: []string{"08:01:01:01"}},
			{Locus: types.LocusB, Name: "40:05P", Alleles: []string{"40:05:01:01"}},
			{Locus: types.LocusB, Name: "49:01P", Alleles: []string{"49:01:01:01"}},
			{Locus: types.LocusB, Name: "50:01P", Alleles: []string{"50:01:01:01"}},
		},
		GGroups: []types.AlleleGroup{
			{Locus: types.LocusA, Name: "01:01:01G", Alleles: []string{"01:01:01:01"}},
			{Locus: types.LocusA, Name: "02:01:01G", Alleles: []string{"02:01:01:01"}},
			{Locus: types.LocusA, Name: "02:01:02G", Alleles: []string{"02:01:01:02L"}},
			{Locus: types.LocusA, Name: "24:02:01G", Alleles: []string{"24:02:01:01"}},
		},
	}
}
