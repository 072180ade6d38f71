// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SerologyRecord lists one serology typing in a nomenclature version.
type SerologyRecord struct {
	Locus     Locus  `json:"locus" yaml:"locus"`
	Name      string `json:"name" yaml:"name"`
	IsDeleted bool   `json:"is_deleted,omitempty" yaml:"is_deleted,omitempty"`
}

// SerologyRelationship is a serology-to-serology record: a broad candidate
// and the antigens split from or associated with it.
type SerologyRelationship struct {
	Locus              Locus    `json:"locus" yaml:"locus"`
	Name               string   `json:"name" yaml:"name"`
	SplitAntigens      []string `json:"split_antigens,omitempty" yaml:"split_antigens,omitempty"`
	AssociatedAntigens []string `json:"associated_antigens,omitempty" yaml:"associated_antigens,omitempty"`
}

// AlleleSerologyRelationship assigns serology names to an allele.
type AlleleSerologyRelationship struct {
	Locus      Locus    `json:"locus" yaml:"locus"`
	AlleleName string   `json:"allele_name" yaml:"allele_name"`
	Serologies []string `json:"serologies" yaml:"serologies"`
}

// AlleleRecord lists one allele in a nomenclature version. Deleted alleles
// may name the allele they were found identical to.
type AlleleRecord struct {
	Locus       Locus  `json:"locus" yaml:"locus"`
	Name        string `json:"name" yaml:"name"`
	IsDeleted   bool   `json:"is_deleted,omitempty" yaml:"is_deleted,omitempty"`
	IdenticalTo string `json:"identical_to,omitempty" yaml:"identical_to,omitempty"`
}

// VersionedName is an allele's name as published in one version.
type VersionedName struct {
	Version string `json:"version" yaml:"version"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
}

// AlleleNameHistory tracks one allele (by its stable ID) across versions.
// A version in which the allele does not exist has an empty Name.
type AlleleNameHistory struct {
	Locus Locus           `json:"locus" yaml:"locus"`
	ID    string          `json:"id" yaml:"id"`
	Names []VersionedName `json:"names" yaml:"names"`
}

// AlleleGroup is a P-group or G-group and the alleles it contains.
type AlleleGroup struct {
	Locus   Locus    `json:"locus" yaml:"locus"`
	Name    string   `json:"name" yaml:"name"`
	Alleles []string `json:"alleles" yaml:"alleles"`
}

// Dataset is the reference data for one nomenclature version. It is read
// only once loaded.
type Dataset struct {
	Version                     string                       `json:"version" yaml:"version"`
	Serologies                  []SerologyRecord             `json:"serologies" yaml:"serologies"`
	SerologyRelationships       []SerologyRelationship       `json:"serology_relationships" yaml:"serology_relationships"`
	AlleleSerologyRelationships []AlleleSerologyRelationship `json:"allele_serology_relationships" yaml:"allele_serology_relationships"`
	Alleles                     []AlleleRecord               `json:"alleles" yaml:"alleles"`
	Histories                   []AlleleNameHistory          `json:"histories" yaml:"histories"`
	PGroups                     []AlleleGroup                `json:"p_groups" yaml:"p_groups"`
	GGroups                     []AlleleGroup                `json:"g_groups" yaml:"g_groups"`
}
