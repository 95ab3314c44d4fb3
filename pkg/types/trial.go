// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the trial-analyzer pipeline:
// registry trial records, analysis results, and configuration.
package types

import (
	"fmt"
	"strings"

	"github.com/pdiddy/trial-analyzer/internal/trialerr"
)

// Registry status values referenced by the analyzer.
const (
	StatusRecruiting = "Recruiting"
	StatusUnknown    = "Unknown"
	PhaseUnknown     = "Unknown"
)

// Intervention is one arm intervention listed on a trial.
type Intervention struct {
	Type string `json:"type" yaml:"type"`
	Name string `json:"name" yaml:"name"`
}

// TrialRecord is one registry entry, flattened from the registry's nested
// module structure. Records are never mutated after decoding.
type TrialRecord struct {
	// Identifier is the registry ID (e.g. "NCT01234567"). Empty for
	// records the registry returned without an identification module.
	Identifier string `json:"identifier" yaml:"identifier"`

	Title         string `json:"title" yaml:"title"`
	OverallStatus string `json:"overall_status" yaml:"overall_status"`

	// Phases lists phase labels in registry order; may be empty.
	Phases []string `json:"phases,omitempty" yaml:"phases,omitempty"`

	LeadSponsorName   string   `json:"lead_sponsor_name" yaml:"lead_sponsor_name"`
	CollaboratorNames []string `json:"collaborator_names,omitempty" yaml:"collaborator_names,omitempty"`
	BriefSummary      string   `json:"brief_summary" yaml:"brief_summary"`

	// Conditions doubles as the therapeutic-area list.
	Conditions    []string       `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Interventions []Intervention `json:"interventions,omitempty" yaml:"interventions,omitempty"`

	// EnrollmentCount is nil when the registry reports no enrollment.
	EnrollmentCount *int `json:"enrollment_count,omitempty" yaml:"enrollment_count,omitempty"`

	// StartDate and CompletionDate keep the registry's partial precision
	// ("2023", "2023-05", or "2023-05-14").
	StartDate      string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	CompletionDate string `json:"completion_date,omitempty" yaml:"completion_date,omitempty"`
}

// Validate reports whether the record carries the minimal structure the
// analyzer relies on. The returned error is an *trialerr.AggregationError.
func (r TrialRecord) Validate() error {
	if strings.TrimSpace(r.Identifier) == "" && strings.TrimSpace(r.Title) == "" {
		return &trialerr.AggregationError{Reason: "record has neither identifier nor title"}
	}
	if r.EnrollmentCount != nil && *r.EnrollmentCount < 0 {
		return &trialerr.AggregationError{
			Identifier: r.Identifier,
			Reason:     fmt.Sprintf("negative enrollment count %d", *r.EnrollmentCount),
		}
	}
	return nil
}

// IsRegistered reports whether the record has a registry identifier.
func (r TrialRecord) IsRegistered() bool {
	return strings.TrimSpace(r.Identifier) != ""
}

// Enrollment returns the enrollment count, or 0 when absent.
func (r TrialRecord) Enrollment() int {
	if r.EnrollmentCount == nil {
		return 0
	}
	return *r.EnrollmentCount
}

// DrugIdentifier is a short drug code (e.g. "TERN-501") mined from an
// intervention name.
type DrugIdentifier string

// DrugIdentifierSet deduplicates drug codes while keeping first-seen order
// so follow-up queries run deterministically.
type DrugIdentifierSet struct {
	seen  map[DrugIdentifier]struct{}
	order []DrugIdentifier
}

// NewDrugIdentifierSet returns an empty set.
func NewDrugIdentifierSet() *DrugIdentifierSet {
	return &DrugIdentifierSet{seen: make(map[DrugIdentifier]struct{})}
}

// Add inserts code and reports whether it was new.
func (s *DrugIdentifierSet) Add(code DrugIdentifier) bool {
	if _, ok := s.seen[code]; ok {
		return false
	}
	s.seen[code] = struct{}{}
	s.order = append(s.order, code)
	return true
}

// Contains reports whether code is in the set.
func (s *DrugIdentifierSet) Contains(code DrugIdentifier) bool {
	_, ok := s.seen[code]
	return ok
}

// Len returns the number of distinct codes.
func (s *DrugIdentifierSet) Len() int { return len(s.order) }

// Codes returns the codes in insertion order.
func (s *DrugIdentifierSet) Codes() []DrugIdentifier {
	out := make([]DrugIdentifier, len(s.order))
	copy(out, s.order)
	return out
}

// Clear empties the set.
func (s *DrugIdentifierSet) Clear() {
	s.seen = make(map[DrugIdentifier]struct{})
	s.order = nil
}
