// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// EnrollmentStats summarizes enrollment over records with a positive count.
type EnrollmentStats struct {
	Total   int `json:"total" yaml:"total"`
	Average int `json:"average" yaml:"average"`
	Median  int `json:"median" yaml:"median"`
}

// AnalyticsSummary is derived from a record set by the analytics package.
// Bucket maps carry no ordering guarantee.
type AnalyticsSummary struct {
	PhaseDistribution map[string]int `json:"phase_distribution" yaml:"phase_distribution"`
	StatusSummary     map[string]int `json:"status_summary" yaml:"status_summary"`

	// TherapeuticAreas counts one increment per condition per record, so
	// its sum may exceed TotalTrials.
	TherapeuticAreas map[string]int `json:"therapeutic_areas" yaml:"therapeutic_areas"`

	// Interventions maps intervention type to names in first-seen order.
	Interventions map[string][]string `json:"interventions" yaml:"interventions"`

	TotalTrials           int `json:"total_trials" yaml:"total_trials"`
	ActiveTrials          int `json:"active_trials" yaml:"active_trials"`
	RegisteredTrials      int `json:"registered_trials" yaml:"registered_trials"`
	PreRegistrationTrials int `json:"pre_registration_trials" yaml:"pre_registration_trials"`

	EnrollmentStats EnrollmentStats `json:"enrollment_stats" yaml:"enrollment_stats"`

	// Skipped counts records excluded from aggregation as malformed.
	Skipped int `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// AnalysisResult is the output of one analysis run. It is created fresh on
// every run and handed to the persistence layer unchanged.
type AnalysisResult struct {
	OrganizationName string           `json:"organization_name" yaml:"organization_name"`
	QueryTimestamp   time.Time        `json:"query_timestamp" yaml:"query_timestamp"`
	Studies          []TrialRecord    `json:"studies" yaml:"studies"`
	DrugCodes        []DrugIdentifier `json:"drug_codes,omitempty" yaml:"drug_codes,omitempty"`
	Analytics        AnalyticsSummary `json:"analytics" yaml:"analytics"`
}
