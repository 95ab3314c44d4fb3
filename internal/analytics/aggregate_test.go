// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trial-analyzer/pkg/types"
)

func intPtr(n int) *int { return &n }

func sum(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want int
	}{
		{"empty", nil, 0},
		{"single", []int{4}, 4},
		{"even", []int{2, 4}, 3},
		{"odd unsorted", []int{9, 1, 2}, 2},
		{"even rounds half up", []int{1, 2}, 2},
		{"even four", []int{10, 40, 20, 30}, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Median(tt.in))
		})
	}
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	in := []int{3, 1, 2}
	Median(in)
	assert.Equal(t, []int{3, 1, 2}, in)
}

func TestPhaseDistributionUsesFirstPhase(t *testing.T) {
	records := []types.TrialRecord{
		{Identifier: "A", Phases: []string{"PHASE1", "PHASE2"}},
		{Identifier: "B", Phases: []string{"PHASE2"}},
		{Identifier: "C"},
	}
	assert.Equal(t, map[string]int{"PHASE1": 1, "PHASE2": 1, "Unknown": 1}, PhaseDistribution(records))
}

func TestStatusSummaryDefaultsUnknown(t *testing.T) {
	records := []types.TrialRecord{
		{Identifier: "A", OverallStatus: "Recruiting"},
		{Identifier: "B", OverallStatus: "Completed"},
		{Identifier: "C", OverallStatus: "Recruiting"},
		{Identifier: "D"},
	}
	assert.Equal(t, map[string]int{"Recruiting": 2, "Completed": 1, "Unknown": 1}, StatusSummary(records))
}

func TestTherapeuticAreasCountsEachCondition(t *testing.T) {
	records := []types.TrialRecord{
		{Identifier: "A", Conditions: []string{"Oncology", "Rare Disease"}},
		{Identifier: "B", Conditions: []string{"Oncology"}},
		{Identifier: "C"},
	}
	areas := TherapeuticAreas(records)
	assert.Equal(t, map[string]int{"Oncology": 2, "Rare Disease": 1}, areas)
	assert.Greater(t, sum(areas), 2)
}

func TestActiveTrialsIsCaseSensitive(t *testing.T) {
	records := []types.TrialRecord{
		{Identifier: "A", OverallStatus: "Recruiting"},
		{Identifier: "B", OverallStatus: "RECRUITING"},
		{Identifier: "C", OverallStatus: "Active"},
	}
	assert.Equal(t, 1, ActiveTrials(records))
}

func TestEnrollmentExcludesMissingAndZero(t *testing.T) {
	records := []types.TrialRecord{
		{Identifier: "A", EnrollmentCount: intPtr(10)},
		{Identifier: "B", EnrollmentCount: intPtr(0)},
		{Identifier: "C"},
		{Identifier: "D", EnrollmentCount: intPtr(25)},
	}
	assert.Equal(t, types.EnrollmentStats{Total: 35, Average: 18, Median: 18}, Enrollment(records))
	assert.Equal(t, types.EnrollmentStats{}, Enrollment(nil))
}

func TestInterventionsGroupsByType(t *testing.T) {
	records := []types.TrialRecord{
		{Identifier: "A", Interventions: []types.Intervention{{Type: "DRUG", Name: "TERN-501"}, {Type: "DRUG", Name: "Placebo"}}},
		{Identifier: "B", Interventions: []types.Intervention{{Type: "BEHAVIORAL", Name: "Diet"}}},
	}
	assert.Equal(t, map[string][]string{
		"DRUG":       {"TERN-501", "Placebo"},
		"BEHAVIORAL": {"Diet"},
	}, Interventions(records))
}

func TestSummarizeSingleRecord(t *testing.T) {
	records := []types.TrialRecord{{
		Identifier:      "NCT00000001",
		Phases:          []string{"Phase 2"},
		OverallStatus:   "Recruiting",
		Conditions:      []string{"Oncology", "Rare Disease"},
		EnrollmentCount: intPtr(40),
	}}

	s := Summarize(records, nil)
	assert.Equal(t, map[string]int{"Phase 2": 1}, s.PhaseDistribution)
	assert.Equal(t, map[string]int{"Recruiting": 1}, s.StatusSummary)
	assert.Equal(t, map[string]int{"Oncology": 1, "Rare Disease": 1}, s.TherapeuticAreas)
	assert.Equal(t, 1, s.TotalTrials)
	assert.Equal(t, 1, s.ActiveTrials)
	assert.Equal(t, types.EnrollmentStats{Total: 40, Average: 40, Median: 40}, s.EnrollmentStats)
	assert.Equal(t, 1, s.RegisteredTrials)
	assert.Equal(t, 0, s.PreRegistrationTrials)
}

func TestSummarizeSkipsMalformedAndKeepsInvariant(t *testing.T) {
	records := []types.TrialRecord{
		{Identifier: "NCT1", Phases: []string{"PHASE1"}, OverallStatus: "Completed"},
		{Title: "Unregistered", OverallStatus: "Recruiting"},
		{}, // malformed
		{Identifier: "NCT2", EnrollmentCount: intPtr(-5)}, // malformed
		{Identifier: "NCT3", Phases: []string{"PHASE3"}},
	}

	s := Summarize(records, nil)
	require.Equal(t, 3, s.TotalTrials)
	assert.Equal(t, 2, s.Skipped)
	assert.Equal(t, s.TotalTrials, sum(s.PhaseDistribution))
	assert.Equal(t, s.TotalTrials, sum(s.StatusSummary))
	assert.Equal(t, 2, s.RegisteredTrials)
	assert.Equal(t, 1, s.PreRegistrationTrials)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil)
	assert.Equal(t, 0, s.TotalTrials)
	assert.Empty(t, s.PhaseDistribution)
	assert.Empty(t, s.StatusSummary)
	assert.Equal(t, types.EnrollmentStats{}, s.EnrollmentStats)
}

func TestSummarizeDoesNotMutateInput(t *testing.T) {
	records := []types.TrialRecord{
		{Identifier: "B", EnrollmentCount: intPtr(30), Phases: []string{"PHASE2"}},
		{Identifier: "A", EnrollmentCount: intPtr(10)},
	}
	Summarize(records, nil)
	assert.Equal(t, "B", records[0].Identifier)
	assert.Equal(t, 30, *records[0].EnrollmentCount)
	assert.Equal(t, []string{"PHASE2"}, records[0].Phases)
}
