// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analytics reduces a set of trial records into summary statistics.
// Every function is pure: inputs are never mutated and nothing blocks.
package analytics

import (
	"io"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/trial-analyzer/pkg/types"
)

// Summarize validates each record, skips malformed ones with a warning, and
// aggregates the rest. TotalTrials counts aggregated records, so
// sum(PhaseDistribution) == TotalTrials == sum(StatusSummary).
func Summarize(records []types.TrialRecord, log logrus.FieldLogger) types.AnalyticsSummary {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	valid := make([]types.TrialRecord, 0, len(records))
	skipped := 0
	for _, r := range records {
		if err := r.Validate(); err != nil {
			log.WithError(err).Warn("skipping record during aggregation")
			skipped++
			continue
		}
		valid = append(valid, r)
	}

	registered := RegisteredTrials(valid)
	return types.AnalyticsSummary{
		PhaseDistribution:     PhaseDistribution(valid),
		StatusSummary:         StatusSummary(valid),
		TherapeuticAreas:      TherapeuticAreas(valid),
		Interventions:         Interventions(valid),
		TotalTrials:           len(valid),
		ActiveTrials:          ActiveTrials(valid),
		RegisteredTrials:      registered,
		PreRegistrationTrials: len(valid) - registered,
		EnrollmentStats:       Enrollment(valid),
		Skipped:               skipped,
	}
}

// PhaseDistribution buckets records by their first listed phase, using
// "Unknown" when none is listed.
func PhaseDistribution(records []types.TrialRecord) map[string]int {
	out := make(map[string]int)
	for _, r := range records {
		phase := types.PhaseUnknown
		if len(r.Phases) > 0 && r.Phases[0] != "" {
			phase = r.Phases[0]
		}
		out[phase]++
	}
	return out
}

// StatusSummary buckets records by overall status, defaulting to "Unknown".
func StatusSummary(records []types.TrialRecord) map[string]int {
	out := make(map[string]int)
	for _, r := range records {
		status := r.OverallStatus
		if status == "" {
			status = types.StatusUnknown
		}
		out[status]++
	}
	return out
}

// TherapeuticAreas counts each condition of each record once.
func TherapeuticAreas(records []types.TrialRecord) map[string]int {
	out := make(map[string]int)
	for _, r := range records {
		for _, c := range r.Conditions {
			out[c]++
		}
	}
	return out
}

// Interventions groups intervention names by type in first-seen order.
func Interventions(records []types.TrialRecord) map[string][]string {
	out := make(map[string][]string)
	for _, r := range records {
		for _, iv := range r.Interventions {
			out[iv.Type] = append(out[iv.Type], iv.Name)
		}
	}
	return out
}

// ActiveTrials counts records whose status is exactly "Recruiting".
func ActiveTrials(records []types.TrialRecord) int {
	n := 0
	for _, r := range records {
		if r.OverallStatus == types.StatusRecruiting {
			n++
		}
	}
	return n
}

// RegisteredTrials counts records carrying a registry identifier.
func RegisteredTrials(records []types.TrialRecord) int {
	n := 0
	for _, r := range records {
		if r.IsRegistered() {
			n++
		}
	}
	return n
}

// Enrollment computes total, average and median over records with a
// positive enrollment count. Records without one are excluded from all three.
func Enrollment(records []types.TrialRecord) types.EnrollmentStats {
	var counts []int
	total := 0
	for _, r := range records {
		if n := r.Enrollment(); n > 0 {
			counts = append(counts, n)
			total += n
		}
	}
	if len(counts) == 0 {
		return types.EnrollmentStats{}
	}
	return types.EnrollmentStats{
		Total:   total,
		Average: roundDiv(total, len(counts)),
		Median:  Median(counts),
	}
}

// Median returns the middle value of nums, or the rounded mean of the two
// central values for even lengths. It returns 0 for an empty slice and does
// not modify nums.
func Median(nums []int) int {
	if len(nums) == 0 {
		return 0
	}
	sorted := make([]int, len(nums))
	copy(sorted, nums)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return roundDiv(sorted[mid-1]+sorted[mid], 2)
}

// roundDiv divides and rounds half away from zero; inputs are non-negative.
func roundDiv(num, den int) int {
	return int(math.Round(float64(num) / float64(den)))
}
