// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyzer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trial-analyzer/internal/registry"
	"github.com/pdiddy/trial-analyzer/internal/trialerr"
	"github.com/pdiddy/trial-analyzer/pkg/types"
)

// --- fake registry ---

// fakeRegistry serves canned responses keyed by query.term.
type fakeRegistry struct {
	mu        sync.Mutex
	responses map[string]string
	calls     map[string]int
	failTerm  string
}

func newFakeRegistry(responses map[string]string) *fakeRegistry {
	return &fakeRegistry{responses: responses, calls: make(map[string]int)}
}

func (f *fakeRegistry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("query.term")
	f.mu.Lock()
	f.calls[term]++
	f.mu.Unlock()

	if term == f.failTerm {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	body, ok := f.responses[term]
	if !ok {
		body = `{}`
	}
	w.Write([]byte(body))
}

func (f *fakeRegistry) callCount(term string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[term]
}

func newTestAnalyzer(t *testing.T, ts *httptest.Server, cfg types.AnalyzerConfig) *Analyzer {
	t.Helper()
	regCfg := types.DefaultConfig().Registry
	regCfg.Endpoint = ts.URL + "/api/v2/studies"

	client := registry.NewClient(regCfg, nil)
	client.HTTP = ts.Client()
	client.Policy.Sleep = func(context.Context, time.Duration) error { return nil }

	fixed := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	a, err := New(regCfg, cfg, client, WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	return a
}

const singleRecordResponse = `{"studies": [{"protocolSection": {
  "identificationModule": {"nctId": "NCT00000001", "briefTitle": "Acme oncology study"},
  "statusModule": {"overallStatus": "Recruiting"},
  "sponsorCollaboratorsModule": {"leadSponsor": {"name": "Acme Therapeutics, Inc."}},
  "conditionsModule": {"conditions": ["Oncology", "Rare Disease"]},
  "designModule": {"phases": ["Phase 2"], "enrollmentInfo": {"count": 40}},
  "armsInterventionsModule": {"interventions": [{"type": "DRUG", "name": "placebo"}]}
}}]}`

func TestAnalyzeEndToEndSingleRecord(t *testing.T) {
	reg := newFakeRegistry(map[string]string{"acme": singleRecordResponse})
	ts := httptest.NewServer(reg)
	defer ts.Close()

	a := newTestAnalyzer(t, ts, types.AnalyzerConfig{})
	result, err := a.AnalyzeOrganizationTrials(context.Background(), "Acme Therapeutics, Inc.")
	require.NoError(t, err)

	assert.Equal(t, "acme", result.OrganizationName)
	assert.Equal(t, time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC), result.QueryTimestamp)
	require.Len(t, result.Studies, 1)

	s := result.Analytics
	assert.Equal(t, map[string]int{"Phase 2": 1}, s.PhaseDistribution)
	assert.Equal(t, map[string]int{"Recruiting": 1}, s.StatusSummary)
	assert.Equal(t, map[string]int{"Oncology": 1, "Rare Disease": 1}, s.TherapeuticAreas)
	assert.Equal(t, 1, s.TotalTrials)
	assert.Equal(t, 1, s.ActiveTrials)
	assert.Equal(t, types.EnrollmentStats{Total: 40, Average: 40, Median: 40}, s.EnrollmentStats)
	assert.Empty(t, result.DrugCodes)
}

const primaryWithCodes = `{"studies": [
  {"protocolSection": {
    "identificationModule": {"nctId": "NCT1"},
    "statusModule": {"overallStatus": "Completed"},
    "sponsorCollaboratorsModule": {"leadSponsor": {"name": "Terns Pharmaceuticals"}},
    "armsInterventionsModule": {"interventions": [{"type": "DRUG", "name": "TERN-501 tablet"}]}
  }},
  {"protocolSection": {
    "identificationModule": {"nctId": "NCT2"},
    "statusModule": {"overallStatus": "Recruiting"},
    "sponsorCollaboratorsModule": {"leadSponsor": {"name": "Unrelated University"}},
    "armsInterventionsModule": {"interventions": [{"type": "DRUG", "name": "XYZ-900"}]}
  }}
]}`

const drugCodeResponse = `{"studies": [
  {"protocolSection": {
    "identificationModule": {"nctId": "NCT1"},
    "statusModule": {"overallStatus": "Completed"},
    "sponsorCollaboratorsModule": {"leadSponsor": {"name": "Terns Pharmaceuticals"}}
  }},
  {"protocolSection": {
    "identificationModule": {"nctId": "NCT3"},
    "statusModule": {"overallStatus": "Recruiting"},
    "sponsorCollaboratorsModule": {"leadSponsor": {"name": "Partner Co"}, "collaborators": [{"name": "Terns, Inc."}]}
  }},
  {"protocolSection": {
    "identificationModule": {"nctId": "NCT4"},
    "statusModule": {"overallStatus": "Recruiting"},
    "sponsorCollaboratorsModule": {"leadSponsor": {"name": "Someone Else"}}
  }}
]}`

func TestAnalyzeFollowsDrugCodes(t *testing.T) {
	reg := newFakeRegistry(map[string]string{
		"terns":    primaryWithCodes,
		"TERN-501": drugCodeResponse,
	})
	ts := httptest.NewServer(reg)
	defer ts.Close()

	a := newTestAnalyzer(t, ts, types.AnalyzerConfig{})
	result, err := a.AnalyzeOrganizationTrials(context.Background(), "Terns, Inc.")
	require.NoError(t, err)

	var ids []string
	for _, s := range result.Studies {
		ids = append(ids, s.Identifier)
	}
	// NCT2 is kept from the primary query even though unrelated; NCT1 is
	// not duplicated; NCT4 fails relevance on the drug-code query.
	assert.Equal(t, []string{"NCT1", "NCT2", "NCT3"}, ids)

	// XYZ-900 only appears on an unrelated record, so it is never queried.
	assert.Equal(t, []types.DrugIdentifier{"TERN-501"}, result.DrugCodes)
	assert.Equal(t, 0, reg.callCount("XYZ-900"))
	assert.Equal(t, 1, reg.callCount("TERN-501"))
	assert.Equal(t, 3, result.Analytics.TotalTrials)
	assert.Equal(t, 2, result.Analytics.ActiveTrials)
	assert.Equal(t, []types.DrugIdentifier{"TERN-501"}, a.KnownDrugCodes())
}

const bravoResponse = `{"studies": [{"protocolSection": {
  "identificationModule": {"nctId": "NCT9"},
  "statusModule": {"overallStatus": "Completed"},
  "sponsorCollaboratorsModule": {"leadSponsor": {"name": "Bravo Biosciences"}}
}}]}`

func TestAnalyzeConcurrentOrganizationsShareCache(t *testing.T) {
	reg := newFakeRegistry(map[string]string{
		"terns":    primaryWithCodes,
		"TERN-501": drugCodeResponse,
		"acme":     singleRecordResponse,
		"bravo":    bravoResponse,
	})
	ts := httptest.NewServer(reg)
	defer ts.Close()

	a := newTestAnalyzer(t, ts, types.AnalyzerConfig{})

	want := map[string][]string{
		"Terns, Inc.":       {"NCT1", "NCT2", "NCT3"},
		"Acme Therapeutics": {"NCT00000001"},
		"Bravo Biosciences": {"NCT9"},
	}
	const runsPerOrg = 4

	type outcome struct {
		org string
		ids []string
		err error
	}
	results := make(chan outcome, len(want)*runsPerOrg)

	var wg sync.WaitGroup
	for org := range want {
		for i := 0; i < runsPerOrg; i++ {
			wg.Add(1)
			go func(org string) {
				defer wg.Done()
				res, err := a.AnalyzeOrganizationTrials(context.Background(), org)
				o := outcome{org: org, err: err}
				if res != nil {
					for _, st := range res.Studies {
						o.ids = append(o.ids, st.Identifier)
					}
				}
				results <- o
			}(org)
		}
	}
	wg.Wait()
	close(results)

	for o := range results {
		require.NoError(t, o.err, o.org)
		assert.Equal(t, want[o.org], o.ids, o.org)
	}

	for _, term := range []string{"terns", "TERN-501", "acme", "bravo"} {
		n := reg.callCount(term)
		assert.GreaterOrEqual(t, n, 1, term)
		assert.LessOrEqual(t, n, runsPerOrg, term)
	}
	assert.Equal(t, []types.DrugIdentifier{"TERN-501"}, a.KnownDrugCodes())

	// Each cached entry holds the response for its own term.
	cached := map[string]string{"terns": "NCT1", "acme": "NCT00000001", "bravo": "NCT9"}
	for term, firstID := range cached {
		before := reg.callCount(term)
		u, err := a.queries.OrganizationQuery(term)
		require.NoError(t, err)
		resp, err := a.Cache().GetOrFetch(context.Background(), u)
		require.NoError(t, err)
		records := resp.Records()
		require.NotEmpty(t, records, term)
		assert.Equal(t, firstID, records[0].Identifier, term)
		assert.Equal(t, before, reg.callCount(term), "served from cache: %s", term)
	}
	assert.Equal(t, 4, a.Cache().Len())
}

func TestAnalyzeFilterPrimary(t *testing.T) {
	reg := newFakeRegistry(map[string]string{"terns": primaryWithCodes, "TERN-501": `{}`})
	ts := httptest.NewServer(reg)
	defer ts.Close()

	a := newTestAnalyzer(t, ts, types.AnalyzerConfig{FilterPrimary: true})
	result, err := a.AnalyzeOrganizationTrials(context.Background(), "Terns")
	require.NoError(t, err)
	require.Len(t, result.Studies, 1)
	assert.Equal(t, "NCT1", result.Studies[0].Identifier)
}

func TestAnalyzeUsesCacheAcrossRuns(t *testing.T) {
	reg := newFakeRegistry(map[string]string{"acme": singleRecordResponse})
	ts := httptest.NewServer(reg)
	defer ts.Close()

	a := newTestAnalyzer(t, ts, types.AnalyzerConfig{})
	_, err := a.AnalyzeOrganizationTrials(context.Background(), "Acme")
	require.NoError(t, err)
	_, err = a.AnalyzeOrganizationTrials(context.Background(), "ACME Inc")
	require.NoError(t, err)
	assert.Equal(t, 1, reg.callCount("acme"))

	a.Reset()
	assert.Empty(t, a.KnownDrugCodes())
	_, err = a.AnalyzeOrganizationTrials(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, 2, reg.callCount("acme"))
}

func TestAnalyzeEmptyNameIsInvalidInput(t *testing.T) {
	ts := httptest.NewServer(newFakeRegistry(nil))
	defer ts.Close()

	a := newTestAnalyzer(t, ts, types.AnalyzerConfig{})
	for _, name := range []string{"", "   ", "Inc.", "!!!"} {
		result, err := a.AnalyzeOrganizationTrials(context.Background(), name)
		assert.Nil(t, result)
		assert.True(t, trialerr.IsInvalidInput(err), "name %q", name)
	}
}

func TestAnalyzePrimaryFailureIsTerminal(t *testing.T) {
	reg := newFakeRegistry(nil)
	reg.failTerm = "acme"
	ts := httptest.NewServer(reg)
	defer ts.Close()

	a := newTestAnalyzer(t, ts, types.AnalyzerConfig{})
	result, err := a.AnalyzeOrganizationTrials(context.Background(), "Acme")
	assert.Nil(t, result)

	var fe *trialerr.RegistryFetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
	assert.Equal(t, 3, reg.callCount("acme"))
}

func TestAnalyzeSecondaryFailureReturnsNoPartialResult(t *testing.T) {
	reg := newFakeRegistry(map[string]string{"terns": primaryWithCodes})
	reg.failTerm = "TERN-501"
	ts := httptest.NewServer(reg)
	defer ts.Close()

	a := newTestAnalyzer(t, ts, types.AnalyzerConfig{})
	result, err := a.AnalyzeOrganizationTrials(context.Background(), "Terns")
	assert.Nil(t, result)
	assert.True(t, trialerr.IsRegistryFetch(err))
	assert.True(t, strings.Contains(err.Error(), "TERN-501"))
}

func TestNewRejectsBadModules(t *testing.T) {
	regCfg := types.DefaultConfig().Registry
	regCfg.Modules = []string{"StatusModule"}
	_, err := New(regCfg, types.AnalyzerConfig{}, registry.NewCache(nil, nil))
	assert.True(t, trialerr.IsConfiguration(err))
}

// --- result files ---

func TestResultFileRoundTrip(t *testing.T) {
	n := 12
	result := &types.AnalysisResult{
		OrganizationName: "acme",
		QueryTimestamp:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Studies:          []types.TrialRecord{{Identifier: "NCT1", EnrollmentCount: &n}},
		Analytics:        types.AnalyticsSummary{TotalTrials: 1, PhaseDistribution: map[string]int{"Unknown": 1}},
	}

	for _, name := range []string{"out.yaml", "nested/out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteResultFile(path, result))

			got, err := ReadResultFile(path)
			require.NoError(t, err)
			assert.Equal(t, result.OrganizationName, got.OrganizationName)
			assert.True(t, result.QueryTimestamp.Equal(got.QueryTimestamp))
			require.Len(t, got.Studies, 1)
			assert.Equal(t, 12, *got.Studies[0].EnrollmentCount)
			assert.Equal(t, 1, got.Analytics.PhaseDistribution["Unknown"])
		})
	}
}
