// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyzer runs the organization trial analysis: primary registry
// query, relevance filtering, drug-code mining, follow-up queries, and
// aggregation into an AnalysisResult.
package analyzer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/pdiddy/trial-analyzer/internal/analytics"
	"github.com/pdiddy/trial-analyzer/internal/registry"
	"github.com/pdiddy/trial-analyzer/internal/relevance"
	"github.com/pdiddy/trial-analyzer/internal/trialerr"
	"github.com/pdiddy/trial-analyzer/pkg/types"
)

// Analyzer owns the response cache and the process-wide drug-code set.
// It is safe for concurrent use; concurrent runs share the cache.
type Analyzer struct {
	queries    *registry.QueryBuilder
	cache      *registry.Cache
	classifier relevance.Classifier
	cfg        types.AnalyzerConfig
	log        logrus.FieldLogger

	// now is replaced in tests.
	now func() time.Time

	mu        sync.Mutex
	drugCodes *types.DrugIdentifierSet
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithClassifier replaces the default substring classifier.
func WithClassifier(c relevance.Classifier) Option {
	return func(a *Analyzer) { a.classifier = c }
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Analyzer) { a.log = log }
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// New builds an Analyzer that fetches through fetcher. The registry module
// list in regCfg is validated here; a *trialerr.ConfigurationError means the
// process should not serve requests.
func New(regCfg types.RegistryConfig, cfg types.AnalyzerConfig, fetcher registry.Fetcher, opts ...Option) (*Analyzer, error) {
	queries, err := registry.NewQueryBuilder(regCfg)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		queries:   queries,
		cfg:       cfg,
		now:       time.Now,
		drugCodes: types.NewDrugIdentifierSet(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		a.log = l
	}
	if a.classifier == nil {
		a.classifier = relevance.NewSubstringClassifier(a.log)
	}
	a.cache = registry.NewCache(fetcher, a.log)
	return a, nil
}

// Reset clears the response cache and the accumulated drug codes. Call it
// between analyses of unrelated organizations.
func (a *Analyzer) Reset() {
	a.cache.Reset()
	a.mu.Lock()
	a.drugCodes.Clear()
	a.mu.Unlock()
}

// Cache exposes the response cache.
func (a *Analyzer) Cache() *registry.Cache { return a.cache }

// KnownDrugCodes returns every drug code mined since the last Reset.
func (a *Analyzer) KnownDrugCodes() []types.DrugIdentifier {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.drugCodes.Codes()
}

// run is the per-invocation state threaded through the stages.
type run struct {
	normalizedName string
	log            logrus.FieldLogger
	studies        []types.TrialRecord
	seen           map[string]bool
	related        []types.TrialRecord
	codes          *types.DrugIdentifierSet
}

// AnalyzeOrganizationTrials runs the full pipeline for one organization.
// It returns a complete result or an error, never a partial result.
func (a *Analyzer) AnalyzeOrganizationTrials(ctx context.Context, organizationName string) (*types.AnalysisResult, error) {
	normalized := registry.Normalize(organizationName)
	if normalized == "" {
		return nil, &trialerr.InvalidInputError{Field: "organization name", Reason: fmt.Sprintf("%q normalizes to an empty string", organizationName)}
	}

	r := &run{
		normalizedName: normalized,
		log:            a.log.WithField("organization", normalized),
		seen:           make(map[string]bool),
	}
	started := a.now()

	if err := a.fetchPrimary(ctx, r); err != nil {
		return nil, err
	}

	r.codes = relevance.ExtractAll(r.related)
	r.log.WithField("codes", r.codes.Codes()).Info("extracted drug codes")
	a.mu.Lock()
	for _, code := range r.codes.Codes() {
		a.drugCodes.Add(code)
	}
	a.mu.Unlock()

	if err := a.fetchSecondary(ctx, r); err != nil {
		return nil, err
	}

	summary := analytics.Summarize(r.studies, r.log)
	r.log.WithFields(logrus.Fields{
		"studies": len(r.studies),
		"active":  summary.ActiveTrials,
	}).Info("analysis complete")

	return &types.AnalysisResult{
		OrganizationName: normalized,
		QueryTimestamp:   started.UTC(),
		Studies:          r.studies,
		DrugCodes:        r.codes.Codes(),
		Analytics:        summary,
	}, nil
}

// fetchPrimary runs the organization-name query. Every returned record goes
// into the study list unless FilterPrimary is set; only related records feed
// drug-code mining.
func (a *Analyzer) fetchPrimary(ctx context.Context, r *run) error {
	queryURL, err := a.queries.OrganizationQuery(r.normalizedName)
	if err != nil {
		return err
	}
	resp, err := a.cache.GetOrFetch(ctx, queryURL)
	if err != nil {
		return fmt.Errorf("primary query: %w", err)
	}

	records := resp.Records()
	r.related = relevance.Filter(a.classifier, records, r.normalizedName)
	r.log.WithFields(logrus.Fields{
		"returned": len(records),
		"related":  len(r.related),
	}).Info("primary query complete")

	kept := records
	if a.cfg.FilterPrimary {
		kept = r.related
	}
	for _, rec := range kept {
		r.add(rec)
	}
	return nil
}

// fetchSecondary queries each drug code in turn and appends newly related
// records. Queries are sequential and optionally paced.
func (a *Analyzer) fetchSecondary(ctx context.Context, r *run) error {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if a.cfg.DrugQueryInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(a.cfg.DrugQueryInterval), 1)
	}

	for _, code := range r.codes.Codes() {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting to query %s: %w", code, err)
		}
		queryURL, err := a.queries.DrugCodeQuery(code)
		if err != nil {
			return err
		}
		resp, err := a.cache.GetOrFetch(ctx, queryURL)
		if err != nil {
			return fmt.Errorf("drug code query %s: %w", code, err)
		}

		added := 0
		for _, rec := range relevance.Filter(a.classifier, resp.Records(), r.normalizedName) {
			if r.add(rec) {
				added++
			}
		}
		r.log.WithFields(logrus.Fields{"code": code, "added": added}).Info("drug code query complete")
	}
	return nil
}

// add appends rec unless a record with the same identifier is already
// present. Records without an identifier are always appended.
func (r *run) add(rec types.TrialRecord) bool {
	if rec.Identifier != "" {
		if r.seen[rec.Identifier] {
			return false
		}
		r.seen[rec.Identifier] = true
	}
	r.studies = append(r.studies, rec)
	return true
}
