// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is the per-analysis summary written by the exporters.
type ExportEntry struct {
	ID                string         `json:"id" yaml:"id"`
	OrganizationID    string         `json:"organization_id" yaml:"organization_id"`
	OrganizationName  string         `json:"organization_name" yaml:"organization_name"`
	QueryTimestamp    string         `json:"query_timestamp" yaml:"query_timestamp"`
	TotalTrials       int            `json:"total_trials" yaml:"total_trials"`
	ActiveTrials      int            `json:"active_trials" yaml:"active_trials"`
	PhaseDistribution map[string]int `json:"phase_distribution" yaml:"phase_distribution"`
	StatusSummary     map[string]int `json:"status_summary" yaml:"status_summary"`
	TherapeuticAreas  map[string]int `json:"therapeutic_areas" yaml:"therapeutic_areas"`
	Studies           []string       `json:"studies" yaml:"studies"`
}

// ExportYAML writes every stored analysis to dir/export.yaml and returns the path.
func (s *Store) ExportYAML(ctx context.Context, dir string) (string, error) {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeExport(dir, "export.yaml", data)
}

// ExportJSON writes every stored analysis to dir/export.json and returns the path.
func (s *Store) ExportJSON(ctx context.Context, dir string) (string, error) {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return writeExport(dir, "export.json", data)
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]ExportEntry, 0, len(records))
	for _, rec := range records {
		r := rec.Result
		e := ExportEntry{
			ID:                rec.ID,
			OrganizationID:    rec.OrganizationID,
			OrganizationName:  r.OrganizationName,
			QueryTimestamp:    r.QueryTimestamp.UTC().Format("2006-01-02T15:04:05Z"),
			TotalTrials:       r.Analytics.TotalTrials,
			ActiveTrials:      r.Analytics.ActiveTrials,
			PhaseDistribution: r.Analytics.PhaseDistribution,
			StatusSummary:     r.Analytics.StatusSummary,
			TherapeuticAreas:  r.Analytics.TherapeuticAreas,
		}
		for _, st := range r.Studies {
			if st.Identifier != "" {
				e.Studies = append(e.Studies, st.Identifier)
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func writeExport(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
