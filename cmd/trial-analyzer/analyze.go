// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trial-analyzer/internal/analyzer"
	"github.com/pdiddy/trial-analyzer/internal/registry"
	"github.com/pdiddy/trial-analyzer/internal/store"
	"github.com/pdiddy/trial-analyzer/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <organization> [organization...]",
	Short: "Analyze the trial portfolio of one or more organizations",
	Long: `Analyze queries the registry for each organization, filters the results
for relevance, follows drug codes found in relevant trials, and prints a
portfolio summary. Each analysis is saved to the local store.

The drug-code set and response cache are reset between distinct
organizations, so one organization's codes never drive another's queries.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	outDir, _ := cmd.Flags().GetString("out")
	orgID, _ := cmd.Flags().GetString("org-id")
	noStore, _ := cmd.Flags().GetBool("no-store")
	if cmd.Flags().Changed("filter-primary") {
		cfg.Analyzer.FilterPrimary, _ = cmd.Flags().GetBool("filter-primary")
	}
	if orgID != "" && len(args) > 1 {
		return fmt.Errorf("--org-id applies to a single organization")
	}

	client := registry.NewClient(cfg.Registry, log)
	a, err := analyzer.New(cfg.Registry, cfg.Analyzer, client, analyzer.WithLogger(log))
	if err != nil {
		return err
	}

	var st *store.Store
	if !noStore {
		st, err = store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	ctx := cmd.Context()
	seen := make(map[string]bool)
	var results []*types.AnalysisResult
	for _, name := range args {
		key := registry.Normalize(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		a.Reset()

		result, err := a.AnalyzeOrganizationTrials(ctx, name)
		if err != nil {
			return fmt.Errorf("analyzing %q: %w", name, err)
		}
		results = append(results, result)

		if st != nil {
			id := orgID
			if id == "" {
				id = key
			}
			recID, err := st.SaveAnalysis(ctx, id, result)
			if err != nil {
				return err
			}
			log.WithField("id", recID).WithField("organization", name).Info("analysis saved")
		}
		if outDir != "" {
			path := filepath.Join(outDir, resultFileName(key, jsonOutput))
			if err := analyzer.WriteResultFile(path, result); err != nil {
				return err
			}
			log.WithField("path", path).Info("result written")
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return enc.Encode(results[0])
		}
		return enc.Encode(results)
	}
	for _, r := range results {
		printSummary(os.Stdout, r)
	}
	return nil
}

func resultFileName(normalized string, jsonOutput bool) string {
	base := strings.ReplaceAll(normalized, " ", "-")
	if jsonOutput {
		return base + ".json"
	}
	return base + ".yaml"
}

// printSummary writes a human-readable portfolio summary.
func printSummary(w io.Writer, r *types.AnalysisResult) {
	s := r.Analytics
	fmt.Fprintf(w, "Organization: %s\n", r.OrganizationName)
	fmt.Fprintf(w, "Queried:      %s\n", r.QueryTimestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "%-28s %d\n", "Total trials", s.TotalTrials)
	fmt.Fprintf(w, "%-28s %d\n", "Recruiting", s.ActiveTrials)
	fmt.Fprintf(w, "%-28s %d\n", "Registered", s.RegisteredTrials)
	fmt.Fprintf(w, "%-28s %d\n", "Pre-registration", s.PreRegistrationTrials)
	fmt.Fprintf(w, "%-28s %d\n", "Total enrollment", s.EnrollmentStats.Total)
	fmt.Fprintf(w, "%-28s %d\n", "Average enrollment", s.EnrollmentStats.Average)
	fmt.Fprintf(w, "%-28s %d\n", "Median enrollment", s.EnrollmentStats.Median)
	if s.Skipped > 0 {
		fmt.Fprintf(w, "%-28s %d\n", "Skipped (malformed)", s.Skipped)
	}

	printCounts(w, "Phases", s.PhaseDistribution)
	printCounts(w, "Statuses", s.StatusSummary)
	printCounts(w, "Therapeutic areas", s.TherapeuticAreas)

	if len(r.DrugCodes) > 0 {
		codes := make([]string, len(r.DrugCodes))
		for i, c := range r.DrugCodes {
			codes[i] = string(c)
		}
		fmt.Fprintf(w, "\nDrug codes: %s\n", strings.Join(codes, ", "))
	}
	fmt.Fprintln(w)
}

// printCounts prints a bucket map sorted by descending count, then key.
func printCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	fmt.Fprintf(w, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-40s %d\n", truncate(k, 40), counts[k])
	}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	analyzeCmd.Flags().Bool("json", false, "print results as JSON (and write .json result files)")
	analyzeCmd.Flags().String("out", "", "directory to write one result file per organization")
	analyzeCmd.Flags().String("org-id", "", "organization ID to store the analysis under (default: normalized name)")
	analyzeCmd.Flags().Bool("filter-primary", false, "drop primary results that fail the relevance check")
	analyzeCmd.Flags().Bool("no-store", false, "do not save the analysis to the local store")

	rootCmd.AddCommand(analyzeCmd)
}
