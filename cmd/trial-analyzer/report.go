// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trial-analyzer/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report [analysis-id]",
	Short: "Show a stored analysis",
	Long: `Report prints a previously stored analysis by ID, or the most recent
analysis for an organization with --org. Without arguments it lists every
stored analysis.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	orgID, _ := cmd.Flags().GetString("org")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	var rec *store.Record
	switch {
	case len(args) == 1:
		rec, err = st.Get(ctx, args[0])
	case orgID != "":
		rec, err = st.Latest(ctx, orgID)
	default:
		return listAnalyses(cmd, st, jsonOutput)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	fmt.Printf("Analysis %s (organization ID %s)\n\n", rec.ID, rec.OrganizationID)
	printSummary(os.Stdout, rec.Result)
	return nil
}

func listAnalyses(cmd *cobra.Command, st *store.Store, jsonOutput bool) error {
	records, err := st.List(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	if len(records) == 0 {
		fmt.Println("No stored analyses.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-24s  %-30s  %-19s  %s\n",
		"ID", "Org ID", "Organization", "Queried", "Trials")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 122))
	for _, r := range records {
		fmt.Fprintf(os.Stdout, "%-36s  %-24s  %-30s  %-19s  %d\n",
			r.ID, truncate(r.OrganizationID, 24), truncate(r.Result.OrganizationName, 30),
			r.Result.QueryTimestamp.Format("2006-01-02 15:04:05"), r.Result.Analytics.TotalTrials)
	}
	fmt.Fprintf(os.Stdout, "\n%d analyses\n", len(records))
	return nil
}

func init() {
	reportCmd.Flags().String("org", "", "show the latest analysis for this organization ID")
	reportCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(reportCmd)
}
