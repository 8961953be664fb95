package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"expandev/atena/pkg/cli"
	"expandev/atena/pkg/evidence"
)

var evidenceFlags struct {
	conversationID string
	ruleID         string
	since          string
	until          string
	onlyErrors     bool
	limit          int
	format         string
}

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Inspect the evidence store",
}

var evidenceQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query recorded turn evidence",
	Long: `Query the evidence store for recorded turns.

Examples:
  # All turns of one conversation
  atena evidence query --conversation-id abc123

  # Turns where a specific rule governed
  atena evidence query --rule-id N06

  # Failed turns in a time window
  atena evidence query --errors --since 2026-08-01T00:00:00Z`,
	RunE: queryEvidence,
}

func init() {
	rootCmd.AddCommand(evidenceCmd)
	evidenceCmd.AddCommand(evidenceQueryCmd)

	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.conversationID, "conversation-id", "", "filter by conversation")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.ruleID, "rule-id", "", "filter by governing rule")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.since, "since", "", "start of time window (RFC3339)")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.until, "until", "", "end of time window (RFC3339)")
	evidenceQueryCmd.Flags().BoolVar(&evidenceFlags.onlyErrors, "errors", false, "only failed turns")
	evidenceQueryCmd.Flags().IntVar(&evidenceFlags.limit, "limit", 50, "maximum records")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.format, "format", "text", "output format: text, json")
}

func queryEvidence(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}

	store, err := newEvidenceStorage(cfg)
	if err != nil {
		return cli.NewCommandError("evidence query", err)
	}
	defer store.Close()

	query := &evidence.Query{
		ConversationID: evidenceFlags.conversationID,
		RuleID:         evidenceFlags.ruleID,
		Limit:          evidenceFlags.limit,
	}

	if evidenceFlags.since != "" {
		t, err := time.Parse(time.RFC3339, evidenceFlags.since)
		if err != nil {
			return cli.NewConfigError("since", err.Error())
		}
		query.StartTime = &t
	}
	if evidenceFlags.until != "" {
		t, err := time.Parse(time.RFC3339, evidenceFlags.until)
		if err != nil {
			return cli.NewConfigError("until", err.Error())
		}
		query.EndTime = &t
	}
	if evidenceFlags.onlyErrors {
		hasError := true
		query.HasError = &hasError
	}

	ctx := context.Background()

	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("evidence query", err)
	}

	if evidenceFlags.format == "json" {
		formatter := &cli.JSONFormatter{}
		return formatter.FormatTo(cmd.OutOrStdout(), records)
	}

	if len(records) == 0 {
		fmt.Println("no records found")
		return nil
	}

	for _, record := range records {
		fmt.Printf("%s  conversation=%s turn=%d catalog=%s/%s\n",
			record.RecordedTime.Format(time.RFC3339),
			record.ConversationID, record.TurnSeq,
			record.CatalogName, record.CatalogVersion)
		fmt.Printf("  governing: %v\n", record.GoverningSet)
		if record.Error != "" {
			fmt.Printf("  error: %s\n", record.Error)
		}
	}
	fmt.Printf("%d record(s)\n", len(records))

	return nil
}
