package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"expandev/atena/pkg/cli"
	rclerrors "expandev/atena/pkg/rcl/errors"
	"expandev/atena/pkg/rcl/parser"
	"expandev/atena/pkg/rcl/validator"
)

var validateFlags struct {
	file   string
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a rule catalog",
	Long: `Parse and validate a rule catalog file.

Validation checks structure first (required fields, category shape) and
then catalog semantics (unique identifiers, conflict link targets, the
presence of at least one ALWAYS rule). All problems are reported in one
pass, each with its source location.

Examples:
  # Validate the default catalog
  atena validate --file configs/rules/atena.yaml

  # Machine-readable report
  atena validate --file rules.yaml --format json`,
	RunE: validateCatalog,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.file, "file", "f", "", "rule catalog file (required)")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
	validateCmd.MarkFlagRequired("file")
}

// validationReport is the JSON shape of a validation run.
type validationReport struct {
	File   string            `json:"file"`
	Valid  bool              `json:"valid"`
	Rules  int               `json:"rules,omitempty"`
	Errors []validationIssue `json:"errors,omitempty"`
}

type validationIssue struct {
	Type       string `json:"type"`
	RuleID     string `json:"rule_id,omitempty"`
	Message    string `json:"message"`
	Location   string `json:"location,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func validateCatalog(cmd *cobra.Command, args []string) error {
	report := validationReport{File: validateFlags.file, Valid: true}

	doc, err := parser.NewParser().Parse(validateFlags.file)
	if err != nil {
		report.Valid = false
		report.Errors = collectIssues(err)
	} else {
		report.Rules = doc.RuleCount()
		if err := validator.NewValidator().Validate(doc); err != nil {
			report.Valid = false
			report.Errors = collectIssues(err)
		}
	}

	formatter, err := cli.NewFormatter(cli.OutputFormat(validateFlags.format))
	if err != nil {
		return err
	}

	if validateFlags.format == "json" {
		if err := formatter.FormatTo(os.Stdout, report); err != nil {
			return err
		}
	} else {
		printReport(report)
	}

	if !report.Valid {
		return cli.NewCommandError("validate", fmt.Errorf("%d validation error(s)", len(report.Errors)))
	}
	return nil
}

// collectIssues flattens a parse or validation error into issue rows.
func collectIssues(err error) []validationIssue {
	var list *rclerrors.ErrorList
	if errors.As(err, &list) {
		issues := make([]validationIssue, 0, list.Count())
		for _, e := range list.Errors {
			issue := validationIssue{
				Type:       string(e.Type),
				RuleID:     e.RuleID,
				Message:    e.Message,
				Suggestion: e.Suggestion,
			}
			if e.Location.IsValid() {
				issue.Location = e.Location.String()
			}
			issues = append(issues, issue)
		}
		return issues
	}

	return []validationIssue{{Type: "io", Message: err.Error()}}
}

func printReport(report validationReport) {
	if report.Valid {
		fmt.Printf("✓ %s is valid (%d rules)\n", report.File, report.Rules)
		return
	}

	fmt.Printf("✗ %s has %d error(s):\n", report.File, len(report.Errors))
	for _, issue := range report.Errors {
		fmt.Printf("  [%s]", issue.Type)
		if issue.RuleID != "" {
			fmt.Printf(" rule %s:", issue.RuleID)
		}
		fmt.Printf(" %s", issue.Message)
		if issue.Location != "" {
			fmt.Printf(" (%s)", issue.Location)
		}
		fmt.Println()
		if issue.Suggestion != "" {
			fmt.Printf("      suggestion: %s\n", issue.Suggestion)
		}
	}
}
