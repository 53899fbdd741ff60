package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kpraveen/agentcompany/internal/company"
	"github.com/kpraveen/agentcompany/internal/workflow"
)

var runTimeout time.Duration

var runCmd = &cobra.Command{
	Use:   "run <directive>",
	Short: "Execute one directive and print the department deliverables",
	Long: `Execute a single business directive end to end and print each
department's deliverable to stdout.

Example:
  agentcompany run "develop a mobile app and run a launch campaign"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDirective,
}

func init() {
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 10*time.Minute, "Overall directive timeout")
}

func runDirective(cmd *cobra.Command, args []string) error {
	directive := strings.Join(args, " ")

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	report, err := a.company.HandleDirective(ctx, directive)
	if report != nil {
		printReport(cmd, report)
	}
	return err
}

func printReport(cmd *cobra.Command, report *company.DirectiveReport) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "\nDirective: %s\n", report.Directive)
	if report.SessionID != "" {
		fmt.Fprintf(out, "Session:   %s\n", report.SessionID)
	}

	for _, task := range report.Tasks {
		fmt.Fprintf(out, "\n[%s] %s (%s)\n", task.Status, task.TaskID, task.Department)
		fmt.Fprintf(out, "  Task: %s\n", task.Description)
		switch task.Status {
		case workflow.StatusCompleted:
			fmt.Fprintf(out, "  %s\n", indent(task.Result, "  "))
		case workflow.StatusFailed:
			fmt.Fprintf(out, "  Error: %v\n", task.Err)
		}
	}
}

func indent(s, prefix string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n"+prefix)
}
