package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kpraveen/agentcompany/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard <directive>",
	Short: "Execute a directive with a live terminal dashboard",
	Long: `Execute a business directive while showing a live dashboard: settled
tasks with their deliverables on top, the activity log below.

Press q to quit once the workflow has finished.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	directive := strings.Join(args, " ")
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	p := tea.NewProgram(tui.New(a.bus), tea.WithAltScreen(), tea.WithContext(ctx))

	// The directive runs in the background and feeds the dashboard through
	// the event bus.
	workflowErr := make(chan error, 1)
	go func() {
		// Give the TUI a moment to subscribe and render before events flow.
		time.Sleep(100 * time.Millisecond)
		_, err := a.company.HandleDirective(ctx, directive)
		workflowErr <- err
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}

	select {
	case err := <-workflowErr:
		return err
	default:
		// User quit before the workflow settled; the deferred close shuts
		// the scheduler down and the directive is abandoned.
		return nil
	}
}
