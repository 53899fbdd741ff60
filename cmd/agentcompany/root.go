package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kpraveen/agentcompany/internal/agent"
	"github.com/kpraveen/agentcompany/internal/company"
	"github.com/kpraveen/agentcompany/internal/config"
	"github.com/kpraveen/agentcompany/internal/events"
	"github.com/kpraveen/agentcompany/internal/llm"
	"github.com/kpraveen/agentcompany/internal/persistence"
	"github.com/kpraveen/agentcompany/internal/scheduler"
)

var (
	dbPath  string
	noStore bool
)

var rootCmd = &cobra.Command{
	Use:   "agentcompany",
	Short: "Run a simulated company of role-playing department agents",
	Long: `agentcompany turns a free-text business directive into department
subtasks, routes them to role-playing agents, and executes them as a
workflow: research first, then the other departments in parallel.

Directives are classified by keyword. A directive mentioning development
and marketing, for example, produces an engineering task and a marketing
task; research tasks run before everything else so their findings exist
when the rest of the company starts.`,
}

// Execute runs the root command with the given signal-aware context.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", ".agentcompany/sessions.db", "SQLite session database path")
	rootCmd.PersistentFlags().BoolVar(&noStore, "no-store", false, "Disable session persistence")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(dashboardCmd)
}

// company assembly shared by run and dashboard

type app struct {
	cfg     *config.Config
	sched   *scheduler.Scheduler
	bus     *events.Bus
	store   persistence.Store
	company *company.Company
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	keys := cfg.LLM.APIKeys
	if len(keys) == 0 {
		keys = apiKeysFromEnv()
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no API keys: set llm.api_keys in config or the GROQ_API_KEY environment variable")
	}

	client := llm.NewClient(llm.Config{
		BaseURL:           cfg.LLM.BaseURL,
		Model:             cfg.LLM.Model,
		APIKeys:           keys,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
	})

	sched := scheduler.New()
	for _, a := range agent.Roster(cfg, client) {
		sched.Register(a.Department(), a)
	}

	bus := events.NewBus()

	var store persistence.Store
	if !noStore {
		s, err := persistence.NewSQLiteStore(ctx, dbPath)
		if err != nil {
			bus.Close()
			return nil, fmt.Errorf("opening session store: %w", err)
		}
		store = s
	}

	return &app{
		cfg:     cfg,
		sched:   sched,
		bus:     bus,
		store:   store,
		company: company.New(cfg, sched, bus, store),
	}, nil
}

func (a *app) close(ctx context.Context) {
	_ = a.sched.Shutdown(ctx)
	a.bus.Close()
	if a.store != nil {
		_ = a.store.Close()
	}
}

// apiKeysFromEnv collects GROQ_API_KEY plus numbered fallbacks, so a second
// key can take over when the first is rate limited.
func apiKeysFromEnv() []string {
	var keys []string
	if key := strings.TrimSpace(os.Getenv("GROQ_API_KEY")); key != "" {
		keys = append(keys, key)
	}
	for i := 2; i <= 5; i++ {
		if key := strings.TrimSpace(os.Getenv(fmt.Sprintf("GROQ_API_KEY_%d", i))); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
