// Package cliagent is the interactive chat front end: a cobra root command
// wiring configuration, storage, and the LLM client into the orchestration
// loop, replacing the teacher's terminal task-list UI with a scheduling
// conversation.
package cliagent

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/scheduleragent/internal/config"
	"github.com/javiermolinar/scheduleragent/internal/llm"
	"github.com/javiermolinar/scheduleragent/internal/store"
)

// Version is set at build time.
var Version = "dev"

// App holds the CLI application state.
type App struct {
	store  *store.Store
	config *config.Config
	llm    llm.Client
	root   *cobra.Command
}

// NewApp creates a new CLI application wired to s and cfg. client may be
// nil; it is resolved lazily from cfg.LLM on first use by commands that
// need it (so `history` and `version` work without network access).
func NewApp(s *store.Store, cfg *config.Config, client llm.Client) *App {
	a := &App{store: s, config: cfg, llm: client}

	a.root = &cobra.Command{
		Use:   "scheduleragent",
		Short: "A conversational scheduling assistant",
		Long: `scheduleragent is a chat-driven assistant for managing routines,
custom tasks, and daily logs through natural language instead of a
dedicated UI.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runChat()
		},
	}

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.chatCmd())
	a.root.AddCommand(a.historyCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("scheduleragent %s\n", Version)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// client returns the app's LLM client, resolving it from config on first
// use.
func (a *App) client() (llm.Client, error) {
	if a.llm != nil {
		return a.llm, nil
	}
	resolved, err := llm.NewClient(a.config.LLM.Provider, a.config.LLM.Model, a.config.LLM.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("initializing LLM client: %w", err)
	}
	a.llm = resolved
	return resolved, nil
}
