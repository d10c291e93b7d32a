package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bindulearn/bindu/internal/app"
	"github.com/bindulearn/bindu/internal/llm"
	"github.com/bindulearn/bindu/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "bindu",
	Short: "AI tutor in your terminal",
	Long:  "Bindu — conversational AI tutor that gauges your level, builds a course, and teaches you topic by topic with quizzes along the way.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd)
	},
}

func Execute() error {
	// A .env in the working directory is the easiest way to carry API keys.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides BINDU_DB env var)")
	rootCmd.PersistentFlags().String("user", "", "Learner ID (defaults to \"local\")")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then BINDU_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func resolveUserID(cmd *cobra.Command) string {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		return u
	}
	return app.DefaultUserID
}

// newLogger writes structured logs next to the database so they never
// interleave with the chat UI.
func newLogger(dbPath string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(filepath.Dir(dbPath), "bindu.log")}
	cfg.ErrorOutputPaths = cfg.OutputPaths

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// openApp opens the store, configures the LLM provider, and wires the
// service graph. The returned closer flushes logs and closes the store.
func openApp(cmd *cobra.Command) (*app.App, func(), error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve DB path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	logger := newLogger(dbPath)

	cfg := llm.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		if discovered, ok := llm.DiscoverConfig(); ok {
			cfg = discovered
		} else {
			s.Close()
			return nil, nil, fmt.Errorf("no LLM provider configured: %w (set BINDU_LLM_PROVIDER and its API key, or a standard *_API_KEY env var)", err)
		}
	}

	provider, err := llm.NewProvider(cmd.Context(), cfg, s.EventRepo())
	if err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("init LLM provider: %w", err)
	}

	a := app.New(app.Options{
		Store:    s,
		Provider: provider,
		Logger:   logger,
		UserID:   resolveUserID(cmd),
	})

	closer := func() {
		_ = logger.Sync()
		s.Close()
	}
	return a, closer, nil
}
