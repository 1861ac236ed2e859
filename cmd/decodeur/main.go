// Package main provides the CLI entrypoint for decodeur.
package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/decodeur/internal/catalog"
	"github.com/verte-zerg/decodeur/internal/model"
	"github.com/verte-zerg/decodeur/internal/session"
	"github.com/verte-zerg/decodeur/internal/tui"
)

const (
	defaultLevel       = 1
	defaultMode        = model.ModeQuiz
	defaultCurveWindow = 20
	defaultWeakWindow  = 20
)

var (
	quizLevel     int
	quizQuestions int
	quizMode      string
	quizCatalog   string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "decodeur",
		Short:         "TUI facial emotion recognition trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runQuizCmd,
	}

	rootCmd.Flags().IntVar(&quizLevel, "level", defaultLevel, "difficulty level")
	rootCmd.Flags().IntVar(&quizQuestions, "questions", session.DefaultQuestionCount, "questions per session")
	rootCmd.Flags().StringVar(&quizMode, "mode", string(defaultMode), "session mode (quiz|learning)")
	rootCmd.Flags().StringVar(&quizCatalog, "catalog", "", "path to a custom emotion catalog (YAML)")

	rootCmd.AddCommand(newLearnCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runQuizCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	applyIntConfig(cmd, "level", &quizLevel, a.fileCfg.Quiz.Level)
	applyIntConfig(cmd, "questions", &quizQuestions, a.fileCfg.Quiz.Questions)
	applyStringConfig(cmd, "mode", &quizMode, a.fileCfg.Quiz.Mode)
	applyStringConfig(cmd, "catalog", &quizCatalog, a.fileCfg.Quiz.Catalog)

	cfg := model.Config{
		Mode:        model.Mode(strings.ToLower(quizMode)),
		Level:       quizLevel,
		Questions:   quizQuestions,
		CatalogPath: quizCatalog,
	}
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg, cat); err != nil {
		return err
	}
	if n := len(cat.ByLevel(cfg.Level)); n < cfg.Questions {
		logErrf("level %d has %d emotions; the session will have %d questions\n", cfg.Level, n, n)
	}

	snap := a.store.LoadSnapshot(cmd.Context())
	info, _ := cat.Level(cfg.Level)
	m, err := tui.NewModel(tui.Options{
		Config:   cfg,
		Level:    info,
		Engine:   session.NewEngine(cat, nil),
		Recorder: a.store,
		Notifier: a.notifier(snap.User.Preferences),
		Prefs:    snap.User.Preferences,
		Logger:   a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateConfig(cfg model.Config, cat *catalog.Catalog) error {
	if !cfg.Mode.Valid() {
		return fmt.Errorf("--mode must be %q or %q", model.ModeQuiz, model.ModeLearning)
	}
	if err := validateLevel(cfg.Level, cat); err != nil {
		return err
	}
	if cfg.Questions <= 0 {
		return fmt.Errorf("--questions must be > 0")
	}
	return nil
}

func validateLevel(level int, cat *catalog.Catalog) error {
	if _, ok := cat.Level(level); ok {
		return nil
	}
	levels := cat.Levels()
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = fmt.Sprintf("%d", l)
	}
	return fmt.Errorf("--level must be one of %s", strings.Join(parts, ", "))
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# decodeur configuration
# Uncomment a value to enable it. CLI flags override config values.

[quiz]
# level = %d               # Difficulty level (1-3)
# questions = %d          # Questions per session
# mode = %q           # Session mode: "quiz" or "learning"
# catalog = ""            # Path to a custom emotion catalog (YAML)

[audio]
# speech-command = ""     # Text-to-speech command (default: say/espeak if found)
# bell = true             # Ring the terminal bell on answers

[log]
# level = "info"          # debug, info, warn, error
# format = "text"         # text or json
# file = ""               # Log file (default: data dir)
`,
		defaultLevel,
		session.DefaultQuestionCount,
		defaultMode,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
