package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/decodeur/internal/catalog"
	"github.com/verte-zerg/decodeur/internal/config"
	"github.com/verte-zerg/decodeur/internal/learnui"
	"github.com/verte-zerg/decodeur/internal/model"
	"github.com/verte-zerg/decodeur/internal/progress"
	"github.com/verte-zerg/decodeur/internal/stats"
	"github.com/verte-zerg/decodeur/internal/statsui"
)

var fontSizes = []string{"small", "medium", "large"}

func newLearnCmd() *cobra.Command {
	var (
		level       int
		catalogPath string
	)
	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Browse emotion cards without scoring",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			applyIntConfig(cmd, "level", &level, a.fileCfg.Quiz.Level)
			applyStringConfig(cmd, "catalog", &catalogPath, a.fileCfg.Quiz.Catalog)
			cat, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			if err := validateLevel(level, cat); err != nil {
				return err
			}

			weakAggs, err := a.store.GetWeakEmotions(cmd.Context(), defaultWeakWindow, level)
			if err != nil {
				return fmt.Errorf("failed to load weak emotions: %w", err)
			}
			snap := a.store.LoadSnapshot(cmd.Context())
			info, _ := cat.Level(level)
			m := learnui.NewModel(learnui.Options{
				Emotions: cat.ByLevel(level),
				Level:    info,
				Weak:     stats.SelectWeakEmotions(weakAggs, 0),
				Prefs:    snap.User.Preferences,
				Notifier: a.notifier(snap.User.Preferences),
			})
			program := tea.NewProgram(m, tea.WithAltScreen())
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("failed to run TUI: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&level, "level", defaultLevel, "difficulty level")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "path to a custom emotion catalog (YAML)")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var (
		level       int
		since       string
		last        int
		curveWindow int
		catalogPath string
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show progress statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := buildStatsConfig(level, since, last, curveWindow)
			if err != nil {
				return err
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			applyStringConfig(cmd, "catalog", &catalogPath, a.fileCfg.Quiz.Catalog)
			cat, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			m := statsui.NewModel(a.store, cfg, emotionNames(cat))
			program := tea.NewProgram(m, tea.WithAltScreen())
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("failed to run TUI: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&level, "level", 0, "only include sessions at this level (0 = all)")
	cmd.Flags().StringVar(&since, "since", "", "only include sessions since (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().IntVar(&last, "last", 0, "only include the last N sessions")
	cmd.Flags().IntVar(&curveWindow, "curve-window", defaultCurveWindow, "moving average window for curves")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "path to a custom emotion catalog (YAML)")
	return cmd
}

func buildStatsConfig(level int, since string, last, curveWindow int) (model.StatsConfig, error) {
	cfg := model.StatsConfig{Level: level, Last: last, CurveWindow: curveWindow}
	if level < 0 {
		return cfg, fmt.Errorf("--level must be >= 0")
	}
	if last < 0 {
		return cfg, fmt.Errorf("--last must be >= 0")
	}
	if curveWindow <= 0 {
		return cfg, fmt.Errorf("--curve-window must be > 0")
	}
	if since != "" {
		ts, err := parseSince(since)
		if err != nil {
			return cfg, err
		}
		cfg.Since = &ts
	}
	return cfg, nil
}

func parseSince(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	if ts, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("--since must be RFC3339 or YYYY-MM-DD")
}

func newProgressCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Print overall progress and badges",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			snap := a.store.LoadSnapshot(cmd.Context())
			cat, err := loadCatalog(config.StringOr(a.fileCfg.Quiz.Catalog, ""))
			if err != nil {
				return err
			}
			return writeProgress(cmd.OutOrStdout(), snap.Progress, emotionNames(cat), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print progress as JSON")
	return cmd
}

func writeProgress(w io.Writer, p model.Progress, names map[string]string, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	return stats.RenderProgress(w, p, names, badgeName)
}

func badgeName(id string) string {
	if def, ok := progress.BadgeByID(id); ok {
		return def.Name
	}
	return id
}

func newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all progress and session history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Reset all progress? This cannot be undone. [y/N] ")
				if err != nil {
					return err
				}
				if !ok {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return err
				}
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.ResetProgress(cmd.Context()); err != nil {
				return fmt.Errorf("failed to reset progress: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

type profileFlags struct {
	name          string
	audio         bool
	speech        bool
	sfx           bool
	volume        int
	highContrast  bool
	reducedMotion bool
	fontSize      string
}

func newProfileCmd() *cobra.Command {
	var flags profileFlags
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the local profile and preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.validate(cmd); err != nil {
				return err
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.store.UpdateUser(cmd.Context(), func(u *model.User) {
				flags.apply(cmd, u)
			})
			if err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}
			return writeProfile(cmd.OutOrStdout(), user)
		},
	}
	cmd.Flags().StringVar(&flags.name, "name", "", "display name (empty for anonymous)")
	cmd.Flags().BoolVar(&flags.audio, "audio", false, "enable audio")
	cmd.Flags().BoolVar(&flags.speech, "speech", false, "speak emotion names")
	cmd.Flags().BoolVar(&flags.sfx, "sfx", true, "play answer sound effects")
	cmd.Flags().IntVar(&flags.volume, "volume", 70, "audio volume (0-100)")
	cmd.Flags().BoolVar(&flags.highContrast, "high-contrast", false, "use the high contrast theme")
	cmd.Flags().BoolVar(&flags.reducedMotion, "reduced-motion", false, "hide the running timer")
	cmd.Flags().StringVar(&flags.fontSize, "font-size", "medium", "font size (small|medium|large)")
	return cmd
}

func (f profileFlags) validate(cmd *cobra.Command) error {
	if cmd.Flags().Changed("volume") && (f.volume < 0 || f.volume > 100) {
		return fmt.Errorf("--volume must be between 0 and 100")
	}
	if cmd.Flags().Changed("font-size") && !lo.Contains(fontSizes, f.fontSize) {
		return fmt.Errorf("--font-size must be one of %s", strings.Join(fontSizes, ", "))
	}
	return nil
}

func (f profileFlags) apply(cmd *cobra.Command, u *model.User) {
	changed := cmd.Flags().Changed
	if changed("name") {
		u.Name = strings.TrimSpace(f.name)
		u.IsAnonymous = u.Name == ""
	}
	if changed("audio") {
		u.Preferences.AudioEnabled = f.audio
	}
	if changed("speech") {
		u.Preferences.SpeechEnabled = f.speech
	}
	if changed("sfx") {
		u.Preferences.SoundEffectsEnabled = f.sfx
	}
	if changed("volume") {
		u.Preferences.AudioVolume = f.volume
	}
	if changed("high-contrast") {
		u.Preferences.HighContrast = f.highContrast
	}
	if changed("reduced-motion") {
		u.Preferences.ReducedMotion = f.reducedMotion
	}
	if changed("font-size") {
		u.Preferences.FontSize = f.fontSize
	}
}

func writeProfile(w io.Writer, u model.User) error {
	name := u.Name
	if u.IsAnonymous || name == "" {
		name = "(anonymous)"
	}
	p := u.Preferences
	rows := [][]string{
		{"Name", name},
		{"Audio", onOff(p.AudioEnabled)},
		{"Speech", onOff(p.SpeechEnabled)},
		{"Sound effects", onOff(p.SoundEffectsEnabled)},
		{"Volume", fmt.Sprintf("%d", p.AudioVolume)},
		{"High contrast", onOff(p.HighContrast)},
		{"Reduced motion", onOff(p.ReducedMotion)},
		{"Font size", p.FontSize},
	}
	for _, line := range stats.FormatTable([]string{"Setting", "Value"}, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func newCatalogCmd() *cobra.Command {
	var (
		level       int
		category    string
		catalogPath string
	)
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the emotions in the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if category != "" && !model.Category(category).Valid() {
				return fmt.Errorf("--category must be positive, negative, or neutral")
			}
			cat, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			var emotions []model.Emotion
			switch {
			case level != 0:
				if err := validateLevel(level, cat); err != nil {
					return err
				}
				emotions = catalog.FilterCategory(cat.ByLevel(level), model.Category(category))
			case category != "":
				emotions = cat.ByCategory(model.Category(category))
			default:
				emotions = cat.All()
			}
			return writeCatalog(cmd.OutOrStdout(), emotions)
		},
	}
	cmd.Flags().IntVar(&level, "level", 0, "only list emotions at this level (0 = all)")
	cmd.Flags().StringVar(&category, "category", "", "only list this category")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "path to a custom emotion catalog (YAML)")
	return cmd
}

func writeCatalog(w io.Writer, emotions []model.Emotion) error {
	rows := lo.Map(emotions, func(e model.Emotion, _ int) []string {
		return []string{e.ID, e.Name, fmt.Sprintf("%d", e.Level), string(e.Category)}
	})
	for _, line := range stats.FormatTable([]string{"ID", "Name", "Level", "Category"}, rows, map[int]bool{2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d emotions\n", len(emotions))
	return err
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Edit the config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigCmd(cmd)
		},
	}
}

func runConfigCmd(cmd *cobra.Command) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	editorCmd := exec.CommandContext(cmd.Context(), parts[0], append(parts[1:], path)...)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr
	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// ensureConfigFile writes the commented template when path does not exist.
func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}
