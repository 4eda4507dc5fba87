// Package main provides the CLI entrypoint for repolens.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/repolens/internal/chart"
	"github.com/verte-zerg/repolens/internal/client"
	"github.com/verte-zerg/repolens/internal/config"
	"github.com/verte-zerg/repolens/internal/logging"
	"github.com/verte-zerg/repolens/internal/model"
	"github.com/verte-zerg/repolens/internal/query"
	"github.com/verte-zerg/repolens/internal/store"
	"github.com/verte-zerg/repolens/internal/tui"
)

const (
	defaultMode         = "account"
	defaultChart        = "pie"
	defaultTimeoutSecs  = 30
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"
	defaultHistoryLimit = 20
	historyTop          = 5
)

var (
	backendURL     string
	backendTimeout int
	userAgent      string
	webHost        string
	dbPath         string
	logLevel       string
	logFormat      string
	logFile        string

	viewMode  string
	viewChart string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "repolens",
		Short:         "Terminal analytics viewer for accounts and projects",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runViewerCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&backendURL, "base-url", client.DefaultBaseURL, "analytics backend base URL")
	pf.IntVar(&backendTimeout, "timeout", defaultTimeoutSecs, "request timeout in seconds")
	pf.StringVar(&userAgent, "user-agent", "", "User-Agent header sent to the backend")
	pf.StringVar(&webHost, "host", query.DefaultHost, "web host accepted in URL searches")
	pf.StringVar(&dbPath, "db", config.DefaultDBPath(), "path to the local database")
	pf.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", defaultLogFormat, "log format (text or json)")
	pf.StringVar(&logFile, "log-file", config.DefaultLogPath(), "log file path")

	rootCmd.Flags().StringVar(&viewMode, "mode", defaultMode, "initial search mode (account, project or url)")
	rootCmd.Flags().StringVar(&viewChart, "chart", defaultChart, "language chart style (pie or bar)")

	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app holds everything a command needs once config and flags are merged.
type app struct {
	cfg      config.FileConfig
	logger   *slog.Logger
	resolver *query.Resolver
	client   *client.Client
	store    *store.Store
	logOut   *os.File
}

func setup(cmd *cobra.Command) (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "base-url", &backendURL, fileCfg.Backend.BaseURL)
	applyIntConfig(cmd, "timeout", &backendTimeout, fileCfg.Backend.TimeoutSeconds)
	applyStringConfig(cmd, "user-agent", &userAgent, fileCfg.Backend.UserAgent)
	applyStringConfig(cmd, "host", &webHost, fileCfg.Web.Host)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &logFormat, fileCfg.Log.Format)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	if backendTimeout <= 0 {
		return nil, fmt.Errorf("--timeout must be > 0")
	}

	a := &app{cfg: fileCfg}
	if err := a.openLog(); err != nil {
		return nil, err
	}

	a.resolver = query.NewResolver(webHost)
	a.client = client.New(client.Options{
		BaseURL:   backendURL,
		Timeout:   time.Duration(backendTimeout) * time.Second,
		UserAgent: userAgent,
		Logger:    a.logger,
	})
	st, err := store.Open(dbPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	a.store = st
	a.logger.Debug("started", "command", cmd.Name(), "backend", a.client.BaseURL(), "host", a.resolver.Parser.Host())
	return a, nil
}

func (a *app) openLog() error {
	var out io.Writer
	if strings.TrimSpace(logFile) != "" {
		f, err := logging.OpenFile(logFile)
		if err != nil {
			logErrf("logging disabled: %v\n", err)
		} else {
			a.logOut = f
			out = f
		}
	}
	logger, err := logging.New(logging.Config{Level: logLevel, Format: logFormat, Output: out})
	if err != nil {
		if a.logOut != nil {
			_ = a.logOut.Close()
		}
		return fmt.Errorf("invalid log settings: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logErrf("failed to close db: %v\n", err)
		}
	}
	if a.logOut != nil {
		if err := a.logOut.Close(); err != nil {
			logErrf("failed to close log file: %v\n", err)
		}
	}
}

// viewSettings resolves the mode and chart style flags against [view].
func (a *app) viewSettings(cmd *cobra.Command, mode, chartStyle *string) (query.Mode, chart.LanguageStyle, error) {
	applyStringConfig(cmd, "mode", mode, a.cfg.View.Mode)
	applyStringConfig(cmd, "chart", chartStyle, a.cfg.View.Chart)
	m, err := query.ParseMode(*mode)
	if err != nil {
		return 0, 0, err
	}
	style, err := chart.ParseLanguageStyle(*chartStyle)
	if err != nil {
		return 0, 0, err
	}
	return m, style, nil
}

func (a *app) examples() []string {
	if len(a.cfg.View.Examples) > 0 {
		return a.cfg.View.Examples
	}
	return []string{"torvalds", "golang/go", "https://" + a.resolver.Parser.Host() + "/charmbracelet/bubbletea"}
}

func (a *app) newViewer(mode query.Mode, style chart.LanguageStyle) *tui.Model {
	return tui.NewModel(tui.Options{
		Resolver: a.resolver,
		Fetcher:  a.client,
		Recorder: a.store,
		Logger:   a.logger,
		Mode:     mode,
		Style:    style,
		Color:    true,
		Examples: a.examples(),
	})
}

func runViewerCmd(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	mode, style, err := a.viewSettings(cmd, &viewMode, &viewChart)
	if err != nil {
		return err
	}
	return runProgram(a.newViewer(mode, style))
}

func runProgram(m *tui.Model) error {
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
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

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# repolens configuration
# Uncomment a value to enable it. CLI flags override config values.

[backend]
# base-url = %q   # Analytics backend base URL
# timeout-seconds = %d                        # Request timeout
# user-agent = "repolens"                     # User-Agent header

[web]
# host = %q                          # Host accepted in URL searches

[view]
# mode = %q                         # Initial search mode: account, project or url
# chart = %q                            # Language chart: pie or bar
# color = true                                # Color in plain reports
# examples = ["torvalds", "golang/go"]        # alt+1..9 shortcuts in the viewer

[log]
# level = %q                            # debug, info, warn or error
# format = %q                           # text or json
# file = %q
`,
		client.DefaultBaseURL,
		defaultTimeoutSecs,
		query.DefaultHost,
		defaultMode,
		defaultChart,
		defaultLogLevel,
		defaultLogFormat,
		config.DefaultLogPath(),
	)
}

// userError turns a model error into its title and message.
func userError(err error) error {
	var merr *model.Error
	if errors.As(err, &merr) {
		return fmt.Errorf("%s: %s", merr.Title, merr.Message)
	}
	return err
}

func stdoutWidth() (int, bool) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 0, false
	}
	return width, true
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
