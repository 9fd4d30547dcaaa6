// Package main provides the CLI entrypoint for churnform.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/churnform/internal/config"
	"github.com/verte-zerg/churnform/internal/form"
	"github.com/verte-zerg/churnform/internal/logging"
	"github.com/verte-zerg/churnform/internal/model"
	"github.com/verte-zerg/churnform/internal/predict"
	"github.com/verte-zerg/churnform/internal/stats"
	"github.com/verte-zerg/churnform/internal/store"
	"github.com/verte-zerg/churnform/internal/tui"
)

const (
	defaultLogLevel      = "info"
	defaultHistoryWindow = 5
)

var (
	serviceEndpoint string
	serviceTimeout  time.Duration
	noHistory       bool
	historyPath     string
	logLevel        string
	logPath         string

	predictJSON   bool
	predictFields = map[form.Field]*string{}

	historySince  string
	historyLast   int
	historyWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "churnform",
		Short:         "Customer churn prediction form",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runFormCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&serviceEndpoint, "endpoint", predict.DefaultEndpoint, "prediction service URL")
	flags.DurationVar(&serviceTimeout, "timeout", 0, "request timeout (0 disables)")
	flags.BoolVar(&noHistory, "no-history", false, "do not save predictions locally")
	flags.StringVar(&historyPath, "history-path", config.DefaultDBPath(), "prediction history database")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&logPath, "log-path", config.DefaultLogPath(), "log file path")

	rootCmd.AddCommand(newPredictCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// loadRuntimeConfig merges flags, the config file and defaults.
func loadRuntimeConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return resolveConfig(cmd, fileCfg)
}

func resolveConfig(cmd *cobra.Command, fileCfg config.FileConfig) (model.Config, error) {
	applyStringConfig(cmd, "endpoint", &serviceEndpoint, fileCfg.Service.Endpoint)
	if err := applyDurationConfig(cmd, "timeout", &serviceTimeout, fileCfg.Service.Timeout); err != nil {
		return model.Config{}, err
	}
	historyEnabled := !noHistory
	if fileCfg.History.Enabled != nil && !cmd.Flags().Changed("no-history") {
		historyEnabled = *fileCfg.History.Enabled
	}
	applyStringConfig(cmd, "history-path", &historyPath, fileCfg.History.Path)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-path", &logPath, fileCfg.Log.Path)

	cfg := model.Config{
		Endpoint:       strings.TrimSpace(serviceEndpoint),
		Timeout:        serviceTimeout,
		HistoryEnabled: historyEnabled,
		HistoryPath:    historyPath,
		LogLevel:       logLevel,
		LogPath:        logPath,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg model.Config) error {
	if err := predict.ValidateEndpoint(cfg.Endpoint); err != nil {
		return fmt.Errorf("--endpoint: %w", err)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("--timeout must be >= 0")
	}
	if cfg.HistoryEnabled && cfg.HistoryPath == "" {
		return fmt.Errorf("--history-path must not be empty")
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	return nil
}

func openLogger(cfg model.Config) *logging.Logger {
	log, err := logging.New(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		logErrf("logging disabled: %v\n", err)
		return logging.Nop()
	}
	return log
}

func openHistory(cfg model.Config, log *logging.Logger) *store.Store {
	if !cfg.HistoryEnabled {
		return nil
	}
	st, err := store.Open(cfg.HistoryPath)
	if err != nil {
		log.Warn("history disabled", "path", cfg.HistoryPath, "error", err)
		logErrf("history disabled: %v\n", err)
		return nil
	}
	return st
}

func closeHistory(st *store.Store) {
	if st == nil {
		return
	}
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func newClient(cfg model.Config, log *logging.Logger) *predict.Client {
	return predict.New(cfg.Endpoint,
		predict.WithTimeout(cfg.Timeout),
		predict.WithLogger(log),
	)
}

func runFormCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadRuntimeConfig(cmd)
	if err != nil {
		return err
	}
	log := openLogger(cfg)
	defer log.Sync()

	st := openHistory(cfg, log)
	defer closeHistory(st)

	opts := tui.Options{Endpoint: cfg.Endpoint, Logger: log}
	if st != nil {
		opts.Recorder = st
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting form", "endpoint", cfg.Endpoint, "timeout", cfg.Timeout.String(), "history", st != nil)
	program := tea.NewProgram(tui.NewModel(ctx, newClient(cfg, log), opts), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Submit one prediction without the form",
		Args:  cobra.NoArgs,
		RunE:  runPredictCmd,
	}
	for _, f := range form.Fields() {
		value := new(string)
		predictFields[f] = value
		cmd.Flags().StringVar(value, flagName(f), f.Default(), predictFlagUsage(f))
	}
	cmd.Flags().BoolVar(&predictJSON, "json", false, "print the raw result as JSON")
	return cmd
}

func flagName(f form.Field) string {
	return strings.ToLower(strings.ReplaceAll(string(f), "_", "-"))
}

func predictFlagUsage(f form.Field) string {
	if f.IsChoice() {
		return fmt.Sprintf("%s (%s)", f.Label(), strings.Join(f.Options(), ", "))
	}
	return f.Label()
}

func buildFormState() (form.State, error) {
	state := form.Default()
	for _, f := range form.Fields() {
		value, ok := predictFields[f]
		if !ok {
			continue
		}
		next, err := state.With(f, *value)
		if err != nil {
			return form.State{}, fmt.Errorf("--%s: %w", flagName(f), err)
		}
		state = next
	}
	return state, nil
}

func runPredictCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadRuntimeConfig(cmd)
	if err != nil {
		return err
	}
	state, err := buildFormState()
	if err != nil {
		return err
	}
	log := openLogger(cfg)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	requestID := uuid.NewString()
	log = log.With("request_id", requestID)
	req := state.Request()
	res, err := newClient(cfg, log).Predict(ctx, req)
	if err != nil {
		log.Warn("prediction failed",
			"kind", predict.KindOf(err).String(),
			"status", predict.StatusOf(err),
			"error", err,
		)
		logErrln(predict.UserMessageFor(err))
		return fmt.Errorf("prediction failed")
	}

	if res != nil {
		if st := openHistory(cfg, log); st != nil {
			entry := model.HistoryEntry{
				RequestID: requestID,
				CreatedAt: time.Now(),
				Endpoint:  cfg.Endpoint,
				Request:   req,
				Result:    *res,
			}
			if _, err := st.InsertPrediction(ctx, entry); err != nil {
				log.Warn("failed to save prediction", "error", err)
			}
			closeHistory(st)
		}
	}

	if predictJSON {
		return writeResultJSON(cmd, res)
	}
	if err := stats.RenderPrediction(cmd.OutOrStdout(), res, state, stats.TerminalWidth()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

type resultJSON struct {
	Prediction  model.Number `json:"churn_prediction"`
	Probability model.Number `json:"churn_probability"`
}

func writeResultJSON(cmd *cobra.Command, res *model.PredictionResult) error {
	var out any
	if res != nil {
		out = resultJSON{
			Prediction:  model.Number(res.Prediction),
			Probability: model.Number(res.Probability),
		}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show saved predictions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N predictions")
	cmd.Flags().IntVar(&historyWindow, "window", defaultHistoryWindow, "moving average window for the trend")
	return cmd
}

func parseHistoryConfig() (model.HistoryConfig, error) {
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return model.HistoryConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if historyLast < 0 {
		return model.HistoryConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if historyWindow <= 0 {
		return model.HistoryConfig{}, fmt.Errorf("--window must be > 0")
	}
	return model.HistoryConfig{Since: sinceTime, Last: historyLast, Window: historyWindow}, nil
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadRuntimeConfig(cmd)
	if err != nil {
		return err
	}
	histCfg, err := parseHistoryConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.HistoryPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeHistory(st)

	report, err := stats.BuildReport(context.Background(), st, histCfg)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if err := stats.RenderHistory(cmd.OutOrStdout(), report, histCfg.Window); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
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

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# churnform configuration
# Uncomment a value to enable it. CLI flags override config values.

[service]
# endpoint = %q
# timeout = "10s"         # Request timeout, Go duration syntax (default: none)

[history]
# enabled = true          # Save successful predictions locally
# path = %q

[log]
# level = %q          # debug, info, warn, error
# path = %q
`,
		predict.DefaultEndpoint,
		config.DefaultDBPath(),
		defaultLogLevel,
		config.DefaultLogPath(),
	)
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

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil {
		return nil
	}
	if cmd.Flags().Changed(name) {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(*value))
	if err != nil {
		return fmt.Errorf("invalid %s in config: %w", name, err)
	}
	*target = d
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
