// Package cli implements the ninchi command tree: global flag registration,
// configuration loading, logger and metrics initialization, and the identify,
// batch and version subcommands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/ninchi/internal/application/identify"
	"github.com/turtacn/ninchi/internal/config"
	"github.com/turtacn/ninchi/internal/domain/molecule"
	"github.com/turtacn/ninchi/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ninchi/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ninchi/pkg/errors"
	"github.com/turtacn/ninchi/pkg/periodic"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// BuildInfo holds version information injected at build time.
type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
}

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Service      identify.Service
	Collector    prometheus.MetricsCollector
	OutputFormat string
	Verbose      bool
}

// app ties one command-tree execution to the dependencies it initialized, so
// metrics can be flushed after a failing subcommand too.
type app struct {
	opts   RootOptions
	cliCtx *CLIContext
}

// NewRootCommand creates the root cobra command with all global flags and subcommands.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{})
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ninchi",
		Short: "Canonical, permutation-invariant molecular graph identifiers (nInChI)",
		Long: "ninchi reads MDL molfiles, relabels the molecular graph into a canonical atom\n" +
			"order and prints an identifier that does not depend on how the input atoms\n" +
			"were numbered.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.persistentPreRun(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.opts.ConfigPath, "config", "c", "", "config file path (default: ./ninchi.yaml, ~/.ninchi/config.yaml)")
	pf.StringVar(&a.opts.LogLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	pf.StringVarP(&a.opts.OutputFormat, "output", "o", config.DefaultOutputFormat, "output format (text, json, yaml)")
	pf.BoolVarP(&a.opts.Verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		NewIdentifyCmd(),
		NewBatchCmd(),
		NewVersionCmd(),
	)
	return cmd
}

// persistentPreRun initializes config, logger and the identify service, then
// stores the CLIContext on the command.
func (a *app) persistentPreRun(cmd *cobra.Command) error {
	cfg, err := initConfig(cmd, &a.opts)
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg, &a.opts)
	if err != nil {
		return errors.Wrap(err, errors.CodeConfig, "logger initialization failed")
	}

	collector, metrics, err := initMetrics(cfg, logger)
	if err != nil {
		return err
	}

	table := periodic.Standard()
	engine := molecule.NewEngine(
		molecule.WithLogger(logger.Named("engine")),
		molecule.WithMaxIterationFactor(cfg.Canonicalization.MaxIterationFactor),
		molecule.WithWeightedConnectivityIndex(cfg.Canonicalization.WeightedConnectivityIndex),
	)
	svc := identify.NewService(engine, molecule.NewEncoder(table), table, logger.Named("identify"), metrics)

	a.cliCtx = &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Service:      svc,
		Collector:    collector,
		OutputFormat: cfg.Output.Format,
		Verbose:      a.opts.Verbose,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, a.cliCtx))
	return nil
}

// initConfig loads configuration with priority: flags > env > file > defaults.
func initConfig(cmd *cobra.Command, opts *RootOptions) (*config.Config, error) {
	overrides := map[string]interface{}{}
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		overrides["log.level"] = strings.ToLower(opts.LogLevel)
	}
	if f := cmd.Flags().Lookup("output"); f != nil && f.Changed {
		overrides["output.format"] = strings.ToLower(opts.OutputFormat)
	}
	if opts.Verbose {
		overrides["log.level"] = "debug"
	}

	loadOpts := []config.LoadOption{config.WithOverrides(overrides)}
	if opts.ConfigPath != "" {
		loadOpts = append(loadOpts, config.WithConfigPath(opts.ConfigPath))
	}
	cfg, err := config.Load(loadOpts...)
	if config.IsNotFound(err) {
		return nil, errors.New(errors.CodeConfig, "--config file does not exist").WithDetail(opts.ConfigPath)
	}
	return cfg, err
}

// initLogger creates a logger configured for CLI usage.  Structured logs
// never share stdout with command results.
func initLogger(cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	logCfg, err := cfg.Log.LoggerConfig()
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		logCfg.Level = logging.LevelDebug
	}
	for i, p := range logCfg.OutputPaths {
		if p == "stdout" {
			logCfg.OutputPaths[i] = "stderr"
		}
	}
	return logging.NewLogger(logCfg)
}

func initMetrics(cfg *config.Config, logger logging.Logger) (prometheus.MetricsCollector, *prometheus.IdentifierMetrics, error) {
	if !cfg.Metrics.Enabled {
		return nil, nil, nil
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace: cfg.Metrics.Namespace,
	}, logger.Named("metrics"))
	if err != nil {
		return nil, nil, err
	}
	return collector, prometheus.NewIdentifierMetrics(collector), nil
}

// finish flushes the metrics textfile and the logger.
func (a *app) finish() error {
	if a.cliCtx == nil {
		return nil
	}
	defer func() { _ = a.cliCtx.Logger.Sync() }()

	if a.cliCtx.Collector == nil {
		return nil
	}
	path := a.cliCtx.Config.Metrics.TextfilePath
	if err := a.cliCtx.Collector.WriteTextfile(path); err != nil {
		a.cliCtx.Logger.WithError(err).Error("failed to write metrics", logging.String("path", path))
		return err
	}
	a.cliCtx.Logger.Debug("metrics written", logging.String("path", path))
	return nil
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}

	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}

	return cliCtx, nil
}

// Run executes the command tree with args and returns the process exit
// status.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if ferr := a.finish(); err == nil {
		err = ferr
	}
	if err != nil {
		PrintError(root, err)
		return errors.ExitCodeFor(errors.GetCode(err))
	}
	return errors.ExitOK
}

// Execute is the main entry point for the CLI application.
func Execute() int {
	return Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

// PrintResult outputs data in the format specified by CLIContext.  text
// renders the plain-text form.
func PrintResult(cmd *cobra.Command, data interface{}, text func(w io.Writer) error) error {
	format := config.DefaultOutputFormat
	if cliCtx, err := GetCLIContext(cmd); err == nil {
		format = cliCtx.OutputFormat
	}

	w := cmd.OutOrStdout()
	var err error
	switch strings.ToLower(format) {
	case "json":
		err = printJSON(w, data)
	case "yaml":
		err = printYAML(w, data)
	default:
		err = text(w)
	}
	if err != nil {
		return errors.Wrap(err, errors.CodeOutput, "failed to write result")
	}
	return nil
}

// printJSON outputs data as indented JSON.
func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printYAML(w io.Writer, data interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// requireStructureArgs rejects a command line without structure paths.
func requireStructureArgs(minArgs, maxArgs int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < minArgs {
			return errors.InputError("structure file path is required")
		}
		if maxArgs > 0 && len(args) > maxArgs {
			return errors.InputError("too many structure file paths").
				WithDetailf("got=%d max=%d", len(args), maxArgs)
		}
		return nil
	}
}
