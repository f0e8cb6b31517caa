package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/factorgrid/internal/app"
	"github.com/vk/factorgrid/internal/emitter"
)

// Exit codes.
const (
	ExitFailure = 1 // planning or execution failed
	ExitUsage   = 2 // bad flags, arguments or configuration
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

// globalFlags are shared by every command. Each one overrides the matching
// FACTORGRID_* environment variable when given.
type globalFlags struct {
	catalog         []string
	logLevel        string
	logFormat       string
	logFile         string
	envFile         string
	healthcheckPort int
	workers         int
}

// Run parses args, executes the selected command and maps every failure to
// an *ExitError. Command output goes to outW, logs and messages to errW.
func Run(ctx context.Context, args []string, outW, errW io.Writer) error {
	slog.Debug("CLI started.", "args", args)
	root := newRootCommand(outW, errW)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	if strings.HasPrefix(err.Error(), "unknown command") {
		return usageError(err)
	}
	return &ExitError{Code: ExitFailure, Message: err.Error()}
}

func newRootCommand(outW, errW io.Writer) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "factorgrid",
		Short: "Plan and simulate factor computations from a declarative catalog",
		Long: `factorgrid reads a catalog of indicators, classes, functions and factors
from .hcl, .yaml, .yml and .json files, resolves factor dependencies and
data paths, and prints an ordered execution plan of Read, Join, ClassPrep,
IntermediateFunc, Compute and Persist stages.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringSliceVarP(&g.catalog, "catalog", "c", nil, "Catalog file or directory (repeatable, comma separated).")
	pf.StringVar(&g.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&g.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&g.logFile, "log-file", "", "Write logs to this file with rotation instead of stderr.")
	pf.StringVar(&g.envFile, "env-file", "", "Load FACTORGRID_* variables from this .env file.")
	pf.IntVar(&g.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	pf.IntVar(&g.workers, "workers", 4, "Number of concurrent workers for simulate.")

	root.AddCommand(
		newCheckCommand(g, outW, errW),
		newPlanCommand(g, outW, errW),
		newGraphCommand(g, outW, errW),
		newSimulateCommand(g, outW, errW),
	)
	return root
}

// buildConfig merges environment configuration with the flags the user set.
// Positional arguments are extra catalog paths.
func buildConfig(cmd *cobra.Command, g *globalFlags, args []string) (*app.Config, error) {
	cfg, err := app.LoadEnvConfig(g.envFile)
	if err != nil {
		return nil, usageError(err)
	}

	flags := cmd.Flags()
	if flags.Changed("catalog") || len(args) > 0 {
		cfg.CatalogPaths = append(append([]string(nil), g.catalog...), args...)
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = strings.ToLower(g.logLevel)
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = strings.ToLower(g.logFormat)
	}
	if flags.Changed("log-file") {
		cfg.LogFile = g.logFile
	}
	if flags.Changed("healthcheck-port") {
		cfg.HealthcheckPort = g.healthcheckPort
	}
	if flags.Changed("workers") {
		cfg.WorkerCount = g.workers
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	slog.Debug("CLI configuration complete.", "config", config)
	return config, nil
}

// withApp builds the configuration and the application, runs fn and closes
// the application.
func withApp(cmd *cobra.Command, g *globalFlags, args []string, outW, errW io.Writer, fn func(context.Context, *app.App) error) (err error) {
	cfg, err := buildConfig(cmd, g, args)
	if err != nil {
		return err
	}
	a, err := app.NewApp(outW, errW, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()
	return fn(cmd.Context(), a)
}

func newCheckCommand(g *globalFlags, outW, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "check [CATALOG_PATH...]",
		Short: "Load the catalog and validate every reference, data path and dependency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, args, outW, errW, func(ctx context.Context, a *app.App) error {
				return a.Check(ctx)
			})
		},
	}
}

// requestFlags select the factors of plan and simulate.
type requestFlags struct {
	factors []string
	all     bool
	format  string
}

func (r *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&r.factors, "factors", "f", nil, "Factors to plan (repeatable, comma separated).")
	cmd.Flags().BoolVar(&r.all, "all", false, "Plan every factor of the catalog.")
	cmd.Flags().StringVar(&r.format, "format", app.FormatText, "Output format. Options: 'text' or 'json'.")
}

func (r *requestFlags) request() app.Request {
	return app.Request{Factors: r.factors, All: r.all}
}

func (r *requestFlags) validate() error {
	switch r.format {
	case app.FormatText, app.FormatJSON:
		return nil
	default:
		return usageError(fmt.Errorf("invalid format %q: must be 'text' or 'json'", r.format))
	}
}

func newPlanCommand(g *globalFlags, outW, errW io.Writer) *cobra.Command {
	r := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "plan [CATALOG_PATH...]",
		Short: "Print the execution plan of the requested factors",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.validate(); err != nil {
				return err
			}
			return withApp(cmd, g, args, outW, errW, func(ctx context.Context, a *app.App) error {
				return a.Plan(ctx, r.request(), r.format)
			})
		},
	}
	r.register(cmd)
	return cmd
}

func newGraphCommand(g *globalFlags, outW, errW io.Writer) *cobra.Command {
	var view, class, direction string
	cmd := &cobra.Command{
		Use:   "graph [CATALOG_PATH...]",
		Short: "Print the catalog's dependency graph in Graphviz DOT format",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := emitter.ParseView(view)
			if err != nil {
				return usageError(err)
			}
			opts := emitter.DotOptions{View: v, Class: class, Direction: strings.ToUpper(direction)}
			return withApp(cmd, g, args, outW, errW, func(ctx context.Context, a *app.App) error {
				return a.Graph(ctx, opts)
			})
		},
	}
	cmd.Flags().StringVar(&view, "view", "complete", "Graph view. Options: 'complete', 'factors' or 'class'.")
	cmd.Flags().StringVar(&class, "class", "", "Class shown by the 'class' view.")
	cmd.Flags().StringVar(&direction, "direction", "LR", "Rank direction: LR, TB, RL or BT.")
	return cmd
}

func newSimulateCommand(g *globalFlags, outW, errW io.Writer) *cobra.Command {
	r := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "simulate [CATALOG_PATH...]",
		Short: "Execute the plan with stand-in functions and print the run report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.validate(); err != nil {
				return err
			}
			return withApp(cmd, g, args, outW, errW, func(ctx context.Context, a *app.App) error {
				_, err := a.Simulate(ctx, r.request(), r.format)
				return err
			})
		},
	}
	r.register(cmd)
	return cmd
}
