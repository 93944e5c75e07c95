// cmd/urlsift/root.go
package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"urlsift/internal/adapters/extstore"
	"urlsift/internal/core/ports"
	"urlsift/internal/core/usecases"
	"urlsift/internal/platform/config"
	"urlsift/internal/platform/errors"
	"urlsift/internal/platform/logx"
	"urlsift/internal/platform/ui"
)

// Process exit codes.
const (
	exitOK        = 0
	exitFailed    = 1
	exitUsage     = 2
	exitCancelled = 130
)

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error { return &exitError{code: exitUsage, err: err} }
func failed(err error) error     { return &exitError{code: exitFailed, err: err} }

// app holds what the commands of one invocation share.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg        config.Config
	newContext func() (context.Context, context.CancelFunc)
}

// execute runs the command line and returns the process exit code.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
		newContext: rootContextWithSignals,
	}

	root := newRootCmd(a)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.code == exitUsage {
			fmt.Fprintln(stderr, "Try: urlsift --help")
		}
		return ee.code
	}

	// Anything not wrapped comes from cobra's own argument parsing.
	fmt.Fprintln(stderr, "Try: urlsift --help")
	return exitUsage
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "urlsift",
		Short:         "Collapse URL lists to a few representatives per endpoint",
		Long:          config.LongHelp + "\n\n" + config.EnvHelp,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return usageError(err)
			}
			a.cfg = cfg
			return nil
		},
	}

	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newFilterCmd(a),
		newExtCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)

	return root
}

// newLogger builds the logger from the loaded config. The pterm UI owns
// the terminal, so console logging drops to warnings unless debug was asked for.
func (a *app) newLogger(mode ui.Mode) logx.Logger {
	opts := a.cfg.LogOptions()
	opts.Console = a.stderr
	if mode == ui.ModePterm && opts.Level == logx.LevelInfo {
		opts.Level = logx.LevelWarn
	}
	return logx.NewWithOptions(opts)
}

// newController wires the filter engine, the persisted extension set and
// the given observers.
func (a *app) newController(logger logx.Logger, observers ...ports.Notifier) (*usecases.Controller, error) {
	return usecases.NewController(usecases.ControllerOptions{
		Filter:            a.cfg.FilterEngineConfig(),
		Logger:            logger,
		Store:             extstore.New(a.cfg.Extensions.Store),
		DefaultExtensions: a.cfg.Extensions.Defaults,
		Observers:         observers,
		Version:           version,
	})
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// version never depends on the configuration
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(*cobra.Command, []string) {
			config.PrintVersion(a.stdout, version, commit, date)
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			out, err := a.cfg.ToYAML()
			if err != nil {
				return failed(err)
			}
			if a.cfg.File != "" {
				fmt.Fprintf(a.stdout, "# loaded from %s\n", a.cfg.File)
			}
			if _, err := io.WriteString(a.stdout, out); err != nil {
				return failed(err)
			}
			return nil
		},
	})

	return cmd
}
