// cmd/urlsift/filter.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"urlsift/internal/adapters/output"
	"urlsift/internal/core/domain"
	"urlsift/internal/core/ports"
	"urlsift/internal/core/usecases"
	"urlsift/internal/platform/config"
	"urlsift/internal/platform/errors"
	"urlsift/internal/platform/logx"
	"urlsift/internal/platform/metrics"
	"urlsift/internal/platform/textio"
	"urlsift/internal/platform/ui"
)

// stdoutPath as output path writes the result to stdout.
const stdoutPath = "-"

func newFilterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "filter [files...]",
		Short:   "Filter URL lists down to representative URLs",
		Long:    "Reads URLs from the given files (or stdin when none are given), drops static\nassets and keeps a few representatives per endpoint signature.",
		Example: config.Examples,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFilter(args)
		},
	}
}

func (a *app) runFilter(args []string) error {
	cfg := a.cfg
	mode := ui.ParseMode(cfg.UI.Mode)
	toStdout := cfg.Output.Path == stdoutPath

	// 1. Logger and signal-aware context
	logger := a.newLogger(mode)
	ctx, cancel := a.newContext()
	defer cancel()

	logger.Info("urlsift starting",
		"version", version,
		"commit", commit,
		"files", len(args),
		"config", cfg.File,
	)

	// 2. Import
	in, err := a.readInput(ctx, args, logger)
	if err != nil {
		return failed(err)
	}

	exporter, err := output.NewExporter(domain.ExportFormat(cfg.Output.Format))
	if err != nil {
		return usageError(err)
	}

	// 3. Controller with metrics observer and persisted extension set
	m := metrics.New(cfg.Metrics.Textfile)
	ctrl, err := a.newController(logger, m)
	if err != nil {
		return failed(err)
	}
	defer func() {
		if err := ctrl.Close(); err != nil {
			logger.Warn("shutdown failed", "error", err.Error())
		}
	}()

	// Progress and summary move to stderr when stdout carries the result.
	uiOut := a.stdout
	if toStdout {
		uiOut = a.stderr
	}
	presenter := ui.New(mode, uiOut)
	defer presenter.Close()

	// 4. Run and follow its events until the terminal one
	run, err := ctrl.Start(ctx, in)
	if err != nil {
		return failed(err)
	}

	ui.Follow(run.Events(), presenter)
	run.Wait()

	result, runErr := run.Result()
	switch run.State() {
	case domain.RunStateCancelled:
		return &exitError{code: exitCancelled, err: runErr}
	case domain.RunStateFailed:
		return failed(runErr)
	}

	// 5. Export and summary
	if err := a.export(ctrl, exporter, result, toStdout, presenter); err != nil {
		return failed(err)
	}

	if cfg.Output.Summary && mode != ui.ModeQuiet {
		if err := output.WriteSummary(uiOut, result, in.Lines); err != nil {
			logger.Warn("summary failed", "error", err.Error())
		}
	}

	logger.Info("urlsift finished", "summary", result.Summary())
	return nil
}

// readInput imports the files in args, or stdin when args is empty or "-".
// A file without URLs becomes a warning on the result.
func (a *app) readInput(ctx context.Context, args []string, logger logx.Logger) (usecases.Input, error) {
	var docs []textio.Document

	if len(args) == 0 || (len(args) == 1 && args[0] == stdoutPath) {
		doc, err := textio.Read(a.stdin)
		if err != nil {
			return usecases.Input{}, errors.Wrap(err, "import stdin")
		}
		doc.Path = "<stdin>"
		docs = []textio.Document{doc}
	} else {
		var err error
		docs, err = textio.ReadFiles(ctx, args, textio.DefaultImportLimit)
		if err != nil {
			return usecases.Input{}, err
		}
	}

	var in usecases.Input
	for _, doc := range docs {
		logger.Info("imported", "path", doc.Path, "encoding", doc.Encoding, "urls", len(doc.Lines))
		if doc.Empty() {
			msg := fmt.Sprintf("%s: no URLs found", doc.Path)
			logger.Warn(msg)
			in.Warnings = append(in.Warnings, domain.Warning{
				Source:    "import",
				Message:   msg,
				Timestamp: time.Now(),
			})
			continue
		}
		in.Lines = append(in.Lines, doc.Lines...)
	}
	return in, nil
}

// export writes the result to the configured path, or stdout for "-".
// An empty result is reported, not treated as a failure.
func (a *app) export(ctrl *usecases.Controller, exporter ports.WriterExporter, result *domain.RunResult, toStdout bool, p ui.Presenter) error {
	opts := ports.DefaultExportOptions()
	opts.OutputPath = a.cfg.Output.Path

	if toStdout {
		err := exporter.ExportToWriter(result, a.stdout, opts)
		if errors.IsNoResult(err) {
			p.Warning("no URLs kept, nothing to write")
			return nil
		}
		return err
	}

	path, err := ctrl.Export(exporter, opts)
	if errors.IsNoResult(err) {
		p.Warning("no URLs kept, nothing exported")
		return nil
	}
	if err != nil {
		return err
	}

	p.Info(fmt.Sprintf("saved %d URLs to %s", result.Kept(), path))
	return nil
}
