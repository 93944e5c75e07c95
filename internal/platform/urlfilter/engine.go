package urlfilter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"urlsift/internal/platform/errors"
	"urlsift/internal/platform/logx"
)

// Progress reports how far a stage has advanced.
type Progress struct {
	Stage     Stage
	Processed int
	Total     int
}

// Percent returns Processed/Total as 0-100. An empty stage counts as done.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 100
	}
	return float64(p.Processed) / float64(p.Total) * 100
}

// ProgressFunc receives progress reports. It is called from the goroutine
// running Engine.Run.
type ProgressFunc func(Progress)

// Engine runs the two-stage filter pipeline.
type Engine struct {
	config   Config
	signer   *Signer
	selector *Selector
	logger   logx.Logger
}

// NewEngine creates a new filter engine with given configuration.
func NewEngine(config Config, logger logx.Logger) *Engine {
	if logger == nil {
		logger = logx.NewNop()
	}

	if err := config.Validate(); err != nil {
		logger.Warn("invalid filter config, using defaults", "error", err.Error())
		config = DefaultConfig()
	}

	engine := &Engine{
		config:   config,
		signer:   NewSigner(config),
		selector: NewSelector(config.RankWindow, config.MaxShapes),
		logger:   logger.With("component", "filter_engine"),
	}

	engine.logger.Debug("initialized filter engine",
		"batch_size", config.BatchSize,
		"rank_window", config.RankWindow,
		"max_shapes", config.MaxShapes,
		"noise_params", len(config.NoiseParams),
	)

	return engine
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Run filters urls against exts, groups survivors by signature and returns
// the representatives in group first-seen order. exts is only read.
// Cancellation is observed at each batch and group boundary; a cancelled
// run returns no URLs and an error matching errors.ErrCancelled.
func (e *Engine) Run(ctx context.Context, urls []string, exts *ExtensionSet, onProgress ProgressFunc) ([]string, Stats, error) {
	startTime := time.Now()
	stats := Stats{InputURLs: len(urls)}

	if exts == nil {
		exts = NewExtensionSet()
	}
	if onProgress == nil {
		onProgress = func(Progress) {}
	}

	e.logger.Info("starting URL filtering", "input_urls", len(urls), "extensions", exts.Len())

	grouper, err := e.filterAndGroup(ctx, urls, exts, onProgress, &stats)
	if err != nil {
		return nil, stats, err
	}

	e.logger.Debug("grouped URLs",
		"kept", stats.Grouped,
		"extension_filtered", stats.ExtensionFiltered,
		"unparseable", stats.Unparseable,
		"groups", grouper.Len(),
	)

	representatives, err := e.selectRepresentatives(ctx, grouper, onProgress, &stats)
	if err != nil {
		return nil, stats, err
	}

	stats.Representatives = len(representatives)
	stats.Duration = time.Since(startTime)
	stats.DurationMs = stats.Duration.Milliseconds()

	e.logger.Info("filtering complete", "stats", stats.String())

	return representatives, stats, nil
}

// filterAndGroup is stage 1: drop static assets and bucket the rest.
func (e *Engine) filterAndGroup(ctx context.Context, urls []string, exts *ExtensionSet, onProgress ProgressFunc, stats *Stats) (*Grouper, error) {
	grouper := NewGrouper(e.config.RankWindow)
	total := len(urls)

	for start := 0; start < total; start += e.config.BatchSize {
		select {
		case <-ctx.Done():
			e.logger.Warn("filtering cancelled", "stage", StageFilter.String(), "processed", start)
			return nil, cancelled(ctx)
		default:
		}

		end := min(start+e.config.BatchSize, total)
		for _, rawURL := range urls[start:end] {
			keep, err := exts.Check(rawURL)
			if err != nil {
				stats.Unparseable++
				e.logger.Debug("skipping unparseable URL", "url", rawURL, "error", err.Error())
				continue
			}
			if !keep {
				stats.ExtensionFiltered++
				continue
			}

			grouper.Add(rawURL, e.signer.Sign(rawURL))
			stats.Grouped++
		}

		onProgress(Progress{Stage: StageFilter, Processed: end, Total: total})
	}

	return grouper, nil
}

// selectRepresentatives is stage 2: rank each group and keep distinct shapes.
func (e *Engine) selectRepresentatives(ctx context.Context, grouper *Grouper, onProgress ProgressFunc, stats *Stats) ([]string, error) {
	groups := grouper.Groups()
	stats.Groups = len(groups)

	var out []string
	for i, g := range groups {
		select {
		case <-ctx.Done():
			e.logger.Warn("selection cancelled", "stage", StageSelect.String(), "processed", i)
			return nil, cancelled(ctx)
		default:
		}

		stats.RankedMembers += len(g.Members)
		stats.OverflowMembers += g.Overflow()
		out = append(out, e.selector.Select(g)...)

		onProgress(Progress{Stage: StageSelect, Processed: i + 1, Total: len(groups)})
	}

	return out, nil
}

func cancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", errors.ErrCancelled, ctx.Err())
}

// CleanLines splits text into trimmed, non-blank lines.
func CleanLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
