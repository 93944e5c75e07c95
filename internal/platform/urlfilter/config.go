// Package urlfilter collapses large URL lists into a compact representative sample.
// URLs are grouped by endpoint signature (host plus path with ID-like segments replaced)
// and each group keeps a bounded number of distinct query-parameter shapes.
package urlfilter

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultBatchSize is the number of URLs processed between stage 1 progress reports.
	DefaultBatchSize = 1000

	// DefaultRankWindow caps how many members of a group are considered for ranking.
	DefaultRankWindow = 100

	// DefaultMaxShapes is the maximum number of distinct fingerprints kept per group.
	DefaultMaxShapes = 5

	// DefaultLongSegment is the segment length (in characters) at which a path
	// segment is treated as an opaque token.
	DefaultLongSegment = 32

	// DefaultPlaceholder replaces ID-like path segments in signatures.
	DefaultPlaceholder = "{param}"
)

// DefaultNoiseParams lists query keys that carry no navigational meaning
// (tracking, cache busting, timestamps).
var DefaultNoiseParams = []string{
	"timestamp", "time", "t", "random", "rand",
	"v", "version", "_", "_t", "cache",
	"utm_source", "utm_medium", "utm_campaign",
	"ga", "_ga", "fbclid", "ref", "source",
}

// DefaultStaticExtensions seeds the extension set on first use.
var DefaultStaticExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".css", ".js"}

// Stage identifies a pipeline phase.
type Stage int

const (
	// StageFilter covers extension filtering and grouping.
	StageFilter Stage = 1

	// StageSelect covers representative selection.
	StageSelect Stage = 2
)

// String returns a short label for the stage.
func (s Stage) String() string {
	switch s {
	case StageFilter:
		return "filter+group"
	case StageSelect:
		return "select"
	default:
		return "unknown"
	}
}

// Config configures the filter engine.
type Config struct {
	BatchSize   int      // URLs per stage 1 batch
	RankWindow  int      // Members per group considered for ranking
	MaxShapes   int      // Distinct fingerprints emitted per group
	LongSegment int      // Segment length treated as a token
	Placeholder string   // Replacement for ID-like segments
	NoiseParams []string // Query keys ignored for fingerprints and scores
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	noise := make([]string, len(DefaultNoiseParams))
	copy(noise, DefaultNoiseParams)

	return Config{
		BatchSize:   DefaultBatchSize,
		RankWindow:  DefaultRankWindow,
		MaxShapes:   DefaultMaxShapes,
		LongSegment: DefaultLongSegment,
		Placeholder: DefaultPlaceholder,
		NoiseParams: noise,
	}
}

// Validate checks if configuration is valid.
func (c Config) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be >= 1, got %d", c.BatchSize)
	}

	if c.RankWindow < 1 {
		return fmt.Errorf("rank_window must be >= 1, got %d", c.RankWindow)
	}

	if c.MaxShapes < 1 {
		return fmt.Errorf("max_shapes must be >= 1, got %d", c.MaxShapes)
	}

	if c.LongSegment < 1 {
		return fmt.Errorf("long_segment must be >= 1, got %d", c.LongSegment)
	}

	if strings.TrimSpace(c.Placeholder) == "" {
		return fmt.Errorf("placeholder must not be empty")
	}

	if strings.Contains(c.Placeholder, "/") {
		return fmt.Errorf("placeholder must not contain '/', got %q", c.Placeholder)
	}

	return nil
}

// Stats tracks what a run did with its input.
type Stats struct {
	// Input/Output
	InputURLs       int `json:"input_urls"`
	Representatives int `json:"representatives"`

	// Stage 1
	ExtensionFiltered int `json:"extension_filtered"`
	Unparseable       int `json:"unparseable"`
	Grouped           int `json:"grouped"`

	// Stage 2
	Groups          int `json:"groups"`
	RankedMembers   int `json:"ranked_members"`
	OverflowMembers int `json:"overflow_members"`

	// Performance
	DurationMs int64         `json:"duration_ms"`
	Duration   time.Duration `json:"-"`
}

// ReductionRatio returns percentage of input URLs not emitted as representatives.
func (s Stats) ReductionRatio() float64 {
	if s.InputURLs == 0 {
		return 0.0
	}
	return float64(s.InputURLs-s.Representatives) / float64(s.InputURLs) * 100.0
}

// ThroughputURLsPerSecond returns processing throughput.
func (s Stats) ThroughputURLsPerSecond() float64 {
	if s.Duration == 0 {
		return 0.0
	}
	return float64(s.InputURLs) / s.Duration.Seconds()
}

// String returns human-readable statistics.
func (s Stats) String() string {
	return fmt.Sprintf(
		"Stats{input: %d, output: %d, reduction: %.1f%%, ext_filtered: %d, unparseable: %d, groups: %d, overflow: %d, duration: %v, throughput: %.0f urls/s}",
		s.InputURLs,
		s.Representatives,
		s.ReductionRatio(),
		s.ExtensionFiltered,
		s.Unparseable,
		s.Groups,
		s.OverflowMembers,
		s.Duration,
		s.ThroughputURLsPerSecond(),
	)
}
