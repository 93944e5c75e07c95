// internal/platform/config/help.go
package config

import (
	"fmt"
	"io"
	"runtime"
)

// LongHelp is the description shown by `urlsift --help`.
const LongHelp = `urlsift - URL list deduplication

Collapses large URL lists to a small representative sample. URLs are grouped
by endpoint signature (host plus path, with numeric and long token segments
replaced by a placeholder) and each group keeps at most a handful of URLs
with distinct query-parameter shapes. Static assets are dropped by extension.

Configuration is layered: built-in defaults, then the config file
(--config, or ./urlsift.yaml when present), then URLSIFT_* environment
variables, then command-line flags.`

// EnvHelp documents the environment variables understood by Load.
const EnvHelp = `ENVIRONMENT VARIABLES:
  URLSIFT_CONFIG=path               Config file (yaml or json)
  URLSIFT_BATCH_SIZE=1000           URLs per progress report
  URLSIFT_RANK_WINDOW=100           Members per group considered for ranking
  URLSIFT_MAX_SHAPES=5              Representatives kept per group
  URLSIFT_LONG_SEGMENT=32           Path segment length treated as an ID
  URLSIFT_PLACEHOLDER={param}       Replacement for ID-like segments
  URLSIFT_NOISE_PARAMS=utm_source,t Ignored query keys (replaces the list)
  URLSIFT_EXTENSIONS=.png,.css      Extension set seeded on first use
  URLSIFT_EXT_STORE=path            Extension set file ("" disables it)
  URLSIFT_OUTPUT=path               Output file
  URLSIFT_FORMAT=txt|json           Output format
  URLSIFT_SUMMARY=true              Print the summary table
  URLSIFT_UI=pterm|raw|quiet        Progress display
  URLSIFT_LOG_LEVEL=info            Log level
  URLSIFT_LOG_FILE=path             Rotated JSON log file
  URLSIFT_LOG_MAX_SIZE_MB=10        Log size before rotation
  URLSIFT_LOG_MAX_BACKUPS=3         Rotated logs kept
  URLSIFT_METRICS_TEXTFILE=path     Prometheus textfile written on exit

  Note: CLI flags override environment variables.`

// Examples is shown in the usage of the filter command.
const Examples = `  Filter a file, writing filtered_urls_<timestamp>.txt:
    urlsift filter urls.txt

  Several files, explicit output, JSON with run metadata:
    urlsift filter a.txt b.txt -o out.json -f json

  From stdin, plain progress lines for CI logs:
    cat urls.txt | urlsift filter --ui raw -o -

  Manage the static extension set:
    urlsift ext add ".svg, .woff2 .ico"
    urlsift ext remove .js
    urlsift ext list`

// PrintVersion escribe la información de versión.
func PrintVersion(w io.Writer, version, commit, date string) {
	fmt.Fprintf(w, "urlsift %s\n", version)
	fmt.Fprintf(w, "  Commit:  %s\n", commit)
	fmt.Fprintf(w, "  Built:   %s\n", date)
	fmt.Fprintf(w, "  Go:      %s\n", getGoVersion())
}

func getGoVersion() string {
	return runtime.Version()
}
