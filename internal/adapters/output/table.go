// internal/adapters/output/table.go
package output

import (
	"fmt"
	"io"
	"net"
	"sort"
	"strings"
	"text/tabwriter"

	"golang.org/x/net/publicsuffix"

	"urlsift/internal/core/domain"
	"urlsift/internal/platform/cache"
	"urlsift/internal/platform/urlfilter"
)

// maxSites limita las filas del desglose por sitio.
const maxSites = 15

// SiteCount cuenta URLs de entrada y conservadas por sitio registrable (eTLD+1).
type SiteCount struct {
	Site  string
	Input int
	Kept  int
}

// Reduction retorna el porcentaje de URLs del sitio que se descartaron.
func (s SiteCount) Reduction() float64 {
	if s.Input == 0 {
		return 0
	}
	return float64(s.Input-s.Kept) / float64(s.Input) * 100
}

// siteCacheSize acota el memo host -> sitio de SiteBreakdown.
const siteCacheSize = 4096

const invalidSite = "(invalid)"

// SiteOf retorna el sitio registrable de rawURL: eTLD+1 para nombres,
// la IP tal cual, o "(invalid)" si no se puede analizar.
func SiteOf(rawURL string) string {
	host, ok := hostOf(rawURL)
	if !ok {
		return invalidSite
	}
	return siteOfHost(host)
}

func hostOf(rawURL string) (string, bool) {
	host, ok := urlfilter.Hostname(rawURL)
	if !ok {
		return "", false
	}
	return strings.TrimSuffix(host, "."), true
}

func siteOfHost(host string) string {
	if net.ParseIP(host) != nil {
		return host
	}

	site, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// host es un sufijo público o un nombre sin punto (localhost)
		return host
	}
	return site
}

// SiteBreakdown agrupa input y kept por sitio, ordenado por URLs de entrada
// descendente y luego por nombre.
func SiteBreakdown(input, kept []string) []SiteCount {
	sites := cache.NewLRU[string, string](siteCacheSize)
	siteOf := func(rawURL string) string {
		host, ok := hostOf(rawURL)
		if !ok {
			return invalidSite
		}
		return sites.GetOrCompute(host, siteOfHost)
	}

	counts := make(map[string]*SiteCount)
	get := func(site string) *SiteCount {
		c, ok := counts[site]
		if !ok {
			c = &SiteCount{Site: site}
			counts[site] = c
		}
		return c
	}

	for _, u := range input {
		get(siteOf(u)).Input++
	}
	for _, u := range kept {
		get(siteOf(u)).Kept++
	}

	out := make([]SiteCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Input != out[j].Input {
			return out[i].Input > out[j].Input
		}
		return out[i].Site < out[j].Site
	})
	return out
}

// WriteSummary imprime un resumen legible de la ejecución. input son las
// URLs de entrada (para el desglose por sitio); puede ser nil.
func WriteSummary(out io.Writer, result *domain.RunResult, input []string) error {
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	md := result.Metadata

	fmt.Fprintf(w, "\n=== urlsift results ===\n")
	fmt.Fprintf(w, "Run:\t%s\n", result.ID)
	fmt.Fprintf(w, "Duration:\t%s\n", md.Duration)
	fmt.Fprintf(w, "Input URLs:\t%d\n", md.InputURLs)
	fmt.Fprintf(w, "Kept:\t%d (%.1f%% removed)\n", result.Kept(), result.ReductionRatio())
	fmt.Fprintf(w, "Groups:\t%d\n", md.Groups)
	fmt.Fprintf(w, "Static assets:\t%d\n", md.ExtensionFiltered)
	if md.Unparseable > 0 {
		fmt.Fprintf(w, "Unparseable:\t%d\n", md.Unparseable)
	}
	if md.OverflowMembers > 0 {
		fmt.Fprintf(w, "Not ranked:\t%d\n", md.OverflowMembers)
	}
	fmt.Fprintf(w, "Extensions:\t%s\n\n", strings.Join(md.Extensions, " "))

	sites := SiteBreakdown(input, result.URLs)
	if len(sites) > 0 {
		fmt.Fprintln(w, "SITE\tINPUT\tKEPT\tREDUCTION")
		fmt.Fprintln(w, "----\t-----\t----\t---------")

		shown := sites
		if len(shown) > maxSites {
			shown = shown[:maxSites]
		}
		for _, s := range shown {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.1f%%\n", s.Site, s.Input, s.Kept, s.Reduction())
		}
		if rest := len(sites) - len(shown); rest > 0 {
			fmt.Fprintf(w, "(%d more sites)\t\t\t\n", rest)
		}
	} else {
		fmt.Fprintln(w, "No URLs kept.")
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(out, "\n⚠️  Warnings (%d):\n", len(result.Warnings))
		for i, warning := range result.Warnings {
			fmt.Fprintf(out, "  %d. [%s] %s\n", i+1, warning.Source, warning.Message)
		}
	}

	fmt.Fprintln(out)
	return nil
}
