// internal/adapters/output/output_test.go
package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urlsift/internal/core/domain"
	"urlsift/internal/core/ports"
	"urlsift/internal/platform/errors"
)

var fixedNow = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

func sampleResult() *domain.RunResult {
	res := domain.NewRunResult("run-1")
	res.URLs = []string{
		"https://shop.example.co.uk/item/1?id=2&x=1",
		"https://api.example.com/user/9",
		"https://example.com/",
	}
	res.Metadata.InputURLs = 12
	res.Metadata.ExtensionFiltered = 2
	res.Metadata.Groups = 3
	res.Metadata.Extensions = []string{".css", ".png"}
	res.Metadata.Version = "1.0.0"
	res.Finalize()
	res.AddWarning("import", "empty.txt: no URLs found")
	return res
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name   string
		opts   ports.ExportOptions
		format domain.ExportFormat
		want   string
	}{
		{"explicit path", ports.ExportOptions{OutputPath: " out/urls.txt "}, domain.ExportFormatText, "out/urls.txt"},
		{"default txt", ports.ExportOptions{OutputDir: "exports"}, domain.ExportFormatText, filepath.Join("exports", "filtered_urls_20240305_140709.txt")},
		{"default json", ports.ExportOptions{}, domain.ExportFormatJSON, "filtered_urls_20240305_140709.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePath(tt.opts, tt.format, fixedNow))
		})
	}
}

func TestTextExporter_Export(t *testing.T) {
	dir := t.TempDir()
	e := NewTextExporter()
	e.now = func() time.Time { return fixedNow }

	path, err := e.Export(sampleResult(), ports.ExportOptions{OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "filtered_urls_20240305_140709.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(sampleResult().URLs, "\n")+"\n", string(data))
}

func TestExporters_RefuseEmptyResult(t *testing.T) {
	empty := domain.NewRunResult("run-2")

	for _, e := range []ports.WriterExporter{NewTextExporter(), NewJSONExporter()} {
		t.Run(e.Name(), func(t *testing.T) {
			_, err := e.Export(empty, ports.ExportOptions{OutputDir: t.TempDir()})
			assert.True(t, errors.IsNoResult(err))

			var buf bytes.Buffer
			assert.True(t, errors.IsNoResult(e.ExportToWriter(empty, &buf, ports.DefaultExportOptions())))
			assert.Zero(t, buf.Len())
		})
	}
}

func TestJSONExporter_ExportToWriter(t *testing.T) {
	var buf bytes.Buffer
	res := sampleResult()

	require.NoError(t, NewJSONExporter().ExportToWriter(res, &buf, ports.DefaultExportOptions()))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "run-1", doc.RunID)
	if diff := cmp.Diff(res.URLs, doc.URLs); diff != "" {
		t.Errorf("URLs mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, doc.Metadata)
	assert.Equal(t, 12, doc.Metadata.InputURLs)
	assert.Equal(t, 3, doc.Metadata.Kept)
	assert.InDelta(t, 75.0, doc.Metadata.ReductionRatio, 0.001)
	assert.Equal(t, []string{".css", ".png"}, doc.Metadata.Extensions)
	require.Len(t, doc.Warnings, 1)
	assert.Equal(t, "import", doc.Warnings[0].Source)

	assert.Contains(t, buf.String(), "\n  \"urls\"", "pretty output is indented")
	assert.Contains(t, buf.String(), "?id=2&x=1", "URLs are not HTML-escaped")
}

func TestJSONExporter_WithoutMetadata(t *testing.T) {
	var buf bytes.Buffer
	opts := ports.ExportOptions{Pretty: false, IncludeMetadata: false}

	require.NoError(t, NewJSONExporter().ExportToWriter(sampleResult(), &buf, opts))

	out := strings.TrimSpace(buf.String())
	assert.NotContains(t, out, "metadata")
	assert.NotContains(t, out, "warnings")
	assert.NotContains(t, out, "\n")
}

func TestJSONExporter_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "result.json")

	got, err := NewJSONExporter().Export(sampleResult(), ports.ExportOptions{OutputPath: path, Pretty: true, IncludeMetadata: true})
	require.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.URLs, 3)
}

func TestNewExporter(t *testing.T) {
	e, err := NewExporter(domain.ExportFormatText)
	require.NoError(t, err)
	assert.Equal(t, domain.ExportFormatText, e.Format())

	e, err = NewExporter(domain.ExportFormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "json", e.Name())

	_, err = NewExporter("csv")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestSiteOf(t *testing.T) {
	tests := map[string]string{
		"https://shop.example.co.uk/a":  "example.co.uk",
		"https://API.Example.com:8443/": "example.com",
		"http://127.0.0.1:8080/x":       "127.0.0.1",
		"http://[::1]/":                 "::1",
		"http://localhost/":             "localhost",
		"http://x.com/%zz":              "x.com",
		"http://[::1/x":                 "(invalid)",
		"not a url":                     "(invalid)",
	}
	for in, want := range tests {
		if got := SiteOf(in); got != want {
			t.Errorf("SiteOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSiteBreakdown(t *testing.T) {
	input := []string{
		"https://a.example.com/1",
		"https://b.example.com/2",
		"https://example.com/3",
		"https://other.org/x",
		"https://other.org/y",
		"https://zzz.net/",
	}
	kept := []string{"https://a.example.com/1", "https://other.org/x"}

	want := []SiteCount{
		{Site: "example.com", Input: 3, Kept: 1},
		{Site: "other.org", Input: 2, Kept: 1},
		{Site: "zzz.net", Input: 1, Kept: 0},
	}
	got := SiteBreakdown(input, kept)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SiteBreakdown() mismatch (-want +got):\n%s", diff)
	}
	assert.InDelta(t, 50.0, got[1].Reduction(), 0.001)
	assert.Zero(t, SiteCount{}.Reduction())
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	res := sampleResult()
	input := append([]string{"https://example.com/a", "https://example.com/b"}, res.URLs...)

	require.NoError(t, WriteSummary(&buf, res, input))
	out := buf.String()

	for _, want := range []string{
		"urlsift results",
		"run-1",
		"Kept:",
		"75.0% removed",
		"SITE",
		"example.com",
		"example.co.uk",
		"Warnings (1)",
		"empty.txt: no URLs found",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Unparseable:") {
		t.Error("zero counters are omitted")
	}
}

func TestWriteSummary_LimitsSites(t *testing.T) {
	res := domain.NewRunResult("run-3")
	var input []string
	for i := 0; i < maxSites+3; i++ {
		u := "https://site" + string(rune('a'+i)) + ".com/"
		input = append(input, u)
		res.URLs = append(res.URLs, u)
	}
	res.Metadata.InputURLs = len(input)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, res, input))
	assert.Contains(t, buf.String(), "(3 more sites)")
}
