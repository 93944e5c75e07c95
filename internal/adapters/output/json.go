// internal/adapters/output/json.go
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"urlsift/internal/core/domain"
	"urlsift/internal/core/ports"
	"urlsift/internal/platform/errors"
	"urlsift/internal/platform/textio"
)

// JSONExporter escribe las URLs junto con la metadata de la ejecución.
type JSONExporter struct {
	now func() time.Time
}

// NewJSONExporter crea el exporter JSON.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{now: time.Now}
}

func (e *JSONExporter) Name() string                { return "json" }
func (e *JSONExporter) Format() domain.ExportFormat { return domain.ExportFormatJSON }

// Document es la forma serializada del resultado.
type Document struct {
	RunID    string       `json:"run_id"`
	URLs     []string     `json:"urls"`
	Metadata *DocMetadata `json:"metadata,omitempty"`
	Warnings []DocWarning `json:"warnings,omitempty"`
}

// DocMetadata resume la ejecución.
type DocMetadata struct {
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	DurationMs        int64     `json:"duration_ms"`
	InputURLs         int       `json:"input_urls"`
	Kept              int       `json:"kept"`
	ExtensionFiltered int       `json:"extension_filtered"`
	Unparseable       int       `json:"unparseable"`
	Groups            int       `json:"groups"`
	OverflowMembers   int       `json:"overflow_members"`
	ReductionRatio    float64   `json:"reduction_ratio"`
	Extensions        []string  `json:"extensions"`
	Version           string    `json:"version,omitempty"`
}

// DocWarning advertencia no crítica.
type DocWarning struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// BuildDocument convierte un resultado a su forma serializable.
func BuildDocument(result *domain.RunResult, includeMetadata bool) Document {
	doc := Document{
		RunID: result.ID,
		URLs:  result.URLs,
	}
	if doc.URLs == nil {
		doc.URLs = []string{}
	}

	if includeMetadata {
		md := result.Metadata
		doc.Metadata = &DocMetadata{
			StartTime:         md.StartTime,
			EndTime:           md.EndTime,
			DurationMs:        md.Duration.Milliseconds(),
			InputURLs:         md.InputURLs,
			Kept:              result.Kept(),
			ExtensionFiltered: md.ExtensionFiltered,
			Unparseable:       md.Unparseable,
			Groups:            md.Groups,
			OverflowMembers:   md.OverflowMembers,
			ReductionRatio:    result.ReductionRatio(),
			Extensions:        md.Extensions,
			Version:           md.Version,
		}
		for _, w := range result.Warnings {
			doc.Warnings = append(doc.Warnings, DocWarning{Source: w.Source, Message: w.Message})
		}
	}

	return doc
}

// Export escribe el documento y retorna la ruta final.
func (e *JSONExporter) Export(result *domain.RunResult, opts ports.ExportOptions) (string, error) {
	if result.IsEmpty() {
		return "", errors.ErrNoResult
	}

	path := ResolvePath(opts, e.Format(), e.now())
	err := textio.WriteAtomic(path, func(w io.Writer) error {
		return e.encode(result, w, opts)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// ExportToWriter escribe el documento en writer.
func (e *JSONExporter) ExportToWriter(result *domain.RunResult, writer io.Writer, opts ports.ExportOptions) error {
	if result.IsEmpty() {
		return errors.ErrNoResult
	}
	return e.encode(result, writer, opts)
}

func (e *JSONExporter) encode(result *domain.RunResult, w io.Writer, opts ports.ExportOptions) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if opts.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(BuildDocument(result, opts.IncludeMetadata)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
