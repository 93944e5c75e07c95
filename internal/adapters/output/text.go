// internal/adapters/output/text.go
package output

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"urlsift/internal/core/domain"
	"urlsift/internal/core/ports"
	"urlsift/internal/platform/errors"
	"urlsift/internal/platform/textio"
)

// TextExporter escribe una URL por línea, UTF-8.
type TextExporter struct {
	now func() time.Time
}

// NewTextExporter crea el exporter de texto plano.
func NewTextExporter() *TextExporter {
	return &TextExporter{now: time.Now}
}

func (e *TextExporter) Name() string                { return "txt" }
func (e *TextExporter) Format() domain.ExportFormat { return domain.ExportFormatText }

// Export escribe el resultado y retorna la ruta final.
func (e *TextExporter) Export(result *domain.RunResult, opts ports.ExportOptions) (string, error) {
	if result.IsEmpty() {
		return "", errors.ErrNoResult
	}

	path := ResolvePath(opts, e.Format(), e.now())
	if err := textio.WriteFile(path, result.URLs); err != nil {
		return "", err
	}
	return path, nil
}

// ExportToWriter escribe las URLs en writer.
func (e *TextExporter) ExportToWriter(result *domain.RunResult, writer io.Writer, _ ports.ExportOptions) error {
	if result.IsEmpty() {
		return errors.ErrNoResult
	}
	return textio.WriteLines(writer, result.URLs)
}

// ResolvePath retorna opts.OutputPath o, si está vacío, el nombre por
// defecto con fecha dentro de opts.OutputDir.
func ResolvePath(opts ports.ExportOptions, format domain.ExportFormat, now time.Time) string {
	if p := strings.TrimSpace(opts.OutputPath); p != "" {
		return p
	}

	name := textio.DefaultExportName(now)
	name = strings.TrimSuffix(name, filepath.Ext(name)) + format.Extension()

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name)
}

// NewExporter retorna el exporter del formato indicado.
func NewExporter(format domain.ExportFormat) (ports.WriterExporter, error) {
	switch format {
	case domain.ExportFormatText:
		return NewTextExporter(), nil
	case domain.ExportFormatJSON:
		return NewJSONExporter(), nil
	default:
		return nil, errors.Wrapf(domain.ErrUnsupportedFormat, "format %q", format)
	}
}

var (
	_ ports.WriterExporter = (*TextExporter)(nil)
	_ ports.WriterExporter = (*JSONExporter)(nil)
)
