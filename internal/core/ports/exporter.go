// internal/core/ports/exporter.go
package ports

import (
	"io"

	"urlsift/internal/core/domain"
)

// Exporter es el port para exportar resultados en diferentes formatos.
type Exporter interface {
	// Name retorna el nombre del exporter (ej: "txt", "json")
	Name() string

	// Format retorna el formato que produce
	Format() domain.ExportFormat

	// Export escribe el resultado en la ruta indicada en opts
	Export(result *domain.RunResult, opts ExportOptions) (string, error)
}

// WriterExporter permite exportar a cualquier io.Writer.
type WriterExporter interface {
	Exporter

	// ExportToWriter exporta el resultado a un Writer personalizado
	ExportToWriter(result *domain.RunResult, writer io.Writer, opts ExportOptions) error
}

// ExportOptions configura las opciones de exportación.
type ExportOptions struct {
	// OutputPath ruta del archivo; vacío usa el nombre por defecto con fecha
	OutputPath string

	// OutputDir directorio para el nombre por defecto
	OutputDir string

	// Pretty indica si el output debe ser formateado para legibilidad humana
	Pretty bool

	// IncludeMetadata si se debe incluir metadata de la ejecución (solo json)
	IncludeMetadata bool
}

// DefaultExportOptions retorna opciones por defecto.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		OutputDir:       ".",
		Pretty:          true,
		IncludeMetadata: true,
	}
}
