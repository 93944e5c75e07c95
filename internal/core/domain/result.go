// internal/core/domain/result.go
package domain

import (
	"fmt"
	"time"
)

// RunResult representa el resultado de una ejecución de filtrado completada.
type RunResult struct {
	// ID identificador único de la ejecución
	ID string

	// URLs representantes en orden de emisión
	URLs []string

	// Metadata información sobre la ejecución
	Metadata RunMetadata

	// Warnings advertencias no críticas (p. ej. archivos importados sin URLs)
	Warnings []Warning
}

// RunMetadata contiene información sobre la ejecución del filtrado.
type RunMetadata struct {
	// StartTime momento de inicio
	StartTime time.Time

	// EndTime momento de finalización
	EndTime time.Time

	// Duration duración total
	Duration time.Duration

	// InputURLs número de URLs recibidas (sin líneas vacías)
	InputURLs int

	// ExtensionFiltered URLs descartadas por extensión estática
	ExtensionFiltered int

	// Unparseable URLs descartadas por no poder analizarse
	Unparseable int

	// Groups número de firmas distintas
	Groups int

	// OverflowMembers miembros contados pero fuera de la ventana de ranking
	OverflowMembers int

	// Extensions conjunto de extensiones usado en la ejecución
	Extensions []string

	// Version versión de urlsift utilizada
	Version string
}

// Warning representa una advertencia no crítica.
type Warning struct {
	// Source componente que generó la advertencia
	Source string

	// Message descripción de la advertencia
	Message string

	// Timestamp momento de la advertencia
	Timestamp time.Time
}

// NewRunResult crea un nuevo resultado con el ID indicado.
func NewRunResult(id string) *RunResult {
	return &RunResult{
		ID:   id,
		URLs: []string{},
		Metadata: RunMetadata{
			StartTime: time.Now(),
		},
		Warnings: []Warning{},
	}
}

// AddWarning añade una advertencia al resultado.
func (r *RunResult) AddWarning(source, message string) {
	r.Warnings = append(r.Warnings, Warning{
		Source:    source,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// Finalize marca la ejecución como completada.
func (r *RunResult) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}

// Kept retorna el número de URLs representantes.
func (r *RunResult) Kept() int {
	return len(r.URLs)
}

// IsEmpty indica si no hay URLs que exportar.
func (r *RunResult) IsEmpty() bool {
	return r == nil || len(r.URLs) == 0
}

// ReductionRatio retorna el porcentaje de URLs de entrada no conservadas.
func (r *RunResult) ReductionRatio() float64 {
	if r.Metadata.InputURLs == 0 {
		return 0
	}
	return float64(r.Metadata.InputURLs-len(r.URLs)) / float64(r.Metadata.InputURLs) * 100
}

// Summary retorna el mensaje de finalización mostrado al usuario.
func (r *RunResult) Summary() string {
	return fmt.Sprintf("processed %d URLs, kept %d", r.Metadata.InputURLs, len(r.URLs))
}

// String retorna un resumen técnico para logs.
func (r *RunResult) String() string {
	return fmt.Sprintf(
		"RunResult{id=%s, input=%d, kept=%d, groups=%d, warnings=%d, duration=%s}",
		r.ID,
		r.Metadata.InputURLs,
		len(r.URLs),
		r.Metadata.Groups,
		len(r.Warnings),
		r.Metadata.Duration,
	)
}
