// internal/core/domain/enums.go
package domain

// RunState define el estado de una ejecución de filtrado.
type RunState string

const (
	// RunStateIdle no hay ejecución en curso
	RunStateIdle RunState = "idle"

	// RunStateRunning la ejecución está procesando (etapa 1 o 2)
	RunStateRunning RunState = "running"

	// RunStateCompleted la ejecución terminó y produjo un resultado
	RunStateCompleted RunState = "completed"

	// RunStateCancelled la ejecución se detuvo a petición, sin resultado
	RunStateCancelled RunState = "cancelled"

	// RunStateFailed la ejecución abortó por un error interno
	RunStateFailed RunState = "failed"
)

// IsValid verifica si el estado es válido.
func (s RunState) IsValid() bool {
	switch s {
	case RunStateIdle, RunStateRunning, RunStateCompleted, RunStateCancelled, RunStateFailed:
		return true
	default:
		return false
	}
}

// IsTerminal indica si el estado es final para una ejecución.
func (s RunState) IsTerminal() bool {
	switch s {
	case RunStateCompleted, RunStateCancelled, RunStateFailed:
		return true
	default:
		return false
	}
}

// String retorna la representación string del estado.
func (s RunState) String() string {
	return string(s)
}

// ExportFormat define el formato de exportación del resultado.
type ExportFormat string

const (
	// ExportFormatText una URL por línea
	ExportFormatText ExportFormat = "txt"

	// ExportFormatJSON URLs más metadata de la ejecución
	ExportFormatJSON ExportFormat = "json"
)

// IsValid verifica si el formato es válido.
func (f ExportFormat) IsValid() bool {
	switch f {
	case ExportFormatText, ExportFormatJSON:
		return true
	default:
		return false
	}
}

// Extension retorna la extensión de archivo asociada al formato.
func (f ExportFormat) Extension() string {
	switch f {
	case ExportFormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// String retorna la representación string del formato.
func (f ExportFormat) String() string {
	return string(f)
}
