// internal/platform/ui/presenter.go
package ui

import (
	"io"
	"os"
	"strings"
	"time"

	"urlsift/internal/core/domain"
	"urlsift/internal/platform/urlfilter"
)

// Mode define el modo de visualización
type Mode string

const (
	ModePterm Mode = "pterm" // Barras de progreso por etapa (default)
	ModeRaw   Mode = "raw"   // Líneas logfmt, apto para CI
	ModeQuiet Mode = "quiet" // Sin UI visual
)

// ParseMode convierte el valor de configuración a Mode. Desconocido = pterm.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeRaw:
		return ModeRaw
	case ModeQuiet:
		return ModeQuiet
	default:
		return ModePterm
	}
}

// TotalStages número de etapas de una ejecución.
const TotalStages = 2

// Presenter define la interfaz para presentar el progreso de una ejecución
// de filtrado de manera visual.
type Presenter interface {
	// Start inicia la presentación con información de la ejecución
	Start(info RunInfo)

	// StartStage notifica el inicio de una etapa
	StartStage(stage StageInfo)

	// UpdateStage actualiza el avance de la etapa en curso
	UpdateStage(p urlfilter.Progress)

	// FinishStage notifica la finalización de una etapa
	FinishStage(stage urlfilter.Stage, duration time.Duration)

	// Info muestra un mensaje informativo
	Info(msg string)

	// Warning muestra una advertencia
	Warning(msg string)

	// Error muestra un error
	Error(msg string)

	// Finish finaliza la presentación con estadísticas finales
	Finish(stats RunStats)

	// Close limpia recursos del presenter
	Close() error
}

// RunInfo contiene información inicial de la ejecución
type RunInfo struct {
	RunID      string
	InputURLs  int
	Extensions []string
}

// StageInfo contiene información de una etapa
type StageInfo struct {
	Stage       urlfilter.Stage
	TotalStages int
	Total       int // lotes de URLs (etapa 1) o grupos (etapa 2)
}

// RunStats contiene el desenlace de la ejecución
type RunStats struct {
	RunID    string
	State    domain.RunState
	Message  string // resumen, o el error mostrado al usuario
	Duration time.Duration

	InputURLs         int
	Kept              int
	Groups            int
	ExtensionFiltered int
	Unparseable       int
	ReductionRatio    float64
}

// New crea el presenter del modo indicado escribiendo en w (stdout si nil).
func New(mode Mode, w io.Writer) Presenter {
	if w == nil {
		w = os.Stdout
	}
	switch mode {
	case ModeQuiet:
		return NewNoopPresenter()
	case ModeRaw:
		return NewRawPresenter(LogFormatText, w)
	default:
		return NewPTermPresenter(w)
	}
}
