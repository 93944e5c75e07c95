// internal/platform/ui/raw_presenter.go
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"urlsift/internal/platform/urlfilter"
)

// LogFormat define el formato de salida para el modo raw
type LogFormat string

const (
	LogFormatText LogFormat = "text" // Formato logfmt (default)
	LogFormatJSON LogFormat = "json" // Formato JSON estructurado
)

// RawPresenter implementa el Presenter para modo raw (una línea por evento)
type RawPresenter struct {
	format LogFormat
	w      io.Writer
	mu     sync.Mutex
	now    func() time.Time

	// último porcentaje reportado por etapa, para no inundar la salida
	lastPercent int
}

// NewRawPresenter crea un nuevo RawPresenter
func NewRawPresenter(format LogFormat, w io.Writer) *RawPresenter {
	return &RawPresenter{
		format:      format,
		w:           w,
		now:         time.Now,
		lastPercent: -1,
	}
}

// field par clave/valor con orden estable
type field struct {
	key   string
	value interface{}
}

// log escribe un registro en el formato configurado
func (r *RawPresenter) log(level, message string, fields ...field) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timestamp := r.now().UTC().Format(time.RFC3339)

	if r.format == LogFormatJSON {
		r.logJSON(timestamp, level, message, fields)
	} else {
		r.logText(timestamp, level, message, fields)
	}
}

// logText escribe en formato logfmt: timestamp LEVEL message key=value key2=value2
func (r *RawPresenter) logText(timestamp, level, message string, fields []field) {
	parts := []string{timestamp, fmt.Sprintf("%-5s", level), message}
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s=%s", f.key, formatValue(f.value)))
	}
	fmt.Fprintln(r.w, strings.Join(parts, " "))
}

// logJSON escribe en formato JSON estructurado
func (r *RawPresenter) logJSON(timestamp, level, message string, fields []field) {
	entry := map[string]interface{}{
		"timestamp": timestamp,
		"level":     level,
		"message":   message,
	}

	if len(fields) > 0 {
		data := make(map[string]interface{}, len(fields))
		for _, f := range fields {
			data[f.key] = f.value
		}
		entry["data"] = data
	}

	jsonBytes, _ := json.Marshal(entry)
	fmt.Fprintln(r.w, string(jsonBytes))
}

// formatValue formatea valores para logfmt (entrecomilla strings con espacios)
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		if val == "" || strings.ContainsAny(val, " \t\"=") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case time.Duration:
		return val.String()
	case float64:
		return fmt.Sprintf("%.1f", val)
	case fmt.Stringer:
		return formatValue(val.String())
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Start registra el inicio de la ejecución
func (r *RawPresenter) Start(info RunInfo) {
	r.log("INFO", "run_started",
		field{"run", info.RunID},
		field{"input_urls", info.InputURLs},
		field{"extensions", strings.Join(info.Extensions, ",")},
	)
}

// StartStage registra el inicio de una etapa
func (r *RawPresenter) StartStage(stage StageInfo) {
	r.mu.Lock()
	r.lastPercent = -1
	r.mu.Unlock()

	r.log("INFO", "stage_started",
		field{"stage", int(stage.Stage)},
		field{"name", stage.Stage.String()},
		field{"total", stage.Total},
	)
}

// UpdateStage registra el avance cada vez que cambia el porcentaje entero
func (r *RawPresenter) UpdateStage(p urlfilter.Progress) {
	pct := int(p.Percent())

	r.mu.Lock()
	if pct == r.lastPercent {
		r.mu.Unlock()
		return
	}
	r.lastPercent = pct
	r.mu.Unlock()

	r.log("INFO", "stage_progress",
		field{"stage", int(p.Stage)},
		field{"processed", p.Processed},
		field{"total", p.Total},
		field{"percent", pct},
	)
}

// FinishStage registra el final de una etapa
func (r *RawPresenter) FinishStage(stage urlfilter.Stage, duration time.Duration) {
	r.log("INFO", "stage_finished",
		field{"stage", int(stage)},
		field{"name", stage.String()},
		field{"duration", duration},
	)
}

// Info registra un mensaje informativo
func (r *RawPresenter) Info(msg string) {
	r.log("INFO", "message", field{"text", msg})
}

// Warning registra una advertencia
func (r *RawPresenter) Warning(msg string) {
	r.log("WARN", "message", field{"text", msg})
}

// Error registra un error
func (r *RawPresenter) Error(msg string) {
	r.log("ERROR", "message", field{"text", msg})
}

// Finish registra el desenlace
func (r *RawPresenter) Finish(stats RunStats) {
	level := "INFO"
	switch StatusFor(stats.State) {
	case StatusWarning:
		level = "WARN"
	case StatusError:
		level = "ERROR"
	}

	r.log(level, "run_finished",
		field{"run", stats.RunID},
		field{"state", string(stats.State)},
		field{"message", stats.Message},
		field{"input_urls", stats.InputURLs},
		field{"kept", stats.Kept},
		field{"groups", stats.Groups},
		field{"extension_filtered", stats.ExtensionFiltered},
		field{"unparseable", stats.Unparseable},
		field{"duration", stats.Duration},
	)
}

// Close no hace nada
func (r *RawPresenter) Close() error {
	return nil
}
