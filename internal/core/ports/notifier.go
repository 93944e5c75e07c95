// internal/core/ports/notifier.go
package ports

import (
	"context"
	"time"

	"urlsift/internal/core/domain"
	"urlsift/internal/platform/urlfilter"
)

// Notifier es el port para observar eventos de ejecución (métricas, logs, etc.).
// Se invoca de forma síncrona desde el worker, en el mismo orden que el canal de eventos.
type Notifier interface {
	// Notify recibe un evento de la ejecución
	Notify(ctx context.Context, event Event) error

	// Close cierra el notifier y libera recursos
	Close() error
}

// Event representa un evento de una ejecución de filtrado.
type Event struct {
	// Type tipo de evento
	Type EventType

	// Timestamp momento del evento
	Timestamp time.Time

	// RunID ejecución que generó el evento
	RunID string

	// Data datos específicos del evento
	Data interface{}

	// Severity severidad del evento
	Severity EventSeverity
}

// EventType define los tipos de eventos de una ejecución.
type EventType string

const (
	EventTypeRunStarted   EventType = "run.started"
	EventTypeRunProgress  EventType = "run.progress"
	EventTypeRunCompleted EventType = "run.completed"
	EventTypeRunFailed    EventType = "run.failed"
	EventTypeRunCancelled EventType = "run.cancelled"
)

// IsTerminal indica si el evento cierra la ejecución.
func (t EventType) IsTerminal() bool {
	switch t {
	case EventTypeRunCompleted, EventTypeRunFailed, EventTypeRunCancelled:
		return true
	default:
		return false
	}
}

// EventSeverity define la severidad de un evento.
type EventSeverity string

const (
	EventSeverityInfo    EventSeverity = "info"
	EventSeverityWarning EventSeverity = "warning"
	EventSeverityError   EventSeverity = "error"
)

// NewEvent crea un nuevo evento.
func NewEvent(eventType EventType, runID string, data interface{}) Event {
	severity := EventSeverityInfo
	switch eventType {
	case EventTypeRunFailed:
		severity = EventSeverityError
	case EventTypeRunCancelled:
		severity = EventSeverityWarning
	}

	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		RunID:     runID,
		Data:      data,
		Severity:  severity,
	}
}

// RunStartedEvent datos para evento de inicio.
type RunStartedEvent struct {
	InputURLs  int
	Extensions []string
}

// RunCompletedEvent datos para evento de finalización.
type RunCompletedEvent struct {
	Result *domain.RunResult
}

// RunFailedEvent datos para evento de fallo. Message es el texto mostrado al usuario.
type RunFailedEvent struct {
	Message string
	Err     error
}

// RunCancelledEvent datos para evento de cancelación.
type RunCancelledEvent struct {
	Stage urlfilter.Stage
}

// Progress retorna el avance si el evento es de progreso.
func (e Event) Progress() (urlfilter.Progress, bool) {
	p, ok := e.Data.(urlfilter.Progress)
	return p, ok && e.Type == EventTypeRunProgress
}

// Result retorna el resultado si el evento es de finalización.
func (e Event) Result() (*domain.RunResult, bool) {
	d, ok := e.Data.(RunCompletedEvent)
	if !ok || e.Type != EventTypeRunCompleted {
		return nil, false
	}
	return d.Result, true
}

// Failure retorna el mensaje de error si el evento es de fallo.
func (e Event) Failure() (RunFailedEvent, bool) {
	d, ok := e.Data.(RunFailedEvent)
	return d, ok && e.Type == EventTypeRunFailed
}
