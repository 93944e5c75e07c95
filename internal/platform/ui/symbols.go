// internal/platform/ui/symbols.go
package ui

import (
	"github.com/pterm/pterm"

	"urlsift/internal/core/domain"
)

// Status representa el estado de una etapa o de la ejecución
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusSuccess
	StatusWarning
	StatusError
)

// StatusFor traduce el estado final de una ejecución.
func StatusFor(state domain.RunState) Status {
	switch state {
	case domain.RunStateCompleted:
		return StatusSuccess
	case domain.RunStateCancelled:
		return StatusWarning
	case domain.RunStateFailed:
		return StatusError
	case domain.RunStateRunning:
		return StatusRunning
	default:
		return StatusPending
	}
}

// String convierte el status a string
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Symbol retorna el símbolo Unicode para cada estado
func (s Status) Symbol() string {
	switch s {
	case StatusPending:
		return "⏸"
	case StatusRunning:
		return "⣾"
	case StatusSuccess:
		return "✓"
	case StatusWarning:
		return "⚠"
	case StatusError:
		return "✗"
	default:
		return "?"
	}
}

// Style retorna el estilo pterm para cada estado
func (s Status) Style() *pterm.Style {
	switch s {
	case StatusRunning:
		return StyleActive
	case StatusSuccess:
		return StyleSuccess
	case StatusWarning:
		return StyleWarning
	case StatusError:
		return StyleError
	default:
		return StyleSecondary
	}
}

// Icons
var (
	IconInput   = "📥"
	IconStage   = "🔄"
	IconTime    = "⏱"
	IconKept    = "📦"
	IconGroups  = "🗂"
	IconFilter  = "🧹"
	IconWarning = "⚠"
)

var (
	SeparatorHeavy = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
	SeparatorLight = "────────────────────────────────────────────"
)
