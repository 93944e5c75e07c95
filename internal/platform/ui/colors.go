// internal/platform/ui/colors.go
package ui

import "github.com/pterm/pterm"

// SignalCyan - acento para cifras destacadas
var SignalCyan = pterm.NewRGB(0, 206, 209)

// Estilos preconfigurados para diferentes contextos
var (
	// StyleActive - etapas en curso
	StyleActive = pterm.NewStyle(pterm.FgCyan)

	// StyleSuccess - operaciones exitosas
	StyleSuccess = pterm.NewStyle(pterm.FgGreen)

	// StyleWarning - advertencias y cancelaciones
	StyleWarning = pterm.NewStyle(pterm.FgYellow)

	// StyleError - fallos
	StyleError = pterm.NewStyle(pterm.FgRed)

	// StyleSecondary - texto secundario
	StyleSecondary = pterm.NewStyle(pterm.FgGray)
)

func accent(s string) string {
	return SignalCyan.Sprint(s)
}
