// internal/platform/ui/pterm_presenter.go
package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"urlsift/internal/core/domain"
	"urlsift/internal/platform/urlfilter"
)

// PTermPresenter implementa Presenter usando la biblioteca pterm:
// una barra de progreso por etapa y un panel final con estadísticas.
type PTermPresenter struct {
	mu sync.Mutex
	w  io.Writer

	startTime time.Time
	info      RunInfo

	// Barra de la etapa en curso
	stage     urlfilter.Stage
	bar       *pterm.ProgressbarPrinter
	processed int
	total     int
}

// NewPTermPresenter crea una nueva instancia del presenter con pterm
func NewPTermPresenter(w io.Writer) *PTermPresenter {
	return &PTermPresenter{w: w}
}

// Start muestra el header de la ejecución
func (p *PTermPresenter) Start(info RunInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.info = info
	p.startTime = time.Now()

	header := pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Sprint("urlsift - URL deduplication")

	content := fmt.Sprintf("%s Input URLs: %s\n", IconInput, accent(fmt.Sprint(info.InputURLs)))
	content += fmt.Sprintf("%s Static extensions: %s", IconFilter, formatExtensions(info.Extensions))

	box := pterm.DefaultBox.
		WithTitle("Run " + shortID(info.RunID)).
		WithTitleTopCenter().
		WithLeftPadding(2).
		WithRightPadding(2).
		Sprint(content)

	fmt.Fprintln(p.w, header)
	fmt.Fprintln(p.w, box)
	fmt.Fprintln(p.w)
}

// StartStage abre la barra de progreso de la etapa
func (p *PTermPresenter) StartStage(stage StageInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopBar()
	p.stage = stage.Stage
	p.processed = 0
	p.total = stage.Total

	title := fmt.Sprintf("%s Stage %d/%d: %s", IconStage, int(stage.Stage), stage.TotalStages, stage.Stage)
	fmt.Fprintln(p.w, StyleActive.Sprint(title))

	if stage.Total <= 0 {
		return
	}

	bar, err := pterm.DefaultProgressbar.
		WithTotal(stage.Total).
		WithTitle(stage.Stage.String()).
		WithWriter(p.w).
		WithRemoveWhenDone(false).
		Start()
	if err != nil {
		return
	}
	p.bar = bar
}

// UpdateStage avanza la barra hasta p.Processed
func (p *PTermPresenter) UpdateStage(prog urlfilter.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil || prog.Stage != p.stage {
		return
	}
	if delta := prog.Processed - p.processed; delta > 0 {
		p.bar.Add(delta)
		p.processed = prog.Processed
	}
}

// FinishStage cierra la barra y muestra la duración de la etapa
func (p *PTermPresenter) FinishStage(stage urlfilter.Stage, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if stage != p.stage {
		return
	}
	// el canal puede haber descartado los últimos avances
	if p.bar != nil && p.processed < p.total {
		p.bar.Add(p.total - p.processed)
		p.processed = p.total
	}
	p.stopBar()

	line := fmt.Sprintf("  %s %s completed in %s", StatusSuccess.Symbol(), stage, stageTiming(p.total, duration))
	fmt.Fprintln(p.w, StatusSuccess.Style().Sprint(line))
}

// stageTiming muestra la duración de una etapa y su ritmo: "1.2s (3500 items, 2.9k/s)".
func stageTiming(items int, d time.Duration) string {
	out := humanDuration(d)
	if items <= 0 || d <= 0 {
		return out
	}

	rate := float64(items) / d.Seconds()
	switch {
	case rate >= 1e6:
		return fmt.Sprintf("%s (%d items, %.1fM/s)", out, items, rate/1e6)
	case rate >= 1e3:
		return fmt.Sprintf("%s (%d items, %.1fk/s)", out, items, rate/1e3)
	default:
		return fmt.Sprintf("%s (%d items, %.0f/s)", out, items, rate)
	}
}

// humanDuration redondea d según su magnitud: "850ms", "12.4s", "3m07s", "1h05m".
func humanDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return "<1ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// Info muestra un mensaje informativo
func (p *PTermPresenter) Info(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprint(p.w, pterm.Info.Sprintln(msg))
}

// Warning muestra una advertencia
func (p *PTermPresenter) Warning(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprint(p.w, pterm.Warning.Sprintln(msg))
}

// Error muestra un error
func (p *PTermPresenter) Error(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprint(p.w, pterm.Error.Sprintln(msg))
}

// Finish muestra el desenlace de la ejecución
func (p *PTermPresenter) Finish(stats RunStats) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopBar()

	status := StatusFor(stats.State)
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, pterm.LightBlue(SeparatorHeavy))

	switch stats.State {
	case domain.RunStateCompleted:
		content := fmt.Sprintf("%s %s\n", status.Symbol(), stats.Message)
		content += fmt.Sprintf("%s Duration: %s\n", IconTime, humanDuration(stats.Duration))
		content += fmt.Sprintf("%s Kept: %s of %d (%.1f%% removed)\n", IconKept,
			accent(fmt.Sprint(stats.Kept)), stats.InputURLs, stats.ReductionRatio)
		content += fmt.Sprintf("%s Groups: %d\n", IconGroups, stats.Groups)
		content += fmt.Sprintf("%s Static assets dropped: %d", IconFilter, stats.ExtensionFiltered)
		if stats.Unparseable > 0 {
			content += fmt.Sprintf("\n%s Unparseable: %d", IconWarning, stats.Unparseable)
		}

		box := pterm.DefaultBox.
			WithTitle("Run Completed").
			WithTitleTopCenter().
			WithLeftPadding(2).
			WithRightPadding(2).
			WithBoxStyle(status.Style()).
			Sprint(content)
		fmt.Fprintln(p.w, box)

	case domain.RunStateCancelled:
		fmt.Fprint(p.w, pterm.Warning.Sprintln(orDefault(stats.Message, "run cancelled")))

	default:
		fmt.Fprint(p.w, pterm.Error.Sprintln(orDefault(stats.Message, "run failed")))
	}
}

// Close detiene la barra activa, si la hay
func (p *PTermPresenter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopBar()
	return nil
}

// stopBar requiere p.mu.
func (p *PTermPresenter) stopBar() {
	if p.bar == nil {
		return
	}
	_, _ = p.bar.Stop()
	p.bar = nil
}

func formatExtensions(exts []string) string {
	if len(exts) == 0 {
		return StyleSecondary.Sprint("none")
	}
	return strings.Join(exts, " ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
