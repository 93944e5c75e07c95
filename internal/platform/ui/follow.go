// internal/platform/ui/follow.go
package ui

import (
	"time"

	"urlsift/internal/core/domain"
	"urlsift/internal/core/ports"
	"urlsift/internal/platform/urlfilter"
)

// Follow consume el canal de eventos de una ejecución y dirige el presenter
// hasta que el canal se cierra. Devuelve el evento terminal recibido, o un
// Event vacío si el canal se cerró sin él.
func Follow(events <-chan ports.Event, p Presenter) ports.Event {
	var (
		terminal   ports.Event
		current    urlfilter.Stage
		stageStart time.Time
	)

	for ev := range events {
		switch {
		case ev.Type == ports.EventTypeRunStarted:
			info := RunInfo{RunID: ev.RunID}
			if d, ok := ev.Data.(ports.RunStartedEvent); ok {
				info.InputURLs = d.InputURLs
				info.Extensions = d.Extensions
			}
			p.Start(info)

		case ev.Type == ports.EventTypeRunProgress:
			prog, ok := ev.Progress()
			if !ok {
				continue
			}
			if prog.Stage != current {
				if current != 0 {
					p.FinishStage(current, ev.Timestamp.Sub(stageStart))
				}
				current, stageStart = prog.Stage, ev.Timestamp
				p.StartStage(StageInfo{Stage: prog.Stage, TotalStages: TotalStages, Total: prog.Total})
			}
			p.UpdateStage(prog)

		case ev.Type.IsTerminal():
			if current != 0 && ev.Type == ports.EventTypeRunCompleted {
				p.FinishStage(current, ev.Timestamp.Sub(stageStart))
			}
			terminal = ev
			p.Finish(StatsFromEvent(ev))
		}
	}

	return terminal
}

// StatsFromEvent resume un evento terminal.
func StatsFromEvent(ev ports.Event) RunStats {
	stats := RunStats{RunID: ev.RunID}

	switch ev.Type {
	case ports.EventTypeRunCompleted:
		stats.State = domain.RunStateCompleted
		if res, ok := ev.Result(); ok && res != nil {
			md := res.Metadata
			stats.Message = res.Summary()
			stats.Duration = md.Duration
			stats.InputURLs = md.InputURLs
			stats.Kept = res.Kept()
			stats.Groups = md.Groups
			stats.ExtensionFiltered = md.ExtensionFiltered
			stats.Unparseable = md.Unparseable
			stats.ReductionRatio = res.ReductionRatio()
		}

	case ports.EventTypeRunCancelled:
		stats.State = domain.RunStateCancelled
		stats.Message = "run cancelled"
		if d, ok := ev.Data.(ports.RunCancelledEvent); ok && d.Stage != 0 {
			stats.Message = "run cancelled during " + d.Stage.String()
		}

	case ports.EventTypeRunFailed:
		stats.State = domain.RunStateFailed
		if f, ok := ev.Failure(); ok {
			stats.Message = f.Message
		}
	}

	return stats
}
