// internal/platform/ui/noop_presenter.go
package ui

import (
	"time"

	"urlsift/internal/platform/urlfilter"
)

// NoopPresenter es una implementación vacía del Presenter
// que no produce ninguna salida. Útil para modo quiet o headless.
type NoopPresenter struct{}

// NewNoopPresenter crea una instancia del presenter sin salida
func NewNoopPresenter() *NoopPresenter {
	return &NoopPresenter{}
}

func (n *NoopPresenter) Start(RunInfo)                              {}
func (n *NoopPresenter) StartStage(StageInfo)                       {}
func (n *NoopPresenter) UpdateStage(urlfilter.Progress)             {}
func (n *NoopPresenter) FinishStage(urlfilter.Stage, time.Duration) {}
func (n *NoopPresenter) Info(string)                                {}
func (n *NoopPresenter) Warning(string)                             {}
func (n *NoopPresenter) Error(string)                               {}
func (n *NoopPresenter) Finish(RunStats)                            {}

// Close no hace nada
func (n *NoopPresenter) Close() error {
	return nil
}
