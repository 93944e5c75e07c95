// internal/core/usecases/mocks_test.go
package usecases

import (
	"context"
	"path/filepath"
	"sync"

	"urlsift/internal/core/domain"
	"urlsift/internal/core/ports"
)

// recordingNotifier es un mock de ports.Notifier que guarda los eventos recibidos
type recordingNotifier struct {
	mu      sync.Mutex
	events  []ports.Event
	onEvent func(ports.Event)
	closed  bool
}

func (r *recordingNotifier) Notify(ctx context.Context, event ports.Event) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	hook := r.onEvent
	r.mu.Unlock()

	if hook != nil {
		hook(event)
	}
	return nil
}

func (r *recordingNotifier) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recordingNotifier) Events() []ports.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.Event, len(r.events))
	copy(out, r.events)
	return out
}

// memStore es un ports.ExtensionStore en memoria
type memStore struct {
	mu      sync.Mutex
	exts    []string
	found   bool
	loadErr error
	saves   int
}

func (m *memStore) Load() ([]string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exts, m.found, m.loadErr
}

func (m *memStore) Save(exts []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exts = append([]string(nil), exts...)
	m.found = true
	m.saves++
	return nil
}

// stubExporter registra el resultado exportado sin tocar disco
type stubExporter struct {
	got *domain.RunResult
}

func (s *stubExporter) Name() string                { return "stub" }
func (s *stubExporter) Format() domain.ExportFormat { return domain.ExportFormatText }

func (s *stubExporter) Export(result *domain.RunResult, opts ports.ExportOptions) (string, error) {
	s.got = result
	return filepath.Join(opts.OutputDir, "out.txt"), nil
}
