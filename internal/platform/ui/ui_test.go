// internal/platform/ui/ui_test.go
package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"urlsift/internal/core/domain"
	"urlsift/internal/core/ports"
	"urlsift/internal/platform/urlfilter"
)

// recordingPresenter registra las llamadas recibidas
type recordingPresenter struct {
	calls []string
}

func (r *recordingPresenter) Start(info RunInfo) {
	r.calls = append(r.calls, fmt.Sprintf("start %s %d", info.RunID, info.InputURLs))
}
func (r *recordingPresenter) StartStage(s StageInfo) {
	r.calls = append(r.calls, fmt.Sprintf("stage %d/%d total=%d", s.Stage, s.TotalStages, s.Total))
}
func (r *recordingPresenter) UpdateStage(p urlfilter.Progress) {
	r.calls = append(r.calls, fmt.Sprintf("update %d %d/%d", p.Stage, p.Processed, p.Total))
}
func (r *recordingPresenter) FinishStage(s urlfilter.Stage, _ time.Duration) {
	r.calls = append(r.calls, fmt.Sprintf("finish-stage %d", s))
}
func (r *recordingPresenter) Info(msg string)    { r.calls = append(r.calls, "info "+msg) }
func (r *recordingPresenter) Warning(msg string) { r.calls = append(r.calls, "warn "+msg) }
func (r *recordingPresenter) Error(msg string)   { r.calls = append(r.calls, "error "+msg) }
func (r *recordingPresenter) Finish(s RunStats) {
	r.calls = append(r.calls, fmt.Sprintf("finish %s %q", s.State, s.Message))
}
func (r *recordingPresenter) Close() error { return nil }

func feed(events ...ports.Event) <-chan ports.Event {
	ch := make(chan ports.Event, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	return ch
}

func progress(stage urlfilter.Stage, processed, total int) ports.Event {
	return ports.NewEvent(ports.EventTypeRunProgress, "r1", urlfilter.Progress{Stage: stage, Processed: processed, Total: total})
}

func TestFollow_CompletedRun(t *testing.T) {
	res := domain.NewRunResult("r1")
	res.URLs = []string{"https://a.com/"}
	res.Metadata.InputURLs = 3

	rec := &recordingPresenter{}
	terminal := Follow(feed(
		ports.NewEvent(ports.EventTypeRunStarted, "r1", ports.RunStartedEvent{InputURLs: 3}),
		progress(urlfilter.StageFilter, 2, 3),
		progress(urlfilter.StageFilter, 3, 3),
		progress(urlfilter.StageSelect, 1, 1),
		ports.NewEvent(ports.EventTypeRunCompleted, "r1", ports.RunCompletedEvent{Result: res}),
	), rec)

	if terminal.Type != ports.EventTypeRunCompleted {
		t.Fatalf("expected completed terminal event, got %q", terminal.Type)
	}

	want := []string{
		"start r1 3",
		"stage 1/2 total=3",
		"update 1 2/3",
		"update 1 3/3",
		"finish-stage 1",
		"stage 2/2 total=1",
		"update 2 1/1",
		"finish-stage 2",
		`finish completed "processed 3 URLs, kept 1"`,
	}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Errorf("presenter calls mismatch (-want +got):\n%s", diff)
	}
}

func TestFollow_CancelledRun(t *testing.T) {
	rec := &recordingPresenter{}
	terminal := Follow(feed(
		ports.NewEvent(ports.EventTypeRunStarted, "r1", ports.RunStartedEvent{InputURLs: 5}),
		progress(urlfilter.StageFilter, 1, 5),
		ports.NewEvent(ports.EventTypeRunCancelled, "r1", ports.RunCancelledEvent{Stage: urlfilter.StageFilter}),
	), rec)

	if terminal.Type != ports.EventTypeRunCancelled {
		t.Fatalf("expected cancelled terminal event, got %q", terminal.Type)
	}

	want := []string{
		"start r1 5",
		"stage 1/2 total=5",
		"update 1 1/5",
		`finish cancelled "run cancelled during filter+group"`,
	}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Errorf("presenter calls mismatch (-want +got):\n%s", diff)
	}
}

func TestFollow_ClosedWithoutTerminal(t *testing.T) {
	rec := &recordingPresenter{}
	terminal := Follow(feed(), rec)

	if terminal.Type != "" {
		t.Errorf("expected zero event, got %q", terminal.Type)
	}
	if len(rec.calls) != 0 {
		t.Errorf("expected no presenter calls, got %v", rec.calls)
	}
}

func TestStatsFromEvent(t *testing.T) {
	res := domain.NewRunResult("r1")
	res.URLs = []string{"a", "b"}
	res.Metadata.InputURLs = 8
	res.Metadata.Groups = 2
	res.Metadata.ExtensionFiltered = 1
	res.Metadata.Unparseable = 1

	stats := StatsFromEvent(ports.NewEvent(ports.EventTypeRunCompleted, "r1", ports.RunCompletedEvent{Result: res}))
	if stats.State != domain.RunStateCompleted || stats.Kept != 2 || stats.InputURLs != 8 {
		t.Errorf("unexpected completed stats: %+v", stats)
	}
	if stats.ReductionRatio != 75 {
		t.Errorf("expected 75%% reduction, got %v", stats.ReductionRatio)
	}

	stats = StatsFromEvent(ports.NewEvent(ports.EventTypeRunFailed, "r2", ports.RunFailedEvent{Message: "filtering failed: boom"}))
	if stats.State != domain.RunStateFailed || stats.Message != "filtering failed: boom" {
		t.Errorf("unexpected failed stats: %+v", stats)
	}

	stats = StatsFromEvent(ports.NewEvent(ports.EventTypeRunCancelled, "r3", nil))
	if stats.State != domain.RunStateCancelled || stats.Message != "run cancelled" {
		t.Errorf("unexpected cancelled stats: %+v", stats)
	}
}

func fixedRaw(format LogFormat) (*RawPresenter, *bytes.Buffer) {
	var buf bytes.Buffer
	r := NewRawPresenter(format, &buf)
	r.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return r, &buf
}

func TestRawPresenter_Text(t *testing.T) {
	r, buf := fixedRaw(LogFormatText)

	r.Start(RunInfo{RunID: "r1", InputURLs: 10, Extensions: []string{".css", ".png"}})
	r.StartStage(StageInfo{Stage: urlfilter.StageFilter, TotalStages: 2, Total: 10})
	r.Warning("empty.txt: no URLs found")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"2024-01-02T03:04:05Z INFO  run_started run=r1 input_urls=10 extensions=.css,.png",
		"2024-01-02T03:04:05Z INFO  stage_started stage=1 name=filter+group total=10",
		`2024-01-02T03:04:05Z WARN  message text="empty.txt: no URLs found"`,
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("raw output mismatch (-want +got):\n%s", diff)
	}
}

func TestRawPresenter_ProgressIsThrottledByPercent(t *testing.T) {
	r, buf := fixedRaw(LogFormatText)

	r.StartStage(StageInfo{Stage: urlfilter.StageSelect, TotalStages: 2, Total: 1000})
	for i := 1; i <= 1000; i++ {
		r.UpdateStage(urlfilter.Progress{Stage: urlfilter.StageSelect, Processed: i, Total: 1000})
	}

	got := strings.Count(buf.String(), "stage_progress")
	// 0% (first nine updates) through 100%
	if got != 101 {
		t.Errorf("expected one progress line per percent (101), got %d", got)
	}
	if !strings.Contains(buf.String(), "processed=1000 total=1000 percent=100") {
		t.Error("final progress line missing")
	}
}

func TestRawPresenter_JSON(t *testing.T) {
	r, buf := fixedRaw(LogFormatJSON)

	r.Finish(RunStats{RunID: "r1", State: domain.RunStateFailed, Message: "filtering failed: boom"})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["level"] != "ERROR" || entry["message"] != "run_finished" {
		t.Errorf("unexpected entry: %v", entry)
	}
	data, _ := entry["data"].(map[string]interface{})
	if data["state"] != "failed" || data["message"] != "filtering failed: boom" {
		t.Errorf("unexpected data: %v", data)
	}
}

// syncBuffer admite escrituras concurrentes (la barra de pterm refresca en su propia goroutine)
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPTermPresenter_WritesSummary(t *testing.T) {
	var buf syncBuffer
	p := NewPTermPresenter(&buf)

	p.Start(RunInfo{RunID: "0123456789abcdef", InputURLs: 4, Extensions: []string{".png"}})
	p.StartStage(StageInfo{Stage: urlfilter.StageFilter, TotalStages: 2, Total: 4})
	// el último avance no llega; la etapa se cierra igualmente en su total
	p.UpdateStage(urlfilter.Progress{Stage: urlfilter.StageFilter, Processed: 2, Total: 4})
	p.FinishStage(urlfilter.StageFilter, 15*time.Millisecond)
	p.Finish(RunStats{State: domain.RunStateCompleted, Message: "processed 4 URLs, kept 2", InputURLs: 4, Kept: 2})

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Run 01234567", "filter+group completed in 15ms (4 items, 267/s)", "processed 4 URLs, kept 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPTermPresenter_CancelledAndFailed(t *testing.T) {
	var buf bytes.Buffer
	p := NewPTermPresenter(&buf)

	p.Finish(RunStats{State: domain.RunStateCancelled})
	p.Finish(RunStats{State: domain.RunStateFailed, Message: "filtering failed: boom"})

	out := buf.String()
	if !strings.Contains(out, "run cancelled") || !strings.Contains(out, "filtering failed: boom") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	if _, ok := New(ModeQuiet, &buf).(*NoopPresenter); !ok {
		t.Error("quiet mode should use NoopPresenter")
	}
	if _, ok := New(ModeRaw, &buf).(*RawPresenter); !ok {
		t.Error("raw mode should use RawPresenter")
	}
	if _, ok := New(ModePterm, &buf).(*PTermPresenter); !ok {
		t.Error("pterm mode should use PTermPresenter")
	}
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"raw":    ModeRaw,
		" QUIET": ModeQuiet,
		"pterm":  ModePterm,
		"":       ModePterm,
		"fancy":  ModePterm,
	}
	for in, want := range tests {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[domain.RunState]Status{
		domain.RunStateCompleted: StatusSuccess,
		domain.RunStateCancelled: StatusWarning,
		domain.RunStateFailed:    StatusError,
		domain.RunStateRunning:   StatusRunning,
		domain.RunStateIdle:      StatusPending,
	}
	for state, want := range tests {
		if got := StatusFor(state); got != want {
			t.Errorf("StatusFor(%s) = %s, want %s", state, got, want)
		}
	}
}

func TestHumanDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{300 * time.Microsecond, "<1ms"},
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{125 * time.Second, "2m05s"},
		{65 * time.Minute, "1h05m"},
	}
	for _, tt := range tests {
		if got := humanDuration(tt.d); got != tt.want {
			t.Errorf("humanDuration(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestStageTiming(t *testing.T) {
	tests := []struct {
		items int
		d     time.Duration
		want  string
	}{
		{0, 2 * time.Second, "2.0s"},
		{50, 0, "<1ms"},
		{100, 2 * time.Second, "2.0s (100 items, 50/s)"},
		{3500, 500 * time.Millisecond, "500ms (3500 items, 7.0k/s)"},
		{2_000_000, time.Second, "1.0s (2000000 items, 2.0M/s)"},
	}
	for _, tt := range tests {
		if got := stageTiming(tt.items, tt.d); got != tt.want {
			t.Errorf("stageTiming(%d, %s) = %q, want %q", tt.items, tt.d, got, tt.want)
		}
	}
}
