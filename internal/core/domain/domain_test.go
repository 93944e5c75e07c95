// internal/core/domain/domain_test.go
package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunState(t *testing.T) {
	tests := []struct {
		state    RunState
		valid    bool
		terminal bool
	}{
		{RunStateIdle, true, false},
		{RunStateRunning, true, false},
		{RunStateCompleted, true, true},
		{RunStateCancelled, true, true},
		{RunStateFailed, true, true},
		{RunState("paused"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.state.IsValid(), "IsValid")
			assert.Equal(t, tt.terminal, tt.state.IsTerminal(), "IsTerminal")
		})
	}
}

func TestExportFormat(t *testing.T) {
	assert.True(t, ExportFormatText.IsValid())
	assert.True(t, ExportFormatJSON.IsValid())
	assert.False(t, ExportFormat("csv").IsValid())

	assert.Equal(t, ".txt", ExportFormatText.Extension())
	assert.Equal(t, ".json", ExportFormatJSON.Extension())
}

func TestRunResult(t *testing.T) {
	r := NewRunResult("run-1")
	assert.True(t, r.IsEmpty())
	assert.Equal(t, 0.0, r.ReductionRatio())

	r.URLs = []string{"https://a.com/1", "https://b.com/"}
	r.Metadata.InputURLs = 8
	r.AddWarning("import", "no URLs found in empty.txt")

	time.Sleep(time.Millisecond)
	r.Finalize()

	assert.False(t, r.IsEmpty())
	assert.Equal(t, 2, r.Kept())
	assert.Equal(t, 75.0, r.ReductionRatio())
	assert.Equal(t, "processed 8 URLs, kept 2", r.Summary())
	assert.Len(t, r.Warnings, 1)
	assert.Positive(t, r.Metadata.Duration)
	assert.Contains(t, r.String(), "id=run-1")
}

func TestRunResult_NilIsEmpty(t *testing.T) {
	var r *RunResult
	assert.True(t, r.IsEmpty())
}
