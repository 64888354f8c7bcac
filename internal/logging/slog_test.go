package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := WithOperation(NewTextLogger(&buf, slog.LevelInfo), "calendar.insert")
	logger.Info("done")
	assert.Contains(t, buf.String(), "operation=calendar.insert")
}

func TestWithRun(t *testing.T) {
	var buf bytes.Buffer
	logger := WithRun(NewTextLogger(&buf, slog.LevelInfo), "thread_abc", "run_xyz")
	logger.Info("poll")
	assert.Contains(t, buf.String(), "thread_id=thread_abc")
	assert.Contains(t, buf.String(), "run_id=run_xyz")
}

func TestAttributeHelpers(t *testing.T) {
	tests := []struct {
		name    string
		attr    slog.Attr
		wantKey string
		wantVal string
	}{
		{"operation", Operation("poll"), KeyOperation, "poll"},
		{"service", Service("calendar"), KeyService, "calendar"},
		{"tool", Tool("schedule_event"), KeyTool, "schedule_event"},
		{"tool call", ToolCallID("call_1"), KeyToolCallID, "call_1"},
		{"run", Run("run_1"), KeyRun, "run_1"},
		{"thread", Thread("thread_1"), KeyThread, "thread_1"},
		{"calendar", Calendar("primary"), KeyCalendar, "primary"},
		{"event", Event("evt1"), KeyEvent, "evt1"},
		{"status", Status(StatusSuccess), KeyStatus, StatusSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKey, tt.attr.Key)
			assert.Equal(t, tt.wantVal, tt.attr.Value.String())
		})
	}
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("test error"))
	assert.Equal(t, KeyError, attr.Key)
	assert.Equal(t, "test error", attr.Value.String())

	// nil produces an empty group that slog omits
	assert.Equal(t, "", Err(nil).Key)
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		token    string
		expected string
	}{
		{"", "<empty>"},
		{"abc123", "[token:6 chars]"},
		{"sk-a_very_long_token", "[token:20 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeToken(tt.token))
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestStatusConstants(t *testing.T) {
	assert.Equal(t, "success", StatusSuccess)
	assert.Equal(t, "error", StatusError)
}
