package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestEvent_StandupWireFormat(t *testing.T) {
	loc := mustLocation(t, "America/New_York")

	event, err := EventFromArgs(map[string]any{
		"summary": "Standup",
		"start":   "2024-07-10T09:00:00",
	}, loc)
	require.NoError(t, err)

	data, err := json.Marshal(event.ToWireFormat())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"summary": "Standup",
		"start": {"dateTime": "2024-07-10T09:00:00", "timeZone": "America/New_York"},
		"end": {"dateTime": "2024-07-10T10:00:00", "timeZone": "America/New_York"},
		"visibility": "default"
	}`, string(data))
	assert.NotContains(t, string(data), "colorId")
}

func TestEvent_ColorTable(t *testing.T) {
	want := map[string]string{
		"Pale Blue":  "1",
		"Pale Green": "2",
		"Mauve":      "3",
		"Pale Red":   "4",
		"Yellow":     "5",
		"Orange":     "6",
		"Cyan":       "7",
		"Gray":       "8",
		"Blue":       "9",
		"Green":      "10",
		"Red":        "11",
	}

	start := time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC)
	for name, code := range want {
		t.Run(name, func(t *testing.T) {
			event, err := NewEvent("Colored", start, time.Time{}, name, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, code, event.ToWireFormat().ColorID)
			assert.Equal(t, code, event.ToGoogle().ColorId)
		})
	}

	assert.Equal(t, []string{
		"Pale Blue", "Pale Green", "Mauve", "Pale Red", "Yellow", "Orange",
		"Cyan", "Gray", "Blue", "Green", "Red",
	}, ColorNames())
}

func TestEvent_ColorInputs(t *testing.T) {
	tests := []struct {
		name  string
		color any
		want  string
	}{
		{"code passes through", "7", "7"},
		{"json number", float64(3), "3"},
		{"json.Number", json.Number("11"), "11"},
		{"json.Number with zero fraction", json.Number("5.0"), "5"},
		{"fractional json.Number dropped", json.Number("5.5"), ""},
		{"case-insensitive name", "pale green", "2"},
		{"unknown name dropped", "Chartreuse", ""},
		{"out of range code dropped", "12", ""},
		{"zero code dropped", float64(0), ""},
		{"fractional number dropped", 2.5, ""},
		{"absent", nil, ""},
		{"unsupported type dropped", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]any{
				"summary": "Meeting with Team",
				"start":   "2024-07-10T09:00:00",
			}
			if tt.color != nil {
				args["color"] = tt.color
			}

			event, err := EventFromArgs(args, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tt.want, event.ColorID())

			data, err := json.Marshal(event.ToWireFormat())
			require.NoError(t, err)
			if tt.want == "" {
				assert.NotContains(t, string(data), "colorId")
			}
		})
	}
}

func TestEvent_DefaultEnd(t *testing.T) {
	starts := []string{
		"2024-07-10T09:00:00",
		"2024-07-10T23:30:00",
		"2024-12-31T23:59:59",
		"2024-03-10T01:30:00", // DST change in New York
	}

	loc := mustLocation(t, "America/New_York")
	for _, s := range starts {
		t.Run(s, func(t *testing.T) {
			event, err := EventFromArgs(map[string]any{"summary": "x", "start": s}, loc)
			require.NoError(t, err)

			start, err := time.Parse(DateTimeLayout, event.StartText())
			require.NoError(t, err)
			end, err := time.Parse(DateTimeLayout, event.EndText())
			require.NoError(t, err)

			assert.Equal(t, time.Hour, end.Sub(start))
		})
	}
}

func TestEvent_ExplicitEnd(t *testing.T) {
	event, err := EventFromArgs(map[string]any{
		"summary": "Meeting with Team",
		"start":   "2024-07-10T09:00:00",
		"end":     "2024-07-10T10:30:00",
		"color":   "1",
	}, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "2024-07-10T10:30:00", event.EndText())
	assert.Equal(t, "1", event.ColorID())
	assert.Equal(t, "UTC", event.TimeZone())
}

func TestEvent_EndEqualsStartAllowed(t *testing.T) {
	event, err := EventFromArgs(map[string]any{
		"summary": "Reminder",
		"start":   "2024-07-10T09:00:00",
		"end":     "2024-07-10T09:00:00",
	}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, event.StartText(), event.EndText())
}

func TestEvent_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		wantErr error
	}{
		{
			name:    "end before start",
			args:    map[string]any{"summary": "x", "start": "2024-07-10T09:00:00", "end": "2024-07-10T08:00:00"},
			wantErr: ErrValidation,
		},
		{
			name:    "missing summary",
			args:    map[string]any{"start": "2024-07-10T09:00:00"},
			wantErr: ErrValidation,
		},
		{
			name:    "blank summary",
			args:    map[string]any{"summary": "   ", "start": "2024-07-10T09:00:00"},
			wantErr: ErrValidation,
		},
		{
			name:    "summary not a string",
			args:    map[string]any{"summary": 42.0, "start": "2024-07-10T09:00:00"},
			wantErr: ErrValidation,
		},
		{
			name:    "missing start",
			args:    map[string]any{"summary": "x"},
			wantErr: ErrValidation,
		},
		{
			name:    "malformed start",
			args:    map[string]any{"summary": "x", "start": "tomorrow at 10"},
			wantErr: ErrParse,
		},
		{
			name:    "malformed end",
			args:    map[string]any{"summary": "x", "start": "2024-07-10T09:00:00", "end": "10/07/2024"},
			wantErr: ErrParse,
		},
		{
			name:    "impossible date",
			args:    map[string]any{"summary": "x", "start": "2024-02-30T09:00:00"},
			wantErr: ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EventFromArgs(tt.args, time.UTC)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-07-10T09:00:00", "2024-07-10T09:00:00"},
		{"2024-07-10T09:00", "2024-07-10T09:00:00"},
		{"2024-07-10 09:00:00", "2024-07-10T09:00:00"},
		{" 2024-07-10T09:00:00 ", "2024-07-10T09:00:00"},
		{"2024-07-10T09:00:00-04:00", "2024-07-10T09:00:00"},
		{"2024-07-10T09:00:00Z", "2024-07-10T09:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format(DateTimeLayout))
		})
	}
}

func TestNewEvent_UsesWallClock(t *testing.T) {
	loc := mustLocation(t, "America/New_York")
	berlin := mustLocation(t, "Europe/Berlin")

	// The location of the input is ignored, only its wall clock counts
	start := time.Date(2024, 7, 10, 9, 0, 0, 0, berlin)
	event, err := NewEvent("Standup", start, time.Time{}, "", loc)
	require.NoError(t, err)

	assert.Equal(t, "2024-07-10T09:00:00", event.StartText())
	assert.Equal(t, time.Date(2024, 7, 10, 9, 0, 0, 0, loc), event.Start())
	assert.Equal(t, time.Date(2024, 7, 10, 10, 0, 0, 0, loc), event.End())
	assert.Equal(t, "America/New_York", event.TimeZone())
}

func TestNewEvent_NilLocationIsUTC(t *testing.T) {
	event, err := NewEvent("x", time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC), time.Time{}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "UTC", event.TimeZone())
}

func TestEvent_ToGoogle(t *testing.T) {
	loc := mustLocation(t, "America/New_York")
	event, err := NewEvent("Meeting with Team",
		time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 10, 10, 0, 0, 0, time.UTC),
		"1", loc)
	require.NoError(t, err)

	g := event.ToGoogle()
	assert.Equal(t, "Meeting with Team", g.Summary)
	assert.Equal(t, "2024-07-10T09:00:00", g.Start.DateTime)
	assert.Equal(t, "America/New_York", g.Start.TimeZone)
	assert.Equal(t, "2024-07-10T10:00:00", g.End.DateTime)
	assert.Equal(t, "America/New_York", g.End.TimeZone)
	assert.Equal(t, "default", g.Visibility)
	assert.Equal(t, "1", g.ColorId)
}

func TestEvent_String(t *testing.T) {
	event, err := NewEvent("Standup", time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC), time.Time{}, "", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, `Event "Standup" from 2024-07-10T09:00:00 to 2024-07-10T10:00:00 (UTC)`, event.String())
}
