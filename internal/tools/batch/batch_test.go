package batch

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/teemow/calassist/internal/calendar"
)

func TestParseObjectArray(t *testing.T) {
	standup := map[string]any{"summary": "Standup"}
	retro := map[string]any{"summary": "Retro"}

	tests := []struct {
		name    string
		input   any
		want    int
		wantErr bool
	}{
		{name: "single object", input: standup, want: 1},
		{name: "array of objects", input: []any{standup, retro}, want: 2},
		{name: "nil input", input: nil, wantErr: true},
		{name: "empty array", input: []any{}, wantErr: true},
		{name: "array with string", input: []any{standup, "Retro"}, wantErr: true},
		{name: "string", input: "Standup", wantErr: true},
		{name: "number", input: 42.0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseObjectArray(tt.input, "events")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseObjectArray() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("ParseObjectArray() returned %d items, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFromInsertResult(t *testing.T) {
	event, err := calendar.NewEvent("Standup", time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC), time.Time{}, "", time.UTC)
	if err != nil {
		t.Fatal(err)
	}

	ok := FromInsertResult(0, calendar.InsertResult{
		Event:   event,
		Created: &calendar.CreatedEvent{ID: "evt1", HTMLLink: "https://calendar.example.com/evt1"},
	}, "added")
	if ok.Status != StatusSuccess || ok.EventID != "evt1" || ok.Summary != "Standup" || ok.Result != "added" {
		t.Errorf("FromInsertResult(success) = %+v", ok)
	}

	failed := FromInsertResult(1, calendar.InsertResult{Event: event, Err: errors.New("quota exceeded")}, "")
	if failed.Status != StatusError || failed.Error != "quota exceeded" || failed.Index != 1 || failed.Summary != "Standup" {
		t.Errorf("FromInsertResult(error) = %+v", failed)
	}
}

func TestFromInsertResult_EmptyResponse(t *testing.T) {
	event, err := calendar.NewEvent("Standup", time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC), time.Time{}, "", time.UTC)
	if err != nil {
		t.Fatal(err)
	}

	res := FromInsertResult(2, calendar.InsertResult{Event: event}, "")
	if res.Status != StatusError || res.Index != 2 || !strings.Contains(res.Error, "empty response") {
		t.Errorf("FromInsertResult(no created event) = %+v", res)
	}

	if got := NewErrorResult(0, nil); got.Status != StatusError || got.Error == "" {
		t.Errorf("NewErrorResult(nil) = %+v", got)
	}
}

func TestFormatResults(t *testing.T) {
	results := []Result{
		NewSuccessResult(0, "Event Standup was added"),
		NewErrorResult(1, errors.New("end before start")),
		NewSuccessResult(2, "Event Retro was added"),
	}

	var br BatchResult
	if err := json.Unmarshal([]byte(FormatResults(results)), &br); err != nil {
		t.Fatalf("FormatResults() produced invalid JSON: %v", err)
	}

	if br.Total != 3 || br.Successful != 2 || br.Failed != 1 {
		t.Errorf("got total=%d successful=%d failed=%d, want 3/2/1", br.Total, br.Successful, br.Failed)
	}
	if br.Results[1].Error != "end before start" {
		t.Errorf("Results[1].Error = %q", br.Results[1].Error)
	}
}

func TestSummarize_Empty(t *testing.T) {
	br := Summarize(nil)
	if br.Total != 0 || br.Successful != 0 || br.Failed != 0 {
		t.Errorf("Summarize(nil) = %+v", br)
	}
}
