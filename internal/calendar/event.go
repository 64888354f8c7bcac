package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// DateTimeLayout is the local timestamp format used for event input and for
// the dateTime fields sent to the calendar.
const DateTimeLayout = "2006-01-02T15:04:05"

// DefaultDuration is applied when an event has no explicit end.
const DefaultDuration = time.Hour

// DefaultVisibility is sent with every event.
const DefaultVisibility = "default"

var (
	// ErrParse is returned for malformed timestamps.
	ErrParse = errors.New("invalid timestamp")

	// ErrValidation is returned for events that cannot be scheduled as given.
	ErrValidation = errors.New("invalid event")
)

// colorCodes maps the human-readable color names to calendar color IDs.
var colorCodes = map[string]string{
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

// ColorNames returns the supported color names ordered by color ID.
func ColorNames() []string {
	names := make([]string, 0, len(colorCodes))
	for name := range colorCodes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, _ := strconv.Atoi(colorCodes[names[i]])
		b, _ := strconv.Atoi(colorCodes[names[j]])
		return a < b
	})
	return names
}

// ColorID resolves a color name or numeric code to a calendar color ID.
// It returns "" for empty or unknown values.
func ColorID(color string) string {
	color = strings.TrimSpace(color)
	if color == "" {
		return ""
	}
	if n, err := strconv.Atoi(color); err == nil {
		return colorCode(n)
	}
	if code, ok := colorCodes[color]; ok {
		return code
	}
	for name, code := range colorCodes {
		if strings.EqualFold(name, color) {
			return code
		}
	}
	return ""
}

func colorCode(n int) string {
	if n < 1 || n > len(colorCodes) {
		return ""
	}
	return strconv.Itoa(n)
}

// Event is one schedulable calendar event. Start and end are wall-clock
// times interpreted in the event's time zone. Events are immutable once built.
type Event struct {
	summary  string
	start    time.Time // wall clock, location ignored
	end      time.Time // wall clock, location ignored
	colorID  string
	location *time.Location
}

// NewEvent builds an event. A zero end defaults to start plus one hour.
// The wall-clock fields of start and end are used as-is in loc; their own
// locations are ignored. color may be a color name or a numeric code;
// unknown colors are dropped. A nil loc means UTC.
func NewEvent(summary string, start, end time.Time, color string, loc *time.Location) (*Event, error) {
	if loc == nil {
		loc = time.UTC
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return nil, fmt.Errorf("%w: summary is required", ErrValidation)
	}
	if start.IsZero() {
		return nil, fmt.Errorf("%w: start is required", ErrValidation)
	}

	start = wallClock(start)
	if end.IsZero() {
		end = start.Add(DefaultDuration)
	} else {
		end = wallClock(end)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s is before start %s",
			ErrValidation, end.Format(DateTimeLayout), start.Format(DateTimeLayout))
	}

	return &Event{
		summary:  summary,
		start:    start,
		end:      end,
		colorID:  ColorID(color),
		location: loc,
	}, nil
}

// EventFromArgs builds an event from decoded tool call arguments:
// "summary" (string, required), "start" (timestamp, required),
// "end" (timestamp, optional) and "color" (name, code or number, optional).
func EventFromArgs(args map[string]any, loc *time.Location) (*Event, error) {
	summary, err := stringArg(args, "summary", true)
	if err != nil {
		return nil, err
	}

	startText, err := stringArg(args, "start", true)
	if err != nil {
		return nil, err
	}
	start, err := ParseTimestamp(startText)
	if err != nil {
		return nil, err
	}

	var end time.Time
	endText, err := stringArg(args, "end", false)
	if err != nil {
		return nil, err
	}
	if endText != "" {
		if end, err = ParseTimestamp(endText); err != nil {
			return nil, err
		}
	}

	return NewEvent(summary, start, end, colorArg(args["color"]), loc)
}

// ParseTimestamp parses a local timestamp ("2024-07-10T09:00:00", seconds
// optional). RFC 3339 input is accepted too; its offset is discarded and the
// wall-clock time kept.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateTimeLayout, "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return wallClock(t), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q does not match %s", ErrParse, s, DateTimeLayout)
}

// Summary returns the event title.
func (e *Event) Summary() string { return e.summary }

// Start returns the start time in the event's time zone.
func (e *Event) Start() time.Time { return inLocation(e.start, e.location) }

// End returns the end time in the event's time zone.
func (e *Event) End() time.Time { return inLocation(e.end, e.location) }

// ColorID returns the resolved calendar color ID, or "" when none is set.
func (e *Event) ColorID() string { return e.colorID }

// TimeZone returns the IANA name of the event's time zone.
func (e *Event) TimeZone() string { return e.location.String() }

// StartText returns the local start timestamp as sent to the calendar.
func (e *Event) StartText() string { return e.start.Format(DateTimeLayout) }

// EndText returns the local end timestamp as sent to the calendar.
func (e *Event) EndText() string { return e.end.Format(DateTimeLayout) }

func (e *Event) String() string {
	return fmt.Sprintf("Event %q from %s to %s (%s)", e.summary, e.StartText(), e.EndText(), e.TimeZone())
}

// WireDateTime is a local timestamp paired with its time zone.
type WireDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// WireEvent is the insert request body for the calendar.
type WireEvent struct {
	Summary    string       `json:"summary"`
	Start      WireDateTime `json:"start"`
	End        WireDateTime `json:"end"`
	Visibility string       `json:"visibility"`
	ColorID    string       `json:"colorId,omitempty"`
}

// ToWireFormat converts the event to the calendar insert format.
func (e *Event) ToWireFormat() WireEvent {
	tz := e.TimeZone()
	return WireEvent{
		Summary:    e.summary,
		Start:      WireDateTime{DateTime: e.StartText(), TimeZone: tz},
		End:        WireDateTime{DateTime: e.EndText(), TimeZone: tz},
		Visibility: DefaultVisibility,
		ColorID:    e.colorID,
	}
}

// ToGoogle converts the event to a Google Calendar API event.
func (e *Event) ToGoogle() *calendar.Event {
	w := e.ToWireFormat()
	return &calendar.Event{
		Summary:    w.Summary,
		Start:      &calendar.EventDateTime{DateTime: w.Start.DateTime, TimeZone: w.Start.TimeZone},
		End:        &calendar.EventDateTime{DateTime: w.End.DateTime, TimeZone: w.End.TimeZone},
		Visibility: w.Visibility,
		ColorId:    w.ColorID,
	}
}

// wallClock drops the location of t, keeping its wall-clock reading.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func inLocation(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

func stringArg(args map[string]any, key string, required bool) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("%w: missing %q", ErrValidation, key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", ErrValidation, key, v)
	}
	return s, nil
}

func integralColor(f float64) string {
	if f != math.Trunc(f) {
		return ""
	}
	return strconv.Itoa(int(f))
}

// colorArg normalizes a color argument. JSON numbers arrive as float64 or
// json.Number; anything else that is not a string is ignored.
func colorArg(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case float64:
		return integralColor(c)
	case int:
		return strconv.Itoa(c)
	case json.Number:
		f, err := c.Float64()
		if err != nil {
			return ""
		}
		return integralColor(f)
	default:
		return ""
	}
}
