package ics

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/teemow/calassist/internal/calendar"
)

// ProductID identifies calassist in generated files.
const ProductID = "-//calassist//schedule_event//EN"

// colorIDProp carries the calendar color ID, which has no standard property.
const colorIDProp = "X-CALASSIST-COLOR-ID"

// Writer collects events into one VCALENDAR. When created with a path the
// file is rewritten after every insert.
type Writer struct {
	mu   sync.Mutex
	cal  *ical.Calendar
	path string
	now  func() time.Time
}

// NewWriter returns a Writer. An empty path keeps events in memory only.
func NewWriter(path string) *Writer {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	return &Writer{
		cal:  cal,
		path: path,
		now:  time.Now,
	}
}

// InsertEvent adds event as a VEVENT and returns a record for it. The ID is
// the generated UID.
func (w *Writer) InsertEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.CreatedEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	uid := uuid.NewString()

	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, uid)
	vevent.Props.SetText(ical.PropSummary, event.Summary())
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, w.now().UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeStart, event.Start())
	vevent.Props.SetDateTime(ical.PropDateTimeEnd, event.End())
	vevent.Props.SetText(ical.PropClass, "PUBLIC")
	if calendarID != "" {
		vevent.Props.SetText(ical.PropCategories, calendarID)
	}
	if event.ColorID() != "" {
		vevent.Props.SetText(colorIDProp, event.ColorID())
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.cal.Children = append(w.cal.Children, vevent.Component)
	if err := w.flushLocked(); err != nil {
		w.cal.Children = w.cal.Children[:len(w.cal.Children)-1]
		return nil, fmt.Errorf("%w: %w", calendar.ErrProvider, err)
	}

	created := &calendar.CreatedEvent{
		ID:       uid,
		Summary:  event.Summary(),
		Start:    event.StartText(),
		TimeZone: event.TimeZone(),
	}
	if w.path != "" {
		created.HTMLLink = "file://" + w.path + "#" + uid
	}
	return created, nil
}

// Len returns the number of events written so far.
func (w *Writer) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.cal.Children)
}

// Encode writes the calendar to out.
func (w *Writer) Encode(out io.Writer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ical.NewEncoder(out).Encode(w.cal)
}

// flushLocked rewrites the file at path. The caller holds mu.
func (w *Writer) flushLocked() error {
	if w.path == "" {
		return nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(w.cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".calassist-*.ics")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write calendar file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write calendar file: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", w.path, err)
	}
	return nil
}
