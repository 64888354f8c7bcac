package calendar

import (
	"context"
	"errors"
	"fmt"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/calassist/internal/google"
)

// ErrProvider is wrapped by failures returned from the calendar service.
var ErrProvider = errors.New("calendar provider error")

// Inserter inserts one event into a calendar.
type Inserter interface {
	InsertEvent(ctx context.Context, calendarID string, event *Event) (*CreatedEvent, error)
}

// Client wraps the Google Calendar service
type Client struct {
	svc *calendar.Service
}

// NewClient creates a Calendar client authenticated with the service account
// key file at credentialsFile.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	httpClient, err := google.GetHTTPClient(ctx, credentialsFile)
	if err != nil {
		return nil, err
	}
	return NewClientWithOptions(ctx, option.WithHTTPClient(httpClient))
}

// NewClientWithOptions creates a Calendar client from explicit client options.
func NewClientWithOptions(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// InsertEvent creates event in the given calendar.
func (c *Client) InsertEvent(ctx context.Context, calendarID string, event *Event) (*CreatedEvent, error) {
	created, err := c.svc.Events.Insert(calendarID, event.ToGoogle()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create event: %w", ErrProvider, err)
	}
	return toCreatedEvent(created), nil
}
