package google

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrCredentials is wrapped by every failure to load or use the service account key.
var ErrCredentials = errors.New("credentials error")

// LoadCredentials reads a service account key file and returns credentials
// scoped to Google Calendar.
func LoadCredentials(ctx context.Context, path string) (*google.Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: credentials file not found: %s", ErrCredentials, path)
		}
		return nil, fmt.Errorf("%w: unable to read credentials file %s: %v", ErrCredentials, path, err)
	}
	return CredentialsFromJSON(ctx, data)
}

// CredentialsFromJSON parses a service account key.
func CredentialsFromJSON(ctx context.Context, data []byte) (*google.Credentials, error) {
	creds, err := google.CredentialsFromJSON(ctx, data, CalendarScopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: credentials rejected: %v", ErrCredentials, err)
	}
	return creds, nil
}

// GetHTTPClient returns an HTTP client authenticated with the service account
// key at path. The client is configured to use HTTP/1.1 to avoid HTTP/2
// protocol errors.
func GetHTTPClient(ctx context.Context, path string) (*http.Client, error) {
	creds, err := LoadCredentials(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewHTTPClient(ctx, creds.TokenSource), nil
}

// NewHTTPClient wraps a token source in an HTTP/1.1 client.
func NewHTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			ForceAttemptHTTP2: false,
		}
	}

	return client
}
