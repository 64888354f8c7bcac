package google

import "google.golang.org/api/calendar/v3"

// CalendarScopes are the OAuth scopes requested for the service account.
// Only event insertion is performed, but the events scope does not allow
// writing to calendars shared with the account, so full access is requested.
var CalendarScopes = []string{
	calendar.CalendarScope,
}
