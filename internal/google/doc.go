// Package google provides service account authentication for Google APIs.
//
// Credentials are read from the key file named in the calassist settings and
// turned into an OAuth2 token source scoped to Google Calendar. The resulting
// HTTP client is handed to the calendar service.
package google
