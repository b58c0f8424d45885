// Package google builds authenticated clients for the Google Calendar and
// Sheets APIs.
//
// Credentials come from an inline JSON document, a key file, or Application
// Default Credentials, in that order. The resulting HTTP client is shared by
// both services.
package google
