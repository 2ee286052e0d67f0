// Package status talks to the Practicum homework status API.
//
// The package is split along the three stages of a poll cycle:
//   - Client.Fetch issues the HTTP request and decodes the body (no shape checks)
//   - Validate turns the decoded snapshot into Homework records
//   - Translate renders a record into the notification text
//
// Every stage reports failures as typed errors so the poll loop can match on
// the kind of failure instead of catching everything.
package status
