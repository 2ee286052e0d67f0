package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures the journal.
//
// Driver values:
//   - "file": JSON Lines file
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", the journal is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Notice kinds.
const (
	KindStatus = "status"
	KindEmpty  = "empty"
	KindError  = "error"
)

// Notice records one notification attempt.
// Keep it compact and schema-stable.
type Notice struct {
	At        time.Time `json:"at"`
	CycleID   string    `json:"cycle_id,omitempty"`
	Kind      string    `json:"kind"`
	Key       string    `json:"key,omitempty"` // status code or error stage
	Text      string    `json:"text"`
	Delivered bool      `json:"delivered"`
	Error     string    `json:"error,omitempty"`
}
