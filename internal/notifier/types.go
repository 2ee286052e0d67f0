package notifier

import (
	"fmt"
	"time"
)

// Config controls delivery.
type Config struct {
	ChatID      int64
	ThreadID    int
	SendTimeout time.Duration
	RatePerSec  int
	HistorySize int
}

// Message is one notice handed over by the poll loop.
type Message struct {
	Text string
	// Kind and Key describe the notice for the journal (storage.Kind*; status code or error stage).
	Kind    string
	Key     string
	CycleID string
}

// DeliveryError reports a notice that could not be delivered.
type DeliveryError struct {
	Cause error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("notification not delivered: %v", e.Cause)
}

func (e *DeliveryError) Unwrap() error { return e.Cause }

type HistoryItem struct {
	At        time.Time
	Text      string
	MessageID int
}
