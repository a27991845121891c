package domain

import "time"

// JournalStatus is the lifecycle state of an order commit.
type JournalStatus string

const (
	JournalStarted      JournalStatus = "STARTED"
	JournalStepDone     JournalStatus = "STEP_DONE"
	JournalCompleted    JournalStatus = "COMPLETED"
	JournalCompensating JournalStatus = "COMPENSATING"
	JournalAborted      JournalStatus = "ABORTED"
	JournalFailed       JournalStatus = "FAILED"
)

// JournalEntry is one append-only record of an order commit transition.
type JournalEntry struct {
	OrderID     string
	Status      JournalStatus
	CurrentStep string
	Payload     string
	Errors      []string
	TraceID     string
	SpanID      string
	RecordedAt  time.Time
}
