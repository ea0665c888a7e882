// Package audit records CONFIG_DB publish operations in a JSON-lines journal.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/newtron-network/lanemap/pkg/portdb"
)

// Event is one publish of PORT entries to a switch.
type Event struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	User        string          `json:"user"`
	Platform    string          `json:"platform"`
	Target      string          `json:"target"` // Redis address or SSH host
	Operation   string          `json:"operation"`
	Changes     []portdb.Change `json:"changes"`
	Success     bool            `json:"success"`
	Error       string          `json:"error,omitempty"`
	ExecuteMode bool            `json:"execute_mode"` // true if -x was used
	DryRun      bool            `json:"dry_run"`
	Duration    time.Duration   `json:"duration"`
}

// Operations recorded by the CLI.
const (
	OperationPublish = "port.publish"
	OperationDelete  = "port.delete"
)

// Filter defines criteria for querying audit events
type Filter struct {
	Platform    string
	Target      string
	User        string
	Operation   string
	Port        string // matches events that changed this port
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event
func NewEvent(user, platform, target, operation string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		User:      user,
		Platform:  platform,
		Target:    target,
		Operation: operation,
	}
}

// WithChanges sets the changes
func (e *Event) WithChanges(changes []portdb.Change) *Event {
	e.Changes = changes
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the operation duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

// WithExecuteMode marks if execute mode was used
func (e *Event) WithExecuteMode(execute bool) *Event {
	e.ExecuteMode = execute
	e.DryRun = !execute
	return e
}

// touches reports whether the event changed the named port.
func (e *Event) touches(port string) bool {
	for _, c := range e.Changes {
		if c.Name == port {
			return true
		}
	}
	return false
}
