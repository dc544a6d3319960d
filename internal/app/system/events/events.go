// internal/app/system/events/events.go
package events

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event kinds published by the feature handlers.
const (
	ProjectCreated    = "project_created"
	ProjectUpdated    = "project_updated"
	ProjectDeleted    = "project_deleted"
	MemberAdded       = "member_added"
	MemberRemoved     = "member_removed"
	MemberRoleChanged = "member_role_changed"
	TaskCreated       = "task_created"
	TaskUpdated       = "task_updated"
	TaskDeleted       = "task_deleted"
	TaskStatusChanged = "task_status_changed"
)

// Event is a single occurrence in a project's history. EventID makes each
// publish uniquely identifiable so the consumer can persist it exactly once.
type Event struct {
	EventID   string
	Kind      string
	ProjectID primitive.ObjectID
	ActorID   primitive.ObjectID
	Subject   string
	At        time.Time
}

// Bus delivers events from many publishers to exactly one consumer.
// Each event is received at most once; once drained from the channel it
// is gone. Publish never blocks: when the buffer is full the event is
// dropped rather than stalling a request handler.
type Bus struct {
	ch chan Event
}

// NewBus returns a bus with the given buffer size. size must be > 0.
func NewBus(size int) *Bus {
	if size <= 0 {
		size = 64
	}
	return &Bus{ch: make(chan Event, size)}
}

// Publish enqueues an event, stamping EventID and At if unset.
// It reports whether the event was accepted.
func (b *Bus) Publish(ev Event) bool {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	select {
	case b.ch <- ev:
		return true
	default:
		return false
	}
}

// Events returns the receive side of the bus. Only one goroutine may
// range over it; a second consumer would split the stream.
func (b *Bus) Events() <-chan Event {
	return b.ch
}

// Close stops the bus. Publishers must not call Publish after Close.
func (b *Bus) Close() {
	close(b.ch)
}
