// Package core holds the domain vocabulary of the store: the Value
// union, records, the collection port and the error taxonomy.
package core

// EventType represents the kind of change observed on a durable unit.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents an observed change to a collection's durable unit,
// emitted by adapters that support watching.
type Event struct {
	Type       EventType
	Collection string
	Timestamp  int64 // Unix timestamp
}

// String implements fmt.Stringer (and the lifecycle event contract).
func (e Event) String() string {
	return string(e.Type) + " " + e.Collection
}
