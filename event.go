package organizer

// EventType identifies the kind of a team Event.
type EventType string

const (
	EventRoute       EventType = "route"
	EventDecision    EventType = "decision"
	EventToolCall    EventType = "tool_call"
	EventObservation EventType = "observation"
	EventRespond     EventType = "respond"
	EventCritique    EventType = "critique"
	EventError       EventType = "error"
)

// Event is one entry of the unified team event stream. Events are value
// objects: totally ordered by append order within a turn and never mutated
// after creation. All events of one turn share a correlation id.
type Event struct {
	Type          EventType      `json:"type"`
	Actor         string         `json:"actor"`
	Target        string         `json:"target"`
	Data          map[string]any `json:"data,omitempty"`
	Timestamp     string         `json:"timestamp"`
	CorrelationID string         `json:"correlation_id,omitempty"`
}

// NewEvent creates an Event with the timestamp set to now.
// Data is used as given; callers hand over ownership.
func NewEvent(typ EventType, actor, target string, data map[string]any) Event {
	return Event{
		Type:      typ,
		Actor:     actor,
		Target:    target,
		Data:      data,
		Timestamp: NowISO(),
	}
}

// WithCorrelationID returns a copy of the event carrying cid.
func (e Event) WithCorrelationID(cid string) Event {
	e.CorrelationID = cid
	return e
}
