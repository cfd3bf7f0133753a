package organizer

import "fmt"

// ReplayHistoryFromEvents reconstructs the agent side of a conversation
// from an event log. Only respond events participate; each becomes a
// Message marked with meta {"replayed": true}.
func ReplayHistoryFromEvents(events []Event) []Message {
	var out []Message
	for _, ev := range events {
		if ev.Type != EventRespond {
			continue
		}
		sender := ev.Actor
		if sender == "" {
			sender = "agent"
		}
		content := ""
		if v, ok := ev.Data["content"]; ok && v != nil {
			content = fmt.Sprintf("%v", v)
		}
		msg := NewMessage(sender, content).
			WithCorrelationID(ev.CorrelationID).
			WithMeta("replayed", true)
		out = append(out, msg)
	}
	return out
}
