// ABOUTME: Append-only per-conversation message log
// ABOUTME: Delivery state is kept in a side table keyed by message id

package chat

import "github.com/google/uuid"

// messageLog is not safe for concurrent use; the controller guards it.
type messageLog struct {
	entries map[ConversationID][]Message
	states  map[uuid.UUID]DeliveryState
}

func newMessageLog() *messageLog {
	return &messageLog{
		entries: make(map[ConversationID][]Message),
		states:  make(map[uuid.UUID]DeliveryState),
	}
}

func (l *messageLog) append(conv ConversationID, msg Message, state DeliveryState) {
	l.entries[conv] = append(l.entries[conv], msg)
	l.states[msg.ID] = state
}

// opened reports whether conv has any message.
func (l *messageLog) opened(conv ConversationID) bool {
	return len(l.entries[conv]) > 0
}

func (l *messageLog) setState(id uuid.UUID, state DeliveryState) {
	if _, ok := l.states[id]; ok {
		l.states[id] = state
	}
}

// list copies the log of conv with current states.
func (l *messageLog) list(conv ConversationID) []Entry {
	msgs := l.entries[conv]
	out := make([]Entry, len(msgs))
	for i, m := range msgs {
		out[i] = Entry{Message: m, State: l.states[m.ID]}
	}
	return out
}
