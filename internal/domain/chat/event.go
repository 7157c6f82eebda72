package chat

import "time"

// EventKind enumerates the event sources feeding the dispatcher.
type EventKind string

const (
	EventReady      EventKind = "ready"
	EventMemberJoin EventKind = "member_join"
	EventCommand    EventKind = "command"
	EventDailyTick  EventKind = "daily_tick"
)

// Responder replies in the context an event came from.
type Responder interface {
	Reply(msg Message) error
}

// Event is one inbound trigger. Only the fields relevant to Kind are set.
type Event struct {
	Kind EventKind
	At   time.Time

	GuildID string
	Channel Destination
	User    User

	// Command events.
	Command string
	Args    []string
	RawArgs string
	// ReplyTo is the author of the message being replied to, when the platform has one.
	ReplyTo *User

	Responder Responder
}
