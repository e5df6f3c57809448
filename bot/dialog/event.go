package dialog

// EventKind discriminates the three entry points feeding the engine.
type EventKind int

const (
	KindCommand EventKind = iota
	KindCallback
	KindText
)

func (k EventKind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindCallback:
		return "callback"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Event is the normalized inbound event from the transport. Payload carries
// the command name, the callback data or the message text depending on Kind.
type Event struct {
	Kind       EventKind
	UserId     int64
	ChatId     int64
	FirstName  string
	LastName   string
	Payload    string
	CallbackId string
}

// action is the discriminator used in the transition table. Text events all
// share one arm per state, so their discriminator is empty.
func (ev Event) action() string {
	if ev.Kind == KindText {
		return ""
	}
	return ev.Payload
}
