package notify

// EventNewMail is sent every time a new message lands in the index
// outside of the initial backfill.
const EventNewMail = "email:new"

// Event is one real-time notification, serialized as JSON on the wire.
type Event struct {
	Name      string `json:"event"`
	AccountID string `json:"accountId"`
}

// NewMail builds the notification for one freshly indexed message.
func NewMail(accountID string) Event {
	return Event{Name: EventNewMail, AccountID: accountID}
}

// Broadcaster fans an event out to every connected listener. Emit never
// blocks the caller.
type Broadcaster interface {
	Emit(event Event)
}

// NoBroadcast drops all events.
type NoBroadcast struct{}

func (NoBroadcast) Emit(Event) {}
