package syncer

// State is the connection lifecycle of one account. It is owned
// exclusively by the account's Supervisor.
type State int

const (
	Disconnected State = iota
	Connecting
	Backfilling
	Idling
	Reconnecting
	Terminated
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Backfilling:
		return "backfilling"
	case Idling:
		return "idling"
	case Reconnecting:
		return "reconnecting"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}
