package protocol

type State int32

const (
	Unconnected State = iota
	Connecting
	Connected
	Closed
)

func (s State) String() string {
	switch s {
	case Unconnected:
		return "UNCONNECTED"
	case Connecting:
		return "CONNECTING"
	case Connected:
		return "CONNECTED"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}
