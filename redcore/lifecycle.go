package redcore

// LifecycleState is the endpoint/handler state. Transitions are
// monotonic except ACTIVE ↔ DISCONNECTED, which may oscillate across
// reconnects.
type LifecycleState uint8

const (
	NotConnected LifecycleState = iota
	Registered
	Connected
	Activating
	Active
	Disconnected
	Closed
)

func (s LifecycleState) String() string {
	switch s {
	case NotConnected:
		return "NOT_CONNECTED"
	case Registered:
		return "REGISTERED"
	case Connected:
		return "CONNECTED"
	case Activating:
		return "ACTIVATING"
	case Active:
		return "ACTIVE"
	case Disconnected:
		return "DISCONNECTED"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// validTransitions encodes the endpoint's legal lifecycle transitions.
// Connected and Activating both fall back to Disconnected directly when
// dialing or session restoration fails partway through.
var validTransitions = map[LifecycleState]map[LifecycleState]bool{
	NotConnected: {Registered: true},
	Registered:   {Connected: true},
	Connected:    {Activating: true, Disconnected: true},
	Activating:   {Active: true, Disconnected: true},
	Active:       {Disconnected: true},
	Disconnected: {Connected: true},
}

// CanTransition reports whether moving from s to next is a legal
// lifecycle transition. Closed is reachable from any non-Closed state.
func (s LifecycleState) CanTransition(next LifecycleState) bool {
	if next == Closed {
		return s != Closed
	}
	return validTransitions[s][next]
}
