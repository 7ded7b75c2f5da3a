package rgbdtrack

// State is the step of the tracking state machine a session is in
type State int

const (
	// AwaitingInitialSelection waits for the human to mark the object for
	// the first time
	AwaitingInitialSelection State = iota
	// Tracking follows the object with the tracker
	Tracking
	// AwaitingReselection waits for the human to mark the object again
	// after the tracker lost it
	AwaitingReselection
	// Aborted is the terminal state reached when an unexpected fault stopped
	// the session
	Aborted
)

// String returns the name of the state
func (s State) String() string {
	switch s {
	case AwaitingInitialSelection:
		return "awaiting initial selection"
	case Tracking:
		return "tracking"
	case AwaitingReselection:
		return "awaiting reselection"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// selecting returns true for the states waiting on the human
func (s State) selecting() bool {
	return s == AwaitingInitialSelection || s == AwaitingReselection
}
