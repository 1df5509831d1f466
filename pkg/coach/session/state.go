package session

// State is the lifecycle phase of a coaching session.
type State int

const (
	// StateIdle means no session exists.
	StateIdle State = iota
	// StateCreating means session creation and resource acquisition are in
	// progress.
	StateCreating
	// StateRecording means the session is active and audio is flowing.
	StateRecording
	// StatePaused means the session is active but audio delivery is
	// suspended at the source.
	StatePaused
	// StateEnding means teardown is in progress.
	StateEnding
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateCreating:
		return "CREATING"
	case StateRecording:
		return "RECORDING"
	case StatePaused:
		return "PAUSED"
	case StateEnding:
		return "ENDING"
	default:
		return "UNKNOWN"
	}
}

// active reports whether the state is one of the Active sub-states.
func (s State) active() bool {
	return s == StateRecording || s == StatePaused
}
