package scan

// State is the phase of a Controller's current cycle.
type State int32

const (
	StateIdle State = iota
	StateScanning
	StateSettling
	StateCollecting
	StatePublishing
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateSettling:
		return "settling"
	case StateCollecting:
		return "collecting"
	case StatePublishing:
		return "publishing"
	default:
		return "unknown"
	}
}
