package registry

// State is the load state of a library
type State int

const (
	StateRegistered State = iota
	StateLoading
	StateLoaded
	StateFailed
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
