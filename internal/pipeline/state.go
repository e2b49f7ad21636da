package pipeline

// State is a stage of a render run.
type State int

const (
	StateScanning State = iota
	StateNormalizing
	StatePartitioning
	StateRendering
	StateAssembling
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateScanning:     "scanning",
	StateNormalizing:  "normalizing",
	StatePartitioning: "partitioning",
	StateRendering:    "rendering",
	StateAssembling:   "assembling",
	StateDone:         "done",
	StateFailed:       "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether the run has finished.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }

// MarshalYAML writes the state by name.
func (s State) MarshalYAML() (interface{}, error) { return s.String(), nil }
