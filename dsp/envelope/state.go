package envelope

import "fmt"

// State is the current envelope stage.
type State int

const (
	Idle State = iota
	Attack
	Decay
	Sustain
	Release
)

var stateNames = [...]string{
	Idle:    "idle",
	Attack:  "attack",
	Decay:   "decay",
	Sustain: "sustain",
	Release: "release",
}

// String returns the lower-case stage name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}
