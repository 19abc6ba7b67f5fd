package upload

// State is a phase of the upload state machine.
type State string

const (
	StateIdle               State = "idle"
	StateAnalyzing          State = "analyzing"
	StateFlagged            State = "flagged"
	StateUploading          State = "uploading"
	StatePatchingVisibility State = "patching"
	StateSucceeded          State = "succeeded"
	StateFailed             State = "failed"
)

var transitions = map[State][]State{
	StateIdle:               {StateAnalyzing, StateUploading, StateFailed},
	StateAnalyzing:          {StateFlagged, StateUploading, StateFailed},
	StateUploading:          {StatePatchingVisibility, StateSucceeded, StateFailed},
	StatePatchingVisibility: {StateSucceeded},
}

// CanTransition reports whether the machine may move from s to next.
// PatchingVisibility has no edge to Failed: a patch failure is advisory.
func (s State) CanTransition(next State) bool {
	for _, candidate := range transitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	switch s {
	case StateFlagged, StateSucceeded, StateFailed:
		return true
	default:
		return false
	}
}

func (s State) String() string { return string(s) }
