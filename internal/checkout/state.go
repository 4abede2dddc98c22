package checkout

// State is the position of one checkout attempt in the flow.
type State string

const (
	StateIdle           State = "idle"
	StateValidating     State = "validating"
	StateCreatingIntent State = "creating_intent"
	StateConfirming     State = "confirming"
	StatePersisting     State = "persisting"
	StateCompleted      State = "completed"
	StateFailed         State = "failed"
)

var transitions = map[State]State{
	StateIdle:           StateValidating,
	StateValidating:     StateCreatingIntent,
	StateCreatingIntent: StateConfirming,
	StateConfirming:     StatePersisting,
	StatePersisting:     StateCompleted,
}

func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransitionTo reports whether next directly follows s. Failed follows
// every non-terminal state.
func (s State) CanTransitionTo(next State) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	return transitions[s] == next
}
