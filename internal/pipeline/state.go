package pipeline

// State identifies where a run is in its lifecycle.
type State string

const (
	StateInit       State = "init"
	StateResolving  State = "resolving"
	StateExtracting State = "extracting"
	StateMapping    State = "mapping"
	StateConverting State = "converting"
	StateLayingOut  State = "laying-out"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// transitions is the full lifecycle table. Failed is reachable only from
// Resolving: a missing install or unusable input directory sinks the run,
// while every later stage contains per-archive and per-file errors and
// keeps going.
var transitions = map[State][]State{
	StateInit:       {StateResolving},
	StateResolving:  {StateExtracting, StateFailed},
	StateExtracting: {StateMapping},
	StateMapping:    {StateConverting},
	StateConverting: {StateLayingOut},
	StateLayingOut:  {StateDone},
}

// CanReach reports whether the lifecycle table allows moving to next.
func (s State) CanReach(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether a run in this state has finished.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
