package session

import (
	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/component"
)

// State is the ordered sequence of backtracking generations captured for
// one session, one log per processed request.
type State struct {
	generations []*component.Log
}

// NewState creates an empty state.
func NewState() *State {
	return &State{}
}

// Append records log as the next generation and returns its number.
func (st *State) Append(log *component.Log) int {
	st.generations = append(st.generations, log)
	return len(st.generations) - 1
}

// Len returns the number of captured generations.
func (st *State) Len() int {
	return len(st.generations)
}

// Generation returns the log captured for generation gen.
func (st *State) Generation(gen int) (*component.Log, error) {
	if gen < 0 || gen >= len(st.generations) {
		return nil, apperr.ErrGenerationNotFound
	}
	return st.generations[gen], nil
}

// Restore rolls the tree back to generation gen by replaying every log
// from the newest generation down to gen, entries within each log in
// capture order. The last log applied is gen's, so its values win for
// every tracked field. Generations are kept after a restore; the browser
// can move forward again.
func (st *State) Restore(gen int) error {
	if gen < 0 || gen >= len(st.generations) {
		return apperr.ErrGenerationNotFound
	}
	for i := len(st.generations) - 1; i >= gen; i-- {
		st.generations[i].Replay()
	}
	return nil
}
