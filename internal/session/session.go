// Package session drives component trees across requests: one request at a
// time per session, a backtracking generation captured after every request,
// and restore-on-demand when the browser navigates to an older generation.
package session

import (
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/component"
)

// GenParam is the form parameter carrying the generation a request was
// rendered against. A mismatch with the current generation restores that
// generation before callbacks are dispatched.
const GenParam = "_gen"

// Page is the outcome of one processed request.
type Page struct {
	HTML       string
	Generation int
}

// Session owns one component tree. A session's tree, decoration chains,
// and backtracking state are never shared between sessions, and requests
// are processed start-to-finish one at a time.
type Session struct {
	id   string
	root *component.Component

	mu        sync.Mutex
	state     *State
	regs      []*component.Registry // registry used to render each generation's page
	createdAt time.Time
	lastSeen  time.Time
}

// New creates a session around root. No generation exists until the first
// request is processed.
func New(id string, root *component.Component) *Session {
	now := time.Now()
	return &Session{
		id:        id,
		root:      root,
		state:     NewState(),
		createdAt: now,
		lastSeen:  now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// LastSeen returns the time of the most recently processed request.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Generations returns the number of captured generations. Safe to call
// concurrently with ProcessRequest.
func (s *Session) Generations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Len()
}

// GenerationLog returns the log captured for generation gen. Safe to call
// concurrently with ProcessRequest.
func (s *Session) GenerationLog(gen int) (*component.Log, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Generation(gen)
}

// ProcessRequest runs one request against the tree: restore the submitted
// generation if it is not the current one, dispatch callbacks through the
// root's decoration chain, capture a new generation, and render.
//
// A call control ends processing early but still renders (the delegating
// component now renders as its callee). An answer control reaching this
// boundary is fatal: the tree no longer matches the call that produced it.
func (s *Session) ProcessRequest(form url.Values) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()

	// The submitted form was produced by the page rendered for some
	// earlier generation; its callback identifiers only mean something to
	// that generation's registry.
	from := s.state.Len() - 1
	if g := form.Get(GenParam); g != "" {
		gen, err := strconv.Atoi(g)
		if err != nil || gen < 0 || gen >= s.state.Len() {
			return Page{}, fmt.Errorf("%w: bad generation %q", apperr.ErrGenerationNotFound, g)
		}
		from = gen
	}

	if from >= 0 {
		if from != s.state.Len()-1 {
			if err := s.state.Restore(from); err != nil {
				return Page{}, err
			}
		}
		reg := s.regs[from]
		reg.SetSubmitted(form)
		ctl, err := s.root.Chain().ProcessCallbacks(reg)
		if err != nil {
			return Page{}, fmt.Errorf("session %s: %w", s.id, err)
		}
		if ctl.IsAnswer() {
			return Page{}, fmt.Errorf("session %s: %w", s.id, apperr.ErrAnswerWithoutCall)
		}
	}

	log := component.NewLog()
	s.root.Chain().BacktrackState(log)

	// Render before committing the generation: a failing view must not
	// leave the generation list and the registry list out of step.
	gen := s.state.Len()
	reg := component.NewRegistry()
	rc := component.NewRenderContext(reg)
	rc.Hidden(GenParam, strconv.Itoa(gen))
	if err := s.root.Chain().Render(rc); err != nil {
		return Page{}, fmt.Errorf("session %s: render: %w", s.id, err)
	}
	s.state.Append(log)
	s.regs = append(s.regs, reg)

	return Page{HTML: rc.HTML(), Generation: gen}, nil
}
