package component

import (
	"fmt"
	"slices"

	"github.com/starford/raido/internal/apperr"
)

// ResumeTarget selects what runs when a called component answers: a method
// name resolved against the calling component at invocation time, a
// function value, or nothing (the zero value; the answer is discarded
// after the chains are cleaned up).
type ResumeTarget struct {
	method string
	fn     ResumeFunc
}

// ResumeMethod resumes by invoking the named method defined on the caller.
func ResumeMethod(name string) ResumeTarget {
	return ResumeTarget{method: name}
}

// ResumeWith resumes by invoking fn directly.
func ResumeWith(fn ResumeFunc) ResumeTarget {
	return ResumeTarget{fn: fn}
}

// NoResume discards the eventual answer after cleanup.
func NoResume() ResumeTarget {
	return ResumeTarget{}
}

// onAnswer is the persisted intent to resume: everything needed to undo a
// call and resume the caller once the callee answers. It is reachable only
// through the answer-capturing decoration on the callee and fires at most
// once.
type onAnswer struct {
	caller     *Component
	callee     *Component
	callDeco   *callDecoration
	answerDeco *answerDecoration
	resume     ResumeTarget
	extra      []any
	consumed   bool
}

func (r *onAnswer) fire(results []any) (Control, error) {
	if r.consumed {
		return Control{}, fmt.Errorf("%w: answer from %s already consumed", apperr.ErrAnswerWithoutCall, r.callee.Label())
	}
	r.consumed = true

	// Restore both chains before resuming, so the resume target sees the
	// pre-call tree and may immediately call again.
	if err := r.caller.RemoveDecoration(r.callDeco); err != nil {
		return Control{}, fmt.Errorf("detach call decoration: %w", err)
	}
	if err := r.callee.RemoveDecoration(r.answerDeco); err != nil {
		return Control{}, fmt.Errorf("detach answer decoration: %w", err)
	}

	fn := r.resume.fn
	if fn == nil && r.resume.method != "" {
		fn = r.caller.methods[r.resume.method]
		if fn == nil {
			return Control{}, fmt.Errorf("%w: no method %q on %s", apperr.ErrBadResumeTarget, r.resume.method, r.caller.Label())
		}
	}
	if fn == nil {
		return Continue(), nil
	}

	args := make([]any, 0, len(r.extra)+len(results))
	args = append(args, r.extra...)
	args = append(args, results...)
	return fn(args...)
}

// callDecoration redirects the caller's processing, rendering, and
// backtracking capture to the called component's current chain for as long
// as the call is outstanding.
type callDecoration struct {
	Decoration
	caller *Component
	target *Component
}

func (d *callDecoration) ProcessCallbacks(reg *Registry) (Control, error) {
	return d.target.Chain().ProcessCallbacks(reg)
}

func (d *callDecoration) Render(rc *RenderContext) error {
	return d.target.Chain().Render(rc)
}

// BacktrackState lets the wrapped chain capture the caller's frozen
// subtree (the caller itself records its chain head there, so restoring a
// mid-call generation restores the delegation), then recurses into the
// callee, which is not otherwise reachable from the tree.
func (d *callDecoration) BacktrackState(log *Log) {
	d.Decoration.BacktrackState(log)
	d.target.Chain().BacktrackState(log)
}

// answerDecoration sits on the callee's chain and watches the controls
// coming back up for an answer originating at its callee. Forward-path
// behavior is untouched.
type answerDecoration struct {
	Decoration
	record *onAnswer
}

// BacktrackState additionally journals whether the call has been answered,
// so restoring a mid-call generation re-arms the resume.
func (d *answerDecoration) BacktrackState(log *Log) {
	d.Decoration.BacktrackState(log)
	rec := d.record
	log.Record(rec.caller, "answered", rec.consumed, func(prev any) {
		rec.consumed = prev.(bool)
	})
}

func (d *answerDecoration) ProcessCallbacks(reg *Registry) (Control, error) {
	ctl, err := d.Decoration.ProcessCallbacks(reg)
	if err != nil || !ctl.IsAnswer() {
		return ctl, err
	}
	if ctl.origin != d.record.callee {
		// An inner component answered a different, outer call; let the
		// control keep travelling.
		return ctl, nil
	}
	return d.record.fire(ctl.results)
}

// Call transfers control to callee: from this request on, the caller
// processes and renders as callee until callee answers. The returned
// control must be propagated up immediately; no further code in the
// triggering callback runs after it. Calling while already mid-call stacks
// another delegation on top.
func (c *Component) Call(callee *Component, resume ResumeTarget, extra ...any) Control {
	cd := &callDecoration{caller: c, target: callee}
	c.Decorate(cd)

	rec := &onAnswer{
		caller:   c,
		callee:   callee,
		callDeco: cd,
		resume:   resume,
		extra:    slices.Clone(extra),
	}
	ad := &answerDecoration{record: rec}
	callee.Decorate(ad)
	rec.answerDeco = ad

	return Control{kind: controlCall}
}

// Answer completes an outstanding call with results. The returned control
// must be propagated up immediately; it is consumed by the answer-capturing
// decoration installed on this component when it was called. If no such
// decoration is in place the session surfaces apperr.ErrAnswerWithoutCall.
func (c *Component) Answer(results ...any) Control {
	return Control{kind: controlAnswer, origin: c, results: slices.Clone(results)}
}
