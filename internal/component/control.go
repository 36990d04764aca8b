package component

type controlKind int

const (
	controlContinue controlKind = iota
	controlCall
	controlAnswer
)

// Control is the explicit traversal result that replaces non-local stack
// unwinding: Continue keeps the traversal going, a call aborts the rest of
// the request's processing at the session boundary, and an answer travels
// up until the answer-capturing decoration of the matching call consumes
// it. The zero value is Continue.
type Control struct {
	kind    controlKind
	origin  *Component
	results []any
}

// Continue is the no-transfer control; traversal proceeds normally.
func Continue() Control {
	return Control{}
}

// IsContinue reports whether traversal should proceed.
func (ctl Control) IsContinue() bool {
	return ctl.kind == controlContinue
}

// IsCall reports whether a component delegated control during this request.
// The session stops processing and renders; the delegation stays in place
// for subsequent requests.
func (ctl Control) IsCall() bool {
	return ctl.kind == controlCall
}

// IsAnswer reports whether an answer escaped the whole traversal without
// being consumed. Seeing this at the session boundary is a protocol error:
// the tree no longer matches the call that produced the answer.
func (ctl Control) IsAnswer() bool {
	return ctl.kind == controlAnswer
}
