package component

import (
	"fmt"
	"slices"
)

// Node is the capability set shared by components and decorations. Every
// link in a decoration chain implements it, with the owning component as
// the terminal link.
type Node interface {
	// ProcessCallbacks fires the callbacks registered for this subtree
	// that were triggered by the current request.
	ProcessCallbacks(reg *Registry) (Control, error)
	// Render writes this subtree's markup into rc.
	Render(rc *RenderContext) error
	// BacktrackState appends this subtree's tracked state to log.
	BacktrackState(log *Log)
}

// ViewFunc produces a component's markup. Views register the next request's
// callbacks through the RenderContext helpers.
type ViewFunc func(rc *RenderContext) error

// ResumeFunc receives a call's extra arguments followed by the answer's
// results when the called component answers.
type ResumeFunc func(args ...any) (Control, error)

// Component is a stateful node in the UI tree. Its decoration chain head
// starts out as the component itself; calls and custom decorations prepend
// links to the chain at runtime.
type Component struct {
	label    string
	head     Node
	children []*Component
	view     ViewFunc
	methods  map[string]ResumeFunc
	vars     []tracked

	// trackChildren opts the children slice into the backtracking log for
	// components that add or remove children after construction.
	trackChildren bool
}

// Option is a functional option for configuring a new Component.
type Option func(*Component)

// WithLabel sets a human-readable label used in journals and logs.
func WithLabel(label string) Option {
	return func(c *Component) {
		c.label = label
	}
}

// WithView sets the component's view function.
func WithView(view ViewFunc) Option {
	return func(c *Component) {
		c.view = view
	}
}

// WithChildren appends initial children in order.
func WithChildren(children ...*Component) Option {
	return func(c *Component) {
		c.children = append(c.children, children...)
	}
}

// WithMethod registers a named resume target, resolvable by ResumeMethod.
func WithMethod(name string, fn ResumeFunc) Option {
	return func(c *Component) {
		c.methods[name] = fn
	}
}

// WithDynamicChildren opts the children slice into the backtracking log.
// Required for components that mutate their children after construction.
func WithDynamicChildren() Option {
	return func(c *Component) {
		c.trackChildren = true
	}
}

// New creates a component. The component is its own trivial decoration
// until something is prepended with Decorate.
func New(opts ...Option) *Component {
	c := &Component{
		methods: make(map[string]ResumeFunc),
	}
	c.head = c
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Label returns the component's label, or a pointer-ish fallback.
func (c *Component) Label() string {
	if c.label != "" {
		return c.label
	}
	return fmt.Sprintf("component@%p", c)
}

// Chain returns the current head of the decoration chain. All traversal
// into this component must go through it.
func (c *Component) Chain() Node {
	return c.head
}

// AddChild appends a child component.
//
// Without WithDynamicChildren the children list is not captured, so this
// mutation is invisible to backtracking: restoring an older generation
// keeps the child attached. Components that mutate children after
// construction must be created with WithDynamicChildren.
func (c *Component) AddChild(child *Component) {
	c.children = append(c.children, child)
}

// RemoveChild removes a child by identity. Returns false if child is not a
// direct child. As with AddChild, the removal is only undone by
// backtracking when the component was created with WithDynamicChildren.
func (c *Component) RemoveChild(child *Component) bool {
	for i, cc := range c.children {
		if cc == child {
			c.children = slices.Delete(slices.Clone(c.children), i, i+1)
			return true
		}
	}
	return false
}

// Children returns the direct children in declared order.
func (c *Component) Children() []*Component {
	return slices.Clone(c.children)
}

// SetView sets the component's view after construction, for views that
// close over the component itself.
func (c *Component) SetView(view ViewFunc) {
	c.view = view
}

// DefineMethod registers a named resume target after construction.
func (c *Component) DefineMethod(name string, fn ResumeFunc) {
	c.methods[name] = fn
}

// ProcessCallbacks implements the per-request dispatch order: the
// component's own triggered value callbacks, then every child through its
// current decoration chain, then the component's own action callbacks.
// Any non-Continue control or error aborts the remaining traversal.
func (c *Component) ProcessCallbacks(reg *Registry) (Control, error) {
	for _, t := range reg.triggeredValues(c) {
		ctl, err := t.fn(t.value)
		if err != nil {
			return Control{}, fmt.Errorf("value callback %s on %s: %w", t.id, c.Label(), err)
		}
		if !ctl.IsContinue() {
			return ctl, nil
		}
	}

	for _, child := range c.children {
		ctl, err := child.Chain().ProcessCallbacks(reg)
		if err != nil {
			return Control{}, err
		}
		if !ctl.IsContinue() {
			return ctl, nil
		}
	}

	for _, t := range reg.triggeredActions(c) {
		// Only one state-changing action per request, tree-wide.
		if reg.actionFired {
			break
		}
		reg.actionFired = true
		ctl, err := t.action()
		if err != nil {
			return Control{}, fmt.Errorf("action callback %s on %s: %w", t.id, c.Label(), err)
		}
		if !ctl.IsContinue() {
			return ctl, nil
		}
	}

	return Continue(), nil
}

// Render invokes the component's view, if any.
func (c *Component) Render(rc *RenderContext) error {
	if c.view == nil {
		return nil
	}
	prev := rc.current
	rc.current = c
	defer func() { rc.current = prev }()
	return c.view(rc)
}

// BacktrackState records the chain head, every tracked Var, and (when opted
// in) a copy of the children slice, then recurses into each child through
// its current decoration chain.
func (c *Component) BacktrackState(log *Log) {
	c.recordChain(log)
	for _, v := range c.vars {
		v.capture(log)
	}
	if c.trackChildren {
		children := slices.Clone(c.children)
		log.Record(c, "children", children, func(prev any) {
			c.children = slices.Clone(prev.([]*Component))
		})
	}
	for _, child := range c.children {
		child.Chain().BacktrackState(log)
	}
}

// recordChain journals the current chain head so that restoring a
// generation also restores the decoration chain present at capture time.
func (c *Component) recordChain(log *Log) {
	head := c.head
	log.Record(c, "decoration", head, func(prev any) {
		c.head = prev.(Node)
	})
}
