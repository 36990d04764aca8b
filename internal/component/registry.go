package component

import (
	"net/url"
	"strconv"
)

// ValueFunc receives a value submitted with the request (e.g. a form
// field) for the component that registered it.
type ValueFunc func(value string) (Control, error)

// ActionFunc is a zero-argument state-changing action. At most one fires
// per request across the whole tree.
type ActionFunc func() (Control, error)

type binding struct {
	id     string
	owner  *Component
	value  ValueFunc
	action ActionFunc
}

// triggered is a binding matched against the current request, carrying the
// submitted value for value bindings.
type triggered struct {
	id     string
	fn     ValueFunc
	action ActionFunc
	value  string
}

// Registry holds the callback bindings produced by one render pass, keyed
// by identifiers generated at registration time, and matches them against
// the form of the following request. A fresh registry is created for every
// render; the previous render's registry is the one dispatched against.
type Registry struct {
	values  []binding
	actions []binding
	next    int

	submitted   url.Values
	actionFired bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterValue adds a value binding for owner and returns its identifier,
// to be used as the field name in the rendered markup.
func (r *Registry) RegisterValue(owner *Component, fn ValueFunc) string {
	id := "_v" + strconv.Itoa(r.next)
	r.next++
	r.values = append(r.values, binding{id: id, owner: owner, value: fn})
	return id
}

// RegisterAction adds an action binding for owner and returns its
// identifier.
func (r *Registry) RegisterAction(owner *Component, fn ActionFunc) string {
	id := "_a" + strconv.Itoa(r.next)
	r.next++
	r.actions = append(r.actions, binding{id: id, owner: owner, action: fn})
	return id
}

// SetSubmitted installs the current request's form and resets the
// per-request action latch.
func (r *Registry) SetSubmitted(form url.Values) {
	r.submitted = form
	r.actionFired = false
}

// triggeredValues yields owner's value bindings whose identifier was
// submitted, in registration order, once per submitted value.
func (r *Registry) triggeredValues(owner *Component) []triggered {
	var out []triggered
	for _, b := range r.values {
		if b.owner != owner {
			continue
		}
		for _, v := range r.submitted[b.id] {
			out = append(out, triggered{id: b.id, fn: b.value, value: v})
		}
	}
	return out
}

// triggeredActions yields owner's action bindings whose identifier was
// submitted, in registration order.
func (r *Registry) triggeredActions(owner *Component) []triggered {
	var out []triggered
	for _, b := range r.actions {
		if b.owner != owner {
			continue
		}
		if _, ok := r.submitted[b.id]; ok {
			out = append(out, triggered{id: b.id, action: b.action})
		}
	}
	return out
}
