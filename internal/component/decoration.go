package component

import "fmt"

// Wrapper is a detachable link in a decoration chain. Concrete decorations
// implement it by embedding Decoration; the unexported methods keep chain
// splicing inside this package.
type Wrapper interface {
	Node
	inner() Node
	setInner(Node)
}

// Decoration is the embeddable base for decorations. It wraps exactly one
// inner Node and forwards the full capability set unmodified; concrete
// decorations override only the operations relevant to their purpose.
type Decoration struct {
	wrapped Node
}

func (d *Decoration) inner() Node     { return d.wrapped }
func (d *Decoration) setInner(n Node) { d.wrapped = n }

// ProcessCallbacks forwards to the wrapped node.
func (d *Decoration) ProcessCallbacks(reg *Registry) (Control, error) {
	return d.wrapped.ProcessCallbacks(reg)
}

// Render forwards to the wrapped node.
func (d *Decoration) Render(rc *RenderContext) error {
	return d.wrapped.Render(rc)
}

// BacktrackState forwards to the wrapped node.
func (d *Decoration) BacktrackState(log *Log) {
	d.wrapped.BacktrackState(log)
}

// Decorate prepends w to the component's decoration chain: w wraps the
// current head and becomes the new head.
func (c *Component) Decorate(w Wrapper) {
	w.setInner(c.head)
	c.head = w
}

// RemoveDecoration splices w out of the chain wherever it sits, preserving
// the relative order of the remaining decorations. It fails if w is not in
// the chain, which means the tree no longer matches the operation that
// attached it.
func (c *Component) RemoveDecoration(w Wrapper) error {
	if Node(w) == c.head {
		c.head = w.inner()
		return nil
	}
	cur := c.head
	for {
		cw, ok := cur.(Wrapper)
		if !ok {
			return fmt.Errorf("decoration not in chain of %s", c.Label())
		}
		if cw.inner() == Node(w) {
			cw.setInner(w.inner())
			return nil
		}
		cur = cw.inner()
	}
}
