package component

import (
	"fmt"
	"html"
	"strings"
)

// RenderContext accumulates a page's markup and registers the next
// request's callbacks as views produce form fields and action links.
// Markup generation beyond these primitives belongs to the application;
// the framework only guarantees that rendering follows decoration chains.
type RenderContext struct {
	reg     *Registry
	buf     strings.Builder
	current *Component
}

// NewRenderContext creates a render context registering callbacks into reg.
func NewRenderContext(reg *Registry) *RenderContext {
	return &RenderContext{reg: reg}
}

// HTML returns everything rendered so far.
func (rc *RenderContext) HTML() string {
	return rc.buf.String()
}

// Text writes s HTML-escaped.
func (rc *RenderContext) Text(s string) {
	rc.buf.WriteString(html.EscapeString(s))
}

// Raw writes s verbatim.
func (rc *RenderContext) Raw(s string) {
	rc.buf.WriteString(s)
}

// Component renders child through its current decoration chain.
func (rc *RenderContext) Component(child *Component) error {
	return child.Chain().Render(rc)
}

// TextField writes a text input bound to fn via a value callback on the
// component currently rendering.
func (rc *RenderContext) TextField(value string, fn ValueFunc) {
	id := rc.reg.RegisterValue(rc.current, fn)
	fmt.Fprintf(&rc.buf, `<input type="text" name="%s" value="%s">`, id, html.EscapeString(value))
}

// Hidden writes a hidden input carrying a fixed value under name.
func (rc *RenderContext) Hidden(name, value string) {
	fmt.Fprintf(&rc.buf, `<input type="hidden" name="%s" value="%s">`, html.EscapeString(name), html.EscapeString(value))
}

// ActionButton writes a submit button bound to fn via an action callback
// on the component currently rendering.
func (rc *RenderContext) ActionButton(label string, fn ActionFunc) {
	id := rc.reg.RegisterAction(rc.current, fn)
	fmt.Fprintf(&rc.buf, `<button type="submit" name="%s" value="1">%s</button>`, id, html.EscapeString(label))
}
