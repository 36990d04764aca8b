// Package demo ships the example application served by the raido binary:
// a counter and a todo list, both backtrackable, with destructive actions
// confirmed through a call/answer dialog.
package demo

import (
	"fmt"
	"slices"

	"github.com/starford/raido/internal/component"
)

// NewRoot builds a fresh demo tree. Used as the session root factory.
func NewRoot() *component.Component {
	counter := NewCounter("counter")
	todo := NewTodo("todo")

	root := component.New(
		component.WithLabel("demo"),
		component.WithChildren(counter, todo),
	)
	root.SetView(func(rc *component.RenderContext) error {
		rc.Raw("<h1>raido demo</h1>")
		if err := rc.Component(counter); err != nil {
			return err
		}
		return rc.Component(todo)
	})
	return root
}

// Confirm is a yes/no dialog component that answers true or false.
type Confirm struct {
	*component.Component
	question *component.Var[string]
}

// NewConfirm creates a dialog. Call Ask to set the question and get the
// component to pass to Call.
func NewConfirm(label string) *Confirm {
	d := &Confirm{Component: component.New(component.WithLabel(label))}
	d.question = component.NewVar(d.Component, "question", "")
	d.SetView(func(rc *component.RenderContext) error {
		rc.Raw("<div class=\"confirm\"><p>")
		rc.Text(d.question.Get())
		rc.Raw("</p>")
		rc.ActionButton("Yes", func() (component.Control, error) {
			return d.Answer(true), nil
		})
		rc.ActionButton("No", func() (component.Control, error) {
			return d.Answer(false), nil
		})
		rc.Raw("</div>")
		return nil
	})
	return d
}

// Ask sets the question and returns the component for Call.
func (d *Confirm) Ask(question string) *component.Component {
	d.question.Set(question)
	return d.Component
}

// NewCounter creates a counter with +, - and a confirmed reset.
func NewCounter(label string) *component.Component {
	c := component.New(component.WithLabel(label))
	count := component.NewVar(c, "count", 0)
	confirm := NewConfirm(label + ".confirm")

	c.SetView(func(rc *component.RenderContext) error {
		rc.Raw("<div class=\"counter\">")
		rc.Text(fmt.Sprintf("count: %d", count.Get()))
		rc.ActionButton("+", func() (component.Control, error) {
			count.Set(count.Get() + 1)
			return component.Continue(), nil
		})
		rc.ActionButton("-", func() (component.Control, error) {
			count.Set(count.Get() - 1)
			return component.Continue(), nil
		})
		rc.ActionButton("reset", func() (component.Control, error) {
			q := fmt.Sprintf("Reset counter at %d?", count.Get())
			return c.Call(confirm.Ask(q), component.ResumeWith(func(args ...any) (component.Control, error) {
				if ok, _ := args[0].(bool); ok {
					count.Set(0)
				}
				return component.Continue(), nil
			})), nil
		})
		rc.Raw("</div>")
		return nil
	})
	return c
}

// NewTodo creates a todo list with a draft field, add, and confirmed
// remove resumed through a named method.
func NewTodo(label string) *component.Component {
	c := component.New(component.WithLabel(label))
	items := component.NewVarClone(c, "items", []string{}, slices.Clone)
	draft := component.NewVar(c, "draft", "")
	confirm := NewConfirm(label + ".confirm")

	c.DefineMethod("removeConfirmed", func(args ...any) (component.Control, error) {
		idx, _ := args[0].(int)
		ok, _ := args[1].(bool)
		if ok && idx >= 0 && idx < len(items.Get()) {
			items.Set(slices.Delete(slices.Clone(items.Get()), idx, idx+1))
		}
		return component.Continue(), nil
	})

	c.SetView(func(rc *component.RenderContext) error {
		rc.Raw("<div class=\"todo\"><ul>")
		for i, item := range items.Get() {
			rc.Raw("<li>")
			rc.Text(item)
			rc.ActionButton("remove", func() (component.Control, error) {
				q := fmt.Sprintf("Remove %q?", item)
				return c.Call(confirm.Ask(q), component.ResumeMethod("removeConfirmed"), i), nil
			})
			rc.Raw("</li>")
		}
		rc.Raw("</ul>")
		rc.TextField(draft.Get(), func(v string) (component.Control, error) {
			draft.Set(v)
			return component.Continue(), nil
		})
		rc.ActionButton("Add", func() (component.Control, error) {
			if draft.Get() != "" {
				items.Set(append(slices.Clone(items.Get()), draft.Get()))
				draft.Set("")
			}
			return component.Continue(), nil
		})
		rc.Raw("</div>")
		return nil
	})
	return c
}
