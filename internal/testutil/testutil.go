// Package testutil provides shared test helpers for setting up journals
// and component trees.
package testutil

import (
	"fmt"
	"os"
	"testing"

	"github.com/starford/raido/internal/component"
	"github.com/starford/raido/internal/store"
)

// TestDB creates a temporary SQLite session journal that is automatically
// cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Counter is a minimal stateful component for session and web tests: one
// tracked integer and an increment action.
type Counter struct {
	*component.Component
	Count *component.Var[int]
}

// NewCounter builds a Counter labelled "counter".
func NewCounter() *Counter {
	c := &Counter{}
	c.Component = component.New(component.WithLabel("counter"))
	c.Count = component.NewVar(c.Component, "count", 0)

	c.SetView(func(rc *component.RenderContext) error {
		rc.Text(fmt.Sprintf("count: %d", c.Count.Get()))
		rc.ActionButton("inc", func() (component.Control, error) {
			c.Count.Set(c.Count.Get() + 1)
			return component.Continue(), nil
		})
		return nil
	})
	return c
}

// CounterRoot builds a root component holding a single Counter child,
// suitable for wiring into a session.RootFactory.
func CounterRoot() *component.Component {
	root := component.New(
		component.WithLabel("root"),
		component.WithChildren(NewCounter().Component),
	)
	root.SetView(func(rc *component.RenderContext) error {
		for _, child := range root.Children() {
			if err := rc.Component(child); err != nil {
				return err
			}
		}
		return nil
	})
	return root
}
