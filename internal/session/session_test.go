package session_test

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/component"
	"github.com/starford/raido/internal/session"
	"github.com/starford/raido/internal/testutil"
)

// The counter root's increment button is the first callback registered
// during a render, so it gets the identifier "_a0" in every generation.
const incAction = "_a0"

func counterSession() *session.Session {
	return session.New("01TESTSESSION", testutil.CounterRoot())
}

func process(t *testing.T, s *session.Session, gen int, ids ...string) session.Page {
	t.Helper()
	form := url.Values{}
	if gen >= 0 {
		form.Set(session.GenParam, fmt.Sprintf("%d", gen))
	}
	for _, id := range ids {
		form.Add(id, "1")
	}
	page, err := s.ProcessRequest(form)
	if err != nil {
		t.Fatalf("ProcessRequest: %v", err)
	}
	return page
}

func TestProcessRequest_FirstRender(t *testing.T) {
	s := counterSession()
	page := process(t, s, -1)

	if page.Generation != 0 {
		t.Errorf("generation = %d, want 0", page.Generation)
	}
	if !strings.Contains(page.HTML, "count: 0") {
		t.Errorf("HTML = %q, want initial count", page.HTML)
	}
	if !strings.Contains(page.HTML, `name="_gen" value="0"`) {
		t.Errorf("HTML = %q, want generation marker", page.HTML)
	}
}

func TestProcessRequest_ActionAdvancesGeneration(t *testing.T) {
	s := counterSession()
	process(t, s, -1)

	page := process(t, s, 0, incAction)
	if page.Generation != 1 {
		t.Errorf("generation = %d, want 1", page.Generation)
	}
	if !strings.Contains(page.HTML, "count: 1") {
		t.Errorf("HTML = %q, want count 1", page.HTML)
	}
}

func TestProcessRequest_BacktrackRestoresOldGeneration(t *testing.T) {
	s := counterSession()
	process(t, s, -1)            // gen 0, count 0
	process(t, s, 0, incAction)  // gen 1, count 1
	process(t, s, 1, incAction)  // gen 2, count 2

	// Resubmitting the gen-0 page increments from the restored count.
	page := process(t, s, 0, incAction)
	if page.Generation != 3 {
		t.Errorf("generation = %d, want 3", page.Generation)
	}
	if !strings.Contains(page.HTML, "count: 1") {
		t.Errorf("HTML = %q, want count 1 after backtrack", page.HTML)
	}
}

func TestProcessRequest_ForwardAfterBacktrack(t *testing.T) {
	s := counterSession()
	process(t, s, -1)
	process(t, s, 0, incAction) // count 1
	process(t, s, 0, incAction) // backtrack, count 1 again (gen 2)

	// The newest generation is still usable.
	page := process(t, s, 2, incAction)
	if !strings.Contains(page.HTML, "count: 2") {
		t.Errorf("HTML = %q, want count 2", page.HTML)
	}
}

func TestProcessRequest_BadGeneration(t *testing.T) {
	s := counterSession()
	process(t, s, -1)

	for _, g := range []string{"7", "-1", "abc"} {
		form := url.Values{}
		form.Set(session.GenParam, g)
		_, err := s.ProcessRequest(form)
		if !errors.Is(err, apperr.ErrGenerationNotFound) {
			t.Errorf("gen %q: err = %v, want ErrGenerationNotFound", g, err)
		}
	}
}

func TestProcessRequest_AnswerWithoutCall(t *testing.T) {
	root := component.New(component.WithLabel("root"))
	root.SetView(func(rc *component.RenderContext) error {
		rc.ActionButton("answer", func() (component.Control, error) {
			return root.Answer("oops"), nil
		})
		return nil
	})
	s := session.New("01TESTSESSION", root)

	if _, err := s.ProcessRequest(url.Values{}); err != nil {
		t.Fatalf("first render: %v", err)
	}
	form := url.Values{}
	form.Set(session.GenParam, "0")
	form.Set("_a0", "1")
	_, err := s.ProcessRequest(form)
	if !errors.Is(err, apperr.ErrAnswerWithoutCall) {
		t.Fatalf("err = %v, want ErrAnswerWithoutCall", err)
	}
}

func TestProcessRequest_CallRendersCallee(t *testing.T) {
	dialog := component.New(component.WithLabel("dialog"))
	dialog.SetView(func(rc *component.RenderContext) error {
		rc.Raw("<p>are you sure?</p>")
		rc.ActionButton("yes", func() (component.Control, error) {
			return dialog.Answer(true), nil
		})
		return nil
	})

	var confirmed bool
	root := component.New(component.WithLabel("root"))
	root.SetView(func(rc *component.RenderContext) error {
		rc.ActionButton("ask", func() (component.Control, error) {
			return root.Call(dialog, component.ResumeWith(func(args ...any) (component.Control, error) {
				confirmed = args[0].(bool)
				return component.Continue(), nil
			})), nil
		})
		return nil
	})
	s := session.New("01TESTSESSION", root)

	if _, err := s.ProcessRequest(url.Values{}); err != nil {
		t.Fatalf("first render: %v", err)
	}

	// The "ask" action renders the dialog in the root's place.
	form := url.Values{}
	form.Set(session.GenParam, "0")
	form.Set("_a0", "1")
	page, err := s.ProcessRequest(form)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !strings.Contains(page.HTML, "are you sure?") {
		t.Fatalf("mid-call HTML = %q", page.HTML)
	}

	// The dialog's "yes" answers and the root renders again.
	form = url.Values{}
	form.Set(session.GenParam, "1")
	form.Set("_a0", "1")
	page, err = s.ProcessRequest(form)
	if err != nil {
		t.Fatalf("yes: %v", err)
	}
	if !confirmed {
		t.Error("resume did not receive the answer")
	}
	if strings.Contains(page.HTML, "are you sure?") {
		t.Errorf("post-answer HTML = %q, dialog still showing", page.HTML)
	}
}

func TestSession_StateAndTimestamps(t *testing.T) {
	s := counterSession()
	if s.ID() != "01TESTSESSION" {
		t.Errorf("ID = %q", s.ID())
	}
	if s.Generations() != 0 {
		t.Errorf("initial generations = %d, want 0", s.Generations())
	}
	process(t, s, -1)
	if s.Generations() != 1 {
		t.Errorf("generations = %d, want 1", s.Generations())
	}
	if s.LastSeen().Before(s.CreatedAt()) {
		t.Error("LastSeen before CreatedAt")
	}
}

func TestProcessRequest_RenderErrorLeavesSessionUsable(t *testing.T) {
	fail := true
	root := component.New(
		component.WithLabel("flaky"),
		component.WithView(func(rc *component.RenderContext) error {
			if fail {
				return errors.New("view broke")
			}
			rc.Text("ok")
			return nil
		}),
	)
	s := session.New("01TESTSESSION", root)

	if _, err := s.ProcessRequest(url.Values{}); err == nil {
		t.Fatal("expected render error")
	}
	if s.Generations() != 0 {
		t.Fatalf("generations after failed render = %d, want 0", s.Generations())
	}

	fail = false
	page, err := s.ProcessRequest(url.Values{})
	if err != nil {
		t.Fatalf("recovery request: %v", err)
	}
	if page.Generation != 0 {
		t.Errorf("generation = %d, want 0", page.Generation)
	}
	if !strings.Contains(page.HTML, "ok") {
		t.Errorf("HTML = %q, want recovered view", page.HTML)
	}
}
