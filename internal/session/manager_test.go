package session_test

import (
	"errors"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/session"
	"github.com/starford/raido/internal/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testManager(t *testing.T, opts ...session.ManagerOption) *session.Manager {
	t.Helper()
	return session.NewManager(testutil.CounterRoot, testLogger(), opts...)
}

func TestManager_CreateGetDelete(t *testing.T) {
	m := testManager(t)

	sess := m.Create()
	if len(sess.ID()) != 26 {
		t.Errorf("ID = %q, want 26-char ULID", sess.ID())
	}

	got, err := m.Get(sess.ID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != sess {
		t.Error("Get returned a different session")
	}
	if m.Count() != 1 {
		t.Errorf("Count = %d, want 1", m.Count())
	}

	if err := m.Delete(sess.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Get(sess.ID()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
	}
	if err := m.Delete(sess.ID()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second Delete: err = %v, want ErrNotFound", err)
	}
}

func TestManager_UniqueIDs(t *testing.T) {
	m := testManager(t)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := m.Create().ID()
		if seen[id] {
			t.Fatalf("duplicate session ID %q", id)
		}
		seen[id] = true
	}
}

func TestManager_ProcessJournalsGenerations(t *testing.T) {
	db := testutil.TestDB(t)
	m := testManager(t, session.WithJournal(db))

	sess := m.Create()
	if _, err := m.Process(sess.ID(), url.Values{}); err != nil {
		t.Fatalf("Process: %v", err)
	}

	row, err := db.GetSession(sess.ID())
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if row.ID != sess.ID() {
		t.Errorf("journaled ID = %q", row.ID)
	}

	gens, err := db.Generations(sess.ID())
	if err != nil {
		t.Fatalf("Generations: %v", err)
	}
	if len(gens) != 1 {
		t.Fatalf("generations = %d, want 1", len(gens))
	}

	var foundCount, foundChain bool
	for _, e := range gens[0].Entries {
		if e.Owner == "counter" && e.Field == "count" {
			foundCount = true
			if e.Value != "0" {
				t.Errorf("count value = %q, want 0", e.Value)
			}
		}
		if e.Owner == "counter" && e.Field == "decoration" {
			foundChain = true
			if e.Value != `"counter"` {
				t.Errorf("chain head value = %q, want component label", e.Value)
			}
		}
	}
	if !foundCount {
		t.Error("counter var not journaled")
	}
	if !foundChain {
		t.Error("chain head not journaled")
	}
}

func TestManager_ConcurrentProcessAndList(t *testing.T) {
	m := testManager(t)
	sess := m.Create()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			if _, err := m.Process(sess.ID(), url.Values{}); err != nil {
				t.Errorf("Process: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			m.List()
		}
	}()
	wg.Wait()

	infos := m.List()
	if len(infos) != 1 {
		t.Fatalf("sessions = %d, want 1", len(infos))
	}
	if infos[0].Generations != 50 {
		t.Errorf("generations = %d, want 50", infos[0].Generations)
	}
}

func TestManager_ProcessUnknownSession(t *testing.T) {
	m := testManager(t)
	if _, err := m.Process("nope", url.Values{}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestManager_Notify(t *testing.T) {
	var mu sync.Mutex
	var events []string
	m := testManager(t, session.WithNotify(func(kind, id string) {
		mu.Lock()
		events = append(events, kind)
		mu.Unlock()
	}))

	sess := m.Create()
	if _, err := m.Process(sess.ID(), url.Values{}); err != nil {
		t.Fatalf("Process: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 || events[0] != "created" || events[1] != "updated" {
		t.Errorf("events = %v, want [created updated]", events)
	}
}

func TestManager_List(t *testing.T) {
	m := testManager(t)
	sess := m.Create()
	if _, err := m.Process(sess.ID(), url.Values{}); err != nil {
		t.Fatalf("Process: %v", err)
	}

	infos := m.List()
	if len(infos) != 1 {
		t.Fatalf("List len = %d, want 1", len(infos))
	}
	if infos[0].ID != sess.ID() || infos[0].Generations != 1 {
		t.Errorf("info = %+v", infos[0])
	}
}
