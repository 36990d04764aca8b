package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/component"
)

// RootFactory builds a fresh root component tree for a new session.
type RootFactory func() *component.Component

// JournalEntry is one backtracking entry flattened for persistence.
type JournalEntry struct {
	Owner string `json:"owner"`
	Field string `json:"field"`
	Value string `json:"value"`
}

// Journal persists session generations for inspection and post-mortem.
// Journaling is best-effort: failures are logged, never surfaced to the
// request.
type Journal interface {
	EnsureSession(id string, createdAt time.Time) error
	RecordGeneration(sessionID string, gen int, capturedAt time.Time, entries []JournalEntry) error
	DeleteSession(id string) error
}

// NotifyFunc is called after a session event. kind is one of "created",
// "updated", "expired".
type NotifyFunc func(kind, sessionID string)

// Manager owns the live sessions of one server process.
type Manager struct {
	factory RootFactory
	journal Journal
	logger  *slog.Logger
	notify  NotifyFunc
	ttl     time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
	entropy  *rand.Rand
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithJournal persists every generation to j.
func WithJournal(j Journal) ManagerOption {
	return func(m *Manager) { m.journal = j }
}

// WithNotify calls fn after session events.
func WithNotify(fn NotifyFunc) ManagerOption {
	return func(m *Manager) { m.notify = fn }
}

// WithTTL sets the idle timeout for Sweep. Zero disables expiry.
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) { m.ttl = ttl }
}

// NewManager creates a session manager building roots with factory.
func NewManager(factory RootFactory, logger *slog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		factory:  factory,
		logger:   logger,
		sessions: make(map[string]*Session),
		entropy:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) newID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), m.entropy).String()
}

// Create builds a new session with a fresh root tree.
func (m *Manager) Create() *Session {
	sess := New(m.newID(), m.factory())

	m.mu.Lock()
	m.sessions[sess.ID()] = sess
	m.mu.Unlock()

	if m.journal != nil {
		if err := m.journal.EnsureSession(sess.ID(), sess.CreatedAt()); err != nil {
			m.logger.Warn("journal: ensure session failed",
				slog.String("session", sess.ID()),
				slog.String("error", err.Error()))
		}
	}
	m.emit("created", sess.ID())
	return sess
}

// Get returns the live session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, apperr.ErrNotFound)
	}
	return sess, nil
}

// Process dispatches one request to the session, journals the captured
// generation, and notifies listeners.
func (m *Manager) Process(id string, form url.Values) (Page, error) {
	sess, err := m.Get(id)
	if err != nil {
		return Page{}, err
	}
	page, err := sess.ProcessRequest(form)
	if err != nil {
		return Page{}, err
	}

	if m.journal != nil {
		log, genErr := sess.GenerationLog(page.Generation)
		if genErr == nil {
			entries := flattenEntries(log)
			if jErr := m.journal.RecordGeneration(id, page.Generation, time.Now(), entries); jErr != nil {
				m.logger.Warn("journal: record generation failed",
					slog.String("session", id),
					slog.Int("generation", page.Generation),
					slog.String("error", jErr.Error()))
			}
		}
	}
	m.emit("updated", id)
	return page, nil
}

// Delete removes a live session. The journal keeps its history.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// Info summarizes one live session.
type Info struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeen    time.Time `json:"last_seen"`
	Generations int       `json:"generations"`
}

// List returns a summary of every live session.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, Info{
			ID:          sess.ID(),
			CreatedAt:   sess.CreatedAt(),
			LastSeen:    sess.LastSeen(),
			Generations: sess.Generations(),
		})
	}
	return out
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions idle longer than the TTL until ctx is cancelled.
// No-op when no TTL is configured.
func (m *Manager) Sweep(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-m.ttl)
			var expired []string
			m.mu.Lock()
			for id, sess := range m.sessions {
				if sess.LastSeen().Before(cutoff) {
					delete(m.sessions, id)
					expired = append(expired, id)
				}
			}
			m.mu.Unlock()
			for _, id := range expired {
				m.logger.Info("session expired", slog.String("session", id))
				m.emit("expired", id)
			}
		}
	}
}

func (m *Manager) emit(kind, id string) {
	if m.notify != nil {
		m.notify(kind, id)
	}
}

// flattenEntries serializes a generation's entries for the journal.
func flattenEntries(log *component.Log) []JournalEntry {
	entries := make([]JournalEntry, 0, log.Len())
	for _, e := range log.Entries() {
		entries = append(entries, JournalEntry{
			Owner: e.Owner.Label(),
			Field: e.Field,
			Value: flattenValue(e.Value),
		})
	}
	return entries
}

// flattenValue renders one captured value for the journal. Structural
// entries (chain heads, children lists) are recorded as labels or type
// names rather than opaque pointers; everything else as JSON, falling back
// to the Go string form.
func flattenValue(v any) string {
	switch x := v.(type) {
	case *component.Component:
		raw, _ := json.Marshal(x.Label())
		return string(raw)
	case component.Node:
		return fmt.Sprintf("%T", x)
	case []*component.Component:
		labels := make([]string, 0, len(x))
		for _, c := range x {
			labels = append(labels, c.Label())
		}
		raw, _ := json.Marshal(labels)
		return string(raw)
	}
	if raw, err := json.Marshal(v); err == nil {
		return string(raw)
	}
	return fmt.Sprintf("%v", v)
}
