package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/session"
)

// SessionRow represents a row in the sessions table.
type SessionRow struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GenerationRow represents one journaled backtracking generation.
type GenerationRow struct {
	SessionID  string                 `json:"session_id"`
	Gen        int                    `json:"gen"`
	CapturedAt time.Time              `json:"captured_at"`
	Entries    []session.JournalEntry `json:"entries"`
}

// EnsureSession inserts the session row if it does not exist yet.
func (db *DB) EnsureSession(id string, createdAt time.Time) error {
	_, err := db.conn.Exec(`
		INSERT INTO sessions (id, created_at, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, createdAt, createdAt)
	if err != nil {
		return fmt.Errorf("store: ensure session: %w", err)
	}
	return nil
}

// RecordGeneration journals one generation's entries. Re-recording the
// same generation (after a backtrack re-branches history) replaces it.
func (db *DB) RecordGeneration(sessionID string, gen int, capturedAt time.Time, entries []session.JournalEntry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("store: marshal entries: %w", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO generations (session_id, gen, captured_at, entries)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, gen) DO UPDATE SET
			captured_at = excluded.captured_at,
			entries     = excluded.entries
	`, sessionID, gen, capturedAt, string(payload))
	if err != nil {
		return fmt.Errorf("store: record generation: %w", err)
	}

	_, _ = tx.Exec(`UPDATE sessions SET updated_at = ? WHERE id = ?`, capturedAt, sessionID)

	return tx.Commit()
}

// DeleteSession removes a session and its generations.
func (db *DB) DeleteSession(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM generations WHERE session_id = ?`, id)
	_, _ = tx.Exec(`DELETE FROM sessions WHERE id = ?`, id)

	return tx.Commit()
}

// ListSessions returns the most recently updated sessions, newest first.
// limit <= 0 means no limit.
func (db *DB) ListSessions(limit int) ([]SessionRow, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(`
		SELECT id, created_at, updated_at
		FROM sessions
		ORDER BY updated_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetSession returns one session row, or apperr.ErrNotFound.
func (db *DB) GetSession(id string) (*SessionRow, error) {
	var r SessionRow
	err := db.conn.QueryRow(`
		SELECT id, created_at, updated_at FROM sessions WHERE id = ?
	`, id).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: session %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get session: %w", err)
	}
	return &r, nil
}

// Generations returns every journaled generation for a session in order.
func (db *DB) Generations(sessionID string) ([]GenerationRow, error) {
	rows, err := db.conn.Query(`
		SELECT session_id, gen, captured_at, entries
		FROM generations
		WHERE session_id = ?
		ORDER BY gen ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: generations: %w", err)
	}
	defer rows.Close()

	var out []GenerationRow
	for rows.Next() {
		var r GenerationRow
		var payload string
		if err := rows.Scan(&r.SessionID, &r.Gen, &r.CapturedAt, &payload); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &r.Entries); err != nil {
			return nil, fmt.Errorf("store: decode entries: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
