// Package history persists ingestion profiles and conversation turns in
// SQLite, keyed by session.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/shadowlink/afterlife/pkg/insights"
)

// ErrNoProfile is returned when a session has no stored text profile.
var ErrNoProfile = errors.New("history: no profile for session")

// Turn is one recorded exchange half: a user message or a persona reply.
type Turn struct {
	ID        string
	SessionID string
	PersonaID string
	Role      string
	Content   string
	CreatedAt time.Time
}

// Store is the persistent session history.
type Store struct {
	db *sql.DB
}

// NewStore creates/opens the history database at path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Single-process service. One shared connection avoids writer lock
	// contention with SQLite under concurrent goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) init() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA temp_store=MEMORY;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			profile_json TEXT NOT NULL DEFAULT '',
			created_at_ms INTEGER NOT NULL,
			updated_at_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS turns (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			persona_id TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS turns_session_idx ON turns(session_id, created_at_ms DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init history schema: %w", err)
		}
	}
	return nil
}

// RecordIngestion stores the text profile for sessionID, creating the
// session row if needed. An empty sessionID gets a fresh id. Returns the
// session id the profile was stored under.
func (s *Store) RecordIngestion(ctx context.Context, sessionID string, profile *insights.TextProfile) (string, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}

	now := nowMillis()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions(session_id, profile_json, created_at_ms, updated_at_ms)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			profile_json = excluded.profile_json,
			updated_at_ms = excluded.updated_at_ms
	`, sessionID, string(data), now, now)
	if err != nil {
		return "", fmt.Errorf("record ingestion: %w", err)
	}
	return sessionID, nil
}

// GetProfile returns the stored text profile for sessionID.
func (s *Store) GetProfile(ctx context.Context, sessionID string) (*insights.TextProfile, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT profile_json FROM sessions WHERE session_id = ?`, sessionID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && raw == "") {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	var profile insights.TextProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &profile, nil
}

// AppendTurn records one message half for a session.
func (s *Store) AppendTurn(ctx context.Context, sessionID, personaID, role, content string) error {
	now := nowMillis()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions(session_id, created_at_ms, updated_at_ms)
		VALUES(?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET updated_at_ms = excluded.updated_at_ms
	`, sessionID, now, now)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO turns(id, session_id, persona_id, role, content, created_at_ms)
		VALUES(?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), sessionID, personaID, role, content, now)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// RecentTurns returns up to limit turns for a session, oldest first.
func (s *Store) RecentTurns(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, persona_id, role, content, created_at_ms
		FROM turns WHERE session_id = ?
		ORDER BY created_at_ms DESC, id DESC
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var createdMs int64
		if err := rows.Scan(&t.ID, &t.SessionID, &t.PersonaID, &t.Role, &t.Content, &createdMs); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.CreatedAt = time.UnixMilli(createdMs)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
