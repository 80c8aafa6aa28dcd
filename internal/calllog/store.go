// internal/calllog/store.go
package calllog

import (
	"context"
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"chaibuddies/internal/dispatcher"
)

// Store keeps one row per completion call. Only metadata is stored;
// prompts and replies never reach the database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

type Entry struct {
	ID          int64     `json:"id"`
	PersonaID   string    `json:"persona_id"`
	Group       bool      `json:"group"`
	Temperature float64   `json:"temperature"`
	Tone        string    `json:"tone"`
	PromptChars int       `json:"prompt_chars"`
	ReplyChars  int       `json:"reply_chars"`
	LatencyMs   int64     `json:"latency_ms"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type PersonaStats struct {
	PersonaID    string  `json:"persona_id"`
	Calls        int     `json:"calls"`
	Failures     int     `json:"failures"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// Open creates the database file and its directory if needed
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// DefaultPath places the log under the data directory
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, "calls.db")
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS calls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		persona_id TEXT NOT NULL,
		grouped INTEGER NOT NULL DEFAULT 0,
		temperature REAL NOT NULL,
		tone TEXT NOT NULL,
		prompt_chars INTEGER NOT NULL,
		reply_chars INTEGER NOT NULL,
		latency_ms INTEGER NOT NULL,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_calls_persona ON calls(persona_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record implements dispatcher.Recorder. Write failures are logged and
// never reach the chat.
func (s *Store) Record(ctx context.Context, c dispatcher.Call) {
	if err := s.Insert(ctx, c); err != nil {
		log.Printf("calllog: record %s: %v", c.PersonaID, err)
	}
}

// Insert stores a call and reports any database error
func (s *Store) Insert(ctx context.Context, c dispatcher.Call) error {
	var errText sql.NullString
	if c.Err != nil {
		errText = sql.NullString{String: c.Err.Error(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calls (persona_id, grouped, temperature, tone, prompt_chars, reply_chars, latency_ms, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.PersonaID, c.Group, c.Temperature, string(c.Tone), c.PromptChars, c.ReplyChars,
		c.Latency.Milliseconds(), errText, s.now().UTC(),
	)
	return err
}

// Recent returns the newest calls first
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, persona_id, grouped, temperature, tone, prompt_chars, reply_chars, latency_ms, error, created_at
		 FROM calls ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var errText sql.NullString
		if err := rows.Scan(&e.ID, &e.PersonaID, &e.Group, &e.Temperature, &e.Tone,
			&e.PromptChars, &e.ReplyChars, &e.LatencyMs, &errText, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Error = errText.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats aggregates calls per persona
func (s *Store) Stats(ctx context.Context) ([]PersonaStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT persona_id, COUNT(*), COUNT(error), AVG(latency_ms)
		 FROM calls GROUP BY persona_id ORDER BY persona_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []PersonaStats
	for rows.Next() {
		var ps PersonaStats
		if err := rows.Scan(&ps.PersonaID, &ps.Calls, &ps.Failures, &ps.AvgLatencyMs); err != nil {
			return nil, err
		}
		stats = append(stats, ps)
	}
	return stats, rows.Err()
}
