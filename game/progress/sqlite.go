package progress

import (
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite"
)

const progressSchema = `
CREATE TABLE IF NOT EXISTS progress (
	player_key TEXT NOT NULL,
	level_id   INTEGER NOT NULL,
	solved     INTEGER NOT NULL DEFAULT 1,
	PRIMARY KEY (player_key, level_id)
);`

// SQLiteDB owns the shared progress database and acts as the Factory
// for per-player stores. All players share one file, one row per
// (player, level).
type SQLiteDB struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the progress database at path.
// The DSN enables WAL and a busy timeout so concurrent sessions do not
// trip over each other's writes.
func OpenSQLite(path string) (*SQLiteDB, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open progress database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping progress database: %w", err)
	}
	if _, err := db.Exec(progressSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create progress schema: %w", err)
	}
	return &SQLiteDB{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// StoreFor returns the store for one player key.
func (s *SQLiteDB) StoreFor(key string) (Store, error) {
	if key == "" {
		return nil, fmt.Errorf("player key is required")
	}
	return &sqliteStore{db: s.db, key: key}, nil
}

type sqliteStore struct {
	db  *sql.DB
	key string
}

// Load reads the player's solved rows. Query failures yield an empty
// state rather than an error.
func (s *sqliteStore) Load() State {
	rows, err := s.db.Query(
		`SELECT level_id, solved FROM progress WHERE player_key = ?`, s.key)
	if err != nil {
		log.Printf("Warning: failed to load progress for %s: %v", s.key, err)
		return State{}
	}
	defer rows.Close()

	state := State{}
	for rows.Next() {
		var id, solved int
		if err := rows.Scan(&id, &solved); err != nil {
			log.Printf("Warning: failed to scan progress row for %s: %v", s.key, err)
			return State{}
		}
		state[id] = solved != 0
	}
	if err := rows.Err(); err != nil {
		log.Printf("Warning: failed to read progress rows for %s: %v", s.key, err)
		return State{}
	}
	return state
}

// Save replaces the player's rows with the given mapping in one
// transaction.
func (s *sqliteStore) Save(state State) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin progress save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM progress WHERE player_key = ?`, s.key); err != nil {
		return fmt.Errorf("failed to clear previous progress: %w", err)
	}
	for id, solved := range state {
		v := 0
		if solved {
			v = 1
		}
		if _, err := tx.Exec(
			`INSERT INTO progress (player_key, level_id, solved) VALUES (?, ?, ?)`,
			s.key, id, v); err != nil {
			return fmt.Errorf("failed to insert progress row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit progress save: %w", err)
	}
	return nil
}

// Reset deletes all rows for the player.
func (s *sqliteStore) Reset() error {
	if _, err := s.db.Exec(`DELETE FROM progress WHERE player_key = ?`, s.key); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	return nil
}
