package ledger

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a durable Ledger backed by a single SQLite file. Writes go
// through INSERT OR IGNORE, so Record stays idempotent across restarts.
type SQLite struct {
	conn *sql.DB
}

// NewSQLite opens or creates the ledger database at the given path
func NewSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	// SQLite allows a single writer; serialize through one connection
	// rather than surfacing SQLITE_BUSY to listeners.
	conn.SetMaxOpenConns(1)
	// Enable WAL mode for better concurrency.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	l := &SQLite{conn: conn}
	if err := l.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return l, nil
}

func (l *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS seen_items (
		account_id TEXT NOT NULL,
		item_id    TEXT NOT NULL,
		first_seen DATETIME NOT NULL,
		PRIMARY KEY (account_id, item_id)
	);`
	_, err := l.conn.Exec(schema)
	return err
}

// Has reports whether the pair is recorded
func (l *SQLite) Has(accountID, itemID string) (bool, error) {
	var one int
	err := l.conn.QueryRow(
		"SELECT 1 FROM seen_items WHERE account_id = ? AND item_id = ?",
		accountID, itemID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query seen item: %w", err)
	}
	return true, nil
}

// Record marks the pair as seen; idempotent
func (l *SQLite) Record(accountID, itemID string, seenAt time.Time) error {
	_, err := l.conn.Exec(
		"INSERT OR IGNORE INTO seen_items (account_id, item_id, first_seen) VALUES (?, ?, ?)",
		accountID, itemID, seenAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record seen item: %w", err)
	}
	return nil
}

// Count returns the number of items recorded for the account
func (l *SQLite) Count(accountID string) (int, error) {
	var n int
	err := l.conn.QueryRow(
		"SELECT COUNT(*) FROM seen_items WHERE account_id = ?", accountID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count seen items: %w", err)
	}
	return n, nil
}

// Clear forgets every item recorded for the account
func (l *SQLite) Clear(accountID string) error {
	_, err := l.conn.Exec("DELETE FROM seen_items WHERE account_id = ?", accountID)
	if err != nil {
		return fmt.Errorf("clear seen items: %w", err)
	}
	return nil
}

// Close closes the database connection
func (l *SQLite) Close() error {
	return l.conn.Close()
}
