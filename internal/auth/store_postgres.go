package auth

import (
	"database/sql"
	"fmt"
)

const (
	keyToken = "token"
	keyUser  = "user"
)

// PostgresStore keeps the two session entries as rows of a key/value table,
// for installs where several terminals share one account workspace.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	s := &PostgresStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema() error {
	const q = `
CREATE TABLE IF NOT EXISTS portal_session (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`
	if _, err := s.db.Exec(q); err != nil {
		return fmt.Errorf("ensure portal_session schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load() (Record, error) {
	rows, err := s.db.Query(`SELECT key, value FROM portal_session WHERE key IN ($1, $2)`, keyToken, keyUser)
	if err != nil {
		return Record{}, fmt.Errorf("query session: %w", err)
	}
	defer rows.Close()

	var rec Record
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Record{}, fmt.Errorf("scan session entry: %w", err)
		}
		switch key {
		case keyToken:
			rec.Token = value
		case keyUser:
			rec.User = value
		}
	}
	if err := rows.Err(); err != nil {
		return Record{}, fmt.Errorf("iterate session entries: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) Save(rec Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM portal_session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	const q = `INSERT INTO portal_session (key, value) VALUES ($1, $2)`
	if _, err := tx.Exec(q, keyToken, rec.Token); err != nil {
		return fmt.Errorf("insert session token: %w", err)
	}
	if _, err := tx.Exec(q, keyUser, rec.User); err != nil {
		return fmt.Errorf("insert session user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM portal_session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
