package database

import (
	"database/sql"
	"errors"
	"fmt"

	"dayplan/pkg/utils"
)

// KV is the persistent key/value store the session layer writes to.
type KV struct {
	db *sql.DB
}

// Open connects to dbPath and makes sure the schema exists.
func Open(dbPath string) (*KV, error) {
	db, err := ConnectDB(dbPath)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &KV{db: db}, nil
}

// Get returns the value stored under key and whether it was present.
func (s *KV) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *KV) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err == nil {
		utils.Log("stored key", "key", key)
	}
	return err
}

// Delete removes the given keys in one transaction.
func (s *KV) Delete(keys ...string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if _, err := tx.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	utils.Log("deleted keys", "keys", keys)
	return nil
}

// Keys lists every stored key.
func (s *KV) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM kv ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close closes the underlying connection.
func (s *KV) Close() error {
	return s.db.Close()
}
