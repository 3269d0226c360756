package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/miumc/portal/internal/store"
)

type SQLiteStore struct {
	store.BaseStore
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// sqlite handles one writer at a time, and an in-memory database
	// exists per connection.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			return query
		},
		IsConflict: func(err error) bool {
			var sqliteErr sqlite3.Error
			return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
		},
	}}

	return s, nil
}

func (s *SQLiteStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, translateToSQLite)
}

func (s *SQLiteStore) HasClassroomTables() (bool, error) {
	var count int
	err := s.DB.Get(&count, `
		SELECT COUNT(*)
		FROM sqlite_master
		WHERE type = 'table'
		AND name IN ('class_materials', 'evaluations', 'student_submissions')
	`)
	if err != nil {
		return false, fmt.Errorf("failed to probe classroom tables: %w", err)
	}
	return count == 3, nil
}

// translateToSQLite converts Postgres SQL to SQLite dialect
func translateToSQLite(sql string) string {
	replacements := map[string]string{
		"BIGSERIAL PRIMARY KEY": "INTEGER PRIMARY KEY AUTOINCREMENT",
		"BIGINT":                "INTEGER",
		"VARCHAR(16)":           "TEXT",
		"VARCHAR(8)":            "TEXT",
	}
	result := sql
	for from, to := range replacements {
		result = strings.ReplaceAll(result, from, to)
	}
	return result
}
