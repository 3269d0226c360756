package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/miumc/portal/internal/store"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			out := query
			for i := 1; strings.Contains(out, "?"); i++ {
				out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
			}
			return out
		},
		IsConflict: func(err error) bool {
			var pqErr *pq.Error
			return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
		},
	}}

	return s, nil
}

func (s *PostgresStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, nil)
}

func (s *PostgresStore) HasClassroomTables() (bool, error) {
	var count int
	err := s.DB.Get(&count, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_name IN ('class_materials', 'evaluations', 'student_submissions')
	`)
	if err != nil {
		return false, fmt.Errorf("failed to probe classroom tables: %w", err)
	}
	return count == 3, nil
}
