package colormap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const createPackTable = `CREATE TABLE IF NOT EXISTS color_pack (
	name       TEXT PRIMARY KEY,
	definition TEXT NOT NULL
)`

// Definition is one stored colour pack in the JSON pack format.
type Definition struct {
	Name string
	JSON []byte
}

// Store persists colour pack definitions in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// OpenStore opens (creating when needed) a SQLite colour pack store.
func OpenStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(createPackTable); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create color_pack table: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save inserts or replaces the definition stored under name.
func (s *Store) Save(ctx context.Context, name string, definition []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return errors.New("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("pack name is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO color_pack (name, definition) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET definition = excluded.definition`,
		name, string(definition))
	if err != nil {
		return fmt.Errorf("save color pack %s: %w", name, err)
	}
	return nil
}

// Definitions lists the stored packs in the order they were first saved.
func (s *Store) Definitions(ctx context.Context) ([]Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, errors.New("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT name, definition FROM color_pack ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list color packs: %w", err)
	}
	defer rows.Close()

	definitions := make([]Definition, 0)
	for rows.Next() {
		var name, definition string
		if err := rows.Scan(&name, &definition); err != nil {
			return nil, fmt.Errorf("scan color pack: %w", err)
		}
		definitions = append(definitions, Definition{Name: name, JSON: []byte(definition)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate color packs: %w", err)
	}
	return definitions, nil
}
