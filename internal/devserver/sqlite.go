package devserver

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/nibzard/retrotodo/internal/todo"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS todos (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	text TEXT    NOT NULL
);`

// SQLiteStore keeps tasks in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) List(ctx context.Context) (todo.List, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, text FROM todos ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := todo.List{}
	for rows.Next() {
		var id int64
		var t todo.Task
		if err := rows.Scan(&id, &t.Text); err != nil {
			return nil, err
		}
		t.ID = strconv.FormatInt(id, 10)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) Create(ctx context.Context, text string) (todo.Task, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO todos (text) VALUES (?)`, text)
	if err != nil {
		return todo.Task{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return todo.Task{}, err
	}
	return todo.Task{ID: strconv.FormatInt(id, 10), Text: text}, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, n)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
