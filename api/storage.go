package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

var (
	errNotFound = errors.New("not found")
	errConflict = errors.New("already exists")
)

const queryTimeout = 5 * time.Second

func openDB(cfg config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.db.maxOpenConnections)
	db.SetMaxIdleConns(cfg.db.maxIdleConnections)
	db.SetConnMaxIdleTime(cfg.db.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		return nil, err
	}

	return db, nil
}

type storage struct {
	db *sql.DB
}

func newStorage(db *sql.DB) *storage {
	return &storage{
		db: db,
	}
}

// insertUser persists a new user. A username collision surfaces as
// errConflict; the unique constraint guarantees no partial write.
func (s *storage) insertUser(u *user) error {
	query := `INSERT INTO users (username, password_hash)
			  VALUES ($1, $2)
			  RETURNING id, created_at`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, query, u.Username, u.PasswordHash)
	err := row.Scan(&u.ID, &u.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return errConflict
	}
	return err
}

func (s *storage) getUserByUsername(username string) (*user, error) {
	query := `SELECT id, created_at, username, password_hash
			  FROM users
			  WHERE username = $1`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, username)
	var u user
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Username, &u.PasswordHash)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *storage) getTasks(userID int) ([]task, error) {
	query := `SELECT id, title, description, completed, created_at, updated_at, user_id
			  FROM tasks
			  WHERE user_id = $1
			  ORDER BY id`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []task{}
	for rows.Next() {
		var t task
		err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt, &t.UserID)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// getTask filters by both id and owner so a task owned by someone else is
// indistinguishable from one that does not exist.
func (s *storage) getTask(userID, taskID int) (*task, error) {
	query := `SELECT id, title, description, completed, created_at, updated_at, user_id
			  FROM tasks
			  WHERE id = $1 AND user_id = $2`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, taskID, userID)
	var t task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt, &t.UserID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, errNotFound
		default:
			return nil, err
		}
	}
	return &t, nil
}

func (s *storage) insertTask(t *task) error {
	query := `INSERT INTO tasks (title, description, user_id)
			  VALUES ($1, $2, $3)
			  RETURNING id, completed, created_at, updated_at`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, query, t.Title, t.Description, t.UserID)
	return row.Scan(&t.ID, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
}

func (s *storage) updateTask(t *task) error {
	query := `UPDATE tasks SET title = $1, description = $2, completed = $3, updated_at = now()
			  WHERE id = $4 AND user_id = $5
			  RETURNING updated_at`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, query, t.Title, t.Description, t.Completed, t.ID, t.UserID)
	err := row.Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return errNotFound
	}
	return err
}

func (s *storage) deleteTask(userID, taskID int) error {
	query := `DELETE FROM tasks
			  WHERE id = $1 AND user_id = $2`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	result, err := s.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errNotFound
	}
	return nil
}
