package main

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func newStorageWithMock(t *testing.T) (*storage, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return newStorage(db), mock, db
}

func TestInsertUser_Success(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2\)\s*RETURNING\s+id,\s*created_at\s*$`
	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, time.Now())
	mock.ExpectQuery(q).
		WithArgs("alice", []byte("hash")).
		WillReturnRows(rows)

	u := &user{Username: "alice", PasswordHash: []byte("hash")}
	if err := s.insertUser(u); err != nil {
		t.Fatalf("insertUser error: %v", err)
	}
	if u.ID != 7 {
		t.Fatalf("expected id 7, got %d", u.ID)
	}
}

func TestInsertUser_DuplicateUsername(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("alice", []byte("hash")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := s.insertUser(&user{Username: "alice", PasswordHash: []byte("hash")})
	if !errors.Is(err, errConflict) {
		t.Fatalf("expected errConflict, got %v", err)
	}
}

func TestGetUserByUsername_Missing(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,\s*created_at,\s*username,\s*password_hash\s+FROM\s+users`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	u, err := s.getUserByUsername("ghost")
	if err != nil {
		t.Fatalf("getUserByUsername error: %v", err)
	}
	if u != nil {
		t.Fatalf("expected nil user, got %+v", u)
	}
}

func TestGetTask_ScopedByOwner(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	// the owner id is part of the WHERE clause, so someone else's task
	// produces no rows, the same as a task that does not exist
	mock.ExpectQuery(`SELECT\s+.*FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`).
		WithArgs(10, 2).
		WillReturnError(sql.ErrNoRows)

	_, err := s.getTask(2, 10)
	if !errors.Is(err, errNotFound) {
		t.Fatalf("expected errNotFound, got %v", err)
	}
}

func TestGetTask_Success(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "title", "description", "completed", "created_at", "updated_at", "user_id"}).
		AddRow(10, "T", nil, false, now, now, 1)
	mock.ExpectQuery(`SELECT\s+.*FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`).
		WithArgs(10, 1).
		WillReturnRows(rows)

	got, err := s.getTask(1, 10)
	if err != nil {
		t.Fatalf("getTask error: %v", err)
	}
	if got.Title != "T" || got.Description != nil || got.Completed {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestGetTasks_Empty(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "title", "description", "completed", "created_at", "updated_at", "user_id"})
	mock.ExpectQuery(`SELECT\s+.*FROM\s+tasks\s+WHERE\s+user_id\s*=\s*\$1`).
		WithArgs(1).
		WillReturnRows(rows)

	tasks, err := s.getTasks(1)
	if err != nil {
		t.Fatalf("getTasks error: %v", err)
	}
	if tasks == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(tasks))
	}
}

func TestUpdateTask_NotOwned(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE\s+tasks\s+SET\s+`).
		WithArgs("T", nil, true, 10, 2).
		WillReturnError(sql.ErrNoRows)

	err := s.updateTask(&task{ID: 10, Title: "T", Completed: true, UserID: 2})
	if !errors.Is(err, errNotFound) {
		t.Fatalf("expected errNotFound, got %v", err)
	}
}

func TestStorageDeleteTask_Success(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`).
		WithArgs(10, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.deleteTask(1, 10); err != nil {
		t.Fatalf("deleteTask error: %v", err)
	}
}

func TestDeleteTask_SecondDeleteNotFound(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+tasks`).
		WithArgs(10, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE\s+FROM\s+tasks`).
		WithArgs(10, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.deleteTask(1, 10); err != nil {
		t.Fatalf("first deleteTask error: %v", err)
	}
	err := s.deleteTask(1, 10)
	if !errors.Is(err, errNotFound) {
		t.Fatalf("expected errNotFound on second delete, got %v", err)
	}
}
