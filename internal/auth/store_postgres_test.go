package auth

import (
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS portal_session").WillReturnResult(sqlmock.NewResult(0, 0))
	store, err := NewPostgresStore(db)
	if err != nil {
		t.Fatalf("NewPostgresStore() error: %v", err)
	}
	return store, mock, db
}

func TestNewPostgresStoreRequiresDB(t *testing.T) {
	if _, err := NewPostgresStore(nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}

func TestPostgresStoreLoad(t *testing.T) {
	store, mock, db := newMockStore(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"key", "value"}).
		AddRow("token", "T1").
		AddRow("user", `{"id":1}`)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT key, value FROM portal_session WHERE key IN ($1, $2)")).
		WithArgs("token", "user").
		WillReturnRows(rows)

	rec, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if rec.Token != "T1" || rec.User != `{"id":1}` {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestPostgresStoreLoadEmpty(t *testing.T) {
	store, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectQuery("SELECT key, value FROM portal_session").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}))

	rec, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !rec.Empty() {
		t.Fatalf("expected empty record, got %+v", rec)
	}
}

func TestPostgresStoreSaveWritesBothEntries(t *testing.T) {
	store, mock, db := newMockStore(t)
	defer db.Close()

	insert := regexp.QuoteMeta("INSERT INTO portal_session (key, value) VALUES ($1, $2)")
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM portal_session").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(insert).WithArgs("token", "T1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insert).WithArgs("user", `{"id":1}`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := store.Save(Record{Token: "T1", User: `{"id":1}`}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestPostgresStoreSaveRollsBackOnFailure(t *testing.T) {
	store, mock, db := newMockStore(t)
	defer db.Close()

	insert := regexp.QuoteMeta("INSERT INTO portal_session (key, value) VALUES ($1, $2)")
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM portal_session").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(insert).WithArgs("token", "T1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insert).WithArgs("user", "{}").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	if err := store.Save(Record{Token: "T1", User: "{}"}); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestPostgresStoreClear(t *testing.T) {
	store, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM portal_session").WillReturnResult(sqlmock.NewResult(0, 2))
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
