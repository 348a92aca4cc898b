package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

var (
	_ RepositoryManager = (*PostgresRepositoryManager)(nil)
	_ RepositoryManager = (*InMemoryRepositoryManager)(nil)
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManagerFromDB(db)

	if u := m.Users(); u == nil {
		t.Fatal("Users() nil")
	}
	if s := m.Sessions(); s == nil {
		t.Fatal("Sessions() nil")
	}
	if td := m.Todos(); td == nil {
		t.Fatal("Todos() nil")
	}
}

func TestInTx_CommitsOnSuccess(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM user_tokens").
		WithArgs("u1", "tok").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	m := NewPostgresRepositoryManagerFromDB(db)
	err := m.InTx(context.Background(), func(ctx context.Context, tx RepositoryManager) error {
		return tx.Sessions().Delete(ctx, "u1", "tok")
	})
	if err != nil {
		t.Fatalf("InTx error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestInTx_RollsBackOnError(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	m := NewPostgresRepositoryManagerFromDB(db)
	boom := errors.New("boom")
	err := m.InTx(context.Background(), func(ctx context.Context, tx RepositoryManager) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestInTx_NestedJoinsOuter(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	m := NewPostgresRepositoryManagerFromDB(db)
	err := m.InTx(context.Background(), func(ctx context.Context, tx RepositoryManager) error {
		return tx.InTx(ctx, func(context.Context, RepositoryManager) error { return nil })
	})
	if err != nil {
		t.Fatalf("InTx error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := NewPostgresRepositoryManagerFromDB(db)
	if err := m.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := NewPostgresRepositoryManagerFromDB(db)
	if err := m.RunMigrations(context.Background()); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestInMemory_InTxSharesState(t *testing.T) {
	m := NewInMemoryRepositoryManager()
	ctx := context.Background()

	err := m.InTx(ctx, func(ctx context.Context, tx RepositoryManager) error {
		_, err := tx.Users().Create(ctx, &models.User{ID: "u1", Email: "a@x.com"})
		return err
	})
	if err != nil {
		t.Fatalf("InTx error: %v", err)
	}
	if _, err := m.Users().GetByID(ctx, "u1"); err != nil {
		t.Fatalf("user created in tx not visible: %v", err)
	}
	if err := m.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
}
