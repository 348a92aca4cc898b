package sessions

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	qInsert        = `(?s)^\s*INSERT\s+INTO\s+user_tokens\s*\(user_id,\s*access,\s*token,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*$`
	qDelete        = `(?s)DELETE\s+FROM\s+user_tokens\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+token\s*=\s*\$2`
	qDeleteExpired = `(?s)DELETE\s+FROM\s+user_tokens\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+expires_at\s+IS\s+NOT\s+NULL\s+AND\s+expires_at\s*<\s*\$2`
	qList          = `(?s)SELECT\s+access,\s*token,\s*expires_at,\s*created_at\s+FROM\s+user_tokens\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+id`
)

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Now().Add(time.Hour)
	mock.ExpectExec(qInsert).
		WithArgs("u1", common.AuthAccess, "tok123", sql.NullTime{Time: exp, Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), "u1", models.SessionToken{Access: common.AuthAccess, Token: "tok123", ExpiresAt: &exp})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_NoExpiry(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qInsert).
		WithArgs("u1", common.AuthAccess, "tok123", sql.NullTime{}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), "u1", models.SessionToken{Access: common.AuthAccess, Token: "tok123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qInsert).WillReturnError(errors.New("boom"))

	err := repo.Create(context.Background(), "u1", models.SessionToken{Access: common.AuthAccess, Token: "tok123"})
	if err == nil || !regexp.MustCompile(`db error: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qDelete).
		WithArgs("u1", "tok123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qDelete).
		WithArgs("u1", "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "u1", "tok123"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := repo.Delete(context.Background(), "u1", "gone"); err != nil {
		t.Fatalf("Delete of missing token must not fail, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDelete_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qDelete).WillReturnError(errors.New("conn lost"))

	err := repo.Delete(context.Background(), "u1", "tok123")
	if err == nil || !regexp.MustCompile(`db error: .*conn lost`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDeleteExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(qDeleteExpired).
		WithArgs("u1", now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.DeleteExpired(context.Background(), "u1", now); err != nil {
		t.Fatalf("DeleteExpired error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	exp := now.Add(time.Hour)
	mock.ExpectQuery(qList).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"access", "token", "expires_at", "created_at"}).
			AddRow(common.AuthAccess, "t1", nil, now).
			AddRow(common.AuthAccess, "t2", exp, now))

	got, err := repo.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 tokens, got %d", len(got))
	}
	if got[0].Token != "t1" || got[0].ExpiresAt != nil {
		t.Fatalf("unexpected first token: %+v", got[0])
	}
	if got[1].Token != "t2" || got[1].ExpiresAt == nil || !got[1].ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected second token: %+v", got[1])
	}
}

func TestList_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qList).WillReturnError(errors.New("boom"))

	if _, err := repo.List(context.Background(), "u1"); err == nil {
		t.Fatal("expected error")
	}
}
