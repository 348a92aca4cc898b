package todos

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

var columns = []string{"id", "owner_id", "text", "completed", "completed_at", "created_at"}

const (
	qInsert  = `(?s)INSERT\s+INTO\s+todos\s*\(id,\s*owner_id,\s*text,\s*completed,\s*completed_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING`
	qByID    = `(?s)SELECT\s+.+\s+FROM\s+todos\s+WHERE\s+id\s*=\s*\$1`
	qByOwner = `(?s)SELECT\s+.+\s+FROM\s+todos\s+WHERE\s+owner_id\s*=\s*\$1\s+ORDER\s+BY`
	qAll     = `(?s)SELECT\s+.+\s+FROM\s+todos\s+ORDER\s+BY`
	qUpdate  = `(?s)UPDATE\s+todos\s+SET\s+text\s*=\s*\$3,\s*completed\s*=\s*\$4,\s*completed_at\s*=\s*\$5\s+WHERE\s+id\s*=\s*\$1\s+AND\s+owner_id\s*=\s*\$2\s+RETURNING`
	qDelete  = `(?s)DELETE\s+FROM\s+todos\s+WHERE\s+id\s*=\s*\$1\s+AND\s+owner_id\s*=\s*\$2\s+RETURNING`
)

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(qInsert).
		WithArgs("t1", "u1", "walk the dog", false, nil).
		WillReturnRows(sqlmock.NewRows(columns).AddRow("t1", "u1", "walk the dog", false, nil, now))

	got, err := repo.Create(context.Background(), &models.Todo{ID: "t1", OwnerID: "u1", Text: "walk the dog"})
	require.NoError(t, err)
	assert.Equal(t, "u1", got.OwnerID)
	assert.Nil(t, got.CompletedAt)
	assert.True(t, got.CreatedAt.Equal(now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	done := time.Now()
	mock.ExpectQuery(qByID).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow("t1", "u1", "x", true, done, done))

	got, err := repo.GetByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(done))
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qByID).WithArgs("t1").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "t1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qByID).WithArgs("t1").WillReturnError(errors.New("boom"))

	_, err := repo.GetByID(context.Background(), "t1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
	assert.Contains(t, err.Error(), "db error")
}

func TestListByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(qByOwner).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("t1", "u1", "a", false, nil, now).
			AddRow("t2", "u1", "b", false, nil, now))

	got, err := repo.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "t2", got[1].ID)
}

func TestListByOwner_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qByOwner).WithArgs("u1").WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListAll(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(qAll).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("t1", "u1", "a", false, nil, now).
			AddRow("t2", "u2", "b", false, nil, now))

	got, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u2", got[1].OwnerID)
}

func TestListAll_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qAll).
		WillReturnRows(sqlmock.NewRows(columns).AddRow("t1", "u1", "a", "not-a-bool", nil, time.Now()))

	_, err := repo.ListAll(context.Background())
	assert.Error(t, err)
}

func TestUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	done := time.Now()
	mock.ExpectQuery(qUpdate).
		WithArgs("t1", "u1", "new", true, done).
		WillReturnRows(sqlmock.NewRows(columns).AddRow("t1", "u1", "new", true, done, done))

	got, err := repo.Update(context.Background(), &models.Todo{ID: "t1", OwnerID: "u1", Text: "new", Completed: true, CompletedAt: &done})
	require.NoError(t, err)
	assert.Equal(t, "new", got.Text)
	assert.True(t, got.Completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_WrongOwnerIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qUpdate).
		WithArgs("t1", "u2", "x", false, nil).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.Update(context.Background(), &models.Todo{ID: "t1", OwnerID: "u2", Text: "x"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(qDelete).
		WithArgs("t1", "u1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow("t1", "u1", "a", false, nil, now))
	mock.ExpectQuery(qDelete).
		WithArgs("t1", "u1").
		WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.Delete(context.Background(), "t1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)

	_, err = repo.Delete(context.Background(), "t1", "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
