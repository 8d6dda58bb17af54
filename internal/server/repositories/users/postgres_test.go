package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var userCols = []string{"id", "username", "email", "full_name", "password_hash", "role", "employee_id",
	"is_active", "must_change_password", "password_changed_at", "last_login_at", "created_at"}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	q := `(?s)^INSERT\s+INTO\s+users\s*\(username,.*\)\s*VALUES\s*\(\$1,.*\$8\)\s*RETURNING\s+id,\s*password_changed_at,\s*created_at$`
	mock.ExpectQuery(q).
		WithArgs("jane", "jane@example.com", "Jane Doe", "hash", "hr_admin", nil, true, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_changed_at", "created_at"}).AddRow("u-1", now, now))

	u := &models.User{Username: "jane", Email: "jane@example.com", FullName: "Jane Doe", PasswordHash: "hash",
		Role: "hr_admin", IsActive: true, MustChangePassword: true}
	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, now, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.User{Username: "jane"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Username: "jane"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByLogin_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	q := `(?s)^SELECT\s+id,\s*username,.*FROM\s+users\s+WHERE\s+lower\(username\)\s*=\s*lower\(\$1\)\s+OR\s+lower\(email\)\s*=\s*lower\(\$1\)$`
	mock.ExpectQuery(q).WithArgs("Jane@Example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "jane", "jane@example.com", "Jane Doe", "hash", "employee", "e-1", true, false, now, now, now))

	u, err := repo.GetByLogin(context.Background(), "Jane@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "jane", u.Username)
	require.NotNil(t, u.EmployeeID)
	assert.Equal(t, "e-1", *u.EmployeeID)
	require.NotNil(t, u.LastLoginAt)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`).WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+users\s+ORDER\s+BY\s+username$`).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "a", "a@x", "", "h", "viewer", nil, true, false, now, nil, now).
			AddRow("u-2", "b", "b@x", "", "h", "viewer", nil, false, false, now, nil, now))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].EmployeeID)
	assert.Nil(t, got[0].LastLoginAt)
	assert.False(t, got[1].IsActive)
}

func TestCount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT count\(\*\) FROM users$`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestUpdatePassword(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2,\s*must_change_password\s*=\s*\$3,\s*password_changed_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectExec(q).WithArgs("u-1", "new", false).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("u-2", "new", false).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdatePassword(context.Background(), "u-1", "new", false))
	assert.ErrorIs(t, repo.UpdatePassword(context.Background(), "u-2", "new", false), common.ErrorNotFound)
}

func TestTouchLoginAndUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Now()
	mock.ExpectExec(`^UPDATE users SET last_login_at = \$2 WHERE id = \$1$`).WithArgs("u-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+email`).WillReturnError(&pgconn.PgError{Code: "23505"})

	require.NoError(t, repo.TouchLogin(context.Background(), "u-1", at))
	assert.ErrorIs(t, repo.Update(context.Background(), &models.User{ID: "u-1"}), common.ErrorAlreadyExists)
}
