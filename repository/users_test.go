package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"usuarios-service/database/databasetest"
	"usuarios-service/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(name, email string) *models.User {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.User{
		Name:      name,
		Email:     email,
		Password:  "hash",
		Photo:     "-",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(databasetest.New(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, newUser("Maria Bairro", "mariadobairro@email.com"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Bairro", byID.Name)
	assert.Equal(t, "mariadobairro@email.com", byID.Email)
	assert.Equal(t, "hash", byID.Password)
	assert.Equal(t, "-", byID.Photo)
	assert.True(t, created.CreatedAt.Equal(byID.CreatedAt))

	byEmail, err := repo.FindByEmail(ctx, "mariadobairro@email.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	repo := NewUserRepository(databasetest.New(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, newUser("Amanda Tsai", "amanda@email.com.br"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newUser("Amanda Tsai", "amanda@email.com.br"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUserRepository_FindMissing(t *testing.T) {
	repo := NewUserRepository(databasetest.New(t))
	ctx := context.Background()

	_, err := repo.FindByID(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindByEmail(ctx, "nobody@email.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_Update(t *testing.T) {
	repo := NewUserRepository(databasetest.New(t))
	ctx := context.Background()

	u, err := repo.Create(ctx, newUser("Kendal Katherine", "kendal@email.com.br"))
	require.NoError(t, err)

	u.Name = "Kendal Katherine Correia"
	u.Email = "kendalk@email.com.br"
	u.Password = "new-hash"
	u.Photo = ""
	u.UpdatedAt = u.UpdatedAt.Add(time.Minute)
	_, err = repo.Update(ctx, u)
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kendal Katherine Correia", got.Name)
	assert.Equal(t, "kendalk@email.com.br", got.Email)
	assert.Equal(t, "new-hash", got.Password)
	assert.Empty(t, got.Photo)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	repo := NewUserRepository(databasetest.New(t))

	u := newUser("Ghost", "ghost@email.com")
	u.ID = 99
	_, err := repo.Update(context.Background(), u)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_UpdateToTakenEmail(t *testing.T) {
	repo := NewUserRepository(databasetest.New(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, newUser("Sobrana Silva", "sobrana@email.com"))
	require.NoError(t, err)
	cali, err := repo.Create(ctx, newUser("Cali Minog", "minog@email.com"))
	require.NoError(t, err)

	cali.Email = "sobrana@email.com"
	_, err = repo.Update(ctx, cali)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepository_FindAllAndDeleteAll(t *testing.T) {
	repo := NewUserRepository(databasetest.New(t))
	ctx := context.Background()

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	_, err = repo.Create(ctx, newUser("Sobrana Silva", "sobrana@email.com"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newUser("Cali Minog", "minog@email.com"))
	require.NoError(t, err)

	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Sobrana Silva", all[0].Name)
	assert.Equal(t, "Cali Minog", all[1].Name)

	require.NoError(t, repo.DeleteAll(ctx))
	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func newRepoWithMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestUserRepository_Create_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(errors.New("disk I/O error"))

	_, err := repo.Create(context.Background(), newUser("Maria", "maria@email.com"))
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*disk I/O error`), err.Error())
	assert.NotErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_UniqueViolationFromDriver(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique})

	_, err := repo.Create(context.Background(), newUser("Maria", "maria@email.com"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindAll_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+.*\s+FROM\s+users\s+ORDER\s+BY\s+id$`).
		WillReturnError(errors.New("db down"))

	_, err := repo.FindAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID_Scan(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "name", "email", "password", "photo", "created_at", "updated_at"}).
		AddRow(int64(7), "Mimi Sujiro", "msujiro@email.com", "hash", "-", now, now)
	mock.ExpectQuery(`(?s)^SELECT\s+.*\s+FROM\s+users\s+WHERE\s+id\s*=\s*\?$`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	got, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "Mimi Sujiro", got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET`).
		WillReturnError(errors.New("locked"))

	u := newUser("Maria", "maria@email.com")
	u.ID = 1
	_, err := repo.Update(context.Background(), u)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
