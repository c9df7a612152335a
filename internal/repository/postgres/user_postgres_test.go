package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"smartstudy/internal/model"
	"smartstudy/internal/repository"
)

var userCols = []string{"id", "username", "email", "password_hash", "role", "created_at", "updated_at"}

func TestUserPostgres_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	u := &model.User{
		ID:           "u-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: []byte("hash"),
		Role:         model.RoleStudent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WithArgs(u.ID, u.Username, u.Email, u.PasswordHash, "student", now, now).
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow(u.ID, u.Username, u.Email, u.PasswordHash, "student", now, now))

		got, err := repo.Create(ctx, u)

		assert.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, model.RoleStudent, got.Role)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505", TableName: "users", ConstraintName: "users_email_key"})

		got, err := repo.Create(ctx, u)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ").
			WithArgs("alice@example.com").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("u-1", "alice", "alice@example.com", []byte("hash"), "admin", time.Now(), time.Now()))

		u, err := repo.FindByEmail(ctx, "alice@example.com")

		assert.NoError(t, err)
		assert.True(t, u.IsAdmin())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ").
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		u, err := repo.FindByEmail(ctx, "nobody@example.com")

		assert.Nil(t, u)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserPostgres(db)

	t.Run("empty", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users ORDER BY created_at DESC").
			WillReturnRows(sqlmock.NewRows(userCols))

		users, err := repo.List(context.Background())

		assert.NoError(t, err)
		assert.NotNil(t, users)
		assert.Len(t, users, 0)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_UpdateDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserPostgres(db)
	ctx := context.Background()

	u := &model.User{ID: "u-1", Username: "bob", Email: "bob@example.com", PasswordHash: []byte("hash"), Role: model.RoleAdmin, UpdatedAt: time.Now()}

	mock.ExpectExec("UPDATE users").
		WithArgs(u.ID, u.Username, u.Email, u.PasswordHash, "admin", u.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Update(ctx, u))

	mock.ExpectExec("DELETE FROM users WHERE id = ").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
