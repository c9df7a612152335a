package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartstudy/internal/model"
	"smartstudy/internal/repository"
)

var settingsCols = []string{"site_name", "support_email", "maintenance_mode", "allow_registration", "modules", "created_at", "updated_at"}

func TestSettingsPostgres_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	selectQ := "SELECT (.+) FROM system_settings WHERE id = "
	insertQ := "INSERT INTO system_settings (.+) ON CONFLICT \\(id\\) DO NOTHING"

	t.Run("existing row is read without writing", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSettingsPostgres(db)

		mock.ExpectQuery(selectQ).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(settingsCols).
				AddRow("SmartStudy", "support@smartstudy.com", true, false, `{"predictor":false,"notes":true}`, now, now))

		s, err := repo.GetOrCreate(ctx, model.DefaultSettings())

		require.NoError(t, err)
		assert.True(t, s.MaintenanceMode, "stored row wins over defaults")
		assert.False(t, s.AllowRegistration)
		assert.False(t, s.ModuleEnabled(model.ModulePredictor))
		assert.True(t, s.ModuleEnabled(model.ModuleNotes))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is inserted then read back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSettingsPostgres(db)
		defaults := model.DefaultSettings()

		mock.ExpectQuery(selectQ).WithArgs(1).WillReturnError(sql.ErrNoRows)
		mock.ExpectExec(insertQ).
			WithArgs(1, defaults.SiteName, defaults.SupportEmail, false, true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(selectQ).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(settingsCols).
				AddRow(defaults.SiteName, defaults.SupportEmail, false, true, `{"notes":true}`, now, now))

		s, err := repo.GetOrCreate(ctx, defaults)

		require.NoError(t, err)
		assert.Equal(t, defaults.SiteName, s.SiteName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("read failure is not masked by an insert", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSettingsPostgres(db)

		mock.ExpectQuery(selectQ).WithArgs(1).WillReturnError(errors.New("conn reset"))

		_, err := repo.GetOrCreate(ctx, model.DefaultSettings())

		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSettingsPostgres_Save(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingsPostgres(db)

	s := model.DefaultSettings()
	s.Modules = map[string]bool{model.ModulePredictor: false}
	s.UpdatedAt = time.Now()

	mock.ExpectExec("UPDATE system_settings").
		WithArgs(1, s.SiteName, s.SupportEmail, false, true, `{"predictor":false}`, s.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Save(context.Background(), &s))

	mock.ExpectExec("UPDATE system_settings").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Save(context.Background(), &s), repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
