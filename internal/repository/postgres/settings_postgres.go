package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"smartstudy/internal/model"
	"smartstudy/internal/repository"
)

// settingsID is the fixed key of the singleton row; the table's CHECK constraint rejects any other.
const settingsID = 1

// SettingsPostgres is a PostgreSQL implementation of repository.SettingsRepository.
type SettingsPostgres struct {
	db *sqlx.DB
}

func NewSettingsPostgres(db *sqlx.DB) *SettingsPostgres {
	return &SettingsPostgres{db: db}
}

var _ repository.SettingsRepository = (*SettingsPostgres)(nil)

type settingsRow struct {
	SiteName          string    `db:"site_name"`
	SupportEmail      string    `db:"support_email"`
	MaintenanceMode   bool      `db:"maintenance_mode"`
	AllowRegistration bool      `db:"allow_registration"`
	Modules           []byte    `db:"modules"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (r settingsRow) toModel() (model.Settings, error) {
	s := model.Settings{
		SiteName:          r.SiteName,
		SupportEmail:      r.SupportEmail,
		MaintenanceMode:   r.MaintenanceMode,
		AllowRegistration: r.AllowRegistration,
		Modules:           map[string]bool{},
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if len(r.Modules) > 0 {
		if err := json.Unmarshal(r.Modules, &s.Modules); err != nil {
			return model.Settings{}, fmt.Errorf("decode settings modules: %w", err)
		}
	}
	return s, nil
}

// GetOrCreate reads the singleton and only writes when it is missing. The insert relies on
// the fixed primary key so concurrent first callers converge on one row.
func (r *SettingsPostgres) GetOrCreate(ctx context.Context, defaults model.Settings) (*model.Settings, error) {
	s, err := r.get(ctx)
	if !errors.Is(err, repository.ErrNotFound) {
		return s, err
	}

	modules, err := json.Marshal(defaults.Modules)
	if err != nil {
		return nil, fmt.Errorf("encode settings modules: %w", err)
	}
	const insert = `
		INSERT INTO system_settings (id, site_name, support_email, maintenance_mode, allow_registration, modules, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, insert,
		settingsID, defaults.SiteName, defaults.SupportEmail, defaults.MaintenanceMode, defaults.AllowRegistration, string(modules),
	); err != nil {
		return nil, mapError(err)
	}
	return r.get(ctx)
}

func (r *SettingsPostgres) get(ctx context.Context) (*model.Settings, error) {
	const q = `
		SELECT site_name, support_email, maintenance_mode, allow_registration, modules, created_at, updated_at
		FROM system_settings
		WHERE id = $1
	`
	var row settingsRow
	if err := r.db.GetContext(ctx, &row, q, settingsID); err != nil {
		return nil, mapError(err)
	}
	s, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SettingsPostgres) Save(ctx context.Context, s *model.Settings) error {
	modules, err := json.Marshal(s.Modules)
	if err != nil {
		return fmt.Errorf("encode settings modules: %w", err)
	}
	const q = `
		UPDATE system_settings
		SET site_name = $2, support_email = $3, maintenance_mode = $4, allow_registration = $5, modules = $6, updated_at = $7
		WHERE id = $1
	`
	return expectOneRow(r.db.ExecContext(ctx, q,
		settingsID, s.SiteName, s.SupportEmail, s.MaintenanceMode, s.AllowRegistration, string(modules), s.UpdatedAt,
	))
}
