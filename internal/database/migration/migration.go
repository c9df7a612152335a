// Package migration creates the smartstudy schema on first start.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Sentinel is the relation whose presence marks the schema as migrated.
// It is created by the last step so a partially applied run is retried.
const Sentinel = "idx_materials_created_at"

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY,
  username      TEXT        NOT NULL,
  email         TEXT        NOT NULL,
  password_hash TEXT        NOT NULL,
  role          TEXT        NOT NULL DEFAULT 'student' CHECK (role IN ('student', 'admin')),
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT users_username_key UNIQUE (username),
  CONSTRAINT users_email_key UNIQUE (email)
);`,
	},
	{
		Name: "create_table_departments",
		SQL: `CREATE TABLE IF NOT EXISTS departments (
  id          UUID        PRIMARY KEY,
  name        TEXT        NOT NULL,
  description TEXT        NOT NULL DEFAULT '',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT departments_name_key UNIQUE (name)
);`,
	},
	{
		Name: "create_table_subjects",
		SQL: `CREATE TABLE IF NOT EXISTS subjects (
  id            UUID        PRIMARY KEY,
  name          TEXT        NOT NULL,
  description   TEXT        NOT NULL DEFAULT '',
  department_id UUID        NOT NULL REFERENCES departments (id) ON DELETE RESTRICT,
  created_by    UUID        REFERENCES users (id) ON DELETE SET NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_subjects_department_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_subjects_department_id ON subjects (department_id);`,
	},
	{
		Name: "create_table_system_settings",
		SQL: `CREATE TABLE IF NOT EXISTS system_settings (
  id                 INTEGER     PRIMARY KEY CHECK (id = 1),
  site_name          TEXT        NOT NULL,
  support_email      TEXT        NOT NULL,
  maintenance_mode   BOOLEAN     NOT NULL DEFAULT false,
  allow_registration BOOLEAN     NOT NULL DEFAULT true,
  modules            JSONB       NOT NULL DEFAULT '{}'::jsonb,
  created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_subscribers",
		SQL: `CREATE TABLE IF NOT EXISTS subscribers (
  id         UUID        PRIMARY KEY,
  email      TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT subscribers_email_key UNIQUE (email)
);`,
	},
	{
		Name: "create_table_materials",
		SQL: `CREATE TABLE IF NOT EXISTS materials (
  id            UUID        PRIMARY KEY,
  kind          TEXT        NOT NULL CHECK (kind IN ('notes', 'pyq', 'syllabus')),
  title         TEXT        NOT NULL,
  description   TEXT        NOT NULL DEFAULT '',
  year          INTEGER,
  subject_id    UUID        NOT NULL REFERENCES subjects (id) ON DELETE RESTRICT,
  department_id UUID        REFERENCES departments (id) ON DELETE RESTRICT,
  file_path     TEXT        NOT NULL DEFAULT '',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_materials_kind_subject_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_materials_kind_subject_id ON materials (kind, subject_id);`,
	},
	{
		Name: "create_index_materials_kind_department_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_materials_kind_department_id ON materials (kind, department_id);`,
	},
	{
		Name: "create_index_materials_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_materials_created_at ON materials (created_at);`,
	},
}

// EnsureMigrated creates the schema unless the sentinel relation already exists.
// Every step is idempotent, so a run interrupted before the sentinel step is safe to repeat.
func EnsureMigrated(ctx context.Context, db *sql.DB, log zerolog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With().Str("component", "database").Str("db_host", dbHost).Logger()

	log.Info().Str("event", "db_migration_check").Str("status", "starting").Send()

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass('public."+Sentinel+"') IS NOT NULL").Scan(&exists)
	if err != nil {
		log.Error().Err(err).
			Str("event", "db_migration_failed").
			Str("status", "error").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("failed to check sentinel relation")
		return fmt.Errorf("failed to check sentinel relation: %w", err)
	}

	if exists {
		log.Info().
			Str("event", "db_migration_skip").
			Str("status", "success").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("schema already exists, skipping migration")
		return nil
	}

	log.Info().Str("event", "db_migration_start").Str("status", "in_progress").Send()

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error().Err(err).
				Str("event", "db_migration_failed").
				Str("status", "error").
				Str("migration_step", step.Name).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
				Send()
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info().
			Str("event", "db_migration_step").
			Str("status", "success").
			Str("migration_step", step.Name).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Send()
	}

	log.Info().
		Str("event", "db_migration_success").
		Str("status", "success").
		Int("steps", len(steps)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Send()

	return nil
}
