// Package migration bootstraps the API server schema.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type step struct {
	name string
	sql  string
}

// sentinelTable is created by the last step; its presence means the schema is complete.
const sentinelTable = "public.files"

var steps = []step{
	{
		name: "create_extension_pgcrypto",
		sql:  `CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	},
	{
		name: "create_table_users",
		sql: `CREATE TABLE IF NOT EXISTS users (
  id                 UUID         PRIMARY KEY DEFAULT gen_random_uuid(),
  email              VARCHAR(255) NOT NULL UNIQUE,
  password_hash      TEXT         NOT NULL,
  full_name          VARCHAR(255) NOT NULL,
  tier               VARCHAR(50)  NOT NULL DEFAULT 'starter',
  storage_used_bytes BIGINT       NOT NULL DEFAULT 0 CHECK (storage_used_bytes >= 0),
  email_verified     BOOLEAN      NOT NULL DEFAULT false,
  created_at         TIMESTAMPTZ  NOT NULL DEFAULT now(),
  last_login_at      TIMESTAMPTZ
);`,
	},
	{
		name: "create_table_projects",
		sql: `CREATE TABLE IF NOT EXISTS projects (
  id          UUID         PRIMARY KEY DEFAULT gen_random_uuid(),
  user_id     UUID         NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  name        VARCHAR(255) NOT NULL,
  description TEXT,
  status      VARCHAR(50)  NOT NULL DEFAULT 'active',
  settings    JSONB        NOT NULL DEFAULT '{}'::jsonb,
  created_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);`,
	},
	{
		name: "create_index_projects_user",
		sql:  `CREATE INDEX IF NOT EXISTS idx_projects_user ON projects (user_id, updated_at DESC);`,
	},
	{
		name: "create_table_files",
		sql: `CREATE TABLE IF NOT EXISTS files (
  id                  UUID         PRIMARY KEY DEFAULT gen_random_uuid(),
  user_id             UUID         NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  project_id          UUID         NOT NULL REFERENCES projects (id) ON DELETE CASCADE,
  filename            VARCHAR(500) NOT NULL,
  storage_path        TEXT         NOT NULL UNIQUE,
  size                BIGINT       NOT NULL CHECK (size >= 0),
  mime_type           VARCHAR(255) NOT NULL,
  format              VARCHAR(50)  NOT NULL,
  status              VARCHAR(50)  NOT NULL DEFAULT 'pending',
  processing_progress INTEGER      NOT NULL DEFAULT 0,
  error_message       TEXT         NOT NULL DEFAULT '',
  created_at          TIMESTAMPTZ  NOT NULL DEFAULT now(),
  updated_at          TIMESTAMPTZ  NOT NULL DEFAULT now()
);`,
	},
	{
		name: "create_index_files_project",
		sql:  `CREATE INDEX IF NOT EXISTS idx_files_user_project ON files (user_id, project_id, created_at DESC);`,
	},
	{
		name: "create_index_files_status",
		sql:  `CREATE INDEX IF NOT EXISTS idx_files_status ON files (status);`,
	},
}

// EnsureMigrated creates the schema unless the files table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, log zerolog.Logger) error {
	start := time.Now()
	log = log.With().Str("component", "database").Logger()

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinelTable).Scan(&exists); err != nil {
		log.Error().Err(err).Str("event", "db_migration_failed").Msg("check sentinel table")
		return fmt.Errorf("check sentinel table: %w", err)
	}
	if exists {
		log.Info().Str("event", "db_migration_skip").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("schema already exists")
		return nil
	}

	log.Info().Str("event", "db_migration_start").Int("steps", len(steps)).Msg("migrating")
	for _, s := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, s.sql); err != nil {
			log.Error().Err(err).
				Str("event", "db_migration_failed").
				Str("migration_step", s.name).
				Msg("migration step failed")
			return fmt.Errorf("migration step %s: %w", s.name, err)
		}
		log.Debug().Str("event", "db_migration_step").
			Str("migration_step", s.name).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Msg("step applied")
	}

	log.Info().Str("event", "db_migration_success").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("schema ready")
	return nil
}
