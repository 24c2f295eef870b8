package postgres

import (
	"context"
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS prediction_runs (
  id               VARCHAR(64)  PRIMARY KEY,
  created_at       TIMESTAMPTZ  NOT NULL,
  status           VARCHAR(16)  NOT NULL,
  mri_filename     TEXT         NOT NULL DEFAULT '-',
  mri_size         BIGINT       NOT NULL DEFAULT 0,
  mri_key          TEXT         NOT NULL DEFAULT '',
  eeg_filename     TEXT         NOT NULL DEFAULT '-',
  eeg_size         BIGINT       NOT NULL DEFAULT 0,
  eeg_key          TEXT         NOT NULL DEFAULT '',
  notes_length     INTEGER      NOT NULL DEFAULT 0,
  model_version    VARCHAR(64)  NOT NULL DEFAULT '',
  predictions_json JSONB        NOT NULL DEFAULT '[]',
  error_message    TEXT         NOT NULL DEFAULT '',
  duration_ms      BIGINT       NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_prediction_runs_created_at ON prediction_runs (created_at DESC);`

// Migrate creates the prediction_runs table when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
