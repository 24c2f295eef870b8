package mysql

import (
	"context"
	"database/sql"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS prediction_runs (
  id               VARCHAR(64)  NOT NULL PRIMARY KEY,
  created_at       DATETIME(3)  NOT NULL,
  status           VARCHAR(16)  NOT NULL,
  mri_filename     VARCHAR(255) NOT NULL DEFAULT '-',
  mri_size         BIGINT       NOT NULL DEFAULT 0,
  mri_key          VARCHAR(512) NOT NULL DEFAULT '',
  eeg_filename     VARCHAR(255) NOT NULL DEFAULT '-',
  eeg_size         BIGINT       NOT NULL DEFAULT 0,
  eeg_key          VARCHAR(512) NOT NULL DEFAULT '',
  notes_length     INT          NOT NULL DEFAULT 0,
  model_version    VARCHAR(64)  NOT NULL DEFAULT '',
  predictions_json JSON         NOT NULL,
  error_message    TEXT         NOT NULL,
  duration_ms      BIGINT       NOT NULL DEFAULT 0,
  INDEX idx_prediction_runs_created_at (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
}

// Migrate creates the prediction_runs table when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
