package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/neuro-fusion/internal/domain/analysis"
)

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Save insert/update prediction run
func (r *RunRepository) Save(ctx context.Context, run *domain.Run) error {
	const q = `
INSERT INTO prediction_runs
(id, created_at, status,
 mri_filename, mri_size, mri_key,
 eeg_filename, eeg_size, eeg_key,
 notes_length, model_version, predictions_json, error_message, duration_ms)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status),
 mri_key=VALUES(mri_key), eeg_key=VALUES(eeg_key),
 predictions_json=VALUES(predictions_json),
 error_message=VALUES(error_message),
 duration_ms=VALUES(duration_ms);
`
	preds, err := encodePredictions(run.Predictions)
	if err != nil {
		return fmt.Errorf("encoding predictions: %w", err)
	}
	created := run.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err = r.db.ExecContext(ctx, q,
		run.ID, created.UTC(), stringOrDash(string(run.Status)),
		stringOrDash(run.MRI.Filename), run.MRI.Size, run.MRI.ArtifactKey,
		stringOrDash(run.EEG.Filename), run.EEG.Size, run.EEG.ArtifactKey,
		run.NotesLength, run.ModelVersion, preds, run.Error, run.DurationMS,
	)
	return err
}

// Latest runs, newest first
func (r *RunRepository) Latest(ctx context.Context, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, created_at, status,
       mri_filename, mri_size, mri_key,
       eeg_filename, eeg_size, eeg_key,
       notes_length, model_version, predictions_json, error_message, duration_ms
FROM prediction_runs
ORDER BY created_at DESC, id DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []*domain.Run
	for rows.Next() {
		var run domain.Run
		var preds string
		if err := rows.Scan(
			&run.ID, &run.CreatedAt, &run.Status,
			&run.MRI.Filename, &run.MRI.Size, &run.MRI.ArtifactKey,
			&run.EEG.Filename, &run.EEG.Size, &run.EEG.ArtifactKey,
			&run.NotesLength, &run.ModelVersion, &preds, &run.Error, &run.DurationMS,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if run.Predictions, err = decodePredictions(preds); err != nil {
			return nil, fmt.Errorf("decoding predictions for %s: %w", run.ID, err)
		}
		out = append(out, &run)
	}
	return out, rows.Err()
}
