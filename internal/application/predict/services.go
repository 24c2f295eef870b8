package predict

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/neuro-fusion/internal/application"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/analysis"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/fusionmodel"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/prediction"
)

// ModelSource gives the currently loaded fusion model, if any.
type ModelSource interface {
	Current() *fusionmodel.Model
}

// Delays are the cosmetic per-stage processing pauses.
type Delays struct {
	MRI      time.Duration
	EEG      time.Duration
	Clinical time.Duration
}

// Service implements the predict use-case.
// Service is safe for concurrent use once constructed.
type Service struct {
	Runs      analysis.RunRepository // optional
	Artifacts analysis.ArtifactStore // optional
	Models    ModelSource
	Clock     application.Clock
	Sampler   Sampler
	Log       *zap.Logger

	Delays           Delays
	ImagingFeatures  int
	ClinicalFeatures int
}

// Predict runs the staged mock pipeline over one set of inputs.
func (s *Service) Predict(ctx context.Context, data analysis.AnalysisData) (prediction.Result, error) {
	if err := data.Validate(); err != nil {
		return prediction.Result{}, err
	}

	log := s.logger()
	start := s.clock().Now()
	id := analysis.RunID(uuid.New().String())
	log = log.With(zap.String("run_id", string(id)))

	log.Info("processing modalities",
		zap.String("mri_file", data.MRI.Filename), zap.Int64("mri_bytes", data.MRI.Size),
		zap.String("eeg_file", data.EEG.Filename), zap.Int64("eeg_bytes", data.EEG.Size),
		zap.Int("notes_length", len(data.ClinicalNotes)))

	run := &analysis.Run{
		ID:          id,
		CreatedAt:   start,
		MRI:         analysis.FileRef{Filename: data.MRI.Filename, Size: data.MRI.Size},
		EEG:         analysis.FileRef{Filename: data.EEG.Filename, Size: data.EEG.Size},
		NotesLength: len(data.ClinicalNotes),
	}
	model := s.currentModel()
	if model != nil {
		run.ModelVersion = model.Version
	}

	preds, err := s.runStages(ctx, log, data, model)
	if err != nil {
		run.Status = analysis.StatusFailed
		run.Error = err.Error()
		run.DurationMS = application.ElapsedMS(s.clock(), start)
		s.save(log, run)
		return prediction.Result{}, fmt.Errorf("prediction run %s: %w", id, err)
	}

	s.archive(ctx, log, run, data)

	run.Status = analysis.StatusSuccess
	run.Predictions = preds
	run.DurationMS = application.ElapsedMS(s.clock(), start)
	s.save(log, run)

	log.Info("prediction completed", zap.Int64("duration_ms", run.DurationMS))

	return prediction.Result{
		Predictions: preds,
		Metadata: prediction.Metadata{
			ModelType:           prediction.ModelType,
			Timestamp:           s.clock().Now().UTC(),
			ModalitiesProcessed: []string{prediction.ModalityMRI, prediction.ModalityEEG, prediction.ModalityClinical},
			RequestID:           string(id),
			ModelLoaded:         model != nil,
			ModelVersion:        run.ModelVersion,
			DurationMS:          run.DurationMS,
		},
	}, nil
}

func (s *Service) runStages(ctx context.Context, log *zap.Logger, data analysis.AnalysisData, model *fusionmodel.Model) ([]prediction.Prediction, error) {
	sampler := s.sampler()

	log.Debug("processing modality", zap.String("modality", prediction.ModalityMRI))
	mri := extract(sampler, prediction.ModalityMRI, s.imagingFeatures())
	if err := wait(ctx, s.Delays.MRI); err != nil {
		return nil, err
	}

	log.Debug("processing modality", zap.String("modality", prediction.ModalityEEG))
	eeg := extract(sampler, prediction.ModalityEEG, s.imagingFeatures())
	if err := wait(ctx, s.Delays.EEG); err != nil {
		return nil, err
	}

	log.Debug("processing modality", zap.String("modality", prediction.ModalityClinical))
	clinical := extract(sampler, prediction.ModalityClinical, s.clinicalFeatures())
	clinical.Text = data.ClinicalNotes
	if err := wait(ctx, s.Delays.Clinical); err != nil {
		return nil, err
	}

	return lateFusion(log, sampler, model, mri, eeg, clinical), nil
}

// lateFusion scores every condition and keeps the top ranked ones.
func lateFusion(log *zap.Logger, sampler Sampler, model *fusionmodel.Model, mri, eeg, clinical Features) []prediction.Prediction {
	if model.HasWeights() {
		log.Info("performing late fusion with trained model weights",
			zap.String("version", model.Version))
	} else {
		log.Info("performing late fusion with mock scores (model not loaded)")
	}
	log.Debug("fusion inputs",
		zap.Int("mri_features", len(mri.Values)),
		zap.Int("eeg_features", len(eeg.Values)),
		zap.Int("clinical_features", len(clinical.Values)))

	conditions := prediction.Conditions()
	preds := make([]prediction.Prediction, 0, len(conditions))
	for _, c := range conditions {
		preds = append(preds, prediction.Score(c, sampler.Float64()))
	}
	return prediction.Rank(preds, prediction.TopN)
}

// archive upload raw files ke artifact store; failure cuma di-log
func (s *Service) archive(ctx context.Context, log *zap.Logger, run *analysis.Run, data analysis.AnalysisData) {
	if s.Artifacts == nil {
		return
	}
	put := func(modality string, u *analysis.Upload, ref *analysis.FileRef) {
		key := fmt.Sprintf("runs/%s/%s/%s", run.ID, modality, filepath.Base(u.Filename))
		if _, err := s.Artifacts.Put(ctx, key, u.ContentType, u.Data); err != nil {
			log.Warn("failed to archive upload", zap.String("key", key), zap.Error(err))
			return
		}
		ref.ArtifactKey = key
	}
	put("mri", data.MRI, &run.MRI)
	put("eeg", data.EEG, &run.EEG)
}

func (s *Service) save(log *zap.Logger, run *analysis.Run) {
	if s.Runs == nil {
		return
	}
	// pakai context terpisah supaya audit tetap tersimpan walau request dibatalkan
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Runs.Save(ctx, run); err != nil {
		log.Warn("failed to save prediction run", zap.Error(err))
	}
}

// History returns the most recent runs, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]*analysis.Run, error) {
	if s.Runs == nil {
		return []*analysis.Run{}, nil
	}
	return s.Runs.Latest(ctx, limit)
}

func (s *Service) currentModel() *fusionmodel.Model {
	if s.Models == nil {
		return nil
	}
	return s.Models.Current()
}

func (s *Service) clock() application.Clock {
	if s.Clock == nil {
		return application.SystemClock{}
	}
	return s.Clock
}

func (s *Service) sampler() Sampler {
	if s.Sampler == nil {
		return NewSampler(0)
	}
	return s.Sampler
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Service) imagingFeatures() int {
	if s.ImagingFeatures <= 0 {
		return 128
	}
	return s.ImagingFeatures
}

func (s *Service) clinicalFeatures() int {
	if s.ClinicalFeatures <= 0 {
		return 64
	}
	return s.ClinicalFeatures
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
