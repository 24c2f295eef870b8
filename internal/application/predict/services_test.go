package predict

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/neuro-fusion/internal/domain/analysis"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/fusionmodel"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/prediction"
	"github.com/bryanwahyu/neuro-fusion/internal/infra/db/memory"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// seqSampler returns values in order and then repeats the last one.
type seqSampler struct {
	mu     sync.Mutex
	values []float64
	i      int
}

func (s *seqSampler) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[min(s.i, len(s.values)-1)]
	s.i++
	return v
}

type staticModels struct{ m *fusionmodel.Model }

func (s staticModels) Current() *fusionmodel.Model { return s.m }

type fakeStore struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeStore) Put(_ context.Context, key, _ string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "http://minio/" + key, nil
}

func validInput() analysis.AnalysisData {
	return analysis.AnalysisData{
		MRI:           &analysis.Upload{Filename: "brain.dcm", Size: 4, Data: []byte("scan")},
		EEG:           &analysis.Upload{Filename: "signal.edf", Size: 3, Data: []byte("eeg")},
		ClinicalNotes: "Patient reports intermittent tremor in left hand.",
	}
}

func TestPredictRejectsMissingModalities(t *testing.T) {
	repo := memory.NewRunRepository(10)
	svc := &Service{Runs: repo}

	in := validInput()
	in.EEG = nil
	_, err := svc.Predict(context.Background(), in)
	assert.ErrorIs(t, err, analysis.ErrMissingModality)

	runs, err := repo.Latest(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestPredictTopThreeSorted(t *testing.T) {
	svc := &Service{Sampler: NewSampler(42)}

	for i := 0; i < 50; i++ {
		res, err := svc.Predict(context.Background(), validInput())
		require.NoError(t, err)
		require.Len(t, res.Predictions, prediction.TopN)

		for j, p := range res.Predictions {
			assert.GreaterOrEqual(t, p.Confidence, prediction.MinConfidence)
			assert.LessOrEqual(t, p.Confidence, prediction.MaxConfidence)
			assert.Equal(t, prediction.RiskFor(p.Confidence), p.RiskLevel)
			assert.NotEmpty(t, p.Recommendations)
			if j > 0 {
				assert.GreaterOrEqual(t, res.Predictions[j-1].Confidence, p.Confidence)
			}
		}
	}
}

func TestPredictDeterministicScores(t *testing.T) {
	// features consume 128+128+64 draws, then one per condition
	values := make([]float64, 0, 325)
	for i := 0; i < 320; i++ {
		values = append(values, 0.5)
	}
	values = append(values, 0.05, 0.99, 0.55, 0.72, 0.3)

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo := memory.NewRunRepository(10)
	svc := &Service{
		Runs:    repo,
		Sampler: &seqSampler{values: values},
		Clock:   fixedClock{t: now},
		Models:  staticModels{m: &fusionmodel.Model{Architecture: "Late Fusion", Version: "1.0"}},
	}

	res, err := svc.Predict(context.Background(), validInput())
	require.NoError(t, err)

	require.Len(t, res.Predictions, 3)
	assert.Equal(t, prediction.ConditionParkinsons, res.Predictions[0].Condition)
	assert.Equal(t, 0.95, res.Predictions[0].Confidence)
	assert.Equal(t, prediction.RiskHigh, res.Predictions[0].RiskLevel)

	assert.Equal(t, prediction.ConditionMultipleSclerosis, res.Predictions[1].Condition)
	assert.Equal(t, 0.72, res.Predictions[1].Confidence)
	assert.Equal(t, prediction.RiskHigh, res.Predictions[1].RiskLevel)

	assert.Equal(t, prediction.ConditionEpilepsy, res.Predictions[2].Condition)
	assert.Equal(t, 0.55, res.Predictions[2].Confidence)
	assert.Equal(t, prediction.RiskMedium, res.Predictions[2].RiskLevel)

	md := res.Metadata
	assert.Equal(t, prediction.ModelType, md.ModelType)
	assert.Equal(t, []string{"MRI", "EEG", "Clinical Notes"}, md.ModalitiesProcessed)
	assert.Equal(t, now, md.Timestamp)
	assert.True(t, md.ModelLoaded)
	assert.Equal(t, "1.0", md.ModelVersion)
	assert.NotEmpty(t, md.RequestID)

	runs, err := repo.Latest(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, analysis.RunID(md.RequestID), runs[0].ID)
	assert.Equal(t, analysis.StatusSuccess, runs[0].Status)
	assert.Equal(t, "brain.dcm", runs[0].MRI.Filename)
	assert.Equal(t, len(validInput().ClinicalNotes), runs[0].NotesLength)
	assert.Len(t, runs[0].Predictions, 3)
}

func TestPredictArchivesUploads(t *testing.T) {
	store := &fakeStore{}
	repo := memory.NewRunRepository(10)
	svc := &Service{Runs: repo, Artifacts: store}

	res, err := svc.Predict(context.Background(), validInput())
	require.NoError(t, err)

	id := res.Metadata.RequestID
	assert.Equal(t, []string{
		"runs/" + id + "/mri/brain.dcm",
		"runs/" + id + "/eeg/signal.edf",
	}, store.keys)

	runs, err := repo.Latest(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "runs/"+id+"/mri/brain.dcm", runs[0].MRI.ArtifactKey)
}

func TestPredictArchiveFailureIsNotFatal(t *testing.T) {
	svc := &Service{Artifacts: &fakeStore{err: errors.New("minio down")}}

	res, err := svc.Predict(context.Background(), validInput())
	require.NoError(t, err)
	assert.Len(t, res.Predictions, 3)
}

func TestPredictCanceledDuringStage(t *testing.T) {
	repo := memory.NewRunRepository(10)
	svc := &Service{
		Runs:   repo,
		Delays: Delays{MRI: time.Minute},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Predict(ctx, validInput())
	require.ErrorIs(t, err, context.DeadlineExceeded)

	runs, err := repo.Latest(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, analysis.StatusFailed, runs[0].Status)
	assert.NotEmpty(t, runs[0].Error)
}

func TestPredictWaitsForStages(t *testing.T) {
	svc := &Service{Delays: Delays{MRI: 10 * time.Millisecond, EEG: 10 * time.Millisecond, Clinical: 5 * time.Millisecond}}

	start := time.Now()
	_, err := svc.Predict(context.Background(), validInput())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestHistoryWithoutRepository(t *testing.T) {
	runs, err := (&Service{}).History(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestExtract(t *testing.T) {
	f := extract(NewSampler(1), "MRI", 128)
	assert.Equal(t, "MRI", f.Modality)
	assert.Len(t, f.Values, 128)
	assert.True(t, f.Processed)
	for _, v := range f.Values {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}
