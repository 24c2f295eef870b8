package httpserver

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	appmodels "github.com/bryanwahyu/neuro-fusion/internal/application/models"
	apppredict "github.com/bryanwahyu/neuro-fusion/internal/application/predict"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/prediction"
	"github.com/bryanwahyu/neuro-fusion/internal/infra/db/memory"
	"github.com/bryanwahyu/neuro-fusion/internal/infra/modelfile"
	"github.com/bryanwahyu/neuro-fusion/internal/middleware"
)

type testServer struct {
	handler  http.Handler
	registry *appmodels.Registry
	baseDir  string
}

func newTestServer(t *testing.T, opts Options) *testServer {
	return newTestServerWith(t, opts, zap.NewNop(), nil)
}

func newTestServerWith(t *testing.T, opts Options, log *zap.Logger, tune func(*apppredict.Service)) *testServer {
	t.Helper()
	baseDir := t.TempDir()
	registry := appmodels.NewRegistry(modelfile.NewLoader(), baseDir, "models/late_fusion_model.json", log)
	svc := &apppredict.Service{
		Runs:    memory.NewRunRepository(10),
		Models:  registry,
		Sampler: apppredict.NewSampler(42),
		Log:     log,
	}
	if tune != nil {
		tune(svc)
	}
	return &testServer{
		handler:  NewRouter(svc, registry, opts, log),
		registry: registry,
		baseDir:  baseDir,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) writeModel(t *testing.T, rel, body string) {
	t.Helper()
	path := filepath.Join(s.baseDir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

type form struct {
	mri, eeg  []byte
	mriName   string
	eegName   string
	notes     string
	omitMRI   bool
	omitEEG   bool
	omitNotes bool
}

func validForm() form {
	return form{
		mri:     []byte("fake-dicom-bytes"),
		eeg:     []byte("t,c1,c2\n0,1,2\n"),
		mriName: "scan.dcm",
		eegName: "eeg.csv",
		notes:   "Patient reports memory loss and tremor for six months.",
	}
}

func predictRequest(t *testing.T, f form) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if !f.omitMRI {
		fw, err := mw.CreateFormFile("mri", f.mriName)
		require.NoError(t, err)
		_, err = fw.Write(f.mri)
		require.NoError(t, err)
	}
	if !f.omitEEG {
		fw, err := mw.CreateFormFile("eeg", f.eegName)
		require.NoError(t, err)
		_, err = fw.Write(f.eeg)
		require.NoError(t, err)
	}
	if !f.omitNotes {
		require.NoError(t, mw.WriteField("clinicalNotes", f.notes))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/predict", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestHealth(t *testing.T) {
	at := time.Date(2026, 5, 4, 3, 2, 1, 0, time.FixedZone("WIB", 7*3600))
	s := newTestServer(t, Options{Clock: fixedClock{t: at}})

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["modelLoaded"])
	assert.Equal(t, "2026-05-03T20:02:01Z", body["timestamp"])
}

func TestPredictSuccess(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(predictRequest(t, validForm()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp predictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Predictions, 3)
	for i, p := range resp.Predictions {
		assert.GreaterOrEqual(t, p.Confidence, prediction.MinConfidence)
		assert.LessOrEqual(t, p.Confidence, prediction.MaxConfidence)
		assert.Equal(t, prediction.RiskFor(p.Confidence), p.RiskLevel)
		assert.NotEmpty(t, p.Recommendations)
		if i > 0 {
			assert.GreaterOrEqual(t, resp.Predictions[i-1].Confidence, p.Confidence)
		}
	}
	assert.Equal(t, "Late Fusion Multi-Modal", resp.Metadata.ModelType)
	assert.Equal(t, []string{"MRI", "EEG", "Clinical Notes"}, resp.Metadata.ModalitiesProcessed)
	assert.False(t, resp.Metadata.ModelLoaded)
	assert.NotEmpty(t, resp.Metadata.RequestID)

	hist := s.do(httptest.NewRequest(http.MethodGet, "/api/predictions?limit=5", nil))
	require.Equal(t, http.StatusOK, hist.Code)
	runs := decode(t, hist)["runs"].([]any)
	require.Len(t, runs, 1)
	assert.Equal(t, resp.Metadata.RequestID, runs[0].(map[string]any)["id"])
}

func TestPredictMissingModality(t *testing.T) {
	cases := map[string]func(*form){
		"no mri":          func(f *form) { f.omitMRI = true },
		"no eeg":          func(f *form) { f.omitEEG = true },
		"no notes":        func(f *form) { f.omitNotes = true },
		"blank notes":     func(f *form) { f.notes = "   " },
		"everything gone": func(f *form) { f.omitMRI, f.omitEEG, f.omitNotes = true, true, true },
	}
	s := newTestServer(t, Options{})

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := validForm()
			mutate(&f)

			rec := s.do(predictRequest(t, f))
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, missingModalityMessage, decode(t, rec)["error"])
		})
	}
}

func TestPredictNotMultipart(t *testing.T) {
	s := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{"clinicalNotes":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := s.do(req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, missingModalityMessage, decode(t, rec)["error"])
}

func TestPredictFileTooLarge(t *testing.T) {
	s := newTestServer(t, Options{MaxFileBytes: 8})

	rec := s.do(predictRequest(t, validForm()))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "File too large", decode(t, rec)["error"])
}

func TestPredictStrictExtensions(t *testing.T) {
	s := newTestServer(t, Options{StrictExtensions: true})

	f := validForm()
	f.mriName = "scan.exe"
	rec := s.do(predictRequest(t, f))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid upload", decode(t, rec)["error"])

	rec = s.do(predictRequest(t, validForm()))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPredictRateLimited(t *testing.T) {
	s := newTestServer(t, Options{RateLimiter: middleware.NewRateLimiter(0.001, 1)})

	require.Equal(t, http.StatusOK, s.do(predictRequest(t, validForm())).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(predictRequest(t, validForm())).Code)
}

func TestPredictRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	s := newTestServer(t, Options{RateLimiter: middleware.NewRateLimiter(0.001, 1)})

	spoofed := func(ip string) int {
		req := predictRequest(t, validForm())
		req.Header.Set("X-Forwarded-For", ip)
		return s.do(req).Code
	}
	require.Equal(t, http.StatusOK, spoofed("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, spoofed("203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, spoofed("203.0.113.3"))
}

func TestPredictRateLimitBehindTrustedProxy(t *testing.T) {
	s := newTestServer(t, Options{TrustProxy: true, RateLimiter: middleware.NewRateLimiter(0.001, 1)})

	forwarded := func(ip string) int {
		req := predictRequest(t, validForm())
		req.Header.Set("X-Forwarded-For", ip)
		return s.do(req).Code
	}
	require.Equal(t, http.StatusOK, forwarded("203.0.113.1"))
	assert.Equal(t, http.StatusOK, forwarded("203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, forwarded("203.0.113.1"))
}

func TestPredictTimeoutAnswersGatewayTimeout(t *testing.T) {
	s := newTestServerWith(t, Options{RequestTimeout: 20 * time.Millisecond}, zap.NewNop(), func(svc *apppredict.Service) {
		svc.Delays = apppredict.Delays{MRI: 5 * time.Second}
	})

	rec := s.do(predictRequest(t, validForm()))
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Prediction failed")
}

func loadModelRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/load-model", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLoadModelWithPath(t *testing.T) {
	s := newTestServer(t, Options{})
	s.writeModel(t, "models/v2.json", `{"architecture":"Late Fusion","version":"2.0","weights":{"w":[0.1]}}`)

	rec := s.do(loadModelRequest(`{"modelPath":"models/v2.json"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Model loaded successfully", body["message"])
	assert.Equal(t, map[string]any{"architecture": "Late Fusion", "version": "2.0"}, body["modelInfo"])
	assert.True(t, s.registry.Loaded())

	health := decode(t, s.do(httptest.NewRequest(http.MethodGet, "/api/health", nil)))
	assert.Equal(t, true, health["modelLoaded"])
}

func TestLoadModelNotFound(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(loadModelRequest(`{"modelPath":"models/missing.json"}`))
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Model file not found", body["error"])
	assert.Equal(t, filepath.Join(s.baseDir, "models/missing.json"), body["path"])
}

func TestLoadModelInvalidJSONFile(t *testing.T) {
	s := newTestServer(t, Options{})
	s.writeModel(t, "broken.json", `{not json`)

	rec := s.do(loadModelRequest(`{"modelPath":"broken.json"}`))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Failed to load model", body["error"])
	assert.NotEmpty(t, body["message"])
	assert.False(t, s.registry.Loaded())
}

func TestLoadModelNullDocumentKeepsMockMode(t *testing.T) {
	s := newTestServer(t, Options{})
	s.writeModel(t, "null.json", `null`)

	rec := s.do(loadModelRequest(`{"modelPath":"null.json"}`))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to load model", decode(t, rec)["error"])

	health := decode(t, s.do(httptest.NewRequest(http.MethodGet, "/api/health", nil)))
	assert.Equal(t, false, health["modelLoaded"])
}

func TestLoadModelRejectsTraversal(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(loadModelRequest(`{"modelPath":"../../etc/passwd"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid model path", decode(t, rec)["error"])
}

func TestLoadModelDefault(t *testing.T) {
	s := newTestServer(t, Options{})

	body := decode(t, s.do(loadModelRequest(``)))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Using mock predictions", body["message"])

	s.writeModel(t, "models/late_fusion_model.json", `{"architecture":"Late Fusion","version":"1.0"}`)
	body = decode(t, s.do(loadModelRequest(`{}`)))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Model loaded successfully", body["message"])
}

func TestLoadModelBadBody(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(loadModelRequest(`{"modelPath":`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON body", decode(t, rec)["error"])
}

func TestLoadModelRequiresKey(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := newTestServerWith(t, Options{APIKeys: map[string]string{"ops": "s3cret"}}, zap.New(core), nil)

	assert.Equal(t, http.StatusUnauthorized, s.do(loadModelRequest(``)).Code)
	assert.Zero(t, logs.FilterMessage("model load requested").Len())

	req := loadModelRequest(`{"modelPath":"models/v2.json"}`)
	req.Header.Set("X-API-Key", "s3cret")
	assert.Equal(t, http.StatusNotFound, s.do(req).Code)

	entries := logs.FilterMessage("model load requested").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "ops", entries[0].ContextMap()["client"])
	assert.Equal(t, "models/v2.json", entries[0].ContextMap()["model_path"])
}

func TestLoadModelLogsAnonymousClient(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := newTestServerWith(t, Options{}, zap.New(core), nil)

	s.do(loadModelRequest(``))

	entries := logs.FilterMessage("model load requested").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "anonymous", entries[0].ContextMap()["client"])
}

func TestConditions(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/conditions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["conditions"], 6)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/conditions/epilepsy", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "epilepsy", decode(t, rec)["id"])

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/conditions/flu", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodOptions, "/api/predict", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := s.do(req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestProbesAndMetrics(t *testing.T) {
	s := newTestServer(t, Options{})

	assert.Equal(t, http.StatusOK, s.do(httptest.NewRequest(http.MethodGet, "/live", nil)).Code)
	assert.Equal(t, http.StatusOK, s.do(httptest.NewRequest(http.MethodGet, "/ready", nil)).Code)

	s.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	rec := s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
