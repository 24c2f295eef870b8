package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bryanwahyu/neuro-fusion/internal/application"
	appmodels "github.com/bryanwahyu/neuro-fusion/internal/application/models"
	apppredict "github.com/bryanwahyu/neuro-fusion/internal/application/predict"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/analysis"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/condition"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/fusionmodel"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/prediction"
	"github.com/bryanwahyu/neuro-fusion/internal/middleware"
)

// Options tunes the HTTP surface.
type Options struct {
	MaxFileBytes     int64
	StrictExtensions bool
	AllowedOrigins   []string
	RequestTimeout   time.Duration
	TrustProxy       bool // take the client IP from proxy headers
	Clock            application.Clock
	RateLimiter      *middleware.RateLimiter // nil disables rate limiting
	APIKeys          map[string]string       // protects /api/load-model when set
	ReadyCheckers    map[string]middleware.HealthChecker
}

type Router struct {
	predictSvc *apppredict.Service
	models     *appmodels.Registry
	opts       Options
	log        *zap.Logger
}

func NewRouter(predictSvc *apppredict.Service, models *appmodels.Registry, opts Options, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = 50 << 20
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 50 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = application.SystemClock{}
	}
	r := &Router{predictSvc: predictSvc, models: models, opts: opts, log: log}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	if opts.TrustProxy {
		mux.Use(chimw.RealIP)
	}
	mux.Use(middleware.Logging(log))
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.Metrics)
	mux.Use(middleware.SecurityHeaders)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	mux.Use(chimw.Timeout(opts.RequestTimeout))

	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/ready", middleware.ReadinessHandler(opts.ReadyCheckers))
	mux.Handle("/metrics", middleware.MetricsHandler())

	mux.Route("/api", func(rt chi.Router) {
		rt.Get("/health", r.wrap(r.handleHealth))
		rt.Get("/conditions", r.wrap(r.handleConditions))
		rt.Get("/conditions/{id}", r.wrap(r.handleCondition))
		rt.Get("/predictions", r.wrap(r.handleHistory))

		rt.Group(func(g chi.Router) {
			if opts.RateLimiter != nil {
				g.Use(middleware.RateLimit(opts.RateLimiter))
			}
			g.Post("/predict", r.wrap(r.handlePredict))
		})

		rt.Group(func(g chi.Router) {
			g.Use(middleware.APIKeyAuth(opts.APIKeys))
			g.Post("/load-model", r.wrap(r.handleLoadModel))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			// deadline or disconnect: chi's Timeout answers 504, nothing to write
			if ctxErr := req.Context().Err(); ctxErr != nil {
				r.log.Warn("request aborted",
					zap.String("path", req.URL.Path),
					zap.String("request_id", chimw.GetReqID(req.Context())),
					zap.NamedError("cause", ctxErr),
					zap.Error(err))
				return
			}
			ae := toAPIError(err)
			if ae.Status >= http.StatusInternalServerError {
				r.log.Error("request failed",
					zap.String("path", req.URL.Path),
					zap.String("request_id", chimw.GetReqID(req.Context())),
					zap.Error(err))
			}
			_ = writeJSON(w, ae.Status, ae.body())
		}
	}
}

// GET /api/health
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"modelLoaded": r.models.Loaded(),
		"timestamp":   r.opts.Clock.Now().UTC(),
	})
}

// GET /api/conditions
func (r *Router) handleConditions(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]any{"conditions": condition.All()})
}

// GET /api/conditions/{id}
func (r *Router) handleCondition(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	c, ok := condition.ByID(id)
	if !ok {
		return &apiError{Status: http.StatusNotFound, Err: "Condition not found", Extra: map[string]any{"id": id}}
	}
	return writeJSON(w, http.StatusOK, c)
}

// GET /api/predictions?limit=20
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	runs, err := r.predictSvc.History(req.Context(), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// POST /api/predict
// Multipart: mri (file), eeg (file), clinicalNotes (text)
func (r *Router) handlePredict(w http.ResponseWriter, req *http.Request) error {
	data, err := r.readAnalysis(w, req)
	if err != nil {
		middleware.RecordPredictionRun("invalid")
		return err
	}

	res, err := r.predictSvc.Predict(req.Context(), data)
	if err != nil {
		if errors.Is(err, analysis.ErrMissingModality) {
			middleware.RecordPredictionRun("invalid")
			return err
		}
		middleware.RecordPredictionRun("failed")
		return &apiError{Status: http.StatusInternalServerError, Err: "Prediction failed", Message: err.Error(), cause: err}
	}

	middleware.RecordPredictionRun("success")
	for _, p := range res.Predictions {
		middleware.RecordPrediction(string(p.Condition), string(p.RiskLevel))
	}

	return writeJSON(w, http.StatusOK, predictResponse{
		Success:     true,
		Predictions: res.Predictions,
		Metadata:    res.Metadata,
	})
}

type predictResponse struct {
	Success     bool                    `json:"success"`
	Predictions []prediction.Prediction `json:"predictions"`
	Metadata    prediction.Metadata     `json:"metadata"`
}

// readAnalysis parses the multipart form into AnalysisData.
// Missing fields are left empty; Predict reports them.
func (r *Router) readAnalysis(w http.ResponseWriter, req *http.Request) (analysis.AnalysisData, error) {
	maxFile := r.opts.MaxFileBytes
	req.Body = http.MaxBytesReader(w, req.Body, 2*maxFile+(1<<20))

	if err := req.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.As(err, &mbe):
			return analysis.AnalysisData{}, fmt.Errorf("%w: request exceeds %d bytes", analysis.ErrFileTooLarge, mbe.Limit)
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			return analysis.AnalysisData{}, analysis.ErrMissingModality
		default:
			return analysis.AnalysisData{}, &apiError{Status: http.StatusBadRequest, Err: "Invalid multipart form", Message: err.Error(), cause: err}
		}
	}
	defer req.MultipartForm.RemoveAll()

	mri, err := r.readUpload(req, "mri")
	if err != nil {
		return analysis.AnalysisData{}, err
	}
	eeg, err := r.readUpload(req, "eeg")
	if err != nil {
		return analysis.AnalysisData{}, err
	}

	return analysis.AnalysisData{
		MRI:           mri,
		EEG:           eeg,
		ClinicalNotes: middleware.SanitizeString(req.FormValue("clinicalNotes")),
	}, nil
}

func (r *Router) readUpload(req *http.Request, field string) (*analysis.Upload, error) {
	file, header, err := req.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	if header.Size > r.opts.MaxFileBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", analysis.ErrFileTooLarge, field, header.Size, r.opts.MaxFileBytes)
	}
	if r.opts.StrictExtensions {
		if err := middleware.ValidateUploadName(field, header.Filename); err != nil {
			return nil, &apiError{Status: http.StatusBadRequest, Err: "Invalid upload", Message: err.Error(), cause: err}
		}
	}

	data, err := readAll(file, r.opts.MaxFileBytes)
	if err != nil {
		return nil, err
	}
	return &analysis.Upload{
		Filename:    header.Filename,
		Size:        int64(len(data)),
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readAll(f multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit %d bytes", analysis.ErrFileTooLarge, limit)
	}
	return data, nil
}

// POST /api/load-model
// Body: {"modelPath": "<relative path>"} (optional)
func (r *Router) handleLoadModel(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ModelPath string `json:"modelPath"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return &apiError{Status: http.StatusBadRequest, Err: "Invalid JSON body", Message: err.Error(), cause: err}
	}

	modelPath := strings.TrimSpace(body.ModelPath)
	r.log.Info("model load requested",
		zap.String("client", clientName(req)),
		zap.String("model_path", modelPath))
	if modelPath == "" {
		loaded := r.models.LoadDefault(req.Context())
		message := "Using mock predictions"
		if loaded {
			message = "Model loaded successfully"
			middleware.RecordModelLoad("loaded")
		} else {
			middleware.RecordModelLoad("default_unavailable")
		}
		return writeJSON(w, http.StatusOK, map[string]any{
			"success": loaded,
			"message": message,
		})
	}

	info, full, err := r.models.LoadPath(req.Context(), modelPath)
	switch {
	case err == nil:
		middleware.RecordModelLoad("loaded")
		return writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"message":   "Model loaded successfully",
			"modelInfo": info,
		})
	case errors.Is(err, fusionmodel.ErrModelNotFound):
		middleware.RecordModelLoad("not_found")
		return &apiError{Status: http.StatusNotFound, Err: "Model file not found", Extra: map[string]any{"path": full}, cause: err}
	case errors.Is(err, fusionmodel.ErrInvalidPath):
		middleware.RecordModelLoad("invalid_path")
		return err
	default:
		middleware.RecordModelLoad("error")
		return &apiError{Status: http.StatusInternalServerError, Err: "Failed to load model", Message: err.Error(), cause: err}
	}
}

// clientName is the API client from the auth middleware, or "anonymous"
// when API keys are disabled.
func clientName(req *http.Request) string {
	if c := middleware.ClientFromContext(req.Context()); c != "" {
		return c
	}
	return "anonymous"
}
