package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/bryanwahyu/neuro-fusion/internal/application"
	appmodels "github.com/bryanwahyu/neuro-fusion/internal/application/models"
	apppredict "github.com/bryanwahyu/neuro-fusion/internal/application/predict"
	"github.com/bryanwahyu/neuro-fusion/internal/config"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/analysis"
	"github.com/bryanwahyu/neuro-fusion/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/neuro-fusion/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/neuro-fusion/internal/infra/db/postgres"
	"github.com/bryanwahyu/neuro-fusion/internal/infra/httpserver"
	"github.com/bryanwahyu/neuro-fusion/internal/infra/modelfile"
	minioStore "github.com/bryanwahyu/neuro-fusion/internal/infra/storage"
	"github.com/bryanwahyu/neuro-fusion/internal/logging"
	"github.com/bryanwahyu/neuro-fusion/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	checkers := map[string]middleware.HealthChecker{}

	// init run repository
	runs, db, err := openRuns(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("database init error", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	// init minio (opsional)
	var artifacts analysis.ArtifactStore
	if cfg.MinioEnabled() {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			logger.Warn("minio unavailable, uploads will not be archived", zap.Error(err))
		} else {
			artifacts = store
			checkers["storage"] = store
		}
	}

	// init model registry
	registry := appmodels.NewRegistry(modelfile.NewLoader(), cfg.Model.BaseDir, cfg.Model.DefaultPath, logger)
	registry.LoadDefault(ctx)

	// init service
	svc := &apppredict.Service{
		Runs:      runs,
		Artifacts: artifacts,
		Models:    registry,
		Clock:     application.SystemClock{},
		Sampler:   apppredict.NewSampler(0),
		Log:       logger,
		Delays: apppredict.Delays{
			MRI:      cfg.Inference.MRIDelay,
			EEG:      cfg.Inference.EEGDelay,
			Clinical: cfg.Inference.ClinicalDelay,
		},
		ImagingFeatures:  cfg.Inference.ImagingFeatures,
		ClinicalFeatures: cfg.Inference.ClinicalFeatures,
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	stopCleanup := make(chan struct{})
	go limiter.Run(stopCleanup)
	defer close(stopCleanup)

	// init router
	handler := httpserver.NewRouter(svc, registry, httpserver.Options{
		MaxFileBytes:     cfg.MaxFileBytes(),
		StrictExtensions: cfg.Upload.StrictExtensions,
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		RequestTimeout:   cfg.Server.RequestTimeout,
		TrustProxy:       cfg.Server.TrustProxyHeaders,
		Clock:            application.SystemClock{},
		RateLimiter:      limiter,
		APIKeys:          cfg.Auth.APIKeys,
		ReadyCheckers:    checkers,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// run server
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()
	printInstructions(os.Stdout, cfg.Server.Port, registry.DefaultPath())

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

// openRuns picks the run repository from database.driver.
// An empty driver keeps history in memory only.
func openRuns(ctx context.Context, cfg *config.Config, logger *zap.Logger) (analysis.RunRepository, *sql.DB, error) {
	switch cfg.Database.Driver {
	case "":
		logger.Warn("no database configured, prediction history kept in memory",
			zap.Int("capacity", cfg.Inference.HistoryMemorySize))
		return memory.NewRunRepository(cfg.Inference.HistoryMemorySize), nil, nil
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		if err := mysqlp.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return mysqlp.NewRunRepository(db), db, nil
	case "postgres":
		db, err := pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		if err := pgp.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return pgp.NewRunRepository(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func printInstructions(w io.Writer, port int, modelPath string) {
	fmt.Fprintf(w, "\nNeurological Disorder Detection API Server\n")
	fmt.Fprintf(w, "Server running on port %d\n", port)
	fmt.Fprintf(w, "API endpoint: http://localhost:%d/api/predict\n", port)
	fmt.Fprintf(w, "Health check: http://localhost:%d/api/health\n", port)
	fmt.Fprintf(w, "Metrics:      http://localhost:%d/metrics\n\n", port)

	fmt.Fprintln(w, "Instructions:")
	fmt.Fprintf(w, "1. Place your trained late fusion model at: %s\n", modelPath)
	fmt.Fprintln(w, "2. The model should have the following structure:")
	fmt.Fprintln(w, `   {`)
	fmt.Fprintln(w, `     "architecture": "Late Fusion",`)
	fmt.Fprintln(w, `     "version": "1.0",`)
	fmt.Fprintln(w, `     "weights": { ... },`)
	fmt.Fprintln(w, `     "config": { ... }`)
	fmt.Fprintln(w, `   }`)
	fmt.Fprintln(w, "3. Until the model is loaded, the API will use mock predictions.")
	fmt.Fprintln(w)
}
