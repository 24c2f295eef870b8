package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"readTimeout"`
		WriteTimeout    time.Duration `yaml:"writeTimeout"`
		IdleTimeout     time.Duration `yaml:"idleTimeout"`
		ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
		// RequestTimeout bounds handler work; it is kept below WriteTimeout.
		RequestTimeout time.Duration `yaml:"requestTimeout"`
		AllowedOrigins []string      `yaml:"allowedOrigins"`
		// TrustProxyHeaders takes the client IP from X-Forwarded-For/X-Real-IP.
		// Enable only behind a proxy that overwrites those headers.
		TrustProxyHeaders bool `yaml:"trustProxyHeaders"`
	} `yaml:"server"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Inference struct {
		MRIDelay          time.Duration `yaml:"mriDelay"`
		EEGDelay          time.Duration `yaml:"eegDelay"`
		ClinicalDelay     time.Duration `yaml:"clinicalDelay"`
		ImagingFeatures   int           `yaml:"imagingFeatures"`
		ClinicalFeatures  int           `yaml:"clinicalFeatures"`
		HistoryMemorySize int           `yaml:"historyMemorySize"`
	} `yaml:"inference"`

	Model struct {
		BaseDir     string `yaml:"baseDir"`
		DefaultPath string `yaml:"defaultPath"`
	} `yaml:"model"`

	Upload struct {
		MaxFileMB int64 `yaml:"maxFileMB"`
		// StrictExtensions rejects mri/eeg uploads with unexpected file extensions.
		StrictExtensions bool `yaml:"strictExtensions"`
	} `yaml:"upload"`

	RateLimit struct {
		RequestsPerSecond float64 `yaml:"requestsPerSecond"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rateLimit"`

	Auth struct {
		// APIKeys maps a client name to its key; empty disables auth.
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres | "" (in-memory)
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Load baca file config.yaml. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	cfg.applyDefaults()

	// PORT env override, sama seperti server lama
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	return &cfg, nil
}

// Default returns a config with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3001
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 60 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = 50 * time.Second
	}
	if c.Server.RequestTimeout >= c.Server.WriteTimeout {
		c.Server.RequestTimeout = c.Server.WriteTimeout - c.Server.WriteTimeout/10
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}

	if c.Inference.MRIDelay == 0 {
		c.Inference.MRIDelay = 500 * time.Millisecond
	}
	if c.Inference.EEGDelay == 0 {
		c.Inference.EEGDelay = 500 * time.Millisecond
	}
	if c.Inference.ClinicalDelay == 0 {
		c.Inference.ClinicalDelay = 300 * time.Millisecond
	}
	if c.Inference.ImagingFeatures == 0 {
		c.Inference.ImagingFeatures = 128
	}
	if c.Inference.ClinicalFeatures == 0 {
		c.Inference.ClinicalFeatures = 64
	}
	if c.Inference.HistoryMemorySize == 0 {
		c.Inference.HistoryMemorySize = 100
	}

	if c.Model.BaseDir == "" {
		c.Model.BaseDir = "."
	}
	if c.Model.DefaultPath == "" {
		c.Model.DefaultPath = "models/late_fusion_model.json"
	}

	if c.Upload.MaxFileMB == 0 {
		c.Upload.MaxFileMB = 50
	}

	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 5
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}

	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
}

// MaxFileBytes is the per-file upload limit in bytes.
func (c *Config) MaxFileBytes() int64 {
	return c.Upload.MaxFileMB * 1024 * 1024
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres (lib/pq key=value format)
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// MinioEnabled reports whether an upload archive is configured.
func (c *Config) MinioEnabled() bool {
	return c.Minio.Endpoint != "" && c.Minio.BucketName != ""
}
