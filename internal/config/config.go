// Package config loads runtime settings from defaults, an optional YAML file
// and environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSecretKey is used when SECRET_KEY is unset. It must be replaced in production.
const DefaultSecretKey = "dev-secret-key-change-in-production"

// Config holds all configuration for the OCR web application.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Upload  UploadConfig  `yaml:"upload"`
	OCR     OCRConfig     `yaml:"ocr"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	Mode             string        `yaml:"mode"` // debug, prod or test
	SecretKey        string        `yaml:"secret_key"`
	APIKey           string        `yaml:"api_key"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// UploadConfig holds file intake and retention settings.
type UploadConfig struct {
	Folder            string        `yaml:"folder"`
	MaxContentLength  int64         `yaml:"max_content_length"`
	AllowedExtensions []string      `yaml:"allowed_extensions"`
	RetentionHours    float64       `yaml:"retention_hours"`
	SweepInterval     time.Duration `yaml:"sweep_interval"`
}

// OCRConfig holds external tool settings.
type OCRConfig struct {
	Engine       string        `yaml:"engine"`     // tesseract or gosseract
	Rasterizer   string        `yaml:"rasterizer"` // poppler or mupdf
	TesseractCmd string        `yaml:"tesseract_cmd"`
	PopplerPath  string        `yaml:"poppler_path"`
	Timeout      time.Duration `yaml:"timeout"`
	DefaultLang  string        `yaml:"default_language"`
	PDFMaxPages  int           `yaml:"pdf_max_pages"`
	PDFDPI       int           `yaml:"pdf_dpi"`
	DemoFallback bool          `yaml:"demo_fallback"`
	// MaxImagePixels caps width*height of uploaded images.
	MaxImagePixels int64 `yaml:"max_image_pixels"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Retention returns the retention window as a duration.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Upload.RetentionHours * float64(time.Hour))
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsProduction reports whether the server runs in release mode.
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "prod"
}

// Load reads configuration from a YAML file and applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns the development defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "127.0.0.1",
			Port:             5000,
			Mode:             "debug",
			SecretKey:        DefaultSecretKey,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     5 * time.Minute,
			GracefulShutdown: 10 * time.Second,
		},
		Upload: UploadConfig{
			Folder:            "static/uploads",
			MaxContentLength:  10 << 20,
			AllowedExtensions: []string{"png", "jpg", "jpeg", "pdf"},
			RetentionHours:    1,
			SweepInterval:     15 * time.Minute,
		},
		OCR: OCRConfig{
			Engine:       "tesseract",
			Rasterizer:   "poppler",
			TesseractCmd: "tesseract",
			Timeout:      30 * time.Second,
			DefaultLang:  "eng",
			PDFMaxPages:  10,
			PDFDPI:       300,
			DemoFallback: true,
			// Pillow's decompression bomb error threshold.
			MaxImagePixels: 2 * 89_478_485,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "prod", "test":
	default:
		return fmt.Errorf("invalid mode: %s", c.Server.Mode)
	}
	if c.Upload.Folder == "" {
		return fmt.Errorf("upload folder is required")
	}
	if c.Upload.MaxContentLength <= 0 {
		return fmt.Errorf("max content length must be positive")
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("at least one allowed extension is required")
	}
	if c.Upload.RetentionHours <= 0 {
		return fmt.Errorf("retention hours must be positive")
	}
	switch c.OCR.Engine {
	case "tesseract", "gosseract":
	default:
		return fmt.Errorf("invalid ocr engine: %s", c.OCR.Engine)
	}
	switch c.OCR.Rasterizer {
	case "poppler", "mupdf":
	default:
		return fmt.Errorf("invalid pdf rasterizer: %s", c.OCR.Rasterizer)
	}
	if c.OCR.PDFMaxPages < 1 {
		return fmt.Errorf("pdf max pages must be at least 1")
	}
	if c.OCR.PDFDPI < 72 || c.OCR.PDFDPI > 1200 {
		return fmt.Errorf("pdf dpi must be between 72 and 1200, got %d", c.OCR.PDFDPI)
	}
	if c.OCR.MaxImagePixels <= 0 {
		return fmt.Errorf("max image pixels must be positive")
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to cfg.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("MODE"); v != "" {
		cfg.Server.Mode = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.Server.SecretKey = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}

	if v := os.Getenv("UPLOAD_FOLDER"); v != "" {
		cfg.Upload.Folder = v
	}
	if v := os.Getenv("MAX_CONTENT_LENGTH"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_CONTENT_LENGTH: %w", err)
		}
		cfg.Upload.MaxContentLength = n
	}
	if v := os.Getenv("ALLOWED_EXTENSIONS"); v != "" {
		cfg.Upload.AllowedExtensions = splitList(v)
	}
	if v := os.Getenv("FILE_RETENTION_HOURS"); v != "" {
		h, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("FILE_RETENTION_HOURS: %w", err)
		}
		cfg.Upload.RetentionHours = h
	}
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SWEEP_INTERVAL: %w", err)
		}
		cfg.Upload.SweepInterval = d
	}

	if v := os.Getenv("OCR_ENGINE"); v != "" {
		cfg.OCR.Engine = v
	}
	if v := os.Getenv("PDF_RASTERIZER"); v != "" {
		cfg.OCR.Rasterizer = v
	}
	if v := os.Getenv("TESSERACT_CMD"); v != "" {
		cfg.OCR.TesseractCmd = v
	}
	if v := os.Getenv("POPPLER_PATH"); v != "" {
		cfg.OCR.PopplerPath = v
	}
	if v := os.Getenv("OCR_TIMEOUT"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OCR_TIMEOUT: %w", err)
		}
		cfg.OCR.Timeout = time.Duration(secs) * time.Second
	}
	if v := os.Getenv("PDF_MAX_PAGES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PDF_MAX_PAGES: %w", err)
		}
		cfg.OCR.PDFMaxPages = n
	}
	if v := os.Getenv("PDF_DPI"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PDF_DPI: %w", err)
		}
		cfg.OCR.PDFDPI = n
	}
	if v := os.Getenv("DEMO_FALLBACK"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DEMO_FALLBACK: %w", err)
		}
		cfg.OCR.DemoFallback = b
	}
	if v := os.Getenv("MAX_IMAGE_PIXELS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_IMAGE_PIXELS: %w", err)
		}
		cfg.OCR.MaxImagePixels = n
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), ".")))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
