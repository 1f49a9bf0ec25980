package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/config"
	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/ocr"
	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/server/handler"
	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/server/router"
	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/server/service"
	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/upload"
)

// App is the assembled dependency graph shared by the HTTP server and the CLI.
type App struct {
	Config    *config.Config
	Pipeline  *ocr.Pipeline
	Store     *upload.Store
	Validator *upload.Validator
	Sweeper   *upload.Sweeper
	Handler   http.Handler

	logger zerolog.Logger
}

// New builds the dependency chain from cfg.
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	setGinMode(cfg.Server.Mode)

	engine, err := ocr.NewEngine(cfg.OCR.Engine, cfg.OCR.TesseractCmd, cfg.OCR.Timeout)
	if err != nil {
		return nil, fmt.Errorf("ocr engine: %w", err)
	}
	rasterizer, err := ocr.NewRasterizer(cfg.OCR.Rasterizer, cfg.OCR.PopplerPath)
	if err != nil {
		return nil, fmt.Errorf("pdf rasterizer: %w", err)
	}
	if cfg.OCR.Engine == "tesseract" {
		if path, err := ocr.ResolveBinary(cfg.OCR.TesseractCmd); err != nil {
			logger.Warn().Str("cmd", cfg.OCR.TesseractCmd).Msg("tesseract binary not found on PATH")
		} else {
			logger.Debug().Str("path", path).Msg("tesseract binary resolved")
		}
	}

	avail := ocr.NewAvailability(engine.Probe, logger)
	pipeline := ocr.NewPipeline(engine, rasterizer, avail, ocr.Options{
		DefaultLanguage: cfg.OCR.DefaultLang,
		Timeout:         cfg.OCR.Timeout,
		MaxPages:        cfg.OCR.PDFMaxPages,
		DPI:             cfg.OCR.PDFDPI,
		DemoFallback:    cfg.OCR.DemoFallback,
		MaxImagePixels:  cfg.OCR.MaxImagePixels,
	}, logger)

	store, err := upload.NewStore(cfg.Upload.Folder, upload.NewNameGenerator(cfg.Server.SecretKey))
	if err != nil {
		return nil, err
	}
	validator := upload.NewValidator(cfg.Upload.AllowedExtensions, logger)
	sweeper := upload.NewSweeper(store.Dir(), cfg.Retention(), logger)

	ocrService := service.NewOCRService(pipeline, store, validator, sweeper, logger)
	ocrHandler := handler.NewOCRHandler(ocrService, cfg.Upload.MaxContentLength)

	return &App{
		Config:    cfg,
		Pipeline:  pipeline,
		Store:     store,
		Validator: validator,
		Sweeper:   sweeper,
		Handler:   router.New(cfg.Server.APIKey, ocrHandler, logger),
		logger:    logger,
	}, nil
}

// Run serves HTTP and runs the periodic sweeper until ctx is cancelled,
// then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.Config.Addr(),
		Handler:      a.Handler,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().
			Str("addr", srv.Addr).
			Str("mode", a.Config.Server.Mode).
			Str("upload_folder", a.Store.Dir()).
			Str("max_upload", upload.FormatSize(a.Config.Upload.MaxContentLength)).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.Sweeper.Run(gctx, a.Config.Upload.SweepInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.GracefulShutdown)
		defer cancel()
		a.logger.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Run builds the app from cfg and serves until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	app, err := New(cfg, logger)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

func setGinMode(mode string) {
	switch mode {
	case "prod":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
}
