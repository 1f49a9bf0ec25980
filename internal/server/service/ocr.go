package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/domain"
	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/ocr"
	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/upload"
)

// Pipeline defines the OCR dependency.
type Pipeline interface {
	Process(ctx context.Context, src ocr.Source, language string) ocr.Outcome
	Languages(ctx context.Context) []string
}

// Sweeper starts an opportunistic retention sweep.
type Sweeper interface {
	Trigger() bool
}

// OCRService orchestrates upload intake and OCR processing.
type OCRService struct {
	pipeline  Pipeline
	store     *upload.Store
	validator *upload.Validator
	sweeper   Sweeper
	logger    zerolog.Logger
}

// NewOCRService creates OCRService.
func NewOCRService(pipeline Pipeline, store *upload.Store, validator *upload.Validator, sweeper Sweeper, logger zerolog.Logger) *OCRService {
	return &OCRService{
		pipeline:  pipeline,
		store:     store,
		validator: validator,
		sweeper:   sweeper,
		logger:    logger.With().Str("component", "ocr_service").Logger(),
	}
}

// Process persists the uploaded file, validates it and runs OCR. The
// returned error is always a validation error; processing failures are
// reported in the Outcome. The stored file is removed before returning.
func (s *OCRService) Process(ctx context.Context, file multipart.File, header *multipart.FileHeader, lang string) (ocr.Outcome, error) {
	defer s.sweeper.Trigger()

	if header == nil || header.Filename == "" {
		return ocr.Outcome{}, domain.ValidationError("No file selected", nil)
	}
	if !s.validator.AllowedExtension(header.Filename) {
		return ocr.Outcome{}, domain.ValidationError(
			"File type not allowed. Supported formats: "+strings.Join(s.validator.Extensions(), ", "), nil)
	}
	if lang != "" && !ocr.ValidLanguage(lang) {
		return ocr.Outcome{}, domain.ValidationError("Invalid language code", nil)
	}

	stored, err := s.store.Save(file, header.Filename)
	if err != nil {
		return ocr.Outcome{}, fmt.Errorf("persist upload (%s): %w", header.Filename, err)
	}
	defer func() {
		if err := s.store.Remove(stored); err != nil {
			s.logger.Warn().Err(err).Str("file", stored.Name).Msg("failed to remove processed file")
		}
	}()

	if !s.validator.ValidContent(stored.Path) {
		return ocr.Outcome{}, domain.ValidationError("Invalid file type detected", nil)
	}

	s.logger.Info().
		Str("file", stored.Name).
		Str("original", header.Filename).
		Str("size", upload.FormatSize(stored.Size)).
		Msg("processing upload")

	return s.pipeline.Process(ctx, ocr.Source{Path: stored.Path, Name: header.Filename}, lang), nil
}

// Languages returns the languages the engine can recognize.
func (s *OCRService) Languages(ctx context.Context) []string {
	return s.pipeline.Languages(ctx)
}

// TriggerCleanup starts a retention sweep unless one is running.
func (s *OCRService) TriggerCleanup() bool {
	return s.sweeper.Trigger()
}
