package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/ocr"
	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/server"
	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/pkg"
)

var extractLang string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Run OCR on a local image or PDF and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the installed OCR languages",
	Args:  cobra.NoArgs,
	RunE:  runLanguages,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete uploads older than the retention window",
	Args:  cobra.NoArgs,
	RunE:  runSweep,
}

func init() {
	extractCmd.Flags().StringVarP(&extractLang, "lang", "l", "", "tesseract language code (default from config)")

	rootCmd.AddCommand(serveCmd, extractCmd, languagesCmd, sweepCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, cfg, logger)
}

func runExtract(cmd *cobra.Command, args []string) error {
	app, err := server.New(cfg, logger)
	if err != nil {
		return err
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if extractLang != "" && !ocr.ValidLanguage(extractLang) {
		return fmt.Errorf("invalid language code %q", extractLang)
	}

	out := app.Pipeline.Process(cmd.Context(), ocr.Source{Path: path}, extractLang)
	if err := pkg.Print(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("extraction failed: %s", out.Error)
	}
	return nil
}

func runLanguages(cmd *cobra.Command, args []string) error {
	app, err := server.New(cfg, logger)
	if err != nil {
		return err
	}
	return pkg.Print(cmd.OutOrStdout(), app.Pipeline.Languages(cmd.Context()))
}

func runSweep(cmd *cobra.Command, args []string) error {
	app, err := server.New(cfg, logger)
	if err != nil {
		return err
	}

	report := app.Sweeper.Sweep(cmd.Context())
	failed := make(map[string]string, len(report.Failed))
	for name, err := range report.Failed {
		failed[name] = err.Error()
	}
	return pkg.Print(cmd.OutOrStdout(), map[string]any{
		"scanned": report.Scanned,
		"removed": report.Removed,
		"failed":  failed,
	})
}
