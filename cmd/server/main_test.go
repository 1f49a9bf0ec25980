package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	uploads := filepath.Join(dir, "uploads")
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  mode: test\nupload:\n  folder: " + uploads + "\nocr:\n  tesseract_cmd: /nonexistent/tesseract-for-tests\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path, dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		extractLang = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestExtractCommand_DemonstrationMode(t *testing.T) {
	cfgPath, dir := writeConfig(t)

	img := filepath.Join(dir, "scan.png")
	f, err := os.Create(img)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 4, 4))))
	require.NoError(t, f.Close())

	out, err := execute(t, "extract", img, "--config", cfgPath, "--env-file", "")
	require.NoError(t, err)

	var outcome map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &outcome))
	assert.Equal(t, true, outcome["success"])
	assert.Equal(t, true, outcome["degraded"])
	assert.Contains(t, outcome["text"], "DEMONSTRATION MODE")
}

func TestExtractCommand_MissingFile(t *testing.T) {
	cfgPath, dir := writeConfig(t)

	_, err := execute(t, "extract", filepath.Join(dir, "missing.png"), "--config", cfgPath, "--env-file", "")
	assert.ErrorContains(t, err, "File not found")
}

func TestSweepCommand(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	out, err := execute(t, "sweep", "--config", cfgPath, "--env-file", "")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.EqualValues(t, 0, report["scanned"])
}
