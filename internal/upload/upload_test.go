package upload

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalPDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func newValidator() *Validator {
	return NewValidator([]string{"png", "jpg", "jpeg", "pdf"}, zerolog.Nop())
}

func TestValidator_AcceptsMatchingSignatures(t *testing.T) {
	dir := t.TempDir()
	v := newValidator()

	cases := map[string][]byte{
		"scan.png":   pngBytes(t),
		"photo.jpg":  jpegBytes(t),
		"PHOTO.JPEG": jpegBytes(t),
		"doc.pdf":    []byte(minimalPDF),
	}
	for name, data := range cases {
		path := writeFile(t, dir, "stored_"+strings.ToLower(name), data)
		assert.True(t, v.Validate(path, name), name)
	}
}

func TestValidator_RejectsDisallowedExtension(t *testing.T) {
	v := newValidator()

	for _, name := range []string{"notes.txt", "archive.tar.gz", "noextension", "image.gif", ".png."} {
		assert.False(t, v.AllowedExtension(name), name)
	}
	assert.True(t, v.AllowedExtension("multi.part.name.PnG"))
}

func TestValidator_RejectsRenamedTextFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fake.png", []byte("just some plain text pretending to be an image\n"))

	assert.False(t, newValidator().Validate(path, "fake.png"))
}

func TestValidator_ContentAndExtensionNotCrossChecked(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "really_a_pdf.png", []byte(minimalPDF))

	assert.True(t, newValidator().Validate(path, "really_a_pdf.png"))
}

func TestValidator_MissingFileIsRejection(t *testing.T) {
	assert.False(t, newValidator().ValidContent(filepath.Join(t.TempDir(), "gone.png")))
}

func TestNameGenerator_UniqueAndSafe(t *testing.T) {
	g := NewNameGenerator("secret")

	a := g.Generate("report.PDF")
	b := g.Generate("report.PDF")
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^report_[0-9a-f]{8}\.pdf$`, a)

	for _, name := range []string{
		"../../etc/passwd.png",
		`..\..\windows\system32\cmd.jpg`,
		"..",
		"",
		"my holiday photo (1).jpeg",
		"a....b.png",
	} {
		got := g.Generate(name)
		assert.NotContains(t, got, "/", name)
		assert.NotContains(t, got, `\`, name)
		assert.NotContains(t, got, "..", name)
		assert.Equal(t, got, filepath.Base(got), name)
	}

	assert.Regexp(t, `^passwd_[0-9a-f]{8}\.png$`, g.Generate("../../etc/passwd.png"))
	assert.Regexp(t, `^my_holiday_photo_1_[0-9a-f]{8}\.jpeg$`, g.Generate("my holiday photo (1).jpeg"))
	assert.Regexp(t, `^upload_[0-9a-f]{8}$`, g.Generate(""))
}

func TestNameGenerator_LongSecret(t *testing.T) {
	g := NewNameGenerator(strings.Repeat("k", 200))
	assert.Regexp(t, `^a_[0-9a-f]{8}\.png$`, g.Generate("a.png"))
}

func TestSecureFilename(t *testing.T) {
	assert.Equal(t, "My_cool_movie.mov", SecureFilename("My cool movie.mov"))
	assert.Equal(t, "etc_passwd", SecureFilename("../../../etc/passwd"))
	assert.Equal(t, "", SecureFilename("..."))
}

func TestStore_SaveAndRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewStore(dir, NewNameGenerator(""))
	require.NoError(t, err)

	data := pngBytes(t)
	f, err := store.Save(bytes.NewReader(data), "scan.png")
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(f.Path))
	assert.Equal(t, store.Dir(), filepath.Dir(f.Path))
	assert.Equal(t, int64(len(data)), f.Size)
	assert.False(t, f.CreatedAt.IsZero())
	assert.FileExists(t, f.Path)

	require.NoError(t, store.Remove(f))
	assert.NoFileExists(t, f.Path)
	// second remove is a no-op
	assert.NoError(t, store.Remove(f))
}

func TestSweeper_RemovesOnlyExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	old := writeFile(t, dir, "old.png", []byte("x"))
	fresh := writeFile(t, dir, "fresh.png", []byte("y"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o750))

	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	s := NewSweeper(dir, time.Hour, zerolog.Nop())
	report := s.Sweep(context.Background())

	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, []string{"old.png"}, report.Removed)
	assert.Empty(t, report.Failed)
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.DirExists(t, filepath.Join(dir, "subdir"))
}

func TestSweeper_MissingDirectoryIsReported(t *testing.T) {
	s := NewSweeper(filepath.Join(t.TempDir(), "nope"), time.Hour, zerolog.Nop())
	report := s.Sweep(context.Background())

	assert.Len(t, report.Failed, 1)
	assert.Empty(t, report.Removed)
}

func TestSweeper_TriggerRunsInBackground(t *testing.T) {
	dir := t.TempDir()
	old := writeFile(t, dir, "old.pdf", []byte("x"))
	past := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	s := NewSweeper(dir, time.Hour, zerolog.Nop())
	assert.True(t, s.Trigger())

	assert.Eventually(t, func() bool {
		_, err := os.Stat(old)
		return os.IsNotExist(err) && !s.running.Load()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSweeper_RunStopsWithContext(t *testing.T) {
	s := NewSweeper(t.TempDir(), time.Hour, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, 5*time.Millisecond) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0B", FormatSize(0))
	assert.Equal(t, "500.0B", FormatSize(500))
	assert.Equal(t, "1.5KB", FormatSize(1536))
	assert.Equal(t, "10.0MB", FormatSize(10<<20))
	assert.Equal(t, "2048.0GB", FormatSize(2048<<30))
}
