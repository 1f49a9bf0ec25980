package upload

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/blake2b"
)

const hashPrefixLen = 8

var (
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
	dotRuns             = regexp.MustCompile(`\.{2,}`)
)

// NameGenerator produces collision-resistant, path-safe names for stored uploads.
type NameGenerator struct {
	key []byte
	seq atomic.Uint64
	now func() time.Time
}

// NewNameGenerator keys the digest with secret. An empty secret gives an
// unkeyed digest.
func NewNameGenerator(secret string) *NameGenerator {
	key := []byte(secret)
	if len(key) > blake2b.Size {
		sum := sha256.Sum256(key)
		key = sum[:]
	}
	return &NameGenerator{key: key, now: time.Now}
}

// Generate returns "<base>_<hash8>.<ext>" for originalName.
func (g *NameGenerator) Generate(originalName string) string {
	base, ext := splitName(originalName)

	h, err := blake2b.New256(g.key)
	if err != nil {
		// key length is bounded in NewNameGenerator
		panic(err)
	}
	fmt.Fprintf(h, "%s|%s|%d", originalName, g.now().Format(time.RFC3339Nano), g.seq.Add(1))
	digest := hex.EncodeToString(h.Sum(nil))[:hashPrefixLen]

	if ext == "" {
		return base + "_" + digest
	}
	return base + "_" + digest + "." + ext
}

// splitName returns the sanitized base name and the lower-cased extension
// (without dot) of name.
func splitName(name string) (string, string) {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base("/" + name)

	var ext string
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = SecureFilename(strings.ToLower(name[i+1:]))
		name = name[:i]
	}
	base := SecureFilename(name)
	if base == "" {
		base = "upload"
	}
	return base, strings.ReplaceAll(ext, ".", "")
}

// SecureFilename reduces name to a flat ASCII file name: separators become
// spaces, whitespace runs become "_", anything outside [A-Za-z0-9_.-] is
// dropped, and leading or trailing dots and underscores are trimmed.
func SecureFilename(name string) string {
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = dotRuns.ReplaceAllString(name, ".")
	return strings.Trim(name, "._")
}
