package upload

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

// allowedMIMEs maps the sniffed content types we accept to the extensions
// they normally travel with.
var allowedMIMEs = map[string][]string{
	"image/jpeg":      {"jpg", "jpeg"},
	"image/png":       {"png"},
	"application/pdf": {"pdf"},
}

// Validator checks declared extensions and sniffed content signatures.
type Validator struct {
	extensions []string
	allowed    map[string]bool
	logger     zerolog.Logger
}

// NewValidator builds a Validator for the given extension allow-list.
func NewValidator(extensions []string, logger zerolog.Logger) *Validator {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return &Validator{extensions: extensions, allowed: allowed, logger: logger}
}

// Extensions returns the allow-list in configuration order.
func (v *Validator) Extensions() []string {
	return v.extensions
}

// AllowedExtension reports whether name carries an allowed extension.
// The name must contain a dot; the suffix after the last dot is compared
// case-insensitively.
func (v *Validator) AllowedExtension(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	return v.allowed[strings.ToLower(name[i+1:])]
}

// ValidContent reports whether the file at path has a JPEG, PNG or PDF
// signature. Read errors count as rejection.
func (v *Validator) ValidContent(path string) bool {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		v.logger.Error().Err(err).Str("path", path).Msg("file type validation error")
		return false
	}
	for mime := range allowedMIMEs {
		if m.Is(mime) {
			return true
		}
	}
	v.logger.Warn().Str("path", path).Str("mime", m.String()).Msg("rejected content signature")
	return false
}

// Validate runs both the extension and the content check. Neither is
// cross-checked against the other, but both must pass.
func (v *Validator) Validate(path, declaredName string) bool {
	return v.AllowedExtension(declaredName) && v.ValidContent(path)
}
