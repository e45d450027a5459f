package cfg

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"

	"github.com/frans1705/genieacs-mikrotik/internal/apperr"
	"github.com/frans1705/genieacs-mikrotik/internal/logger"
)

// LoadFile reads settings.json. A missing or broken file is logged and
// yields an empty map; it is never fatal.
func LoadFile(path string) map[string]any {
	log := logger.ComponentLogger("settings")

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info().Str("path", path).Msg("settings file not found, using environment variables")
		} else {
			log.Error().Err(err).Str("path", path).Msg("error reading settings file")
		}
		return map[string]any{}
	}

	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		log.Error().Err(err).Str("path", path).Msg("error parsing settings file")
		return map[string]any{}
	}
	log.Info().Str("path", path).Msg("settings loaded from file")
	return out
}

// ReadRaw returns the file bytes when they hold valid JSON, else "{}".
func ReadRaw(path string) []byte {
	b, err := os.ReadFile(path)
	if err != nil || !json.Valid(b) {
		return []byte("{}")
	}
	return b
}

// WriteRaw replaces the whole file with body pretty-printed. body must be
// a JSON object; key order is kept as sent.
func WriteRaw(path string, body []byte) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' || !json.Valid(body) {
		return apperr.NewValidationError("settings body must be a JSON object", nil)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return apperr.NewValidationError("indent settings", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return apperr.NewConfigError("write settings file", err)
	}
	return nil
}
