// Package logging arma los *slog.Logger del servidor.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Format es el formato de salida de los logs.
type Format string

const (
	TextFormat Format = "text"
	JSONFormat Format = "json"
)

// New crea un logger sobre w. Un formato desconocido cae en texto.
func New(w io.Writer, level slog.Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == JSONFormat {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard devuelve un logger que no escribe nada. Útil en tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(100)}))
}

// LevelFromString acepta debug, info, warn/warning y error (sin distinguir
// mayúsculas). Cualquier otra cosa es info.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseFormat normaliza el formato; "" o desconocido es texto.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(JSONFormat)) {
		return JSONFormat
	}
	return TextFormat
}
