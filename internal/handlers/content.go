package handlers

import "github.com/gabriel-vasile/mimetype"

// DefaultContentType es el tipo que se anuncia si no se detecta nada mejor.
const DefaultContentType = "text/plain"

// ContentTyper decide el Content-Type de un archivo servido.
type ContentTyper interface {
	ContentType(info FileInfo) string
}

// FixedType anuncia siempre el mismo tipo.
type FixedType string

func (t FixedType) ContentType(FileInfo) string {
	if t == "" {
		return DefaultContentType
	}
	return string(t)
}

// SniffType detecta el tipo por contenido (mimetype lee sólo la cabecera del
// archivo). Si la detección falla usa Fallback.
type SniffType struct {
	Fallback FixedType
}

func (s SniffType) ContentType(info FileInfo) string {
	m, err := mimetype.DetectFile(info.Path)
	if err != nil {
		return s.Fallback.ContentType(info)
	}
	return m.String()
}
