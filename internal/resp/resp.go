package resp

import "littlehttp/internal/handlers"

// Kind distingue cómo se serializa el cuerpo de un Result.
type Kind int

const (
	// File: 200 con Content-Length/Content-Type y el archivo como cuerpo.
	File Kind = iota
	// HTML: página generada con Content-Type text/html.
	HTML
)

// Result define el contrato de salida del router: qué status se responde y
// con qué cuerpo. El server lo serializa; el router no escribe nada.
type Result struct {
	Status int
	Kind   Kind
	Body   string            // sólo para HTML
	File   handlers.FileInfo // sólo para File
	// NoBody suprime el cuerpo (HEAD) manteniendo los headers.
	NoBody bool
}

// Constructores auxiliares para mantener consistencia en todo el árbol.
func FileOK(info handlers.FileInfo, head bool) Result {
	return Result{Status: 200, Kind: File, File: info, NoBody: head}
}
func NotFound(body string, head bool) Result {
	return Result{Status: 404, Kind: HTML, Body: body, NoBody: head}
}
func MethodNotAllowed(body string) Result { return Result{Status: 405, Kind: HTML, Body: body} }
func NotImplemented(body string) Result   { return Result{Status: 501, Kind: HTML, Body: body} }
