package http1

import (
	"bufio"
	"fmt"
	"strconv"
	"time"
)

// DateFormat es RFC 1123 con zona literal GMT (time.RFC1123 imprimiría "UTC").
const DateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// DefaultServerName se anuncia en el header Server.
const DefaultServerName = "LittleHTTP/1.0"

// Códigos que este servidor puede emitir.
const (
	StatusOK               = 200
	StatusNotFound         = 404
	StatusMethodNotAllowed = 405
	StatusNotImplemented   = 501
)

// StatusText devuelve la frase de razón; "" para códigos que no emitimos.
func StatusText(code int) string {
	switch code {
	case StatusOK:
		return "OK"
	case StatusNotFound:
		return "Not Found"
	case StatusMethodNotAllowed:
		return "Method Not Allowed"
	case StatusNotImplemented:
		return "Not Implemented"
	default:
		return ""
	}
}

// ResponseWriter compone la cabecera de una respuesta sobre un bufio.Writer.
// Los errores de escritura quedan en el propio bufio.Writer y aparecen en Flush.
type ResponseWriter struct {
	w      *bufio.Writer
	minor  int
	server string
	now    func() time.Time
}

// NewResponseWriter crea un writer que repite la versión menor de la petición.
// server vacío usa DefaultServerName; now nil usa time.Now.
func NewResponseWriter(w *bufio.Writer, minor int, server string, now func() time.Time) *ResponseWriter {
	if server == "" {
		server = DefaultServerName
	}
	if now == nil {
		now = time.Now
	}
	return &ResponseWriter{w: w, minor: minor, server: server, now: now}
}

// WriteCommon escribe status line, Date, Server y Connection: close, en ese
// orden. Todas las respuestas empiezan así.
func (rw *ResponseWriter) WriteCommon(status int) {
	fmt.Fprintf(rw.w, "HTTP/1.%d %d %s\r\n", rw.minor, status, StatusText(status))
	rw.Header("Date", rw.now().UTC().Format(DateFormat))
	rw.Header("Server", rw.server)
	rw.Header("Connection", "close")
}

// Header escribe una línea "Name: value".
func (rw *ResponseWriter) Header(name, value string) {
	rw.w.WriteString(name)
	rw.w.WriteString(": ")
	rw.w.WriteString(value)
	rw.w.WriteString("\r\n")
}

// ContentLength es un atajo para el header Content-Length.
func (rw *ResponseWriter) ContentLength(n int64) {
	rw.Header("Content-Length", strconv.FormatInt(n, 10))
}

// EndHeader escribe la línea en blanco que separa cabecera y cuerpo.
func (rw *ResponseWriter) EndHeader() {
	rw.w.WriteString("\r\n")
}

// WriteString agrega texto al cuerpo.
func (rw *ResponseWriter) WriteString(s string) {
	rw.w.WriteString(s)
}

// Writer expone el buffer para volcar el cuerpo de un archivo.
func (rw *ResponseWriter) Writer() *bufio.Writer { return rw.w }
