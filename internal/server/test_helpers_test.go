package server

import (
	"bytes"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

var fixedNow = func() time.Time { return time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC) }

const fixedDate = "Tue, 02 Jan 2024 03:04:05 GMT"

// newDocroot crea un docroot temporal con los archivos dados.
func newDocroot(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func testHandler(root string) *Handler {
	h := NewHandler(root)
	h.Now = fixedNow
	return h
}

// run ejecuta Service sobre un request en memoria y devuelve la salida cruda.
func run(t *testing.T, h *Handler, raw string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := h.Service(strings.NewReader(raw), &out)
	return out.String(), err
}

// serveOverPipe atiende un único request con s.HandleConn sobre net.Pipe y
// devuelve todo lo que el servidor escribió antes de cerrar.
func serveOverPipe(t *testing.T, s *Server, req string) string {
	t.Helper()

	srv, cli := net.Pipe()
	t.Cleanup(func() { _ = cli.Close() })

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.HandleConn(srv)
	}()
	// si el servidor corta antes de leerlo todo, la escritura falla y listo
	go func() { _, _ = io.WriteString(cli, req) }()

	_ = cli.SetReadDeadline(time.Now().Add(5 * time.Second))
	out, err := io.ReadAll(cli)
	if err != nil && !isClosed(err) {
		t.Fatalf("read response: %v", err)
	}
	<-done
	return string(out)
}

func isClosed(err error) bool {
	return errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed)
}

type parsedHTTP struct {
	StatusLine string
	Code       int
	Headers    []string // en orden, "Name: value"
	Body       string
}

func parseHTTP(raw string) parsedHTTP {
	head, body, _ := strings.Cut(raw, "\r\n\r\n")
	lines := strings.Split(head, "\r\n")
	p := parsedHTTP{StatusLine: lines[0], Headers: lines[1:], Body: body}
	if f := strings.Fields(lines[0]); len(f) >= 2 {
		p.Code, _ = strconv.Atoi(f[1])
	}
	return p
}

func (p parsedHTTP) header(name string) string {
	for _, h := range p.Headers {
		if k, v, ok := strings.Cut(h, ": "); ok && strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
