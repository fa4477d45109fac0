package http1

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// MaxLineBytes acota cada línea (request-line o header), terminador incluido.
	MaxLineBytes = 4096
	// MaxBodyBytes es el techo duro para Content-Length.
	MaxBodyBytes = 1 << 20

	protoPrefix = "HTTP/1."
)

// Request modela una petición HTTP/1.x ya parseada. No se modifica después
// de ParseRequest.
type Request struct {
	Method     string // en mayúsculas
	Path       string // request-target tal cual, sin decodificar
	ProtoMinor int
	Header     *Header
	Body       []byte // nil salvo Content-Length > 0
}

var (
	// ErrMalformedRequest agrupa todo error de protocolo/entrada. Es fatal
	// para la conexión: no se envía respuesta.
	ErrMalformedRequest = errors.New("malformed request")
	// ErrIOFailure agrupa fallos de lectura/escritura del stream o del archivo.
	ErrIOFailure = errors.New("i/o failure")

	ErrNoRequestLine = fmt.Errorf("%w: no request line", ErrMalformedRequest)
	ErrRequestLine   = fmt.Errorf("%w: parse error on request line", ErrMalformedRequest)
	ErrProtocol      = fmt.Errorf("%w: unsupported protocol", ErrMalformedRequest)
	ErrHeaderField   = fmt.Errorf("%w: parse error on request header field", ErrMalformedRequest)
	ErrLineTooLong   = fmt.Errorf("%w: line too long", ErrMalformedRequest)
	ErrContentLength = fmt.Errorf("%w: invalid Content-Length", ErrMalformedRequest)
	ErrBodyTooLarge  = fmt.Errorf("%w: request body too long", ErrMalformedRequest)
	ErrShortBody     = fmt.Errorf("%w: failed to read request body", ErrMalformedRequest)
)

// ParseRequest lee exactamente una petición desde r.
// Formato aceptado:
//
//	request-line: "METHOD SP path SP HTTP/1.<minor>" + (CRLF | LF)
//	0..N header-lines "Name:<sp/tab>*value" + (CRLF | LF)
//	línea vacía
//	cuerpo opcional de Content-Length bytes
//
// No hay soporte para headers plegados en varias líneas.
func ParseRequest(r *bufio.Reader) (*Request, error) {
	req := &Request{Header: &Header{}}

	line, err := readLine(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoRequestLine
		}
		return nil, err
	}
	if err := parseRequestLine(req, line); err != nil {
		return nil, err
	}

	for {
		l, err := readLine(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: unexpected end of headers", ErrHeaderField)
			}
			return nil, err
		}
		if l == "" {
			break
		}
		name, value, ok := strings.Cut(l, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrHeaderField, l)
		}
		req.Header.prepend(name, strings.TrimLeft(value, " \t"))
	}

	n, err := contentLength(req.Header)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		req.Body = make([]byte, n)
		if _, err := io.ReadFull(r, req.Body); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: want %d bytes: %w", ErrShortBody, n, err)
			}
			return nil, fmt.Errorf("%w: reading body: %w", ErrIOFailure, err)
		}
	}
	return req, nil
}

// parseRequestLine corta en el primer espacio (método), luego en el siguiente
// (path) y valida el resto como "HTTP/1.<minor>".
func parseRequestLine(req *Request, line string) error {
	method, rest, ok := strings.Cut(line, " ")
	if !ok {
		return fmt.Errorf("%w (1): %q", ErrRequestLine, line)
	}
	path, proto, ok := strings.Cut(rest, " ")
	if !ok {
		return fmt.Errorf("%w (2): %q", ErrRequestLine, line)
	}
	if len(proto) < len(protoPrefix) || !strings.EqualFold(proto[:len(protoPrefix)], protoPrefix) {
		return fmt.Errorf("%w (3): %q", ErrRequestLine, line)
	}
	minor, err := parseMinor(proto[len(protoPrefix):])
	if err != nil {
		return fmt.Errorf("%w: %q", ErrProtocol, proto)
	}

	req.Method = strings.ToUpper(method)
	req.Path = path
	req.ProtoMinor = minor
	return nil
}

// parseMinor exige sólo dígitos; no cae a 0 ante basura como haría atoi.
func parseMinor(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

// contentLength devuelve 0 cuando no hay header.
func contentLength(h *Header) (int64, error) {
	v, ok := h.Lookup("Content-Length")
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(strings.Trim(v, " \t"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrContentLength, v)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative value %d", ErrContentLength, n)
	}
	if n > MaxBodyBytes {
		return 0, fmt.Errorf("%w: %d > %d", ErrBodyTooLarge, n, MaxBodyBytes)
	}
	return n, nil
}

// readLine devuelve la línea sin su terminador (LF o CRLF). Una última línea
// sin terminador antes de EOF se devuelve igual; EOF sin datos es io.EOF.
// Similar a readLineSlice() de net/textproto, pero con tope MaxLineBytes.
func readLine(r *bufio.Reader) (string, error) {
	var line []byte
	for {
		frag, err := r.ReadSlice('\n')
		line = append(line, frag...)
		if len(line) > MaxLineBytes {
			return "", fmt.Errorf("%w: more than %d bytes", ErrLineTooLong, MaxLineBytes)
		}
		if err == nil {
			break
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF {
			if len(line) == 0 {
				return "", io.EOF
			}
			break
		}
		return "", fmt.Errorf("%w: reading line: %w", ErrIOFailure, err)
	}
	s := strings.TrimSuffix(string(line), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}
