package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"littlehttp/internal/handlers"
	"littlehttp/internal/http1"
	"littlehttp/internal/logging"
	"littlehttp/internal/resp"
	"littlehttp/internal/router"
)

// Outcome es el resultado etiquetado de atender una conexión.
type Outcome int

const (
	Served Outcome = iota
	Malformed
	IOFailure
)

func (o Outcome) String() string {
	switch o {
	case Served:
		return "served"
	case Malformed:
		return "malformed"
	case IOFailure:
		return "io_failure"
	default:
		return "unknown"
	}
}

// OutcomeOf clasifica el error devuelto por Service. Un error que no es de
// protocolo se trata como fallo de E/S.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return Served
	case errors.Is(err, http1.ErrMalformedRequest):
		return Malformed
	default:
		return IOFailure
	}
}

// Handler atiende exactamente una petición por stream. El valor cero no
// sirve: Resolver es obligatorio. El resto tiene defaults.
type Handler struct {
	Resolver   handlers.Resolver
	Typer      handlers.ContentTyper // nil -> handlers.FixedType(DefaultContentType)
	Open       handlers.Opener       // nil -> os.Open
	ServerName string                // "" -> http1.DefaultServerName
	Now        func() time.Time      // nil -> time.Now
	Log        *slog.Logger          // nil -> descartar
	Metrics    *Metrics              // nil -> sin métricas
}

// NewHandler arma un Handler que no sanea paths (ver handlers.Confined).
func NewHandler(docroot string) *Handler {
	return &Handler{Resolver: handlers.Root(docroot)}
}

// Service lee una petición de in, escribe una respuesta en out y libera todo
// lo que abrió. Ante un request malformado no escribe nada. Ante un fallo de
// E/S la respuesta puede quedar truncada. Nunca termina el proceso.
func Service(in io.Reader, out io.Writer, docroot string) error {
	return NewHandler(docroot).Service(in, out)
}

// Service es la versión configurable de la función Service del paquete.
func (h *Handler) Service(in io.Reader, out io.Writer) error {
	log := h.Log
	if log == nil {
		log = logging.Discard()
	}

	req, err := http1.ParseRequest(bufio.NewReaderSize(in, http1.MaxLineBytes))
	if err != nil {
		h.fail(log, err)
		return err
	}

	res := router.Dispatch(req, h.Resolver)
	if !res.File.OK && res.File.Err != nil {
		log.Debug("lstat failed", "path", res.File.Path, "err", res.File.Err)
	}

	w := bufio.NewWriter(out)
	rw := http1.NewResponseWriter(w, req.ProtoMinor, h.ServerName, h.Now)
	n, err := h.write(rw, res)
	if err == nil {
		if ferr := w.Flush(); ferr != nil {
			err = fmt.Errorf("%w: flush: %w", http1.ErrIOFailure, ferr)
		}
	} else {
		// lo ya bufferizado sale igual; el cliente ve un cuerpo truncado
		_ = w.Flush()
	}
	if err != nil {
		h.fail(log, err, "method", req.Method, "path", req.Path, "status", res.Status)
		return err
	}

	log.Info("served",
		"method", req.Method,
		"path", req.Path,
		"proto", fmt.Sprintf("HTTP/1.%d", req.ProtoMinor),
		"status", res.Status,
		"bytes", n,
	)
	h.Metrics.observeResponse(res.Status, n)
	return nil
}

// write serializa el Result. Devuelve los bytes de cuerpo enviados.
func (h *Handler) write(rw *http1.ResponseWriter, res resp.Result) (int64, error) {
	rw.WriteCommon(res.Status)
	switch res.Kind {
	case resp.File:
		rw.ContentLength(res.File.Size)
		rw.Header("Content-Type", h.typer().ContentType(res.File))
		rw.EndHeader()
		if res.NoBody {
			return 0, nil
		}
		return handlers.SendFile(rw.Writer(), res.File, h.Open)
	default:
		rw.Header("Content-Type", "text/html")
		rw.EndHeader()
		if res.NoBody {
			return 0, nil
		}
		rw.WriteString(res.Body)
		return int64(len(res.Body)), nil
	}
}

func (h *Handler) typer() handlers.ContentTyper {
	if h.Typer == nil {
		return handlers.FixedType(handlers.DefaultContentType)
	}
	return h.Typer
}

func (h *Handler) fail(log *slog.Logger, err error, attrs ...any) {
	o := OutcomeOf(err)
	attrs = append(attrs, "outcome", o.String(), "err", err)
	if o == Malformed {
		log.Warn("request rejected", attrs...)
	} else {
		log.Error("connection aborted", attrs...)
	}
	h.Metrics.observeFailure(o)
}
