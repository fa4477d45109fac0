package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"littlehttp/internal/logging"
	"littlehttp/internal/util"
)

// DefaultMaxConns limita las conexiones atendidas a la vez.
const DefaultMaxConns = 64

// Server es el supervisor: acepta conexiones y ejecuta Handler.Service una
// vez por conexión. El núcleo (Handler) no sabe nada de sockets.
type Server struct {
	Handler      *Handler
	MaxConns     int           // <= 0 -> DefaultMaxConns
	ReadTimeout  time.Duration // 0 -> sin deadline
	WriteTimeout time.Duration // 0 -> sin deadline
	Log          *slog.Logger
}

func (s *Server) log() *slog.Logger {
	if s.Log == nil {
		return logging.Discard()
	}
	return s.Log
}

// HandleConn procesa exactamente una petición y cierra la conexión.
func (s *Server) HandleConn(c net.Conn) {
	defer c.Close()

	m := s.Handler.Metrics
	m.connAccepted()
	defer m.connDone()

	now := time.Now()
	if s.ReadTimeout > 0 {
		_ = c.SetReadDeadline(now.Add(s.ReadTimeout))
	}
	if s.WriteTimeout > 0 {
		_ = c.SetWriteDeadline(now.Add(s.WriteTimeout))
	}

	// copia por conexión para no compartir el logger con atributos
	h := *s.Handler
	h.Log = s.log().With("conn", util.NewConnID(), "remote", remoteAddr(c))
	_ = h.Service(c, c)
}

// Serve acepta conexiones de ln hasta que ctx se cancela o Accept falla de
// forma no temporal. Antes de volver espera a las conexiones en curso.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	max := s.MaxConns
	if max <= 0 {
		max = DefaultMaxConns
	}
	sem := semaphore.NewWeighted(int64(max))

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	var g errgroup.Group
	defer g.Wait()

	log := s.log()
	var delay time.Duration
	for {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil
		}
		c, err := ln.Accept()
		if err != nil {
			sem.Release(1)
			if ctx.Err() != nil {
				return nil
			}
			if !retryable(err) {
				return err
			}
			delay = nextDelay(delay)
			log.Warn("accept error; retrying", "err", err, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		delay = 0
		g.Go(func() error {
			defer sem.Release(1)
			s.HandleConn(c)
			return nil
		})
	}
}

// Backoff entre Accept fallidos, como net/http.
const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

func nextDelay(d time.Duration) time.Duration {
	if d == 0 {
		return minAcceptDelay
	}
	if d *= 2; d > maxAcceptDelay {
		d = maxAcceptDelay
	}
	return d
}

// retryable reporta si Accept puede volver a intentarse: timeouts y
// agotamiento de recursos (descriptores, buffers) o una conexión abortada
// por el cliente antes de aceptarla.
func retryable(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	for _, errno := range []syscall.Errno{syscall.EMFILE, syscall.ENFILE, syscall.ENOBUFS, syscall.ENOMEM, syscall.ECONNABORTED} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

// ListenAndServe abre un listener TCP en addr y llama a Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	s.log().Info("listening", "addr", ln.Addr().String(), "max_conns", s.MaxConns)
	return s.Serve(ctx, ln)
}

func remoteAddr(c net.Conn) string {
	if a := c.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}
