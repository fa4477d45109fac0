package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"littlehttp/internal/config"
	"littlehttp/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Listen on TCP and serve one request per connection",
	Long: `Accept TCP connections and answer one request on each, at most max-conns
at a time. With --metrics-addr set, Prometheus metrics are exposed on
http://<metrics-addr>/metrics. SIGINT/SIGTERM stop accepting and wait for
in-flight connections.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	d := config.Default()
	f := serveCmd.Flags()
	f.String("addr", d.Addr, "address to listen on")
	f.Int("max-conns", d.MaxConns, "maximum connections served at once")
	f.Duration("read-timeout", d.ReadTimeout, "read deadline per connection (0 disables)")
	f.Duration("write-timeout", d.WriteTimeout, "write deadline per connection (0 disables)")
	f.String("metrics-addr", "", "address for the Prometheus /metrics endpoint (empty disables)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reg *prometheus.Registry
	if cfg.MetricsAddr != "" {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	h := newHandler(cfg, registerer(reg))
	srv := &server.Server{
		Handler:      h,
		MaxConns:     cfg.MaxConns,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Log:          h.Log,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Addr)
	})
	if reg != nil {
		g.Go(func() error {
			return serveMetrics(gctx, cfg.MetricsAddr, reg)
		})
	}

	err = g.Wait()
	h.Log.Info("server stopped", "uptime", server.Uptime().Round(time.Second).String())
	return err
}

// registerer evita pasar un *Registry nil envuelto en una interfaz no nil.
func registerer(reg *prometheus.Registry) prometheus.Registerer {
	if reg == nil {
		return nil
	}
	return reg
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	hs := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(sctx)
	}()
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
