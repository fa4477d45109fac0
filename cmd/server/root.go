package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"littlehttp/internal/config"
	"littlehttp/internal/handlers"
	"littlehttp/internal/logging"
	"littlehttp/internal/server"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "littlehttp",
	Short: "LittleHTTP - minimal HTTP/1.x static file server",
	Long: `LittleHTTP answers exactly one HTTP/1.x request per connection from a
document root: GET/HEAD serve regular files, POST is rejected with 405 and any
other method with 501. Every response closes the connection.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "config file (default ./littlehttp.{toml,yaml,json} if present)")
	pf.String("docroot", "", "document root directory")
	pf.String("server-name", config.Default().ServerName, "value of the Server response header")
	pf.String("content-type", config.ContentTypeFixed, "content type mode: fixed or sniff")
	pf.String("default-type", config.Default().DefaultType, "content type announced in fixed mode")
	pf.Bool("confine", false, "reject request paths that escape the document root")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
}

// loadConfig lee y valida la configuración para cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newHandler traduce la configuración al núcleo. Los logs van a stderr:
// en modo stdio stdout es el socket.
func newHandler(cfg *config.Config, reg prometheus.Registerer) *server.Handler {
	h := &server.Handler{
		ServerName: cfg.ServerName,
		Log:        logging.New(os.Stderr, logging.LevelFromString(cfg.Log.Level), logging.ParseFormat(cfg.Log.Format)),
	}
	if cfg.Confine {
		h.Resolver = handlers.Confined(cfg.DocRoot)
	} else {
		h.Resolver = handlers.Root(cfg.DocRoot)
	}
	if cfg.ContentType == config.ContentTypeSniff {
		h.Typer = handlers.SniffType{Fallback: handlers.FixedType(cfg.DefaultType)}
	} else {
		h.Typer = handlers.FixedType(cfg.DefaultType)
	}
	if reg != nil {
		h.Metrics = server.NewMetrics(reg)
	}
	return h
}
