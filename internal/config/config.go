package config

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix antecede a toda variable de entorno reconocida
// (p. ej. LITTLEHTTP_DOCROOT, LITTLEHTTP_LOG_LEVEL).
const EnvPrefix = "LITTLEHTTP"

// Modos de Content-Type.
const (
	ContentTypeFixed = "fixed"
	ContentTypeSniff = "sniff"
)

// Config es la configuración completa del servidor.
type Config struct {
	DocRoot      string        `mapstructure:"docroot" toml:"docroot"`
	Addr         string        `mapstructure:"addr" toml:"addr"`
	ServerName   string        `mapstructure:"server_name" toml:"server_name"`
	ContentType  string        `mapstructure:"content_type" toml:"content_type"`
	DefaultType  string        `mapstructure:"default_type" toml:"default_type"`
	Confine      bool          `mapstructure:"confine" toml:"confine"`
	MaxConns     int           `mapstructure:"max_conns" toml:"max_conns"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" toml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" toml:"write_timeout"`
	MetricsAddr  string        `mapstructure:"metrics_addr" toml:"metrics_addr"`
	Log          LogConfig     `mapstructure:"log" toml:"log"`
}

// LogConfig controla el logger.
type LogConfig struct {
	Level  string `mapstructure:"level" toml:"level"`
	Format string `mapstructure:"format" toml:"format"`
}

// Default devuelve la configuración por defecto. DocRoot queda vacío: no
// hay un valor razonable.
func Default() *Config {
	return &Config{
		Addr:         ":8080",
		ServerName:   "LittleHTTP/1.0",
		ContentType:  ContentTypeFixed,
		DefaultType:  "text/plain",
		MaxConns:     64,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("docroot", d.DocRoot)
	v.SetDefault("addr", d.Addr)
	v.SetDefault("server_name", d.ServerName)
	v.SetDefault("content_type", d.ContentType)
	v.SetDefault("default_type", d.DefaultType)
	v.SetDefault("confine", d.Confine)
	v.SetDefault("max_conns", d.MaxConns)
	v.SetDefault("read_timeout", d.ReadTimeout)
	v.SetDefault("write_timeout", d.WriteTimeout)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load arma la configuración con esta precedencia (de menor a mayor):
// defaults, archivo, variables LITTLEHTTP_*, flags cambiados en la línea de
// comandos. path vacío busca "littlehttp.{toml,yaml,json}" en el directorio
// actual y no falla si no existe; un path explícito inexistente sí falla.
// Los flags se enlazan por nombre: "log-level" corresponde a "log.level".
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("littlehttp")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if strings.HasPrefix(key, "log_") {
				key = "log." + strings.TrimPrefix(key, "log_")
			}
			if !knownKeys[key] {
				return
			}
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, bindErr
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var knownKeys = map[string]bool{
	"docroot": true, "addr": true, "server_name": true, "content_type": true,
	"default_type": true, "confine": true, "max_conns": true, "read_timeout": true,
	"write_timeout": true, "metrics_addr": true, "log.level": true, "log.format": true,
}

// Validate revisa lo que el servidor necesita para arrancar.
func (c *Config) Validate() error {
	if c.DocRoot == "" {
		return &ConfigError{Field: "docroot", Message: "document root is required"}
	}
	st, err := os.Stat(c.DocRoot)
	if err != nil {
		return &ConfigError{Field: "docroot", Message: err.Error()}
	}
	if !st.IsDir() {
		return &ConfigError{Field: "docroot", Message: "not a directory"}
	}
	switch c.ContentType {
	case ContentTypeFixed, ContentTypeSniff:
	default:
		return &ConfigError{Field: "content_type", Message: "must be fixed or sniff, got " + c.ContentType}
	}
	if c.MaxConns <= 0 {
		return &ConfigError{Field: "max_conns", Message: "must be positive"}
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return &ConfigError{Field: "timeouts", Message: "must not be negative"}
	}
	return nil
}

// WriteTOML serializa la configuración efectiva.
func (c *Config) WriteTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// ConfigError representa un error de validación.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
