package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := Default()
	if cfg.Addr != d.Addr || cfg.ServerName != "LittleHTTP/1.0" || cfg.ContentType != ContentTypeFixed ||
		cfg.DefaultType != "text/plain" || cfg.MaxConns != 64 || cfg.ReadTimeout != 30*time.Second ||
		cfg.Log.Level != "info" || cfg.Log.Format != "text" || cfg.Confine {
		t.Fatalf("defaults: %+v", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	docroot := t.TempDir()
	p := writeFile(t, "littlehttp.toml", `
docroot = "`+docroot+`"
addr = "127.0.0.1:9000"
content_type = "sniff"
confine = true
max_conns = 8
read_timeout = "5s"

[log]
level = "debug"
format = "json"
`)
	cfg, err := Load(p, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DocRoot != docroot || cfg.Addr != "127.0.0.1:9000" || cfg.ContentType != ContentTypeSniff ||
		!cfg.Confine || cfg.MaxConns != 8 || cfg.ReadTimeout != 5*time.Second ||
		cfg.WriteTimeout != 30*time.Second || cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("file config: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml"), nil); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	p := writeFile(t, "c.toml", "addr = \":1111\"\n[log]\nlevel = \"warn\"\n")
	t.Setenv("LITTLEHTTP_ADDR", ":2222")
	t.Setenv("LITTLEHTTP_LOG_LEVEL", "error")
	t.Setenv("LITTLEHTTP_MAX_CONNS", "3")

	cfg, err := Load(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":2222" || cfg.Log.Level != "error" || cfg.MaxConns != 3 {
		t.Fatalf("env config: %+v", cfg)
	}
}

func TestLoad_ChangedFlagsWin(t *testing.T) {
	t.Setenv("LITTLEHTTP_ADDR", ":2222")
	t.Setenv("LITTLEHTTP_SERVER_NAME", "FromEnv/1")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("addr", ":8080", "")
	fs.String("server-name", "", "")
	fs.String("log-format", "text", "")
	fs.Int("max-conns", 64, "")
	fs.String("unrelated", "", "")
	if err := fs.Parse([]string{"--addr", ":3333", "--log-format", "json", "--unrelated", "x"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", fs)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":3333" || cfg.Log.Format != "json" {
		t.Fatalf("flags: %+v", cfg)
	}
	// flag sin cambiar: manda el entorno
	if cfg.ServerName != "FromEnv/1" || cfg.MaxConns != 64 {
		t.Fatalf("unchanged flags must not override: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, "f", "x")

	cases := []struct {
		name  string
		mod   func(*Config)
		field string
	}{
		{"no docroot", func(c *Config) { c.DocRoot = "" }, "docroot"},
		{"missing docroot", func(c *Config) { c.DocRoot = filepath.Join(dir, "nope") }, "docroot"},
		{"docroot is file", func(c *Config) { c.DocRoot = file }, "docroot"},
		{"bad content type", func(c *Config) { c.ContentType = "guess" }, "content_type"},
		{"zero max conns", func(c *Config) { c.MaxConns = 0 }, "max_conns"},
		{"negative timeout", func(c *Config) { c.WriteTimeout = -time.Second }, "timeouts"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			c.DocRoot = dir
			tc.mod(c)
			err := c.Validate()
			var ce *ConfigError
			if !errors.As(err, &ce) || ce.Field != tc.field {
				t.Fatalf("err=%v want field %s", err, tc.field)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Fatalf("message %q lacks field", err.Error())
			}
		})
	}

	ok := Default()
	ok.DocRoot = dir
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestWriteTOML_RoundTrip(t *testing.T) {
	want := Default()
	want.DocRoot = t.TempDir()
	want.Confine = true
	want.ContentType = ContentTypeSniff
	want.ReadTimeout = 7 * time.Second
	want.Log.Level = "debug"

	var buf bytes.Buffer
	if err := want.WriteTOML(&buf); err != nil {
		t.Fatalf("WriteTOML: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "docroot = ") || !strings.Contains(out, "[log]") {
		t.Fatalf("unexpected TOML:\n%s", out)
	}

	p := writeFile(t, "round.toml", out)
	got, err := Load(p, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *want {
		t.Fatalf("round trip:\n got %+v\nwant %+v", got, want)
	}
}
