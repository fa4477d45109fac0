package main

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
)

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Serve a single request read from stdin, answering on stdout",
	Long: `Serve exactly one request using stdin/stdout as the connection, for use
under inetd, systemd socket activation (Accept=yes) or similar launchers that
start one process per connection. Exits 1 if the request was malformed or an
I/O error aborted the response.`,
	Args: cobra.NoArgs,
	RunE: runStdio,
}

func init() {
	rootCmd.AddCommand(stdioCmd)
}

var ignorePipe sync.Once

// ignoreBrokenPipe hace que escribir en un stdout cerrado sea un error de E/S
// común en lugar de matar el proceso.
func ignoreBrokenPipe() {
	ignorePipe.Do(func() { signal.Ignore(syscall.SIGPIPE) })
}

func runStdio(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ignoreBrokenPipe()

	h := newHandler(cfg, nil)
	if err := h.Service(os.Stdin, os.Stdout); err != nil {
		// ya quedó en el log del handler
		os.Exit(1)
	}
	return nil
}
