// mysticism-mud runs a single local player in the current terminal, using
// the same server the SSH host runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"mysticism-mud/internal/config"
	"mysticism-mud/internal/mud"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
)

func main() {
	cfgPath := flag.String("config", "config.yml", "Path to the YAML game configuration")
	logFile := flag.String("log", "", "Write logs to this file (discarded when empty)")
	flag.Parse()

	if err := run(*cfgPath, *logFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, logFile string) error {
	// The terminal belongs to the game, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	server := mud.NewServer(mud.Options{Config: cfg, ConfigPath: cfgPath, Logger: logger})
	defer server.Shutdown()

	name := os.Getenv("USER")
	if name == "" {
		name = "Wizard"
	}
	_, color := server.NextPlayer()
	sess := mud.NewSession(name, color, screen)
	server.AddSession(sess)
	defer server.RemoveSession(sess)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	server.RunLoop(ctx, sess)
	return nil
}
