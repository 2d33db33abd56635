// mysticism-mud-server starts an SSH server where every connected player
// shares one world and one mysticism engine. Build:
//
//	go build -o mysticism-mud-server ./cmd/server
//
// Usage:
//
//	./mysticism-mud-server [--port 2222] [--key server_host_key] [--config config.yml]
//
// Connect from any number of terminals:
//
//	ssh -p 2222 localhost
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"mysticism-mud/internal/config"
	"mysticism-mud/internal/mud"
	"mysticism-mud/internal/platform/otel"
	internalssh "mysticism-mud/internal/ssh"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode"

	gossh "github.com/gliderlabs/ssh"
	xssh "golang.org/x/crypto/ssh"
)

const serviceName = "mysticism-mud"

func main() {
	host, err := config.LoadHost()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	port := flag.Int("port", host.Port, "SSH server port")
	keyFile := flag.String("key", host.HostKey, "Path to the PEM-encoded host key (auto-generated if absent)")
	cfgPath := flag.String("config", host.ConfigPath, "Path to the YAML game configuration")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: host.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, host, *port, *keyFile, *cfgPath, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, host config.Host, port int, keyFile, cfgPath string, logger *slog.Logger) error {
	shutdownTracing, err := otel.Setup(ctx, serviceName, host.OTelEndpoint, host.OTelEnabled)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing shutdown", "error", err)
		}
	}()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	server := mud.NewServer(mud.Options{
		Config:     cfg,
		ConfigPath: cfgPath,
		Logger:     logger,
	})
	defer server.Shutdown()

	go watchConfig(ctx, server, cfgPath, logger)

	signer, err := loadOrCreateHostKey(keyFile, logger)
	if err != nil {
		return err
	}

	srv := &gossh.Server{
		Addr: fmt.Sprintf(":%d", port),
		Handler: func(s gossh.Session) {
			handleSession(server, s, logger)
		},
		// Accept PTY requests from any client.
		PtyCallback: func(_ gossh.Context, _ gossh.Pty) bool { return true },
		// Accept any authentication. Add gossh.PublicKeyAuth or
		// gossh.PasswordAuth options for real auth.
		HostSigners: []gossh.Signer{signer},
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		_ = srv.Close()
	}()

	logger.Info("mysticism-mud SSH server listening", "port", port)
	logger.Info(fmt.Sprintf("Connect with:  ssh -p %d -o StrictHostKeyChecking=no localhost", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, gossh.ErrServerClosed) {
		return err
	}
	return nil
}

// watchConfig reloads the game configuration whenever the file changes.
func watchConfig(ctx context.Context, server *mud.Server, path string, logger *slog.Logger) {
	w, err := config.Watch(path)
	if err != nil {
		logger.Warn("config watch disabled", "path", path, "error", err)
		return
	}
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.Events:
			if err := server.ReloadFile(); err != nil {
				logger.Warn("config reload failed", "path", path, "error", err)
			}
		case err := <-w.Errors:
			logger.Warn("config watch", "error", err)
		}
	}
}

// ─── sessions ───────────────────────────────────────────────────────────────

// handleSession is the gliderlabs SSH handler for one connection.
// It blocks for the duration of the connection so the SSH session stays open.
func handleSession(server *mud.Server, s gossh.Session, logger *slog.Logger) {
	screen, err := internalssh.NewScreen(s)
	if errors.Is(err, internalssh.ErrNoPTY) {
		fmt.Fprintln(s, "This game requires a PTY. Connect with: ssh -t -p 2222 <host>")
		return
	}
	if err != nil {
		fmt.Fprintf(s, "Terminal setup failed: %v\n", err)
		return
	}
	defer screen.Fini()

	n, color := server.NextPlayer()
	name := sanitizeName(s.User())
	if name == "" {
		name = fmt.Sprintf("Player%d", n)
	}

	sess := mud.NewSession(name, color, screen)
	server.AddSession(sess)
	defer server.RemoveSession(sess)

	logger.Info("player connected", "player", name, "session", sess.ID, "remote", s.RemoteAddr().String())
	server.RunLoop(s.Context(), sess)
	logger.Info("player disconnected", "player", name, "session", sess.ID)
}

// maxNameBytes bounds player names on the status line.
const maxNameBytes = 16

// sanitizeName strips control characters and truncates to maxNameBytes
// without splitting a rune.
func sanitizeName(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsControl(r) {
			continue
		}
		size := len(string(r))
		if b.Len()+size > maxNameBytes {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ─── host key ───────────────────────────────────────────────────────────────

// loadOrCreateHostKey loads a PEM private key from path, or generates and
// persists a new ed25519 key if the file is absent or unreadable.
func loadOrCreateHostKey(path string, logger *slog.Logger) (gossh.Signer, error) {
	if data, err := os.ReadFile(path); err == nil {
		if signer, err := xssh.ParsePrivateKey(data); err == nil {
			logger.Info("loaded host key", "path", path)
			return signer, nil
		}
	}

	logger.Info("generating new ed25519 host key", "path", path)
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate host key: %w", err)
	}
	signer, err := xssh.NewSignerFromKey(key)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	// Persist for next run (non-fatal if it fails).
	if pemBlock, err := xssh.MarshalPrivateKey(key, "mysticism-mud server"); err == nil {
		if err := os.WriteFile(path, pem.EncodeToMemory(pemBlock), 0600); err != nil {
			logger.Warn("host key not saved", "path", path, "error", err)
		}
	}
	return signer, nil
}
