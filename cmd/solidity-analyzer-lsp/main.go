// Package main provides the entry point for the solidity-analyzer-lsp
// language server.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/config"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/pathutil"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/server"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/toolchain"
)

var version = "dev"

// LevelTrace is a custom log level below debug for verbose tracing.
const LevelTrace = slog.Level(-8)

// isCleanShutdown reports whether err represents a normal client disconnect.
// LSP clients commonly close stdio on exit; that should not be reported as
// fatal.
func isCleanShutdown(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	if errors.Is(err, os.ErrClosed) {
		return true
	}
	errStr := err.Error()
	if strings.Contains(errStr, "broken pipe") || strings.Contains(errStr, "EPIPE") {
		return true
	}
	return false
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "solidity-analyzer-lsp: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("solidity-analyzer-lsp", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		logLevel    = fs.String("log-level", "info", "log level: error|warn|info|debug|trace")
		logFile     = fs.String("log-file", "", "log file path (empty to log to stderr)")
		workspace   = fs.String("workspace-root", "", "Foundry workspace root (defaults to the current directory)")
		showVersion = fs.Bool("version", false, "print version and exit")
		_           = fs.Bool("stdio", false, "use stdio transport (default, accepted for editor compatibility)")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: solidity-analyzer-lsp [options]\n\n")
		fmt.Fprintf(os.Stderr, "Solidity/Foundry Language Server Protocol implementation.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.SetOutput(os.Stderr)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		fs.Usage()
		return fmt.Errorf("parse flags: %w", err)
	}

	if *showVersion {
		fmt.Printf("solidity-analyzer-lsp %s\n", version)
		return nil
	}

	logger, cleanup, err := setupLogger(*logLevel, *logFile)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer cleanup()

	logger.Info("starting solidity-analyzer-lsp",
		slog.String("version", version),
		slog.String("log_level", *logLevel),
	)

	root, err := resolveWorkspaceRoot(*workspace)
	if err != nil {
		return fmt.Errorf("resolve workspace root: %w", err)
	}
	logger.Debug("workspace root resolved", slog.String("path", root.String()))

	tc := toolchain.NewDefaultToolchain(config.ResolvedFoundryConfig{})

	srv := server.New(logger, root, nil, nil, nil, tc)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.RunStdio() }()

	logger.Info("running on stdio")

	select {
	case err := <-errCh:
		if err != nil {
			if isCleanShutdown(err) {
				logger.Debug("client closed connection")
			} else {
				return fmt.Errorf("run server: %w", err)
			}
		}
		logger.Info("server shutdown complete")
		return nil
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", slog.String("signal", sig.String()))
		srv.Shutdown()
		if err := srv.Close(); err != nil {
			logger.Warn("error closing connection", slog.String("error", err.Error()))
		}

		// Close stdin to unblock RunStdio's read, since Close doesn't reach
		// the underlying stdin when running detached from a real client.
		if err := os.Stdin.Close(); err != nil {
			logger.Debug("error closing stdin", slog.String("error", err.Error()))
		}

		select {
		case err := <-errCh:
			if err != nil {
				logger.Debug("RunStdio returned after close", slog.String("error", err.Error()))
			}
		case <-time.After(5 * time.Second):
			logger.Warn("shutdown timed out, forcing exit")
		}

		logger.Info("server shutdown complete")
		return nil
	}
}

// resolveWorkspaceRoot canonicalizes raw, defaulting to the current working
// directory. pathutil.New handles the absolute/symlink/NFC canonicalization
// that document URIs are resolved against elsewhere in the server.
func resolveWorkspaceRoot(raw string) (pathutil.NormalizedPath, error) {
	if raw == "" {
		wd, err := os.Getwd()
		if err != nil {
			return pathutil.NormalizedPath{}, fmt.Errorf("getwd: %w", err)
		}
		raw = wd
	}
	return pathutil.New(raw)
}

func setupLogger(level, logFile string) (*slog.Logger, func(), error) {
	var slogLevel slog.Level
	switch level {
	case "error":
		slogLevel = slog.LevelError
	case "warn":
		slogLevel = slog.LevelWarn
	case "info":
		slogLevel = slog.LevelInfo
	case "debug":
		slogLevel = slog.LevelDebug
	case "trace":
		slogLevel = LevelTrace
	default:
		return nil, nil, fmt.Errorf("invalid log level: %q", level)
	}

	var w io.Writer
	var cleanup func()

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		cleanup = func() { _ = f.Close() }
	} else {
		w = os.Stderr
		cleanup = func() {}
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     slogLevel,
		AddSource: true,
	})

	return slog.New(handler), cleanup, nil
}
