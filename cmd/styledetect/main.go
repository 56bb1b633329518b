package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"styledetect/internal/core/config"
	"styledetect/internal/shared/version"

	"github.com/urfave/cli/v3"
)

// exitError carries a non-default process exit code.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:    "styledetect",
		Usage:   "find css and styled tagged templates by the module they are imported from",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: config.DefaultFile,
				Usage: "path to config file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(os.Stderr, cmd.Bool("verbose"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			scanCommand(),
			watchCommand(),
			checkCommand(),
			historyCommand(),
		},
	}
}

func setupLogging(output *os.File, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level})))
}

// openLogFile returns the file UI mode logs to, so log lines do not corrupt
// the terminal.
func openLogFile() (*os.File, error) {
	logPath := resolveLogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		return nil, fmt.Errorf("create log dir for %s: %w", logPath, err)
	}
	if fi, err := os.Lstat(logPath); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("refusing to write logs to symlink path %s", logPath)
	}
	return os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "styledetect", "styledetect.log")
	}
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "styledetect", "styledetect.log")
	}
	return "styledetect.log"
}

func main() {
	if err := rootCommand().Run(context.Background(), os.Args); err != nil {
		code := 1
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			code = exitErr.code
		}
		slog.Error("exited", "error", err)
		os.Exit(code)
	}
}
