package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	coreapp "styledetect/internal/core/app"
	"styledetect/internal/core/app/helpers"
	"styledetect/internal/core/config"
	"styledetect/internal/core/ports"
	"styledetect/internal/data/history"
	"styledetect/internal/engine/styled"
	"styledetect/internal/shared/observability"
	"styledetect/internal/shared/util"
	uicli "styledetect/internal/ui/cli"
	"styledetect/internal/ui/report"
	"styledetect/internal/ui/report/formats"

	"github.com/urfave/cli/v3"
)

// session is the loaded config and app shared by every subcommand.
type session struct {
	cfg         *config.Config
	configPath  string
	configFound bool
	app         *coreapp.App
	shutdown    func(context.Context) error
}

func openSession(ctx context.Context, cmd *cli.Command) (*session, error) {
	path := cmd.String("config")
	cfg, found, err := config.LoadOrDefault(path, cmd.IsSet("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if !found {
		slog.Debug("config file not found; using defaults", "path", path)
	}
	config.ApplyEnvOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:      cfg.Observability.EnableTracing,
		OTLPEndpoint: cfg.Observability.OTLPEndpoint,
		ServiceName:  cfg.Observability.ServiceName,
	})
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	app, err := coreapp.New(cfg, cwd)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("initialize app: %w", err)
	}
	return &session{cfg: cfg, configPath: path, configFound: found, app: app, shutdown: shutdown}, nil
}

func (s *session) Close(ctx context.Context) {
	if err := s.app.Close(); err != nil {
		slog.Warn("failed to close app", "error", err)
	}
	if err := s.shutdown(ctx); err != nil {
		slog.Warn("failed to flush traces", "error", err)
	}
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "classify every tagged template under the given paths",
		ArgsUsage: "[paths...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Usage: "output format: " + strings.Join(config.OutputFormats, ", ")},
			&cli.StringFlag{Name: "out", Usage: "write the report to this path instead of stdout"},
			&cli.BoolFlag{Name: "fail-on-error", Usage: "exit with status 2 when a file cannot be analyzed"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			result, err := s.app.Scan(ctx, ports.ScanRequest{Paths: cmd.Args().Slice()})
			if err != nil {
				return err
			}

			format := s.cfg.Output.Format
			if cmd.IsSet("format") {
				format = cmd.String("format")
			}
			out, err := report.Render(format, result)
			if err != nil {
				return err
			}

			target := s.app.Paths.OutputPath
			if cmd.IsSet("out") {
				target = helpers.ResolveOutputPath(cmd.String("out"), s.app.Paths.ProjectRoot)
			}
			if target != "" {
				if err := helpers.WriteArtifact(target, out); err != nil {
					return err
				}
				slog.Info("report written", "path", target, "format", format)
			} else if _, err := os.Stdout.Write(out); err != nil {
				return err
			}

			if cmd.Bool("fail-on-error") && len(result.Failures) > 0 {
				return &exitError{code: 2, msg: fmt.Sprintf("%d files could not be analyzed", len(result.Failures))}
			}
			return nil
		},
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "classify the tagged templates of one file, unmatched ones included",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().Get(0)
			if path == "" {
				return fmt.Errorf("check requires a file argument")
			}
			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			fileReport, err := s.app.CheckFile(ctx, path)
			if err != nil {
				return err
			}
			writeCheck(os.Stdout, util.RelativeSlashPath(s.app.Paths.ProjectRoot, fileReport.Path), fileReport.Templates)
			return nil
		},
	}
}

func writeCheck(w io.Writer, path string, templates []styled.TemplateMatch) {
	if len(templates) == 0 {
		fmt.Fprintf(w, "%s: no tagged templates\n", path)
		return
	}
	for _, m := range templates {
		fmt.Fprintln(w, formats.MatchLine(path, m))
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "scan, then re-analyze files as they change",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "ui", Usage: "show results in an interactive terminal view"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ui := cmd.Bool("ui")
			if ui {
				f, err := openLogFile()
				if err != nil {
					fmt.Fprintf(os.Stderr, "warning: %v\n", err)
				} else {
					defer f.Close()
					setupLogging(f, cmd.Bool("verbose"))
				}
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close(context.Background())

			result, err := s.app.Scan(ctx, ports.ScanRequest{})
			if err != nil {
				return err
			}
			slog.Info("initial scan complete", "files", len(result.Files), "matches", result.MatchCount(), "failures", len(result.Failures))

			if s.cfg.Observability.Enabled {
				server := observability.NewServer(s.cfg.Observability.Address, coreapp.NewHealthService(s.app).Components)
				if err := server.Start(ctx); err != nil {
					return err
				}
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = server.Stop(shutdownCtx)
				}()
			}

			if s.configFound {
				cw := config.NewWatcher(s.configPath, func(cfg *config.Config) {
					if err := s.app.Reload(cfg); err != nil {
						slog.Warn("config reload rejected", "error", err)
					}
				})
				if err := cw.Start(ctx); err != nil {
					slog.Warn("config hot reload disabled", "error", err)
				} else {
					defer cw.Stop()
				}
			}

			if err := s.app.StartWatcher(); err != nil {
				return err
			}

			if ui {
				return uicli.RunUI(s.app)
			}

			root := s.app.Paths.ProjectRoot
			s.app.SetUpdateHandler(func(u ports.WatchUpdate) {
				writeUpdate(os.Stdout, root, u)
			})
			<-ctx.Done()
			return nil
		},
	}
}

func writeUpdate(w io.Writer, root string, u ports.WatchUpdate) {
	for _, path := range u.Removed {
		fmt.Fprintf(w, "removed %s\n", util.RelativeSlashPath(root, path))
	}
	for _, r := range u.Reports {
		rel := util.RelativeSlashPath(root, r.Path)
		for _, m := range r.Matches() {
			fmt.Fprintln(w, formats.MatchLine(rel, m))
		}
	}
	for _, f := range u.Failures {
		fmt.Fprintf(w, "failed %s: %s\n", util.RelativeSlashPath(root, f.Path), f.Error)
	}
	fmt.Fprintf(w, "[%s] %d files, %d templates\n", u.Timestamp.Local().Format("15:04:05"), u.FileCount, u.Matches)
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "show recorded scan runs with deltas",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "since", Usage: "only runs newer than this age, e.g. 168h"},
			&cli.StringFlag{Name: "project", Usage: "project key; defaults to the project root directory name"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			store := s.app.HistoryStore()
			if store == nil {
				return fmt.Errorf("history is disabled; set db.enabled = true")
			}

			key := cmd.String("project")
			if key == "" {
				key = s.app.ProjectKey()
			}
			var since time.Time
			if d := cmd.Duration("since"); d > 0 {
				since = time.Now().Add(-d)
			}

			runs, err := store.LoadRuns(key, since)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Printf("no runs recorded for %s\n", key)
				return nil
			}
			points, err := history.BuildTrend(runs)
			if err != nil {
				return err
			}
			return writeTrend(os.Stdout, points)
		},
	}
}

func writeTrend(w io.Writer, points []history.TrendPoint) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tTIME\tFILES\tTEMPLATES\tFAILURES")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%s\t%d (%s)\t%d (%s)\t%d (%s)\n",
			shortID(p.Run.ID),
			p.Run.Timestamp.Local().Format(time.DateTime),
			p.Run.Files, signed(p.DeltaFiles),
			p.Run.Matches, signed(p.DeltaMatches),
			p.Run.Failures, signed(p.DeltaFailures),
		)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func signed(n int) string {
	return fmt.Sprintf("%+d", n)
}
