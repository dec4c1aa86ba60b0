package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"verylcheck/internal/core/app"
	"verylcheck/internal/core/config"
	"verylcheck/internal/shared/observability"
	"verylcheck/internal/shared/version"
	"verylcheck/internal/ui/report"
)

const (
	exitOK    = 0
	exitFound = 1
	exitUsage = 2
)

type options struct {
	configPath string
	verbose    bool
	version    bool
	format     string
	metadata   string
	watch      bool
	db         string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("verylcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to Veryl.toml or a directory to search upward from (default: current directory)")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	fs.StringVar(&opts.format, "format", report.FormatText, "Report format: text, json or sarif")
	fs.StringVar(&opts.metadata, "metadata", "", "Print the loaded metadata as json or pretty and exit")
	fs.BoolVar(&opts.watch, "watch", false, "Re-check whenever sources or Veryl.toml change")
	fs.StringVar(&opts.db, "db", "", "Persist assignment facts to this sqlite file")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch opts.format {
	case report.FormatText, report.FormatJSON, report.FormatSARIF:
	default:
		return opts, fmt.Errorf("unknown -format %q (want text, json or sarif)", opts.format)
	}
	switch opts.metadata {
	case "", "json", "pretty":
	default:
		return opts, fmt.Errorf("unknown -metadata %q (want json or pretty)", opts.metadata)
	}
	return opts, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	if opts.version {
		fmt.Fprintf(stdout, "verylcheck v%s\n", version.Version)
		return exitOK
	}

	logLevel := slog.LevelInfo
	if opts.verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	m, err := loadMetadata(opts.configPath)
	if err != nil {
		slog.Error("failed to load metadata", "error", err)
		return exitUsage
	}

	if opts.metadata != "" {
		if err := printMetadata(stdout, m, opts.metadata); err != nil {
			slog.Error("failed to print metadata", "error", err)
			return exitUsage
		}
		return exitOK
	}

	if opts.db != "" {
		m.Analysis.FactsDB = opts.db
		m.Analysis.PersistFacts = true
	}

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Endpoint:    m.Observability.OTLPEndpoint,
		ServiceName: m.Observability.ServiceName,
		Version:     version.Version,
		Insecure:    m.Observability.OTLPInsecure,
	})
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	} else {
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				slog.Warn("failed to flush traces", "error", err)
			}
		}()
	}

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to read working directory", "error", err)
		return exitUsage
	}
	a, err := app.New(m, cwd)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return exitUsage
	}
	defer a.Close()

	if m.Analysis.PersistFacts {
		if err := a.OpenFactStore(); err != nil {
			slog.Error("failed to open fact store", "error", err)
			return exitUsage
		}
	}

	if addr := m.Observability.MetricsAddress; addr != "" {
		server := observability.NewMetricsServer(addr, app.NewHealthService(a))
		if err := server.Start(ctx); err != nil {
			slog.Warn("metrics server not started", "error", err)
		} else {
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = server.Stop(stopCtx)
			}()
		}
	}

	res, err := a.CheckAll(ctx)
	if err != nil {
		slog.Error("check failed", "error", err)
		return exitUsage
	}
	if m.Analysis.PersistFacts {
		if err := a.Persist(ctx, res); err != nil {
			slog.Error("failed to persist facts", "error", err)
		}
	}
	if err := report.Render(stdout, opts.format, res.Report(a.Root())); err != nil {
		slog.Error("failed to render report", "error", err)
		return exitUsage
	}

	if !opts.watch {
		if res.HasErrors() {
			return exitFound
		}
		return exitOK
	}

	err = a.Watch(ctx, func(res *app.Result, err error) {
		if err != nil {
			slog.Error("re-check failed", "error", err)
			return
		}
		if err := report.Render(stdout, opts.format, res.Report(a.Root())); err != nil {
			slog.Error("failed to render report", "error", err)
		}
	})
	if err != nil {
		slog.Error("failed to watch", "error", err)
		return exitUsage
	}
	return exitOK
}

// loadMetadata finds and loads Veryl.toml. A file path is loaded directly; a
// directory, or nothing, is searched upward.
func loadMetadata(path string) (*config.Metadata, error) {
	if path == "" {
		found, err := config.SearchFromCurrent()
		if err != nil {
			return nil, err
		}
		path = found
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		found, err := config.SearchFrom(path)
		if err != nil {
			return nil, err
		}
		path = found
	}

	m, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	config.ApplyEnvOverrides(m)
	if err := m.Check(); err != nil {
		return nil, err
	}
	slog.Debug("metadata loaded", "path", m.MetadataPath, "project", m.Project.Name)
	return m, nil
}

func printMetadata(w io.Writer, m *config.Metadata, mode string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(mode, "pretty") {
		data, err = json.MarshalIndent(m, "", "  ")
	} else {
		data, err = json.Marshal(m)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
