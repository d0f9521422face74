// Command invoicex extracts invoice headers and line items from the PDFs in
// an inbox folder and writes them as an XLSX workbook or CSV files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/report"
	"github.com/FACorreiaa/invoice-extractor/pkg/config"
	"github.com/FACorreiaa/invoice-extractor/pkg/cron"
)

type options struct {
	dir     string
	out     string
	format  string
	audit   bool
	watch   bool
	archive bool
	search  string
	limit   int
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "invoicex:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, cfg *config.Config) (options, error) {
	fs := flag.NewFlagSet("invoicex", flag.ContinueOnError)
	opts := options{}
	fs.StringVar(&opts.dir, "dir", cfg.Storage.InboxPath, "folder with the PDF invoices to process")
	fs.StringVar(&opts.out, "out", "", "report path (xlsx file or csv directory); defaults to the outbox")
	fs.StringVar(&opts.format, "format", cfg.Report.Format, "report format: xlsx or csv")
	fs.BoolVar(&opts.audit, "audit", cfg.Extraction.AuditEnabled, "include the raw text audit table")
	fs.BoolVar(&opts.watch, "watch", cfg.Watch.Enabled, "keep running and process the inbox on WATCH_SCHEDULE")
	fs.BoolVar(&opts.archive, "archive", false, "move processed PDFs into the inbox processed/ folder")
	fs.StringVar(&opts.search, "search", "", "query the audit index and print matching documents")
	fs.IntVar(&opts.limit, "limit", 10, "maximum search hits")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts, err := parseFlags(args, cfg)
	if err != nil {
		return err
	}
	cfg.Storage.InboxPath = opts.dir
	cfg.Extraction.AuditEnabled = opts.audit

	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	slog.SetDefault(logger)

	deps, err := InitDependencies(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	runner := NewRunner(deps, format, opts.out, opts.archive)

	if opts.search != "" {
		return runner.Search(os.Stdout, opts.search, opts.limit)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.MetricsEnabled {
		srv := startMetricsServer(deps, cfg.Observability.MetricsPort)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if !opts.watch {
		_, err := runner.RunInbox(ctx)
		return err
	}

	scheduler, err := cron.NewScheduler(cfg.Watch.Schedule, func(ctx context.Context) error {
		_, err := runner.RunInbox(ctx)
		return err
	}, logger)
	if err != nil {
		return err
	}

	if err := scheduler.RunNow(); err != nil {
		logger.Error("initial run failed", "error", err)
	}
	scheduler.Start()
	logger.Info("watching inbox", "inbox", cfg.Storage.InboxPath, "next", scheduler.Next())

	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}

func startMetricsServer(deps *Dependencies, port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", deps.Metrics.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		deps.Logger.Info("metrics server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, handlerOpts))
}
