package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/audit"
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/issuer"
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/parser"
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/service"
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/sniffer"
	"github.com/FACorreiaa/invoice-extractor/pkg/config"
	"github.com/FACorreiaa/invoice-extractor/pkg/metrics"
	"github.com/FACorreiaa/invoice-extractor/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	// Extraction engine
	Classifier *sniffer.Classifier
	Issuers    *issuer.Directory
	Registry   *parser.Registry
	Extractor  service.TextExtractor
	Service    *service.Service

	// Infrastructure
	Storage    *storage.LocalStorage
	Metrics    *metrics.Metrics
	AuditIndex *audit.Index
}

// InitDependencies initializes all application dependencies. A nil
// extractor selects the PDF text layer reader.
func InitDependencies(cfg *config.Config, logger *slog.Logger, extractor service.TextExtractor) (*Dependencies, error) {
	if extractor == nil {
		extractor = parser.NewPDFParser()
	}
	deps := &Dependencies{
		Config:    cfg,
		Logger:    logger,
		Extractor: extractor,
	}

	if err := deps.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	if err := deps.initEngine(); err != nil {
		return nil, fmt.Errorf("failed to init extraction engine: %w", err)
	}

	if err := deps.initServices(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

func (d *Dependencies) initStorage() error {
	s, err := storage.NewLocalStorage(d.Config.Storage.InboxPath, d.Config.Storage.OutboxPath)
	if err != nil {
		return err
	}
	d.Storage = s
	return nil
}

// initEngine builds the classifier, issuer directory and strategy table
func (d *Dependencies) initEngine() error {
	classifier, err := sniffer.NewClassifier(sniffer.DefaultSignatures())
	if err != nil {
		return err
	}
	d.Classifier = classifier

	issuers := issuer.DefaultIssuers()
	if path := d.Config.IssuersFile; path != "" {
		extra, err := loadIssuers(path)
		if err != nil {
			return err
		}
		issuers = append(issuers, extra...)
	}
	d.Issuers = issuer.NewDirectory(issuers)
	d.Registry = parser.NewRegistry(d.Classifier, d.Issuers)

	d.Logger.Info("extraction engine initialized",
		"templates", len(d.Classifier.Templates()),
		"issuers", d.Issuers.Len(),
	)
	return nil
}

func loadIssuers(path string) ([]issuer.Issuer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open issuers file: %w", err)
	}
	defer f.Close()

	issuers, err := issuer.LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load issuers from %s: %w", path, err)
	}
	return issuers, nil
}

// initServices initializes metrics, the audit index and the batch service
func (d *Dependencies) initServices() error {
	if d.Config.Observability.MetricsEnabled {
		d.Metrics = metrics.New()
	}

	if d.Config.Extraction.AuditEnabled || d.Config.Search.IndexPath != "" {
		index, err := audit.NewIndex(d.Config.Search.IndexPath)
		if err != nil {
			return err
		}
		d.AuditIndex = index
	}

	d.Service = service.NewService(d.Extractor, d.Registry, service.Options{
		AuditEnabled:  d.Config.Extraction.AuditEnabled,
		AuditMaxChars: d.Config.Extraction.AuditMaxChars,
	}, d.Logger).WithMetrics(d.Metrics)

	d.Logger.Info("services initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.AuditIndex != nil {
		if err := d.AuditIndex.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			d.Logger.Warn("failed to close audit index", "error", err)
		}
	}
	d.Logger.Info("cleanup completed")
}
