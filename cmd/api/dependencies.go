package api

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/FACorreiaa/course-planner/internal/domain/catalog"
	catalogrepo "github.com/FACorreiaa/course-planner/internal/domain/catalog/repository"
	planrepo "github.com/FACorreiaa/course-planner/internal/domain/plan/repository"
	planservice "github.com/FACorreiaa/course-planner/internal/domain/plan/service"
	"github.com/FACorreiaa/course-planner/internal/domain/transcript/document"
	"github.com/FACorreiaa/course-planner/internal/domain/transcript/extraction"
	"github.com/FACorreiaa/course-planner/internal/domain/transcript/inference"
	"github.com/FACorreiaa/course-planner/internal/domain/transcript/parser"
	transcriptrepo "github.com/FACorreiaa/course-planner/internal/domain/transcript/repository"
	transcriptservice "github.com/FACorreiaa/course-planner/internal/domain/transcript/service"

	"github.com/FACorreiaa/course-planner/pkg/config"
	"github.com/FACorreiaa/course-planner/pkg/db"
	"github.com/FACorreiaa/course-planner/pkg/metrics"
	"github.com/FACorreiaa/course-planner/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config   *config.Config
	DB       *db.DB
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Repositories
	CatalogRepo    catalogrepo.CatalogRepository
	PlanRepo       planrepo.PlanRepository
	TranscriptRepo transcriptrepo.TranscriptRepository

	// Services
	Resolver          *catalog.Resolver
	Extractor         *extraction.Orchestrator
	PlanService       *planservice.PlanService
	TranscriptService *transcriptservice.Service
	FileStorage       storage.Storage
}

// InitDependencies initializes all application dependencies. The database is
// connected and migrated before any repository is built.
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := NewExtractionDependencies(cfg, logger)

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := deps.initRepositories(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	if err := deps.initServices(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// NewExtractionDependencies builds only what document extraction needs, which
// lets offline commands run without a database
func NewExtractionDependencies(cfg *config.Config, logger *slog.Logger) *Dependencies {
	if logger == nil {
		logger = slog.Default()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		Metrics:  metrics.New(reg),
	}
	deps.Extractor = deps.newExtractor()
	return deps
}

// OpenDatabase connects to PostgreSQL with the configured pool limits
func OpenDatabase(cfg *config.Config, logger *slog.Logger) (*db.DB, error) {
	return db.New(db.Config{
		DSN:             cfg.Database.DSN(),
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	}, logger)
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := OpenDatabase(d.Config, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		d.DB.Close()
		d.DB = nil
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() error {
	d.CatalogRepo = catalogrepo.NewPostgresCatalogRepository(d.DB.Pool)
	d.PlanRepo = planrepo.NewPostgresPlanRepository(d.DB.Pool)
	d.TranscriptRepo = transcriptrepo.NewPostgresTranscriptRepository(d.DB.Pool)

	d.Logger.Info("repositories initialized")
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	d.Resolver = catalog.NewResolver(d.CatalogRepo, d.Logger)

	// Plan service resolves codes through the catalog and names close matches on skips
	d.PlanService = planservice.NewPlanService(d.PlanRepo, d.Resolver, d.Logger).
		WithSuggester(d.Resolver).
		WithMetrics(d.Metrics)

	fileStorage, err := storage.New(storage.Config{
		Type:      storage.Type(d.Config.Storage.Type),
		LocalPath: d.Config.Storage.LocalPath,
		MaxBytes:  d.Config.Storage.MaxBytes,
	})
	if err != nil {
		return fmt.Errorf("failed to init file storage: %w", err)
	}
	d.FileStorage = fileStorage

	d.TranscriptService = transcriptservice.NewService(
		d.TranscriptRepo,
		d.FileStorage,
		d.Extractor,
		d.PlanService,
		d.Logger,
	)

	d.Logger.Info("services initialized")
	return nil
}

// newExtractor builds the vision then text chain. The renderer and inference
// client are created once and shared by every request.
func (d *Dependencies) newExtractor() *extraction.Orchestrator {
	renderer := document.NewPageRenderer(float64(d.Config.Extraction.RenderDPI), d.Logger)

	// Left nil when no credential is configured so vision fails fast and
	// the text path takes over
	var inferencer parser.Inferencer
	if d.Config.VisionAvailable() {
		client, err := inference.NewOpenAIClient(inference.Config{
			APIKey:            d.Config.OpenAI.APIKey,
			BaseURL:           d.Config.OpenAI.BaseURL,
			Model:             d.Config.OpenAI.Model,
			Timeout:           d.Config.OpenAI.Timeout,
			RequestsPerSecond: d.Config.OpenAI.RequestsPerSecond,
			Burst:             d.Config.OpenAI.Burst,
		}, d.Logger)
		if err != nil {
			d.Logger.Warn("vision extraction disabled", "error", err)
		} else {
			inferencer = client
		}
	} else {
		d.Logger.Info("vision extraction disabled, no OpenAI credential configured")
	}

	strategies := make([]extraction.Strategy, 0, 2)
	vision, err := parser.NewVisionParser(renderer, inferencer, d.Logger)
	if err != nil {
		d.Logger.Error("failed to init vision parser", "error", err)
	} else {
		strategies = append(strategies, extraction.NewVisionStrategy(vision))
	}
	strategies = append(strategies, extraction.NewTextStrategy(document.NewTextExtractor(d.Logger)))

	return extraction.NewOrchestrator(strategies, d.Metrics, d.Logger)
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
