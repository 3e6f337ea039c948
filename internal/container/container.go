package container

import (
	"context"
	"fmt"
	"log"

	"datalens/adapters/excel"
	"datalens/adapters/llm"
	"datalens/adapters/memory"
	"datalens/adapters/postgres"
	"datalens/app"
	"datalens/domain/dataset"
	"datalens/domain/report"
	"datalens/internal"
	"datalens/internal/api"
	"datalens/internal/assembler"
	"datalens/internal/config"
	"datalens/internal/metrics"
	"datalens/internal/migration"
	"datalens/internal/narrative"
	"datalens/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB       *sqlx.DB
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Repositories (data access layer)
	Catalog        ports.DatasetRepository
	Configurations ports.ConfigurationStore
	Reports        ports.ReportRepository

	// Analysis
	Resolver  ports.DatasetResolver
	Narrator  ports.Narrator
	Assembler *assembler.Assembler

	// Services
	ConfigurationService *app.ConfigurationService
	ReportService        *app.ReportService
	DatasetService       *app.DatasetService
}

// New creates a new dependency injection container. Without DATABASE_URL the
// stores are in memory and datasets resolve straight from the data directory.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{Config: cfg}
	c.initMetrics()

	if cfg.HasDatabase() {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := c.InitWithDatabase(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	} else {
		c.initMemory()
	}

	if err := c.initAnalysis(); err != nil {
		return nil, err
	}
	c.initServices()

	log.Printf("[Container] initialized (database=%t, narrator=%s)", c.DB != nil, c.Narrator.Name())
	return c, nil
}

// InitWithDatabase runs migrations and installs the postgres repositories.
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	c.DB = db
	c.Catalog = postgres.NewDatasetRepository(db)
	c.Configurations = postgres.NewConfigurationStore(db)
	c.Reports = postgres.NewReportRepository(db)
	return nil
}

func (c *Container) initMemory() {
	c.Configurations = memory.NewConfigurationStore()
	c.Reports = memory.NewReportRepository()
}

func (c *Container) initMetrics() {
	if !c.Config.Metrics.Enabled {
		return
	}
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.New(c.Registry)
}

// initAnalysis builds the resolver, narrator and assembler.
func (c *Container) initAnalysis() error {
	var locator ports.DatasetLocator
	if c.Catalog != nil {
		locator = c.Catalog
	} else {
		locator = excel.NewDirectoryLocator(excel.Config{
			DataDir:      c.Config.Data.Dir,
			DefaultSheet: c.Config.Data.DefaultSheet,
			MaxRows:      c.Config.Data.MaxRows,
		})
	}
	c.Resolver = excel.NewResolver(locator, c.Config.Data.MaxRows)

	if c.Config.HasLLM() {
		narrator, err := llm.NewNarrator(llm.Config{
			Model:       c.Config.AI.Model,
			APIKey:      c.Config.AI.OpenAIKey,
			BaseURL:     c.Config.AI.BaseURL,
			Temperature: c.Config.AI.Temperature,
			MaxTokens:   c.Config.AI.MaxTokens,
			Timeout:     c.Config.AI.Timeout,
			MaxRetries:  c.Config.AI.MaxRetries,
		})
		if err != nil {
			return fmt.Errorf("failed to create LLM narrator: %w", err)
		}
		c.Narrator = narrator
	} else {
		c.Narrator = narrative.NewRuleBased()
	}

	c.Assembler = assembler.New(c.Resolver,
		assembler.WithNarrator(c.Narrator),
		assembler.WithWorkers(c.Config.Analysis.Workers),
		assembler.WithObserver(func(_ dataset.Handle, from, to report.State) {
			c.Metrics.RecordTransition(from, to)
		}),
		assembler.WithLogger(internal.DefaultLogger.With("Assembler")),
	)
	return nil
}

func (c *Container) initServices() {
	c.ConfigurationService = app.NewConfigurationService(c.Configurations)
	c.ReportService = app.NewReportService(c.Assembler, c.ConfigurationService, c.Reports, c.Metrics, c.Config.Analysis.Timeout)
	if c.Catalog != nil {
		c.DatasetService = app.NewDatasetService(c.Catalog, c.Resolver)
	}
}

// Server builds the HTTP API over the container's services.
func (c *Container) Server() *api.Server {
	return api.NewServer(api.Deps{
		Reports:        c.ReportService,
		Configurations: c.ConfigurationService,
		Datasets:       c.DatasetService,
		Metrics:        c.Metrics,
		MetricsPath:    c.Config.Metrics.Path,
	})
}

// Close releases external resources
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
