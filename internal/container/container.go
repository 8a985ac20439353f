package container

import (
	"context"
	"fmt"

	"studyviz/adapters/memory"
	"studyviz/adapters/postgres"
	"studyviz/domain/dataset"
	"studyviz/domain/grouping"
	"studyviz/domain/view"
	"studyviz/internal"
	"studyviz/internal/api"
	"studyviz/internal/config"
	"studyviz/internal/coordinator"
	"studyviz/internal/selection"
	"studyviz/internal/session"
	"studyviz/internal/testkit"
	"studyviz/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	ViewRepo ports.ViewStateRepository

	// Dashboard components
	Store    *dataset.Store
	Hub      *api.Hub
	Sessions *session.Manager

	TestKit *testkit.TestKit

	log *internal.Logger
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return &Container{
		Config: cfg,
		log:    internal.DefaultLogger.WithComponent("Container"),
	}, nil
}

// InitWithDatabase stores saved views in PostgreSQL.
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db

	// Test database connection
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}
	c.ViewRepo = postgres.NewViewStateRepository(db)
	return c.init(ctx)
}

// InitInMemory keeps saved views in process memory.
func (c *Container) InitInMemory(ctx context.Context) error {
	c.ViewRepo = memory.NewViewStateRepository()
	return c.init(ctx)
}

func (c *Container) init(ctx context.Context) error {
	if err := c.initDataset(ctx); err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	c.initDashboard()
	c.log.Info("Container initialized (%d records from %s)", c.Store.Len(), c.Store.Source())
	return nil
}

// initDataset loads the configured file, or synthetic students.
func (c *Container) initDataset(ctx context.Context) error {
	data := c.Config.Data
	c.TestKit = testkit.NewTestKit(data.File, data.Sheet, testkit.StudentGeneratorConfig{
		StudentCount: data.SyntheticCount,
		Seed:         data.SyntheticSeed,
	})
	store, err := c.TestKit.LoadStore(ctx)
	if err != nil {
		return err
	}
	c.Store = store
	return nil
}

func (c *Container) initDashboard() {
	c.Hub = api.NewHub(api.HubOptions{
		ClientBuffer:    c.Config.Stream.BufferSize,
		BroadcastBuffer: api.DefaultHubOptions().BroadcastBuffer,
	})
	c.Sessions = session.NewManager(c.Store, grouping.Default(), session.Options{
		Defaults:  DefaultParams(c.Config.Dashboard),
		Selection: selection.Options{MaxPins: c.Config.Dashboard.MaxPins},
		Sink:      api.NewHubView(c.Hub),
		OnClose:   c.Hub.DropSession,
		Views:     c.ViewRepo,
	})
}

// DefaultParams applies the dashboard settings to the built-in defaults.
func DefaultParams(d config.DashboardConfig) view.Params {
	p := coordinator.DefaultParams()
	p.BinCount = d.HistogramBins
	p.HistogramMeasure = d.HistogramMeasure
	p.HistogramMin = d.HistogramMin
	p.HistogramMax = d.HistogramMax
	p.Primary = d.PrimaryGrouping
	p.Secondary = d.SecondaryGrouping
	p.BoxGroup = d.BoxPlotGroup
	p.BoxMeasure = d.BoxPlotMeasure
	return p
}

// Shutdown releases the container's resources.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Hub != nil {
		c.Hub.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
