package container

import (
	"context"
	"fmt"

	"cardiorisk/adapters/classifier"
	"cardiorisk/adapters/excel"
	"cardiorisk/adapters/postgres"
	"cardiorisk/adapters/sqlite"
	"cardiorisk/app"
	"cardiorisk/domain/dataset"
	"cardiorisk/internal"
	"cardiorisk/internal/config"
	"cardiorisk/internal/eda"
	"cardiorisk/internal/errors"
	"cardiorisk/internal/metrics"
	"cardiorisk/ports"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

// Container holds all application dependencies. Everything is loaded once in Load
// and only read afterwards.
type Container struct {
	Config *config.Config

	// Infrastructure
	DB      *sqlx.DB
	Metrics *metrics.Recorder

	// Data sources
	DatasetRepo ports.DatasetRepository
	ModelStore  ports.ModelStore

	// Services
	Predictions *app.PredictionService
	Analyzer    *eda.Analyzer

	// DatasetErr is set when the dataset could not be loaded; pages that need it show the error
	DatasetErr error

	logger *internal.Logger
}

// New creates a container and its data sources without loading anything
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		logger: internal.DefaultLogger.Named("container"),
	}
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.New()
	}
	c.ModelStore = classifier.NewFileModelStore(cfg.Models.Dir)
	c.Predictions = app.NewPredictionService(app.DefaultModels, c.Metrics)
	return c, nil
}

// Load reads the dataset and the model artifacts in parallel. Failures are recorded
// on the container instead of aborting startup, except for a database that cannot
// be reached at all.
func (c *Container) Load(ctx context.Context) error {
	if err := c.initDatasetRepo(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ds, err := c.DatasetRepo.Load(gctx)
		if err != nil {
			c.logger.Error("dataset %s unavailable: %v", c.DatasetRepo.Describe(), err)
			c.DatasetErr = errors.DatasetUnavailable(err)
			return nil
		}
		c.setDataset(ds)
		return nil
	})
	g.Go(func() error {
		n := c.Predictions.LoadModels(gctx, c.ModelStore)
		c.logger.Info("%d of %d models loaded from %s", n, len(app.DefaultModels), c.Config.Models.Dir)
		return nil
	})
	return g.Wait()
}

func (c *Container) setDataset(ds *dataset.HeartDataset) {
	c.Analyzer = eda.NewAnalyzer(ds)
	c.Metrics.SetDatasetRecords(ds.RecordCount())
}

func (c *Container) initDatasetRepo(ctx context.Context) error {
	switch c.Config.Data.Source {
	case config.SourcePostgres:
		db, err := postgres.Connect(ctx, c.Config.Database.URL, c.Config.Database.ConnectRetries)
		if err != nil {
			return err
		}
		c.DB = db
		c.DatasetRepo = postgres.NewDatasetRepository(db, c.Config.Data.Table)
	case config.SourceSQLite:
		db, err := sqlite.Open(ctx, c.Config.Database.SQLitePath, true)
		if err != nil {
			return err
		}
		c.DB = db
		c.DatasetRepo = postgres.NewDatasetRepository(db, c.Config.Data.Table)
	default:
		c.DatasetRepo = excel.NewDataReader(c.Config.Data.File)
	}
	return nil
}

// Dataset returns the loaded dataset, or the load error
func (c *Container) Dataset() (*dataset.HeartDataset, error) {
	if c.Analyzer == nil {
		if c.DatasetErr != nil {
			return nil, c.DatasetErr
		}
		return nil, errors.DatasetUnavailable(nil)
	}
	return c.Analyzer.Dataset(), nil
}

// Close releases the database connection if one was opened
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
