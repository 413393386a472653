package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/internal/config"
	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/boltdb"
	mongoInfra "github.com/fastygo/taskboard/internal/infrastructure/mongo"
	pgInfra "github.com/fastygo/taskboard/internal/infrastructure/postgres"
	sqliteInfra "github.com/fastygo/taskboard/internal/infrastructure/sqlite"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/repository"
	boltRepo "github.com/fastygo/taskboard/repository/bolt"
	mongoRepo "github.com/fastygo/taskboard/repository/mongo"
	"github.com/fastygo/taskboard/repository/postgres"
	"github.com/fastygo/taskboard/repository/sqlstore"
)

// openStore connects the backend selected by STORAGE_DRIVER and registers
// its shutdown hook.
func openStore(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) (repository.TaskRepository, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := sqliteInfra.Open(cfg.SQLite, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := sqlstore.AutoMigrate(db); err != nil {
			_ = sqliteInfra.Close(db)
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		manager.Register("sqlite", func(context.Context) error {
			return sqliteInfra.Close(db)
		})
		return sqlstore.NewTaskRepository(db), nil

	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		manager.Register("postgres", func(context.Context) error {
			pgInfra.Close(pool, logger)
			return nil
		})
		return postgres.NewTaskRepository(pool), nil

	case config.DriverMongo:
		client, err := mongoInfra.NewClient(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		manager.Register("mongo", func(ctx context.Context) error {
			return client.Disconnect(ctx)
		})
		coll := mongoInfra.Collection(client, cfg.Mongo)
		if err := mongoRepo.EnsureIndexes(ctx, coll); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return mongoRepo.NewTaskRepository(coll), nil

	case config.DriverBolt:
		db, err := boltInfra.Open(cfg.Bolt.Path, logger, boltRepo.Bucket)
		if err != nil {
			return nil, fmt.Errorf("open bolt: %w", err)
		}
		manager.Register("bolt", func(context.Context) error {
			return db.Close()
		})
		return boltRepo.NewTaskRepository(db), nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}
