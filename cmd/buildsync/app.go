package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/buildsync/internal/config"
	"github.com/aretw0/buildsync/internal/logging"
	"github.com/aretw0/buildsync/pkg/adapters/configschema"
	"github.com/aretw0/buildsync/pkg/adapters/file"
	"github.com/aretw0/buildsync/pkg/adapters/localengine"
	"github.com/aretw0/buildsync/pkg/adapters/memory"
	"github.com/aretw0/buildsync/pkg/adapters/redis"
	"github.com/aretw0/buildsync/pkg/adapters/sqlite"
	"github.com/aretw0/buildsync/pkg/persistence/middleware"
	"github.com/aretw0/buildsync/pkg/ports"
	"github.com/aretw0/buildsync/pkg/session"
	"github.com/spf13/cobra"
)

// app holds what every command builds from the configuration.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	store   ports.KeyValueStore
	closers []io.Closer
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logging.NewWithFormat(os.Stderr, level, cfg.Log.Format)}
	if err := a.openStore(); err != nil {
		return nil, err
	}
	return a, nil
}

// openStore builds the disk cache store selected by storage.driver.
func (a *app) openStore() error {
	st := a.cfg.Storage

	var store ports.KeyValueStore
	switch st.Driver {
	case config.DriverMemory:
		store = memory.NewStore()
	case config.DriverFile:
		store = file.New(st.Path)
	case config.DriverSQLite:
		db, err := sqlite.Open(st.Path)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, db)
		store = db
	case config.DriverRedis:
		opts := []redis.Option{redis.WithPrefix(st.Prefix)}
		if st.TTL > 0 {
			opts = append(opts, redis.WithTTL(st.TTL))
		}
		rdb := redis.New(st.RedisAddr, st.RedisPassword, st.RedisDB, opts...)
		a.closers = append(a.closers, rdb)
		store = rdb
	default:
		return fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalidConfig, st.Driver)
	}

	key, err := st.Key()
	if err != nil {
		return err
	}
	if key != nil {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return err
		}
		store = middleware.Chain(store, enc)
	}

	a.logger.Debug("Disk cache opened", "driver", st.Driver, "encrypted", key != nil)
	a.store = store
	return nil
}

// newSession creates an unbooted session on the reference engine.
func (a *app) newSession(opts ...session.Option) (*session.Session, error) {
	all := []session.Option{
		session.WithLogger(a.logger),
		session.WithStorage(a.store),
		session.WithDataVersion(a.cfg.DataVersion),
		session.WithVerboseEngine(a.cfg.Log.VerboseEngine),
	}
	if a.cfg.SchemaPath != "" {
		schema, err := configschema.Load(a.cfg.SchemaPath)
		if err != nil {
			return nil, err
		}
		all = append(all, session.WithSchema(schema))
	}

	loader := localengine.NewLoader(
		localengine.WithDataDir(a.cfg.DataDir),
		localengine.WithLogger(a.logger),
	)
	return session.New(loader, append(all, opts...)...), nil
}

// start boots sess, loads the game data and imports the configured build.
func (a *app) start(ctx context.Context, sess *session.Session, cb ports.OutputCallback, target ports.SyncTarget) error {
	image, err := os.ReadFile(a.cfg.EngineManifest)
	if err != nil {
		return fmt.Errorf("failed to read engine manifest: %w", err)
	}
	if err := sess.Boot(ctx, image, cb, target); err != nil {
		return err
	}

	progress := func(msg string) { a.logger.Info("Loading data", "progress", msg) }
	if err := sess.LoadInitialData(ctx, progress); err != nil {
		return err
	}

	if a.cfg.BuildCode != "" {
		if err := sess.ImportBuild(ctx, a.cfg.BuildCode); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
