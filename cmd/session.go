package cmd

import (
	"context"
	"fmt"
	"strings"

	"cosmos-isolation/core/config"
	"cosmos-isolation/core/database"
	"cosmos-isolation/core/docstore"
	"cosmos-isolation/core/docstore/cosmos"
	"cosmos-isolation/core/docstore/sqlstore"
	"cosmos-isolation/core/envelope"
	"cosmos-isolation/core/logger"
	"cosmos-isolation/core/metrics"
	"cosmos-isolation/core/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// session bundles the configuration, logger and store a command runs with.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	client docstore.Client
	admin  docstore.Admin
	close  func() error
}

// openSession loads configuration, applies the connection flags and opens the
// configured store. needDatabase is false only for account-level commands.
func openSession(cmd *cobra.Command, needDatabase bool) (*session, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyConnectionFlags(cmd, &cfg.Cosmos)

	missing := cfg.Cosmos.MissingConnection()
	if needDatabase {
		missing = cfg.Cosmos.Missing()
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required connection parameters: %s", strings.Join(missing, ", "))
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	s := &session{cfg: cfg, logger: l, close: func() error { return nil }}
	if err := s.openStore(); err != nil {
		_ = l.Sync()
		return nil, err
	}

	l.Debug("Store opened",
		zap.String("driver", cfg.Cosmos.Driver),
		zap.String("database", cfg.Cosmos.Database),
	)
	return s, nil
}

func applyConnectionFlags(cmd *cobra.Command, c *docstore.Config) {
	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		c.Endpoint = endpointFlag
	}
	if flags.Changed("key") {
		c.Key = keyFlag
	}
	if flags.Changed("database") {
		c.Database = databaseFlag
	}
	if flags.Changed("allow-insecure") {
		c.AllowInsecure = allowInsecureFlag
	}
	if flags.Changed("driver") {
		c.Driver = driverFlag
	}
}

func (s *session) openStore() error {
	switch s.cfg.Cosmos.Driver {
	case docstore.DriverCosmos, "":
		client, err := cosmos.New(s.cfg.Cosmos)
		if err != nil {
			return err
		}
		s.client, s.admin = client, client
		if s.cfg.Cosmos.AllowInsecure {
			s.logger.Warn("TLS certificate verification is disabled")
		}
		return nil

	case docstore.DriverSQLite, docstore.DriverMySQL:
		dbCfg := s.cfg.Database
		dbCfg.Driver = s.cfg.Cosmos.Driver
		db, err := database.Connect(dbCfg)
		if err != nil {
			return err
		}
		store := sqlstore.New(db, s.cfg.Cosmos.Database)
		if err := store.Migrate(); err != nil {
			return err
		}
		s.client, s.admin = store, store
		s.close = func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return nil

	default:
		return fmt.Errorf("unsupported store driver %q", s.cfg.Cosmos.Driver)
	}
}

// storageFor returns an object storage client when loc is remote and nil otherwise.
func (s *session) storageFor(loc envelope.Location) (storage.Client, error) {
	if !loc.Remote() {
		return nil, nil
	}
	client, err := storage.NewClient(s.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}
	return client, nil
}

// runMetrics starts metrics collection for one dump or upload. Collection is
// off unless a Pushgateway is configured.
func (s *session) runMetrics() *metrics.Run {
	run, err := metrics.NewRun(s.cfg.Metrics)
	if err != nil {
		s.logger.Warn("Metrics disabled for this run", zap.Error(err))
		run, _ = metrics.NewRun(metrics.Config{})
	}
	return run
}

// pushMetrics sends the run's metrics; a failed push never fails the command.
func (s *session) pushMetrics(ctx context.Context, run *metrics.Run, operation string) {
	if err := run.Push(ctx, operation, s.client.Database()); err != nil {
		s.logger.Warn("Failed to push metrics", zap.Error(err))
		return
	}
	if s.cfg.Metrics.Enabled() {
		s.logger.Debug("Metrics pushed", zap.String("operation", operation))
	}
}

func (s *session) Close() {
	if err := s.close(); err != nil {
		s.logger.Warn("Failed to close store", zap.Error(err))
	}
	_ = s.logger.Sync()
}
