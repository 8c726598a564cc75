package cmd

import (
	"fmt"

	"cosmos-isolation/core/confirm"
	"cosmos-isolation/core/loader"
	"cosmos-isolation/core/metrics"
	"cosmos-isolation/core/middleware"
	"cosmos-isolation/feature/admin"
	"cosmos-isolation/feature/api"
	"cosmos-isolation/feature/dump"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd runs the read-only HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve container status, exports and metrics over HTTP",
	Long:  `Starts the HTTP server for the configured database and blocks until interrupted.`,
	RunE:  runServe,
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, true)
	if err != nil {
		return err
	}
	defer s.Close()
	logg := s.logger

	reg, m, err := metrics.NewRegistry()
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	mgr := loader.NewManager()
	mgr.Register(api.NewFeature(
		admin.NewService(s.client, s.admin, confirm.Always(false), logg),
		dump.NewService(s.client, logg, m),
		reg, logg, s.cfg.Server.StatusCacheTTL(),
	))

	// request id first so everything after it can log it
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog(logg))
	if s.cfg.Server.ApiKey == "" {
		logg.Warn("SERVER_API_KEY is empty, the API is unauthenticated")
	}
	app.Use(middleware.Auth(middleware.AuthConfig{
		ApiKey: s.cfg.Server.ApiKey,
		Public: []string{"/health"},
	}))

	loaded, err := mgr.LoadAll(app)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		logg.Info("Starting server",
			zap.String("port", s.cfg.Server.Port),
			zap.String("database", s.client.Database()),
			zap.Strings("features", loaded),
		)
		errc <- app.Listen(s.cfg.Server.Address())
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-cmd.Context().Done():
	}

	logg.Info("Shutting down server...")
	return app.Shutdown()
}
