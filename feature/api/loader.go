package api

import (
	"time"

	"cosmos-isolation/feature/admin"
	"cosmos-isolation/feature/dump"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the store API feature.
func NewFeature(adm *admin.Service, dmp *dump.Service, gatherer prometheus.Gatherer, logger *zap.Logger, statusTTL time.Duration) *Feature {
	svc := NewService(adm, dmp, gatherer, logger, statusTTL)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "api"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
