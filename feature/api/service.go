package api

import (
	"context"
	"time"

	"cosmos-isolation/feature/admin"
	"cosmos-isolation/feature/dump"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Service backs the HTTP handlers.
type Service struct {
	admin    *admin.Service
	dump     *dump.Service
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	cache    *statusCache
}

// NewService creates the API service. statusTTL of zero disables status caching.
func NewService(adm *admin.Service, dmp *dump.Service, gatherer prometheus.Gatherer, logger *zap.Logger, statusTTL time.Duration) *Service {
	return &Service{
		admin:    adm,
		dump:     dmp,
		gatherer: gatherer,
		logger:   logger,
		cache:    newStatusCache(statusTTL),
	}
}

// Status returns the container status snapshot, rebuilding it when stale or
// when refresh is set.
func (s *Service) Status(ctx context.Context, refresh bool) (*admin.StatusReport, error) {
	if refresh {
		s.cache.Invalidate()
	}
	return s.cache.Get(ctx, s.admin.Status)
}

// Export runs a dump of the selection without writing it anywhere.
func (s *Service) Export(ctx context.Context, selection dump.Selection) (*dump.Result, error) {
	return s.dump.Export(ctx, dump.Options{Selection: selection})
}
