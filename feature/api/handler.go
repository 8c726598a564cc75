package api

import (
	"errors"
	"strings"

	"cosmos-isolation/core/docstore"
	"cosmos-isolation/core/envelope"
	"cosmos-isolation/core/logger"
	"cosmos-isolation/core/utils"
	"cosmos-isolation/feature/dump"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HeaderFailedContainers lists containers an export had to skip.
const HeaderFailedContainers = "X-Failed-Containers"

// Handler handles HTTP requests for the store API.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the API routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/health", h.HandleHealth)
	app.Get("/containers", h.HandleContainers)
	app.Get("/export", h.HandleExport)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(h.service.gatherer, promhttp.HandlerOpts{})))
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleContainers returns per-container statistics for the bound database.
func (h *Handler) HandleContainers(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.service.logger, c)

	report, err := h.service.Status(c.UserContext(), utils.ToBool(c.Query("refresh")))
	if err != nil {
		l.Error("Status failed", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"database":        report.Database,
		"containers":      report.Containers,
		"total_items":     report.TotalItems,
		"recommendations": report.Recommendations(),
		"generated_at":    report.GeneratedAt,
	})
}

// HandleExport returns an envelope for ?containers= (default all).
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.service.logger, c)

	selection, err := dump.ParseSelection(c.Query("containers", dump.SelectAll))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Export requested", zap.Stringer("containers", selection))
	res, err := h.service.Export(c.UserContext(), selection)
	if err != nil {
		l.Error("Export failed", zap.Error(err))
		body := fiber.Map{"error": err.Error()}
		var missing *dump.MissingContainersError
		if errors.As(err, &missing) {
			body["missing"] = missing.Missing
			body["available"] = missing.Available
		}
		return c.Status(statusFor(err)).JSON(body)
	}

	if len(res.Failed) > 0 {
		c.Set(HeaderFailedContainers, strings.Join(res.Failed, ","))
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return envelope.Encode(c.Response().BodyWriter(), res.Envelope, false)
}

func statusFor(err error) int {
	var missing *dump.MissingContainersError
	switch {
	case errors.As(err, &missing), docstore.IsNotFound(err):
		return fiber.StatusNotFound
	case errors.Is(err, dump.ErrNothingExported):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
