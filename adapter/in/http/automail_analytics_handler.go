package http

import (
	"github.com/gofiber/fiber/v2"

	"automail_server/core/service/analytics"
	"automail_server/pkg/apperr"
	"automail_server/pkg/logger"
	"automail_server/pkg/response"
)

// AnalyticsHandler exposes the cross-service analytics report.
type AnalyticsHandler struct {
	svc *analytics.Service
	log *logger.Logger
}

func NewAnalyticsHandler(svc *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		svc: svc,
		log: logger.WithComponent("http.analytics"),
	}
}

func (h *AnalyticsHandler) Register(app fiber.Router) {
	app.Get("/email-analytics", h.Generate)
	app.Get("/email-analytics/latest", h.Latest)
}

// Generate builds a fresh analytics report over recent emails.
func (h *AnalyticsHandler) Generate(c *fiber.Ctx) error {
	maxEmails := QueryIntClamped(c, "max_emails", 20)

	report, err := h.svc.Generate(c.UserContext(), maxEmails)
	if err != nil {
		h.log.WithError(err).Error("analytics generation failed")
		return response.FromAppError(c, apperr.Internal("Error generating analytics").WithError(err))
	}
	return response.OK(c, report)
}

// Latest returns the most recent stored analytics snapshot.
func (h *AnalyticsHandler) Latest(c *fiber.Ctx) error {
	snapshot, err := h.svc.Latest(c.UserContext())
	if err != nil {
		h.log.WithError(err).Error("snapshot lookup failed")
		return response.FromAppError(c, apperr.DatabaseError("load snapshot", err))
	}
	if snapshot == nil {
		return response.NotFound(c, "no analytics snapshot available")
	}
	return response.OK(c, snapshot)
}
