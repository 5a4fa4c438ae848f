package http

import (
	"github.com/gofiber/fiber/v2"

	"automail_server/core/service/tagging"
	"automail_server/pkg/apperr"
	"automail_server/pkg/logger"
	"automail_server/pkg/response"
)

// TaggingHandler exposes the label sweep endpoint.
type TaggingHandler struct {
	svc *tagging.Service
	log *logger.Logger
}

func NewTaggingHandler(svc *tagging.Service) *TaggingHandler {
	return &TaggingHandler{
		svc: svc,
		log: logger.WithComponent("http.tagging"),
	}
}

func (h *TaggingHandler) Register(app fiber.Router) {
	app.Post("/email-tagging/run", h.Run)
}

// Run applies user-defined labels to recent emails.
func (h *TaggingHandler) Run(c *fiber.Ctx) error {
	maxEmails := QueryIntClamped(c, "max_emails", 20)

	result, err := h.svc.TagRecent(c.UserContext(), maxEmails)
	if err != nil {
		h.log.WithError(err).Error("tagging run failed")
		return response.FromAppError(c, apperr.Internal("Error tagging emails").WithError(err))
	}
	return response.OK(c, result)
}
