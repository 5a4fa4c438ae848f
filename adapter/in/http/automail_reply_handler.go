package http

import (
	"github.com/gofiber/fiber/v2"

	"automail_server/core/service/reply"
	"automail_server/pkg/apperr"
	"automail_server/pkg/logger"
	"automail_server/pkg/response"
)

// ReplyHandler exposes the auto-reply draft sweep.
type ReplyHandler struct {
	svc *reply.Service
	log *logger.Logger
}

func NewReplyHandler(svc *reply.Service) *ReplyHandler {
	return &ReplyHandler{
		svc: svc,
		log: logger.WithComponent("http.reply"),
	}
}

func (h *ReplyHandler) Register(app fiber.Router) {
	app.Post("/auto-reply/run", h.Run)
}

// Run checks recent emails and creates reply drafts where warranted.
func (h *ReplyHandler) Run(c *fiber.Ctx) error {
	maxEmails := QueryIntClamped(c, "max_emails", 5)

	result, err := h.svc.Run(c.UserContext(), maxEmails)
	if err != nil {
		h.log.WithError(err).Error("auto-reply run failed")
		return response.FromAppError(c, apperr.Internal("Error creating reply drafts").WithError(err))
	}
	return response.OK(c, result)
}
