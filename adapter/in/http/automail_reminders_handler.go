package http

import (
	"github.com/gofiber/fiber/v2"

	"automail_server/core/domain"
	"automail_server/core/service/reminders"
	"automail_server/pkg/apperr"
	"automail_server/pkg/logger"
	"automail_server/pkg/response"
)

// RemindersHandler exposes the reminder/todo extraction endpoints.
type RemindersHandler struct {
	svc *reminders.Service
	log *logger.Logger
}

func NewRemindersHandler(svc *reminders.Service) *RemindersHandler {
	return &RemindersHandler{
		svc: svc,
		log: logger.WithComponent("http.reminders"),
	}
}

func (h *RemindersHandler) Register(app fiber.Router) {
	grp := app.Group("/email-reminders")
	grp.Post("/extract", h.Extract)
	grp.Post("/save", h.Save)
}

// Extract pulls reminders and todos out of recent emails.
func (h *RemindersHandler) Extract(c *fiber.Ctx) error {
	maxEmails := QueryIntClamped(c, "max_emails", 10)

	result, err := h.svc.Extract(c.UserContext(), maxEmails)
	if err != nil {
		h.log.WithError(err).Error("reminder extraction failed")
		return response.FromAppError(c, apperr.Internal("Error extracting reminders").WithError(err))
	}
	return response.OK(c, result)
}

type saveRemindersRequest struct {
	Reminders []domain.Reminder `json:"reminders"`
}

// Save persists a caller-supplied list of reminders.
func (h *RemindersHandler) Save(c *fiber.Ctx) error {
	var req saveRemindersRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if len(req.Reminders) == 0 {
		return response.OK(c, saveResponse{
			Status:   "success",
			Message:  "No reminders to save",
			Outcomes: []domain.SaveOutcome{},
		})
	}

	outcomes, err := h.svc.Save(c.UserContext(), req.Reminders)
	if err != nil {
		h.log.WithError(err).Error("reminder save failed")
		return response.FromAppError(c, apperr.DatabaseError("save reminders", err))
	}
	return response.OK(c, saveResponse{
		Status:   "success",
		Message:  "Reminders saved",
		Saved:    domain.CountInserted(outcomes),
		Outcomes: outcomes,
	})
}
