package http

import (
	"github.com/gofiber/fiber/v2"

	"automail_server/core/domain"
	"automail_server/core/service/finance"
	"automail_server/pkg/apperr"
	"automail_server/pkg/logger"
	"automail_server/pkg/response"
)

// FinanceHandler exposes the financial extraction and summary
// endpoints.
type FinanceHandler struct {
	svc *finance.Service
	log *logger.Logger
}

func NewFinanceHandler(svc *finance.Service) *FinanceHandler {
	return &FinanceHandler{
		svc: svc,
		log: logger.WithComponent("http.finance"),
	}
}

func (h *FinanceHandler) Register(app fiber.Router) {
	grp := app.Group("/email-finance")
	grp.Post("/analyze", h.Analyze)
	grp.Get("/summary", h.Summary)
	grp.Post("/save", h.Save)
}

// Analyze extracts transactions from recent emails, optionally
// persisting them.
func (h *FinanceHandler) Analyze(c *fiber.Ctx) error {
	maxEmails := QueryIntClamped(c, "max_emails", 20)
	daysBack := QueryIntClamped(c, "days_back", 30)
	saveToDB := QueryBool(c, "save_to_db", false)

	result, err := h.svc.Analyze(c.UserContext(), maxEmails, daysBack, saveToDB)
	if err != nil {
		h.log.WithError(err).Error("finance analysis failed")
		return response.FromAppError(c, apperr.Internal("Error analyzing emails").WithError(err))
	}
	return response.OK(c, result)
}

// Summary aggregates recent transactions into a financial summary
// without persisting anything.
func (h *FinanceHandler) Summary(c *fiber.Ctx) error {
	daysBack := QueryIntClamped(c, "days_back", 30)

	result, err := h.svc.Summary(c.UserContext(), daysBack)
	if err != nil {
		h.log.WithError(err).Error("finance summary failed")
		return response.FromAppError(c, apperr.Internal("Error generating summary").WithError(err))
	}
	return response.OK(c, result)
}

type saveTransactionsRequest struct {
	Transactions []domain.Transaction `json:"transactions"`
}

type saveResponse struct {
	Status   string               `json:"status"`
	Message  string               `json:"message"`
	Saved    int                  `json:"saved"`
	Outcomes []domain.SaveOutcome `json:"outcomes"`
}

// Save persists a caller-supplied list of transactions.
func (h *FinanceHandler) Save(c *fiber.Ctx) error {
	var req saveTransactionsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if len(req.Transactions) == 0 {
		return response.OK(c, saveResponse{
			Status:   "success",
			Message:  "No transactions to save",
			Outcomes: []domain.SaveOutcome{},
		})
	}

	outcomes, err := h.svc.Save(c.UserContext(), req.Transactions)
	if err != nil {
		h.log.WithError(err).Error("transaction save failed")
		return response.FromAppError(c, apperr.DatabaseError("save transactions", err))
	}
	return response.OK(c, saveResponse{
		Status:   "success",
		Message:  "Transactions saved",
		Saved:    domain.CountInserted(outcomes),
		Outcomes: outcomes,
	})
}
