package http

import (
	"context"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	"automail_server/core/service/orchestrator"
	"automail_server/pkg/apperr"
	"automail_server/pkg/logger"
	"automail_server/pkg/response"
)

// OrchestratorHandler exposes the batch/single/webhook processing
// endpoints.
type OrchestratorHandler struct {
	svc            *orchestrator.Service
	defaultSave    bool
	defaultDrafts  bool
	processTimeout time.Duration
	log            *logger.Logger
}

func NewOrchestratorHandler(svc *orchestrator.Service, defaultSave, defaultDrafts bool, processTimeout time.Duration) *OrchestratorHandler {
	return &OrchestratorHandler{
		svc:            svc,
		defaultSave:    defaultSave,
		defaultDrafts:  defaultDrafts,
		processTimeout: processTimeout,
		log:            logger.WithComponent("http.orchestrator"),
	}
}

func (h *OrchestratorHandler) Register(app fiber.Router) {
	emails := app.Group("/emails")
	emails.Post("/process", h.ProcessRecent)
	emails.Post("/process-one/:id", h.ProcessOne)
	emails.Post("/webhook", h.Webhook)
}

func (h *OrchestratorHandler) options(c *fiber.Ctx) orchestrator.Options {
	save := QueryBool(c, "save_to_db", h.defaultSave)
	return orchestrator.Options{
		SaveToDB:     save,
		CreateDrafts: QueryBool(c, "create_drafts", save && h.defaultDrafts),
	}
}

// ProcessRecent runs the full pipeline over the most recent emails.
func (h *OrchestratorHandler) ProcessRecent(c *fiber.Ctx) error {
	maxEmails := QueryIntClamped(c, "max_emails", 10)

	ctx, cancel := context.WithTimeout(c.UserContext(), h.processTimeout)
	defer cancel()

	result, err := h.svc.ProcessRecent(ctx, maxEmails, h.options(c))
	if err != nil {
		h.log.WithError(err).Error("batch processing failed")
		return response.FromAppError(c, apperr.Internal("Error processing emails").WithError(err))
	}
	return response.OK(c, result)
}

// ProcessOne runs the full pipeline over a single email by provider id.
func (h *OrchestratorHandler) ProcessOne(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.BadRequest(c, "email id is required")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.processTimeout)
	defer cancel()

	result, err := h.svc.ProcessOne(ctx, id, h.options(c))
	if err != nil {
		h.log.WithError(err).WithField("email_id", id).Error("single email processing failed")
		return response.FromAppError(c, apperr.Internal("Error processing email").WithError(err))
	}
	return response.OK(c, result)
}

type pubSubEnvelope struct {
	Message struct {
		Data      string `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

type pushNotification struct {
	EmailAddress string          `json:"emailAddress"`
	HistoryID    json.RawMessage `json:"historyId"`
}

// parseWebhookPayload unwraps a Pub/Sub push envelope into the mailbox
// address and history id it carries. The data blob may be standard or
// URL-safe base64, and the history id arrives as either a number or a
// string.
func parseWebhookPayload(body []byte) (string, uint64, error) {
	var envelope pubSubEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", 0, err
	}
	if envelope.Message.Data == "" {
		return "", 0, errors.New("empty message data")
	}

	raw, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
	if err != nil {
		raw, err = base64.URLEncoding.DecodeString(envelope.Message.Data)
		if err != nil {
			return "", 0, err
		}
	}

	var notif pushNotification
	if err := json.Unmarshal(raw, &notif); err != nil {
		return "", 0, err
	}
	historyID, err := parseHistoryID(notif.HistoryID)
	if err != nil {
		return "", 0, err
	}
	if notif.EmailAddress == "" {
		return "", 0, errors.New("missing email address")
	}
	return notif.EmailAddress, historyID, nil
}

// parseHistoryID accepts the history id as either a JSON number or a
// quoted string, which varies between notification formats.
func parseHistoryID(raw json.RawMessage) (uint64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0, errors.New("missing history id")
	}
	return strconv.ParseUint(s, 10, 64)
}

// Webhook handles Gmail push notifications delivered through Pub/Sub.
// The payload wraps a base64 data blob containing the mailbox address
// and the history id to resume from.
func (h *OrchestratorHandler) Webhook(c *fiber.Ctx) error {
	emailAddress, historyID, err := parseWebhookPayload(c.Body())
	if err != nil {
		h.log.WithError(err).Warn("rejected webhook payload")
		return response.BadRequest(c, "invalid webhook payload")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.processTimeout)
	defer cancel()

	opts := orchestrator.Options{SaveToDB: true, CreateDrafts: h.defaultDrafts}
	result, err := h.svc.HandleNotification(ctx, emailAddress, historyID, opts)
	if err != nil {
		h.log.WithError(err).Error("webhook processing failed")
		return response.FromAppError(c, apperr.Internal("Error processing webhook").WithError(err))
	}
	return response.OK(c, result)
}
