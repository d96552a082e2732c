package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/IncDrops/breakup/internal/errs"
	"github.com/IncDrops/breakup/internal/models"
	"github.com/IncDrops/breakup/internal/services"
)

// GenerateHandler handles the session and generation endpoints
type GenerateHandler struct {
	orch *services.Orchestrator
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(orch *services.Orchestrator) *GenerateHandler {
	return &GenerateHandler{orch: orch}
}

type intentRequest struct {
	Reason  string `json:"reason"`
	Persona string `json:"persona"`
}

// CreateSession opens a payment session for the submitted intent
func (h *GenerateHandler) CreateSession(c *fiber.Ctx) error {
	var req intentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	intent, err := models.NewIntent(req.Reason, req.Persona)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.orch.CreateSession(c.UserContext(), intent)
	if err != nil {
		return classifiedError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id":   created.SessionID,
		"checkout_url": created.CheckoutURL,
	})
}

// CompleteSession verifies payment and delivers the one generation the
// session is entitled to
func (h *GenerateHandler) CompleteSession(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return badRequest(c, "Session ID is required")
	}

	res, err := h.orch.CompleteSessionAndGenerate(c.UserContext(), sessionID)
	if err != nil {
		return classifiedError(c, err)
	}

	return c.JSON(fiber.Map{
		"result":  res.Result,
		"persona": res.Persona,
	})
}

// GenerateDirect runs the free-tier flow with no payment gate
func (h *GenerateHandler) GenerateDirect(c *fiber.Ctx) error {
	var req intentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	intent, err := models.NewIntent(req.Reason, req.Persona)
	if err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.orch.GenerateDirect(c.UserContext(), intent)
	if err != nil {
		return classifiedError(c, err)
	}

	return c.JSON(fiber.Map{"result": result})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": fiber.Map{
			"kind":    "invalid_request",
			"message": message,
		},
	})
}

// classifiedError maps the error taxonomy onto HTTP statuses. Nothing leaves
// this boundary unclassified.
func classifiedError(c *fiber.Ctx, err error) error {
	kind := errs.KindOf(err)

	status := fiber.StatusInternalServerError
	message := err.Error()
	var classified *errs.Error
	if errors.As(err, &classified) {
		message = classified.Message
	}
	switch kind {
	case errs.KindConfig:
		status = fiber.StatusInternalServerError
	case errs.KindAuthInvalid, errs.KindProvider, errs.KindGeneration:
		status = fiber.StatusBadGateway
	case errs.KindPaymentUnpaid:
		status = fiber.StatusPaymentRequired
	case errs.KindAlreadyProcessed:
		status = fiber.StatusConflict
	default:
		kind = "internal_error"
		message = "An unexpected error occurred"
	}

	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"kind":    string(kind),
			"message": message,
		},
	})
}
