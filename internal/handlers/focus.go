package handlers

import (
	"taskmaster/internal/middleware"
	"taskmaster/internal/services"

	"github.com/gofiber/fiber/v2"
)

// FocusHandler handles focus session and wallet endpoints
type FocusHandler struct {
	focusService *services.FocusService
}

// NewFocusHandler creates a new focus handler
func NewFocusHandler(focusService *services.FocusService) *FocusHandler {
	return &FocusHandler{focusService: focusService}
}

// StartSessionRequest is the request body for starting a focus session
type StartSessionRequest struct {
	Duration int    `json:"duration"`
	TaskID   string `json:"taskId"`
}

// Start starts a new focus session
// POST /api/focus/start
func (h *FocusHandler) Start(c *fiber.Ctx) error {
	var req StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	var taskID *string
	if req.TaskID != "" {
		taskID = &req.TaskID
	}

	session, err := h.focusService.StartSession(middleware.UserID(c), req.Duration, taskID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Focus session started",
		"session": session,
	})
}

// List returns the user's focus sessions, newest first
// GET /api/focus
func (h *FocusHandler) List(c *fiber.Ctx) error {
	sessions, err := h.focusService.GetSessions(middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sessions)
}

// Complete completes a focus session and credits the wallet
// PUT /api/focus/:id/complete
func (h *FocusHandler) Complete(c *fiber.Ctx) error {
	session, wallet, err := h.focusService.CompleteSession(middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":      "Focus session completed",
		"session":      session,
		"eCoinsEarned": session.ECoinsEarned,
		"wallet": fiber.Map{
			"eCoins":         wallet.ECoins,
			"lifetimeEarned": wallet.LifetimeEarned,
		},
	})
}

// Cancel removes an open focus session
// PUT /api/focus/:id/cancel
func (h *FocusHandler) Cancel(c *fiber.Ctx) error {
	if err := h.focusService.CancelSession(middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Focus session cancelled",
	})
}

// Wallet returns the user's wallet, creating a zero-balance one if absent
// GET /api/focus/wallet
func (h *FocusHandler) Wallet(c *fiber.Ctx) error {
	wallet, err := h.focusService.GetWallet(middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(wallet)
}
