package handlers

import (
	"taskmaster/internal/middleware"
	"taskmaster/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ActivityHandler serves the streak calendar
type ActivityHandler struct {
	activityService *services.ActivityService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// GetCalendar returns the trailing year of activity plus the streak summary
// GET /api/activities/calendar
func (h *ActivityHandler) GetCalendar(c *fiber.Ctx) error {
	calendar, err := h.activityService.GetCalendar(middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(calendar)
}
