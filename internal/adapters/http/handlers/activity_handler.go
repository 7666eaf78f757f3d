package handlers

import (
	"strconv"

	"sdi-portal/internal/adapters/persistence/repositories"
	"sdi-portal/internal/core/services"
	"sdi-portal/internal/pkg/pagination"
	"sdi-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ActivityHandler handles audit log endpoints
type ActivityHandler struct {
	activityService *services.ActivityService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// List returns audit entries, newest first
// @Summary List activity logs
// @Description List audit log entries with filters and pagination (admin only)
// @Tags Logs
// @Produce json
// @Param action query string false "Action filter"
// @Param userId query int false "User id filter"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /logs [get]
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	filter := repositories.ActivityLogFilter{
		Action: c.Query("action"),
	}
	if raw := c.Query("userId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return response.BadRequest(c, "userId must be a user id")
		}
		uid := uint(id)
		filter.UserID = &uid
	}

	params := pagination.GetParams(c)
	entries, total, err := h.activityService.List(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list activity logs")
	}

	return response.Success(c, "", pagination.NewResponse(entries, params, total))
}
