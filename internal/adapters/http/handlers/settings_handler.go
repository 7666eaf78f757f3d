package handlers

import (
	"errors"

	"sdi-portal/internal/adapters/http/middleware"
	"sdi-portal/internal/core/domain"
	"sdi-portal/internal/core/services"
	"sdi-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SettingsHandler handles settings, backup and cleanup endpoints
type SettingsHandler struct {
	settingsService *services.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Get returns the current settings
// @Summary Get settings
// @Description Return the current application settings (admin only)
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Response
// @Router /settings [get]
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.settingsService.Get(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load settings")
	}
	return response.Success(c, "", settings)
}

// Update applies settings changes
// @Summary Update settings
// @Description Update cutoff window and retention settings (admin only)
// @Tags Settings
// @Accept json
// @Produce json
// @Param body body services.UpdateSettingsInput true "Settings to change"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /settings [put]
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.UpdateSettingsInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	settings, err := h.settingsService.Update(c.Context(), actor, input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to update settings")
	}

	return response.Success(c, "Settings updated successfully", settings)
}

// Backup generates a full-database JSON export
// @Summary Generate backup
// @Description Export every table as one JSON document (admin only)
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Response
// @Router /settings/backup [get]
func (h *SettingsHandler) Backup(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	doc, err := h.settingsService.Backup(c.Context(), actor)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate backup")
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="backup.json"`)
	return response.Success(c, "Backup generated", doc)
}

// Cleanup runs the retention sweep immediately
// @Summary Run cleanup
// @Description Hard-delete completed instructions past the retention window (admin only)
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Response
// @Router /settings/cleanup [post]
func (h *SettingsHandler) Cleanup(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	removed, err := h.settingsService.Cleanup(c.Context(), actor)
	if err != nil {
		return response.InternalServerError(c, "Failed to run cleanup")
	}

	return response.Success(c, "Cleanup completed", fiber.Map{
		"removed": removed,
	})
}
