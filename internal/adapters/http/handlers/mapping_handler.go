package handlers

import (
	"errors"
	"strconv"

	"sdi-portal/internal/adapters/http/middleware"
	"sdi-portal/internal/core/domain"
	"sdi-portal/internal/core/services"
	"sdi-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MappingHandler handles customer code mapping endpoints
type MappingHandler struct {
	mappingService *services.MappingService
}

// NewMappingHandler creates a new mapping handler
func NewMappingHandler(mappingService *services.MappingService) *MappingHandler {
	return &MappingHandler{mappingService: mappingService}
}

// Create handles mapping creation
// @Summary Create mapping
// @Description Create a customer code mapping (admin only)
// @Tags Mappings
// @Accept json
// @Produce json
// @Param body body services.MappingInput true "Mapping data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /mappings [post]
func (h *MappingHandler) Create(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.MappingInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	mapping, err := h.mappingService.Create(c.Context(), actor, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCustomerCodeExists):
			return response.Conflict(c, "Customer code already exists")
		case errors.Is(err, domain.ErrUserNotFound):
			return response.BadRequest(c, "Assignee not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to create mapping")
		}
	}

	return response.Created(c, "Mapping created successfully", mapping)
}

// List handles mapping listing
// @Summary List mappings
// @Description List customer code mappings with optional filters
// @Tags Mappings
// @Produce json
// @Param code query string false "Code substring"
// @Param commercialUserId query int false "Assigned commercial user id"
// @Success 200 {object} response.Response
// @Router /mappings [get]
func (h *MappingHandler) List(c *fiber.Ctx) error {
	var commercialUserID *uint
	if raw := c.Query("commercialUserId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return response.BadRequest(c, "commercialUserId must be a user id")
		}
		uid := uint(id)
		commercialUserID = &uid
	}

	mappings, err := h.mappingService.List(c.Context(), c.Query("code"), commercialUserID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list mappings")
	}

	return response.Success(c, "", mappings)
}

// Update handles mapping edits
// @Summary Update mapping
// @Description Update a mapping's description, assignee or status (admin only)
// @Tags Mappings
// @Accept json
// @Produce json
// @Param id path int true "Mapping ID"
// @Param body body services.MappingUpdateInput true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /mappings/{id} [put]
func (h *MappingHandler) Update(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid mapping ID")
	}

	var input services.MappingUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	mapping, err := h.mappingService.Update(c.Context(), actor, uint(id), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCustomerCodeNotFound):
			return response.NotFound(c, "Mapping not found")
		case errors.Is(err, domain.ErrUserNotFound):
			return response.BadRequest(c, "Assignee not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to update mapping")
		}
	}

	return response.Success(c, "Mapping updated successfully", mapping)
}

// Delete handles mapping deletion
// @Summary Delete mapping
// @Description Delete a customer code mapping (admin only)
// @Tags Mappings
// @Produce json
// @Param id path int true "Mapping ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /mappings/{id} [delete]
func (h *MappingHandler) Delete(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid mapping ID")
	}

	if err := h.mappingService.Delete(c.Context(), actor, uint(id)); err != nil {
		if errors.Is(err, domain.ErrCustomerCodeNotFound) {
			return response.NotFound(c, "Mapping not found")
		}
		return response.InternalServerError(c, "Failed to delete mapping")
	}

	return response.Success(c, "Mapping deleted successfully", nil)
}
