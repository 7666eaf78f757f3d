package handlers

import (
	"errors"
	"strconv"
	"strings"

	"sdi-portal/internal/adapters/http/middleware"
	"sdi-portal/internal/adapters/persistence/models"
	"sdi-portal/internal/adapters/persistence/repositories"
	"sdi-portal/internal/core/domain"
	"sdi-portal/internal/core/services"
	"sdi-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// InstructionHandler handles instruction endpoints
type InstructionHandler struct {
	instructionService *services.InstructionService
}

// NewInstructionHandler creates a new instruction handler
func NewInstructionHandler(instructionService *services.InstructionService) *InstructionHandler {
	return &InstructionHandler{instructionService: instructionService}
}

// Submit handles batch instruction submission
// @Summary Submit instructions
// @Description Validate and store a batch of instructions atomically
// @Tags Instructions
// @Accept json
// @Produce json
// @Param body body services.SubmitInput true "Instruction batch"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /instructions [post]
func (h *InstructionHandler) Submit(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.SubmitInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	created, err := h.instructionService.Submit(c.Context(), actor, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCutoffActive):
			return response.UnprocessableEntity(c, err.Error())
		case errors.Is(err, domain.ErrDuplicateOrderPair):
			return response.Conflict(c, err.Error())
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to submit instructions")
		}
	}

	responses := make([]*models.InstructionResponse, len(created))
	for i, ins := range created {
		responses[i] = ins.ToResponse()
	}
	return response.Created(c, "Instructions submitted successfully", responses)
}

// List handles instruction listing with filters
// @Summary List instructions
// @Description List instructions visible to the caller, with filters
// @Tags Instructions
// @Produce json
// @Param salesOrder query string false "Sales order substring"
// @Param productionOrder query string false "Production order substring"
// @Param assignedTo query string false "Commercial user id, or 'unassigned'"
// @Param status query string false "Status"
// @Param currentUpdate query string false "Current update"
// @Param submittedBy query string false "Submitter short name"
// @Success 200 {object} response.Response
// @Router /instructions [get]
func (h *InstructionHandler) List(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	filter, err := parseInstructionFilter(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	instructions, err := h.instructionService.List(c.Context(), actor, filter)
	if err != nil {
		return response.InternalServerError(c, "Failed to list instructions")
	}

	responses := make([]*models.InstructionResponse, len(instructions))
	for i, ins := range instructions {
		responses[i] = ins.ToResponse()
	}
	return response.Success(c, "", responses)
}

// Update handles a partial instruction edit
// @Summary Update instruction
// @Description Apply a role-gated partial update to one instruction
// @Tags Instructions
// @Accept json
// @Produce json
// @Param id path int true "Instruction ID"
// @Param body body services.UpdateInput true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /instructions/{id} [patch]
func (h *InstructionHandler) Update(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid instruction ID")
	}

	var input services.UpdateInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	instruction, err := h.instructionService.Update(c.Context(), actor, uint(id), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInstructionNotFound):
			return response.NotFound(c, "Instruction not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "You don't have permission to change this field")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to update instruction")
		}
	}

	return response.Success(c, "Instruction updated successfully", instruction.ToResponse())
}

// Delete handles instruction soft deletion
// @Summary Delete instruction
// @Description Soft-delete an instruction (admin only)
// @Tags Instructions
// @Produce json
// @Param id path int true "Instruction ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /instructions/{id} [delete]
func (h *InstructionHandler) Delete(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid instruction ID")
	}

	if err := h.instructionService.Delete(c.Context(), actor, uint(id)); err != nil {
		if errors.Is(err, domain.ErrInstructionNotFound) {
			return response.NotFound(c, "Instruction not found")
		}
		return response.InternalServerError(c, "Failed to delete instruction")
	}

	return response.Success(c, "Instruction deleted successfully", nil)
}

// Export renders the filtered listing as CSV
// @Summary Export instructions
// @Description Export the caller's filtered instruction list as CSV
// @Tags Instructions
// @Produce text/csv
// @Param columns query string false "Comma-separated column keys"
// @Success 200 {string} string "CSV document"
// @Router /instructions/export [get]
func (h *InstructionHandler) Export(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	filter, err := parseInstructionFilter(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var columns []string
	if raw := c.Query("columns"); raw != "" {
		columns = strings.Split(raw, ",")
	}

	csv, err := h.instructionService.Export(c.Context(), actor, filter, columns)
	if err != nil {
		return response.InternalServerError(c, "Failed to export instructions")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="instructions.csv"`)
	return c.SendString(csv)
}

// QuickUpdates returns the fixed current-update suggestion list
// @Summary Quick update options
// @Description Return the fixed suggestion list for the current-update field
// @Tags Instructions
// @Produce json
// @Success 200 {object} response.Response
// @Router /instructions/updates [get]
func (h *InstructionHandler) QuickUpdates(c *fiber.Ctx) error {
	return response.Success(c, "", h.instructionService.QuickUpdates())
}

// parseInstructionFilter reads the listing filters from query params
func parseInstructionFilter(c *fiber.Ctx) (repositories.InstructionFilter, error) {
	filter := repositories.InstructionFilter{
		SalesOrder:      c.Query("salesOrder"),
		ProductionOrder: c.Query("productionOrder"),
		Status:          c.Query("status"),
		CurrentUpdate:   c.Query("currentUpdate"),
		SubmittedBy:     c.Query("submittedBy"),
	}

	if assigned := c.Query("assignedTo"); assigned != "" {
		if assigned == "unassigned" {
			filter.Unassigned = true
		} else {
			id, err := strconv.ParseUint(assigned, 10, 32)
			if err != nil {
				return filter, errors.New("assignedTo must be a user id or 'unassigned'")
			}
			uid := uint(id)
			filter.AssignedTo = &uid
		}
	}

	return filter, nil
}
