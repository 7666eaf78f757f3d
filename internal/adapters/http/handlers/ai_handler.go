package handlers

import (
	"sdi-portal/internal/adapters/http/middleware"
	"sdi-portal/internal/core/services"
	"sdi-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AIHandler handles the assistive AI endpoints. Both endpoints answer
// 200 with fallback text when the model is unavailable.
type AIHandler struct {
	aiService *services.AIService
}

// NewAIHandler creates a new AI handler
func NewAIHandler(aiService *services.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// Summary returns an AI summary of the caller's pending instructions
// @Summary Workload summary
// @Description Summarize the caller's pending instructions
// @Tags AI
// @Produce json
// @Success 200 {object} response.Response
// @Router /ai/summary [post]
func (h *AIHandler) Summary(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	summary, err := h.aiService.Summarize(c.Context(), actor)
	if err != nil {
		return response.InternalServerError(c, "Failed to load pending instructions")
	}

	return response.Success(c, "", fiber.Map{
		"summary": summary,
	})
}

// PolishRequest represents the comment polish request body
type PolishRequest struct {
	Text string `json:"text"`
}

// Polish rewrites a comment into professional English
// @Summary Polish comment
// @Description Rewrite a comment into clear professional English
// @Tags AI
// @Accept json
// @Produce json
// @Param body body PolishRequest true "Text to polish"
// @Success 200 {object} response.Response
// @Router /ai/polish [post]
func (h *AIHandler) Polish(c *fiber.Ctx) error {
	var req PolishRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	return response.Success(c, "", fiber.Map{
		"text": h.aiService.Polish(c.Context(), req.Text),
	})
}
