package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"sdi-portal/internal/adapters/persistence/models"
	"sdi-portal/internal/adapters/persistence/repositories"
	"sdi-portal/internal/config"
	"sdi-portal/internal/core/domain"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Fallback texts returned when the model is unavailable. The endpoints
// always answer 200: AI is assistive, never load-bearing.
const (
	summaryAllClear    = "All instructions are cleared. Excellent work!"
	summaryUnavailable = "The AI assistant is temporarily unavailable, but your pending instructions are safe."
)

// minPolishLength is the shortest text worth sending to the model
const minPolishLength = 5

// AIService provides the Gemini-backed workload summary and comment
// polish features
type AIService struct {
	cfg             config.AIConfig
	instructionRepo repositories.InstructionRepository

	initOnce sync.Once
	client   *genai.Client
	initErr  error
}

// NewAIService creates a new AI service. The Gemini client is dialed
// lazily on first use so a missing API key only degrades the AI
// endpoints instead of failing startup.
func NewAIService(cfg config.AIConfig, instructionRepo repositories.InstructionRepository) *AIService {
	return &AIService{
		cfg:             cfg,
		instructionRepo: instructionRepo,
	}
}

// Summarize builds a short natural-language summary of the actor's
// pending instructions. Model failures fall back to a static message.
func (s *AIService) Summarize(ctx context.Context, actor domain.Actor) (string, error) {
	pending, err := s.instructionRepo.List(ctx, scopeFor(actor), repositories.InstructionFilter{
		Status: models.StatusPending,
	})
	if err != nil {
		return "", err
	}

	if len(pending) == 0 {
		return summaryAllClear, nil
	}

	prompt := buildSummaryPrompt(pending)
	text, genErr := s.generate(ctx, prompt)
	if genErr != nil {
		log.Printf("⚠️ AI summary unavailable: %v", genErr)
		return summaryUnavailable, nil
	}
	return text, nil
}

// Polish rewrites a comment into clear professional English. Inputs too
// short to rewrite and any model failure return the text unchanged.
func (s *AIService) Polish(ctx context.Context, text string) string {
	if len(strings.TrimSpace(text)) < minPolishLength {
		return text
	}

	prompt := fmt.Sprintf(
		"Rewrite the following logistics comment in clear, professional English. "+
			"Keep it brief, keep every fact, and return only the rewritten text with no preamble:\n\n%s",
		text,
	)

	polished, err := s.generate(ctx, prompt)
	if err != nil {
		log.Printf("⚠️ AI polish unavailable: %v", err)
		return text
	}
	if strings.TrimSpace(polished) == "" {
		return text
	}
	return strings.TrimSpace(polished)
}

// generate sends one prompt to the configured Gemini model
func (s *AIService) generate(ctx context.Context, prompt string) (string, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return "", err
	}

	model := client.GenerativeModel(s.cfg.Model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text parts in model response")
	}
	return sb.String(), nil
}

// getClient dials the Gemini API once
func (s *AIService) getClient(ctx context.Context) (*genai.Client, error) {
	s.initOnce.Do(func() {
		if s.cfg.APIKey == "" {
			s.initErr = fmt.Errorf("no API key configured")
			return
		}
		s.client, s.initErr = genai.NewClient(ctx, option.WithAPIKey(s.cfg.APIKey))
	})
	return s.client, s.initErr
}

// Close releases the underlying client
func (s *AIService) Close() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

// buildSummaryPrompt lists the pending workload for the model
func buildSummaryPrompt(pending []*models.Instruction) string {
	var sb strings.Builder
	sb.WriteString("You are an assistant for a delivery instruction portal. ")
	sb.WriteString("Summarize the following pending instructions in two or three sentences: ")
	sb.WriteString("mention the total count, any customer with several open items, and anything urgent in the comments. ")
	sb.WriteString("Return only the summary.\n\n")

	for _, ins := range pending {
		sb.WriteString(fmt.Sprintf("- %s | customer %s | location %s | sales order %s | update: %s | sales comments: %s\n",
			ins.ReferenceNumber,
			ins.CustomerCode,
			ins.Location,
			ins.SalesOrder,
			ins.CurrentUpdate,
			ins.CommentsSales,
		))
	}
	return sb.String()
}
