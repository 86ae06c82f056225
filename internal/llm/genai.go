// Package llm adapts the Gemini API to the chat model used by the insight
// chat.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fintrack/internal/models"
	"google.golang.org/genai"
)

// DefaultModelName is used when no model is configured.
const DefaultModelName = "gemini-2.5-flash"

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("empty response from model")

// generator is the part of genai.Models the adapter calls.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAIModel completes conversations with a Gemini model.
type GenAIModel struct {
	models generator
	model  string
}

// NewGenAIModel creates a Gemini API client authenticated with apiKey.
func NewGenAIModel(ctx context.Context, apiKey, model string) (*GenAIModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("genai: API key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newModel(client.Models, model), nil
}

func newModel(g generator, model string) *GenAIModel {
	if model == "" {
		model = DefaultModelName
	}
	return &GenAIModel{models: g, model: model}
}

// Complete sends the conversation and returns the reply text. System
// messages become the system instruction; assistant turns use the "model"
// role.
func (m *GenAIModel) Complete(ctx context.Context, messages []models.ChatMessage) (string, error) {
	var (
		system   []string
		contents []*genai.Content
	)
	for _, msg := range messages {
		switch msg.Role {
		case models.RoleSystem:
			system = append(system, msg.Content)
		case models.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(contents) == 0 {
		return "", errors.New("genai: no user message")
	}

	var cfg *genai.GenerateContentConfig
	if len(system) > 0 {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser),
		}
	}

	resp, err := m.models.GenerateContent(ctx, m.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
