package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/models"
)

// DefaultHistoryLimit bounds the remembered conversation, in messages.
const DefaultHistoryLimit = 20

const systemPrompt = `You are a personal finance assistant. Answer using only the data below.
Amounts are in the account currency. Be concise and concrete.

`

// ChatModel completes a role-tagged conversation with one assistant reply.
type ChatModel interface {
	Complete(ctx context.Context, messages []models.ChatMessage) (string, error)
}

// ChatService answers questions grounded on the current insight context.
type ChatService interface {
	Ask(ctx context.Context, question string) (string, error)
	History() []models.ChatMessage
	Reset()
}

type chatService struct {
	model   ChatModel
	builder ContextBuilder
	logger  logging.Logger
	limit   int

	mu      sync.Mutex
	history []models.ChatMessage
}

func NewChatService(model ChatModel, builder ContextBuilder, logger logging.Logger, limit int) ChatService {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &chatService{model: model, builder: builder, logger: logger, limit: limit}
}

// Ask sends [system(context), history..., user(question)]. The context is
// rebuilt on every call so answers follow the latest sync.
func (c *chatService) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("empty question: %w", common.ErrValidation)
	}

	grounding, err := c.builder.Build(ctx)
	if err != nil {
		return "", fmt.Errorf("build context: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := make([]models.ChatMessage, 0, len(c.history)+2)
	msgs = append(msgs, models.ChatMessage{Role: models.RoleSystem, Content: systemPrompt + grounding})
	msgs = append(msgs, c.history...)
	msgs = append(msgs, models.ChatMessage{Role: models.RoleUser, Content: question})

	reply, err := c.model.Complete(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	c.history = append(c.history,
		models.ChatMessage{Role: models.RoleUser, Content: question},
		models.ChatMessage{Role: models.RoleAssistant, Content: reply},
	)
	// Drop whole question/answer pairs so the history never starts with a reply.
	if over := len(c.history) - c.limit; over > 0 {
		over += over % 2
		c.history = append([]models.ChatMessage(nil), c.history[over:]...)
	}

	c.logger.Debug(ctx, "chat answered", "history", len(c.history))
	return reply, nil
}

func (c *chatService) History() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.ChatMessage(nil), c.history...)
}

func (c *chatService) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
}
