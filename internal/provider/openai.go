package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ashwch/smartff/internal/conversation"
	openai "github.com/sashabaranov/go-openai"
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OpenAIConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	ForceJSON bool
	// HTTPClient is optional; nil uses the library default.
	HTTPClient *http.Client
}

// OpenAIGenerator talks to any OpenAI-compatible chat-completion endpoint,
// OpenRouter by default.
type OpenAIGenerator struct {
	client    chatCompleter
	model     string
	forceJSON bool
	logger    *slog.Logger
	tokenizer func() *conversation.Tokenizer
}

func NewOpenAIGenerator(cfg OpenAIConfig, logger *slog.Logger) (*OpenAIGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	}

	return &OpenAIGenerator{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.Model,
		forceJSON: cfg.ForceJSON,
		logger:    logger,
		tokenizer: conversation.DefaultTokenizer,
	}, nil
}

func (g *OpenAIGenerator) Model() string {
	return g.model
}

func (g *OpenAIGenerator) Generate(ctx context.Context, conv *conversation.Conversation) (Result, error) {
	req := openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: toChatMessages(conv.Messages()),
	}
	if g.forceJSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	if g.logger.Enabled(ctx, slog.LevelDebug) {
		g.logger.Debug("requesting completion",
			"model", g.model,
			"turns", conv.Len(),
			"refinements", conv.UserTurns()-1,
			"prompt_tokens_est", g.tokenizer().Count(conv),
		)
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Result{}, wrapAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, &MalformedError{Err: errors.New("response contained no choices")}
	}

	raw := resp.Choices[0].Message.Content
	g.logger.Debug("completion received",
		"model", resp.Model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"finish_reason", resp.Choices[0].FinishReason,
		"preview", truncate(raw, 160),
	)

	return ParseResult(raw)
}

func toChatMessages(turns []conversation.Turn) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, turn := range turns {
		role := openai.ChatMessageRoleUser
		switch turn.Role {
		case conversation.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case conversation.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	return out
}

func wrapAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := http.StatusText(reqErr.HTTPStatusCode)
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &APIError{StatusCode: reqErr.HTTPStatusCode, Message: msg, Err: err}
	}
	return &APIError{Message: err.Error(), Err: err}
}
