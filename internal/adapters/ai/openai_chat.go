package ai

import (
	"context"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"stockresearch/internal/metrics"
	"stockresearch/pkg/errors"
	"stockresearch/pkg/logger"
)

// OpenAICompatibleConfig configures a chat provider for any OpenAI-compatible endpoint.
type OpenAICompatibleConfig struct {
	Name        string // provider label for logs and metrics, e.g. "groq"
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	RateLimiter RateLimiter
	HTTPClient  *http.Client
}

// OpenAICompatibleProvider talks to Groq (or OpenAI itself) through the official SDK.
type OpenAICompatibleProvider struct {
	name        string
	client      openai.Client // NewClient returns Client (not *Client)
	timeout     time.Duration
	rateLimiter RateLimiter
	log         *logger.Logger
}

// Ensure OpenAICompatibleProvider implements ChatProvider
var _ ChatProvider = (*OpenAICompatibleProvider)(nil)

// NewOpenAICompatibleProvider creates a chat provider; the API key is mandatory.
func NewOpenAICompatibleProvider(cfg OpenAICompatibleConfig) (*OpenAICompatibleProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "%s API key is required", cfg.Name)
	}
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RateLimiter == nil {
		cfg.RateLimiter = NewNoOpLimiter()
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &OpenAICompatibleProvider{
		name:        cfg.Name,
		client:      openai.NewClient(opts...),
		timeout:     cfg.Timeout,
		rateLimiter: cfg.RateLimiter,
		log:         logger.Get().With("component", "llm", "provider", cfg.Name),
	}, nil
}

// Name returns provider name.
func (p *OpenAICompatibleProvider) Name() string { return p.name }

// Chat sends a chat completion request.
func (p *OpenAICompatibleProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		metrics.RecordLLMRateLimited(req.Model)
		return nil, errors.Wrap(errors.ErrRateLimitExceeded, err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: toOpenAIMessages(req.Messages),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	for _, tool := range req.Tools {
		params.Tools = append(params.Tools, toOpenAITool(tool))
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		metrics.RecordLLMCall(req.Model, 0, 0, err)
		return nil, p.wrapError(err)
	}

	chatResp := fromOpenAIResponse(resp)
	metrics.RecordLLMCall(req.Model, chatResp.Usage.PromptTokens, chatResp.Usage.CompletionTokens, nil)

	p.log.Debugw("LLM responded",
		"model", req.Model,
		"latency", time.Since(start),
		"prompt_tokens", chatResp.Usage.PromptTokens,
		"completion_tokens", chatResp.Usage.CompletionTokens,
	)

	return chatResp, nil
}

func (p *OpenAICompatibleProvider) wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return errors.Wrapf(errors.ErrRateLimitExceeded, "%s API (%d): %s", p.name, apiErr.StatusCode, apiErr.Message)
		}
		return errors.Wrapf(errors.ErrExternal, "%s API error (%d): %s", p.name, apiErr.StatusCode, apiErr.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(errors.ErrTimeout, "%s chat completion: %v", p.name, err)
	}
	return errors.Wrapf(err, "%s chat completion", p.name)
}

func toOpenAIMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case RoleTool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
		case RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(msg.Content))
				continue
			}
			asst := &openai.ChatCompletionAssistantMessageParam{}
			if msg.Content != "" {
				asst.Content.OfString = param.NewOpt(msg.Content)
			}
			for _, tc := range msg.ToolCalls {
				args := tc.Function.Arguments
				if args == "" {
					args = "{}"
				}
				asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Function.Name,
							Arguments: args,
						},
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: asst})
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

func toOpenAITool(tool ToolDefinition) openai.ChatCompletionToolUnionParam {
	var description param.Opt[string]
	if tool.Description != "" {
		description = param.NewOpt(tool.Description)
	}
	params := tool.Parameters
	if params == nil {
		params = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
		Name:        tool.Name,
		Description: description,
		Parameters:  params,
	})
}

func fromOpenAIResponse(resp *openai.ChatCompletion) *ChatResponse {
	out := &ChatResponse{
		ID:    resp.ID,
		Model: resp.Model,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}

	for _, choice := range resp.Choices {
		msg := Message{
			Role:    RoleAssistant,
			Content: choice.Message.Content,
		}
		for _, tc := range choice.Message.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, ToolCall{
				ID: tc.ID,
				Function: FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}

		out.Choices = append(out.Choices, Choice{
			Index:        int(choice.Index),
			Message:      msg,
			FinishReason: finishReason(choice.FinishReason),
		})
	}

	return out
}

func finishReason(raw string) FinishReason {
	switch raw {
	case "length":
		return FinishReasonLength
	case "tool_calls", "function_call":
		return FinishReasonToolCalls
	default:
		return FinishReasonStop
	}
}
