package adk

import (
	"context"
	"encoding/json"
	"iter"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"stockresearch/internal/adapters/ai"
	"stockresearch/pkg/errors"
	"stockresearch/pkg/logger"
)

// ModelOptions are the per-model generation defaults.
type ModelOptions struct {
	Name        string
	Temperature float64
	MaxTokens   int
}

// ModelAdapter adapts our AI ChatProvider to ADK's model.LLM interface.
type ModelAdapter struct {
	provider ai.ChatProvider
	opts     ModelOptions
	log      *logger.Logger
}

// NewModelAdapter creates a new ADK model adapter.
func NewModelAdapter(provider ai.ChatProvider, opts ModelOptions) *ModelAdapter {
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 4096
	}
	return &ModelAdapter{
		provider: provider,
		opts:     opts,
		log:      logger.Get().With("component", "model_adapter", "model", opts.Name),
	}
}

// Name returns the model name.
func (m *ModelAdapter) Name() string {
	return m.opts.Name
}

// GenerateContent implements the ADK model.LLM interface.
// The provider is non-streaming, so stream requests get the complete response as one item.
func (m *ModelAdapter) GenerateContent(
	ctx context.Context,
	req *model.LLMRequest,
	stream bool,
) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		chatReq := m.convertToChatRequest(req)

		m.log.Debugw("Calling LLM", "messages", len(chatReq.Messages), "tools", len(chatReq.Tools))

		resp, err := m.provider.Chat(ctx, chatReq)
		if err != nil {
			yield(nil, errors.Wrap(err, "chat provider failed"))
			return
		}

		yield(m.convertToADKResponse(resp), nil)
	}
}

// convertToChatRequest converts ADK request to our format.
func (m *ModelAdapter) convertToChatRequest(req *model.LLMRequest) ai.ChatRequest {
	chatReq := ai.ChatRequest{
		Model:       m.opts.Name,
		MaxTokens:   m.opts.MaxTokens,
		Temperature: m.opts.Temperature,
	}

	if cfg := req.Config; cfg != nil {
		if cfg.Temperature != nil {
			chatReq.Temperature = float64(*cfg.Temperature)
		}
		if cfg.MaxOutputTokens > 0 {
			chatReq.MaxTokens = int(cfg.MaxOutputTokens)
		}
		if sys := contentText(cfg.SystemInstruction); sys != "" {
			chatReq.Messages = append(chatReq.Messages, ai.Message{Role: ai.RoleSystem, Content: sys})
		}
		for _, t := range cfg.Tools {
			if t == nil {
				continue
			}
			for _, decl := range t.FunctionDeclarations {
				chatReq.Tools = append(chatReq.Tools, ai.ToolDefinition{
					Name:        decl.Name,
					Description: decl.Description,
					Parameters:  declarationSchema(decl),
				})
			}
		}
	}

	for _, content := range req.Contents {
		chatReq.Messages = append(chatReq.Messages, m.convertContent(content)...)
	}

	return chatReq
}

// convertContent maps one genai.Content onto chat messages. A content holding
// function responses fans out into one tool message per response.
func (m *ModelAdapter) convertContent(content *genai.Content) []ai.Message {
	if content == nil {
		return nil
	}

	var (
		out   []ai.Message
		text  []string
		calls []ai.ToolCall
	)

	for _, part := range content.Parts {
		switch {
		case part == nil:
		case part.FunctionCall != nil:
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil || part.FunctionCall.Args == nil {
				args = []byte("{}")
			}
			calls = append(calls, ai.ToolCall{
				ID: callID(part.FunctionCall.ID, part.FunctionCall.Name),
				Function: ai.FunctionCall{
					Name:      part.FunctionCall.Name,
					Arguments: string(args),
				},
			})
		case part.FunctionResponse != nil:
			payload, err := json.Marshal(part.FunctionResponse.Response)
			if err != nil {
				m.log.Warnw("Failed to encode tool result", "tool", part.FunctionResponse.Name, "error", err)
				payload = []byte("{}")
			}
			out = append(out, ai.Message{
				Role:       ai.RoleTool,
				Name:       part.FunctionResponse.Name,
				ToolCallID: callID(part.FunctionResponse.ID, part.FunctionResponse.Name),
				Content:    string(payload),
			})
		case part.Text != "":
			text = append(text, part.Text)
		}
	}

	joined := strings.Join(text, "\n")
	if content.Role == genai.RoleModel {
		if joined != "" || len(calls) > 0 {
			out = append([]ai.Message{{Role: ai.RoleAssistant, Content: joined, ToolCalls: calls}}, out...)
		}
		return out
	}

	if joined != "" {
		out = append(out, ai.Message{Role: ai.RoleUser, Content: joined})
	}
	return out
}

// convertToADKResponse converts our response to ADK format.
func (m *ModelAdapter) convertToADKResponse(resp *ai.ChatResponse) *model.LLMResponse {
	adkResp := &model.LLMResponse{}

	if len(resp.Choices) == 0 {
		adkResp.FinishReason = genai.FinishReasonOther
		adkResp.ErrorMessage = "no choices in response"
		return adkResp
	}

	choice := resp.Choices[0]
	content := &genai.Content{Role: genai.RoleModel}

	if choice.Message.Content != "" {
		content.Parts = append(content.Parts, &genai.Part{Text: choice.Message.Content})
	}

	for _, tc := range choice.Message.ToolCalls {
		args := map[string]any{}
		if strings.TrimSpace(tc.Function.Arguments) != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				m.log.Warnw("Failed to parse tool call arguments", "tool", tc.Function.Name, "error", err)
				args = map[string]any{}
			}
		}

		content.Parts = append(content.Parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{
				ID:   tc.ID,
				Name: tc.Function.Name,
				Args: args,
			},
		})
	}

	adkResp.Content = content

	switch choice.FinishReason {
	case ai.FinishReasonLength:
		adkResp.FinishReason = genai.FinishReasonMaxTokens
	default:
		adkResp.FinishReason = genai.FinishReasonStop
	}

	adkResp.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{
		PromptTokenCount:     int32(resp.Usage.PromptTokens),
		CandidatesTokenCount: int32(resp.Usage.CompletionTokens),
		TotalTokenCount:      int32(resp.Usage.TotalTokens),
	}
	adkResp.TurnComplete = true

	return adkResp
}

func contentText(c *genai.Content) string {
	if c == nil {
		return ""
	}
	var parts []string
	for _, p := range c.Parts {
		if p != nil && p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func callID(id, name string) string {
	if id != "" {
		return id
	}
	return name
}

// declarationSchema returns the JSON schema of a function declaration in the
// lowercase dialect OpenAI-compatible endpoints accept.
func declarationSchema(decl *genai.FunctionDeclaration) map[string]any {
	var src any
	switch {
	case decl.ParametersJsonSchema != nil:
		src = decl.ParametersJsonSchema
	case decl.Parameters != nil:
		src = decl.Parameters
	default:
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}

	raw, err := json.Marshal(src)
	if err != nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil || schema == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	normalizeSchemaTypes(schema)
	if _, ok := schema["type"]; !ok {
		schema["type"] = "object"
	}
	return schema
}

// normalizeSchemaTypes lowercases genai.Schema enum types ("OBJECT" -> "object") in place.
func normalizeSchemaTypes(node map[string]any) {
	for k, v := range node {
		switch val := v.(type) {
		case string:
			if k == "type" {
				node[k] = strings.ToLower(val)
			}
		case map[string]any:
			normalizeSchemaTypes(val)
		case []any:
			for _, item := range val {
				if child, ok := item.(map[string]any); ok {
					normalizeSchemaTypes(child)
				}
			}
		}
	}
}

// Ensure ModelAdapter implements model.LLM
var _ model.LLM = (*ModelAdapter)(nil)
