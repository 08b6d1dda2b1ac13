package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"healthcare-ai-server/internal/config"
	"healthcare-ai-server/internal/facade"

	openai "github.com/sashabaranov/go-openai"
)

// maxToolRounds is the fixed step budget per conversational turn. A turn that
// exhausts it gets one final completion with tool calling disabled so the model
// still narrates an answer.
const maxToolRounds = 5

// Message is one entry of the conversation history supplied by the client.
type Message struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

// Assistant drives the tool-calling conversational loop: it forwards the
// caller's messages to the model provider together with the tool surface the
// caller's capability permits, executes requested tools against the façade,
// and returns the model's final text.
type Assistant struct {
	client *openai.Client
	model  string
	facade *facade.Facade
}

// New creates an Assistant backed by the configured model provider.
func New(cfg *config.Config, f *facade.Facade) *Assistant {
	clientCfg := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAI.BaseURL
	}
	return &Assistant{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.OpenAI.Model,
		facade: f,
	}
}

// Chat runs one conversational turn. Provider failures are returned as
// *ProviderError with a distinguishing code and are never retried.
func (a *Assistant) Chat(ctx context.Context, cap facade.Capability, history []Message) (string, error) {
	tools := a.facade.Tools(cap)
	defs := make([]openai.Tool, len(tools))
	byName := make(map[string]facade.Tool, len(tools))
	for i, t := range tools {
		defs[i] = t.Definition
		byName[t.Definition.Function.Name] = t
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt(cap),
	})
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    a.model,
			Messages: messages,
			Tools:    defs,
		})
		if err != nil {
			return "", classifyProviderError(err)
		}
		if len(resp.Choices) == 0 {
			return "", &ProviderError{Code: CodeUnknown, Message: "model returned no choices"}
		}

		choice := resp.Choices[0].Message
		if len(choice.ToolCalls) == 0 {
			return choice.Content, nil
		}

		messages = append(messages, choice)
		for _, call := range choice.ToolCalls {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    a.runTool(ctx, byName, call),
			})
		}
	}

	// Step budget exhausted; ask for a final narration without tools.
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:      a.model,
		Messages:   messages,
		Tools:      defs,
		ToolChoice: "none",
	})
	if err != nil {
		return "", classifyProviderError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Code: CodeUnknown, Message: "model returned no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

// runTool executes a requested tool and serializes its outcome for the model.
func (a *Assistant) runTool(ctx context.Context, byName map[string]facade.Tool, call openai.ToolCall) string {
	tool, ok := byName[call.Function.Name]
	if !ok {
		return fmt.Sprintf("Unknown tool: %s", call.Function.Name)
	}

	value := tool.Run(ctx, json.RawMessage(call.Function.Arguments))
	if s, ok := value.(string); ok {
		return s
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		log.Printf("assistant: encoding %s result: %v", call.Function.Name, err)
		return "Unable to encode the tool result."
	}
	return string(encoded)
}

func systemPrompt(cap facade.Capability) string {
	roleContext := "You can view your own records: appointments, prescriptions, lab results and billing."
	switch {
	case cap.Role == "admin":
		roleContext = "You have full access to all patient data in the system."
	case cap.Elevated:
		roleContext = "You can view and manage patient data for staff operations."
	}

	return fmt.Sprintf(`You are "HealthBot", an advanced medical assistant for a healthcare system.

CONTEXT:
- User ID: %s
- User Role: %s
- Current Time: %s
- %s

GUIDELINES:
- Use the provided tools to fetch real data. DO NOT hallucinate appointments or bills.
- When users ask for patient data, use the relevant tools (getPatientProfile, getAppointments, etc.)
- When listing doctors, include their consultation fees and specialization.
- Tone: Professional, Empathetic, Concise.
- SAFETY: For medical concerns, direct users to appropriate healthcare providers.`,
		cap.UserID, strings.ToUpper(string(cap.Role)), time.Now().Format(time.RFC1123), roleContext)
}
