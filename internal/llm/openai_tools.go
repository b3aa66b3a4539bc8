package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"

	"github.com/javiermolinar/scheduleragent/internal/tools"
)

func convOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case "system":
			out[i] = openai.SystemMessage(msg.Content)
		case "user":
			out[i] = openai.UserMessage(msg.Content)
		case "assistant":
			out[i] = openai.AssistantMessage(msg.Content)
		default:
			out[i] = openai.UserMessage(msg.Content)
		}
	}
	return out
}

func convOpenAITools(catalog []tools.Spec) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, len(catalog))
	for i, spec := range catalog {
		var params openai.FunctionParameters
		if spec.Parameters != nil {
			b, err := json.Marshal(spec.Parameters)
			if err == nil {
				_ = json.Unmarshal(b, &params)
			}
		}
		out[i] = openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        spec.Name,
				Description: param.NewOpt(spec.Description),
				Parameters:  params,
			},
		}
	}
	return out
}

func convOpenAIToolChoice(choice ToolChoice) openai.ChatCompletionToolChoiceOptionUnionParam {
	switch choice.Mode {
	case "required":
		if choice.Name != "" {
			return openai.ChatCompletionToolChoiceOptionUnionParam{
				OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
					Function: openai.ChatCompletionNamedToolChoiceFunctionParam{Name: choice.Name},
				},
			}
		}
		return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: param.NewOpt("required")}
	case "none":
		return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: param.NewOpt("none")}
	default:
		return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: param.NewOpt("auto")}
	}
}

// chatWithToolsOpenAI is the shared implementation for any Client backed by
// an openai.Client (Copilot and LM Studio both are).
func chatWithToolsOpenAI(ctx context.Context, client openai.Client, model string, messages []Message, catalog []tools.Spec, choice ToolChoice) (ChatResult, error) {
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:      model,
		Messages:   convOpenAIMessages(messages),
		Tools:      convOpenAITools(catalog),
		ToolChoice: convOpenAIToolChoice(choice),
	})
	if err != nil {
		return ChatResult{}, fmt.Errorf("tool-calling chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ChatResult{}, fmt.Errorf("no response choices returned")
	}

	msg := resp.Choices[0].Message
	result := ChatResult{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return result, nil
}
