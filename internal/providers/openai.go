package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

const openaiDefaultModel = "gpt-4o"

// OpenAI queries the OpenAI chat completions API with keyframes and
// transcript context.
type OpenAI struct {
	client openai.Client
	model  string
}

func NewOpenAI(apiKey, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("openai: API key required")
	}
	if model == "" {
		model = openaiDefaultModel
	}
	return &OpenAI{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Query(ctx context.Context, pkg *entity.Package, question string) (string, error) {
	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(fmt.Sprintf("I'm sharing keyframes from a video for analysis.\n\n%s\nKeyframes:", contextText(pkg))),
	}
	for _, b64 := range keyframesBase64(pkg) {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: "data:image/webp;base64," + b64,
		}))
	}
	parts = append(parts, openai.TextContentPart("\nQuestion: "+question))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(parts),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
