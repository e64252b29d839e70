package verification

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const confirmPrompt = "Analyze this image carefully and determine if it contains a clear, visible human face. " +
	"A valid human face must have: eyes, nose, and mouth clearly visible. " +
	"Do NOT accept: photos of photos, screens, drawings, cartoons, animals, objects, or unclear/blurry images. " +
	"Do NOT accept: images where the face is completely obscured, turned away, or too small to identify. " +
	"Only return 'true' if you can clearly see a human face with recognizable facial features. " +
	"Return 'false' for anything else."

// OpenAIDetector is the remote semantic confirmer: a vision chat completion
// asked for a strict true/false verdict.
type OpenAIDetector struct {
	client *openai.Client
	model  string
}

func NewOpenAIDetector(client *openai.Client) *OpenAIDetector {
	return &OpenAIDetector{client: client, model: openai.GPT4oMini}
}

func (d *OpenAIDetector) DetectFace(ctx context.Context, data []byte) (bool, string, error) {
	b64 := base64.StdEncoding.EncodeToString(data)

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: confirmPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: fmt.Sprintf("data:image/jpeg;base64,%s", b64),
						},
					},
				},
			},
		},
		MaxTokens: 10,
	})
	if err != nil {
		return false, "", fmt.Errorf("vision confirmation request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return false, "empty response", nil
	}

	text := strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content))
	switch text {
	case "true":
		return true, text, nil
	case "false":
		return false, text, nil
	default:
		// Anything ambiguous counts as a rejection.
		log.Printf("Vision confirmer returned unclear response %q, treating as false", text)
		return false, text, nil
	}
}
