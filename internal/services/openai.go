package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/MegaGrindStone/doc-web-ui/internal/models"
	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAI provides an implementation of the Completer interface for interacting with OpenAI's
// language models, or any OpenAI-compatible endpoint.
type OpenAI struct {
	model string

	client *goopenai.Client

	logger *slog.Logger
}

// NewOpenAI creates a new OpenAI instance with the specified API key and model name.
func NewOpenAI(apiKey, model string, logger *slog.Logger) OpenAI {
	return OpenAI{
		model:  model,
		client: goopenai.NewClient(apiKey),
		logger: logger.With(slog.String("module", "openai")),
	}
}

func openAIMessages(messages []models.Message) []goopenai.ChatCompletionMessage {
	msgs := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		msgs[i] = goopenai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Text(),
		}
	}
	return msgs
}

// Complete is a wrapper around the buffered OpenAI chat completion API.
func (o OpenAI) Complete(ctx context.Context, messages []models.Message) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model:    o.model,
		Messages: openAIMessages(messages),
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices found")
	}

	return resp.Choices[0].Message.Content, nil
}

// Stream is a wrapper around the streaming OpenAI chat completion API. It returns an iterator
// that yields response chunks and potential errors.
func (o OpenAI) Stream(ctx context.Context, messages []models.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		req := goopenai.ChatCompletionRequest{
			Model:    o.model,
			Messages: openAIMessages(messages),
			Stream:   true,
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		stream, err := o.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			yield("", fmt.Errorf("error sending request: %w", err))
			return
		}
		defer stream.Close()

		for {
			response, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				if errors.Is(err, context.Canceled) {
					return
				}
				yield("", fmt.Errorf("error receiving response: %w", err))
				return
			}

			if len(response.Choices) == 0 {
				continue
			}

			if res := response.Choices[0].Delta.Content; res != "" {
				if !yield(res, nil) {
					return
				}
			}
		}
	}
}
