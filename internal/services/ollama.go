package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"github.com/MegaGrindStone/doc-web-ui/internal/models"
	"github.com/ollama/ollama/api"
)

// Ollama provides an implementation of the Completer interface for interacting with Ollama's
// language models. It is intended for local runs where no Horizon credentials are available, and
// manages connections to an Ollama server instance.
type Ollama struct {
	host  string
	model string

	client *api.Client
}

// NewOllama creates a new Ollama instance with the specified host URL and model name. The host
// parameter should be a valid URL pointing to an Ollama server. If the provided host URL is
// invalid, the function will panic.
func NewOllama(host, model string) Ollama {
	u, err := url.Parse(host)
	if err != nil {
		panic(err)
	}

	return Ollama{
		host:   host,
		model:  model,
		client: api.NewClient(u, &http.Client{}),
	}
}

func ollamaMessages(messages []models.Message) []api.Message {
	msgs := make([]api.Message, len(messages))
	for i, msg := range messages {
		msgs[i] = api.Message{
			Role:    string(msg.Role),
			Content: msg.Text(),
		}
	}
	return msgs
}

// Complete sends the messages to the Ollama model and returns the full response content.
func (o Ollama) Complete(ctx context.Context, messages []models.Message) (string, error) {
	f := false
	req := api.ChatRequest{
		Model:    o.model,
		Messages: ollamaMessages(messages),
		Stream:   &f,
	}

	var sb strings.Builder
	if err := o.client.Chat(ctx, &req, func(res api.ChatResponse) error {
		sb.WriteString(res.Message.Content)
		return nil
	}); err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}

	return sb.String(), nil
}

// Stream streams responses from the Ollama model. It returns an iterator that yields response
// chunks as strings and potential errors, allowing for real-time processing of model outputs.
func (o Ollama) Stream(ctx context.Context, messages []models.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		t := true
		req := api.ChatRequest{
			Model:    o.model,
			Messages: ollamaMessages(messages),
			Stream:   &t,
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		if err := o.client.Chat(ctx, &req, func(res api.ChatResponse) error {
			if !yield(res.Message.Content, nil) {
				cancel()
			}
			return nil
		}); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			yield("", fmt.Errorf("error sending request: %w", err))
		}
	}
}
