package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/MegaGrindStone/doc-web-ui/internal/models"
	"github.com/tmaxmax/go-sse"
)

// Horizon provides an implementation of the Completer interface for the Horizon chat-completion
// endpoint. It translates the internal message list into role/content pairs, authorizes each call
// with a bearer token from the TokenCache, and enforces a per-call response deadline.
type Horizon struct {
	chatURL string
	opts    HorizonOptions

	tokens *TokenCache
	client *http.Client

	logger *slog.Logger
}

// HorizonOptions carries the quality-of-service knobs forwarded to the endpoint as query
// parameters, plus the response deadline applied to every call.
type HorizonOptions struct {
	QoS       string
	Preview   bool
	Reasoning bool
	Timeout   time.Duration
}

const (
	defaultQoS     = "accurate"
	defaultTimeout = 30 * time.Second
)

type horizonMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type horizonChatRequest struct {
	Messages []horizonMessage `json:"messages"`
	Stream   bool             `json:"stream"`
}

type horizonChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// NewHorizon creates a Horizon client for the given chat endpoint. Zero option fields fall back
// to the defaults: qos "accurate" and a 30 second response deadline.
func NewHorizon(chatURL string, opts HorizonOptions, tokens *TokenCache, logger *slog.Logger) Horizon {
	if opts.QoS == "" {
		opts.QoS = defaultQoS
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}

	return Horizon{
		chatURL: chatURL,
		opts:    opts,
		tokens:  tokens,
		client:  &http.Client{},
		logger:  logger.With(slog.String("module", "horizon")),
	}
}

func horizonMessages(messages []models.Message) []horizonMessage {
	msgs := make([]horizonMessage, len(messages))
	for i, msg := range messages {
		msgs[i] = horizonMessage{
			Role:    string(msg.Role),
			Content: msg.Text(),
		}
	}
	return msgs
}

func (h Horizon) requestURL() string {
	q := url.Values{}
	q.Set("qos", h.opts.QoS)
	q.Set("preview", strconv.FormatBool(h.opts.Preview))
	q.Set("reasoning", strconv.FormatBool(h.opts.Reasoning))
	return h.chatURL + "?" + q.Encode()
}

func (h Horizon) send(ctx context.Context, messages []models.Message, stream bool) (*http.Response, error) {
	token, err := h.tokens.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	jsonBody, err := json.Marshal(horizonChatRequest{
		Messages: horizonMessages(messages),
		Stream:   stream,
	})
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.requestURL(), bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := h.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &UpstreamTimeoutError{Timeout: h.opts.Timeout}
		}
		return nil, &UpstreamError{Err: fmt.Errorf("error sending request: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		h.logger.Error("Chat request failed",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(errBody)))
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(errBody)}
	}

	return resp, nil
}

// Complete issues one buffered chat-completion call and returns the produced content.
func (h Horizon) Complete(ctx context.Context, messages []models.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, h.opts.Timeout)
	defer cancel()

	resp, err := h.send(ctx, messages, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var res horizonChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		if ctx.Err() != nil {
			return "", &UpstreamTimeoutError{Timeout: h.opts.Timeout}
		}
		return "", &UpstreamError{Err: fmt.Errorf("error unmarshaling response: %w", err)}
	}

	return res.Message.Content, nil
}

// Stream issues one streaming chat-completion call and returns an iterator yielding content
// fragments as the endpoint produces them. The sequence terminates on the endpoint's done marker,
// on context cancellation, or with a yielded error.
func (h Horizon) Stream(ctx context.Context, messages []models.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, cancel := context.WithTimeout(ctx, h.opts.Timeout)
		defer cancel()

		resp, err := h.send(ctx, messages, true)
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		for ev, err := range sse.Read(resp.Body, nil) {
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				if errors.Is(err, context.DeadlineExceeded) {
					yield("", &UpstreamTimeoutError{Timeout: h.opts.Timeout})
					return
				}
				yield("", &UpstreamError{Err: fmt.Errorf("error reading response: %w", err)})
				return
			}

			if ev.Data == "[DONE]" {
				return
			}

			var res horizonChatResponse
			if err := json.Unmarshal([]byte(ev.Data), &res); err != nil {
				yield("", &UpstreamError{Err: fmt.Errorf("error unmarshaling response: %w", err)})
				return
			}
			if !yield(res.Message.Content, nil) {
				return
			}
		}
	}
}
