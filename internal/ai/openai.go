package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/arin/gptchat/internal/credential"
)

// OpenAIFactory builds clients for the OpenAI Chat Completions API.
type OpenAIFactory struct {
	// BaseURL points at an OpenAI-compatible endpoint. Empty means the
	// public API.
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Build validates the inputs and constructs a client. Any failure is
// returned as a *ClientInitError.
func (f OpenAIFactory) Build(model string, cred credential.Credential) (Client, error) {
	key := string(cred)
	if strings.TrimSpace(key) == "" {
		return nil, &ClientInitError{Err: errors.New("API key is empty")}
	}
	if strings.ContainsAny(key, " \t\r\n") {
		return nil, &ClientInitError{Err: errors.New("API key contains whitespace")}
	}
	if strings.TrimSpace(model) == "" {
		return nil, &ClientInitError{Err: errors.New("model must be provided")}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	}
	if f.BaseURL != "" {
		u, err := url.Parse(f.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, &ClientInitError{Err: fmt.Errorf("invalid base URL %q", f.BaseURL)}
		}
		opts = append(opts, option.WithBaseURL(f.BaseURL))
	}
	if f.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(f.HTTPClient))
	}

	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := openai.NewClient(opts...)
	return &OpenAIClient{
		client: &client,
		model:  model,
		logger: logger,
	}, nil
}

// OpenAIClient implements Client using the standard OpenAI API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// Model returns the model the client was built for.
func (c *OpenAIClient) Model() string {
	return c.model
}

// ErrUnauthorized is returned by Ping when the endpoint rejects the key.
var ErrUnauthorized = errors.New("the API key was rejected")

// Ping lists models to confirm the endpoint is up and accepts the key.
func (c *OpenAIClient) Ping(ctx context.Context) error {
	_, err := c.client.Models.List(ctx)
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return err
}

// CompleteStream opens a streaming chat completion and relays each choice
// delta on the returned channel.
func (c *OpenAIClient) CompleteStream(ctx context.Context, req Request) <-chan StreamDelta {
	ch := make(chan StreamDelta)

	go func() {
		defer close(ch)

		send := func(d StreamDelta) bool {
			select {
			case ch <- d:
				return true
			case <-ctx.Done():
				return false
			}
		}

		model := chooseModel(req.Model, c.model)
		params := openai.ChatCompletionNewParams{
			Model:       openai.ChatModel(model),
			Messages:    buildOpenAIMessages(req.Messages),
			Temperature: openai.Float(req.Temperature),
		}
		if req.MaxTokens > 0 {
			params.MaxTokens = openai.Int(int64(req.MaxTokens))
		}

		c.logger.Debug("opening completion stream",
			zap.String("model", model),
			zap.Int("messages", len(req.Messages)),
			zap.Int("max_tokens", req.MaxTokens),
			zap.Float64("temperature", req.Temperature),
		)

		stream := c.client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		chunks := 0
		for stream.Next() {
			chunk := stream.Current()
			chunks++
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta
			d := StreamDelta{Token: delta.Content}
			if !delta.JSON.Content.Valid() {
				d = StreamDelta{Null: true}
			}
			if !send(d) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			c.logger.Debug("completion stream failed", zap.Int("chunks", chunks), zap.Error(err))
			send(StreamDelta{Err: err})
			return
		}

		c.logger.Debug("completion stream finished", zap.Int("chunks", chunks))
		send(StreamDelta{Done: true})
	}()

	return ch
}

func buildOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func chooseModel(requested, fallback string) string {
	if strings.TrimSpace(requested) != "" {
		return requested
	}
	return fallback
}

var _ Client = (*OpenAIClient)(nil)
var _ Factory = OpenAIFactory{}
