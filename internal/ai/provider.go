// Package ai wraps the hosted completion API behind a small streaming
// interface so the chat layer never depends on a vendor SDK directly.
package ai

import (
	"context"
	"errors"

	"github.com/arin/gptchat/internal/credential"
)

// Message roles accepted by the completion API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrClientInit is matched by every client construction failure.
var ErrClientInit = errors.New("client initialization failed")

// Message is a provider-agnostic chat message.
type Message struct {
	Role    string // "system", "user", or "assistant"
	Content string
}

// Request describes one streaming completion call.
type Request struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Client issues streaming completion requests.
type Client interface {
	// CompleteStream sends the request and returns a channel that emits
	// deltas as they arrive. The channel is closed after a Done or Err delta,
	// or once ctx is cancelled.
	CompleteStream(ctx context.Context, req Request) <-chan StreamDelta
}

// Factory builds a Client for a model and a resolved credential.
// A fresh client is built for every request.
type Factory interface {
	Build(model string, cred credential.Credential) (Client, error)
}

// FactoryFunc adapts a plain function to Factory.
type FactoryFunc func(model string, cred credential.Credential) (Client, error)

// Build calls f.
func (f FactoryFunc) Build(model string, cred credential.Credential) (Client, error) {
	return f(model, cred)
}

// ClientInitError wraps whatever went wrong while constructing a client.
type ClientInitError struct {
	Err error
}

func (e *ClientInitError) Error() string {
	return e.Err.Error()
}

func (e *ClientInitError) Unwrap() error {
	return e.Err
}

func (e *ClientInitError) Is(target error) bool {
	return target == ErrClientInit
}
