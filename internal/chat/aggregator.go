package chat

import (
	"context"
	"errors"
	"iter"
	"strings"

	"go.uber.org/zap"

	"github.com/arin/gptchat/internal/ai"
	"github.com/arin/gptchat/internal/credential"
)

// Update is one emission of a streaming reply: the transcript to render and
// the status line to show next to it.
type Update struct {
	History Conversation `json:"history"`
	Status  string       `json:"status"`
	// Err is set on failure emissions and matches one of the package
	// sentinels, credential.ErrMissing or ai.ErrClientInit.
	Err error `json:"-"`
	// Done marks the last emission of a reply.
	Done bool `json:"done"`
}

// Aggregator streams replies from the completion service into a transcript.
type Aggregator struct {
	Credentials credential.Provider
	Factory     ai.Factory
	// PreservePartial keeps the partial exchange when a stream fails
	// mid-way, annotated as interrupted. The default discards it and
	// reverts to the state passed in.
	PreservePartial bool
	Logger          *zap.Logger
}

// NewAggregator returns an aggregator using creds and factory.
func NewAggregator(creds credential.Provider, factory ai.Factory) *Aggregator {
	return &Aggregator{Credentials: creds, Factory: factory}
}

func (a *Aggregator) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// StreamReply sends prompt to the model and yields the transcript after every
// fragment of text that arrives. The sequence is lazy: nothing happens until
// it is ranged over, and the next fragment is not read until the consumer
// returns from the previous yield. Breaking out of the loop cancels the
// request.
//
// current is never modified. Early failures yield a single update carrying
// current unchanged.
func (a *Aggregator) StreamReply(ctx context.Context, prompt string, settings Settings, current Conversation) iter.Seq[Update] {
	return func(yield func(Update) bool) {
		log := a.logger()

		fail := func(status string, err error) {
			yield(Update{History: current.Clone(), Status: status, Err: err, Done: true})
		}

		if strings.TrimSpace(prompt) == "" {
			fail(StatusEmptyPrompt, ErrEmptyPrompt)
			return
		}
		if err := settings.Validate(); err != nil {
			fail(settingsErrPrefix+strings.TrimPrefix(err.Error(), ErrInvalidSettings.Error()+": "), err)
			return
		}

		cred, err := a.Credentials.Resolve()
		if err != nil {
			log.Warn("credential unavailable", zap.Error(err))
			fail(missingErrorPrefix+err.Error(), err)
			return
		}

		client, err := a.Factory.Build(settings.Model, cred)
		if err != nil {
			log.Warn("client construction failed", zap.String("model", settings.Model), zap.Error(err))
			if !errors.Is(err, ai.ErrClientInit) {
				err = &ai.ClientInitError{Err: err}
			}
			fail(initErrorPrefix+err.Error(), err)
			return
		}

		streamCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		deltas := client.CompleteStream(streamCtx, ai.Request{
			Model:       settings.Model,
			Messages:    []ai.Message{{Role: ai.RoleUser, Content: prompt}},
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		})

		working := make(Conversation, len(current), len(current)+2)
		copy(working, current)
		working = append(working,
			Turn{Role: RoleUser, Content: prompt},
			Turn{Role: RoleAssistant, Content: ""},
		)
		last := len(working) - 1

		var reply strings.Builder
		fragments := 0
		finished := false

		for delta := range deltas {
			if delta.Err != nil {
				log.Info("stream failed",
					zap.String("model", settings.Model),
					zap.Int("fragments", fragments),
					zap.Error(delta.Err),
				)
				a.failStream(yield, current, working, delta.Err)
				return
			}
			if delta.Done {
				finished = true
				break
			}
			if !delta.HasText() {
				continue
			}
			reply.WriteString(delta.Token)
			fragments++
			working[last].Content = reply.String()
			if !yield(Update{History: working.Clone(), Status: StatusStreaming}) {
				return
			}
		}

		// A channel closed without Done or Err means the context went away.
		if !finished {
			cause := streamCtx.Err()
			if cause == nil {
				cause = errors.New("stream ended unexpectedly")
			}
			a.failStream(yield, current, working, cause)
			return
		}

		log.Debug("stream complete",
			zap.String("model", settings.Model),
			zap.Int("fragments", fragments),
			zap.Int("chars", reply.Len()),
		)
		yield(Update{History: working.Clone(), Status: StatusComplete, Done: true})
	}
}

func (a *Aggregator) failStream(yield func(Update) bool, current, working Conversation, cause error) {
	yield(Update{
		History: a.afterFailure(current, working),
		Status:  streamErrorPrefix + cause.Error(),
		Err:     &streamError{err: cause},
		Done:    true,
	})
}

// afterFailure returns the transcript to keep once a reply is cut short:
// current, or with PreservePartial the partial exchange marked as
// interrupted.
func (a *Aggregator) afterFailure(current, working Conversation) Conversation {
	if !a.PreservePartial || len(working) == 0 {
		return current.Clone()
	}
	history := working.Clone()
	history[len(history)-1].Content += interruptedSuffix
	return history
}
