package chat

import (
	"context"
	"errors"
	"iter"
	"sync"
	"time"

	"github.com/arin/gptchat/internal/stats"
)

// Session owns one conversation and admits a single generation at a time.
type Session struct {
	ID      string
	Created time.Time

	agg   *Aggregator
	stats *stats.Tracker
	now   func() time.Time

	mu      sync.Mutex
	history Conversation
	status  string
	prompt  string
	busy    bool
	// epoch increments on every Clear so an in-flight stream stops
	// committing into a conversation the user already wiped.
	epoch uint64
}

// NewSession returns an empty session that streams replies through agg.
func NewSession(id string, agg *Aggregator) *Session {
	return &Session{
		ID:      id,
		Created: time.Now(),
		agg:     agg,
		stats:   stats.NewTracker(),
		now:     time.Now,
		history: Conversation{},
	}
}

// History returns a snapshot of the conversation.
func (s *Session) History() Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Clone()
}

// Status returns the last status message.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Busy reports whether a generation is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Stats returns the session's generation metrics.
func (s *Session) Stats() *stats.Summary {
	return s.stats.Summarize()
}

// SetPrompt stores a draft prompt.
func (s *Session) SetPrompt(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompt = p
}

// Prompt returns the draft prompt.
func (s *Session) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompt
}

// ClearPrompt drops the draft prompt and returns the empty prompt text.
func (s *Session) ClearPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompt = ClearPrompt()
	return s.prompt
}

// Clear empties the conversation and status. A stream still in flight keeps
// running but no longer writes into the session.
func (s *Session) Clear() (Conversation, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.history, s.status = Clear()
	return s.history.Clone(), s.status
}

// Generate streams a reply to prompt and commits every emission as the
// session state. A second call while one is in flight yields a single
// ErrBusy update and leaves the session untouched.
func (s *Session) Generate(ctx context.Context, prompt string, settings Settings) iter.Seq[Update] {
	return func(yield func(Update) bool) {
		s.mu.Lock()
		if s.busy {
			current := s.history.Clone()
			s.mu.Unlock()
			s.stats.Add(stats.Record{Model: settings.Model, Outcome: stats.OutcomeRejected})
			yield(Update{History: current, Status: StatusBusy, Err: ErrBusy, Done: true})
			return
		}
		s.busy = true
		epoch := s.epoch
		current := s.history.Clone()
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			s.busy = false
			s.mu.Unlock()
		}()

		start := s.now()
		rec := stats.Record{Model: settings.Model, Outcome: stats.OutcomeError}
		defer func() {
			rec.Latency = s.now().Sub(start)
			s.stats.Add(rec)
		}()

		// A consumer that stops before the final update abandons the reply.
		var (
			partial Conversation
			done    bool
		)
		defer func() {
			if done {
				return
			}
			s.mu.Lock()
			if s.epoch == epoch {
				s.history = s.agg.afterFailure(current, partial)
				s.status = streamErrorPrefix + context.Canceled.Error()
			}
			s.mu.Unlock()
		}()

		for u := range s.agg.StreamReply(ctx, prompt, settings, current) {
			done = u.Done
			if !u.Done {
				partial = u.History
			}
			s.mu.Lock()
			if s.epoch == epoch {
				s.history = u.History
				s.status = u.Status
			}
			s.mu.Unlock()

			if !u.Done {
				if rec.Fragments == 0 {
					rec.FirstFragment = s.now().Sub(start)
				}
				rec.Fragments++
			} else {
				rec.Outcome = outcomeOf(u.Err)
				if last, ok := u.History.Last(); ok && u.Err == nil && last.Role == RoleAssistant {
					rec.Chars = len(last.Content)
				}
			}

			if !yield(u) {
				return
			}
		}
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return stats.OutcomeComplete
	case errors.Is(err, ErrEmptyPrompt), errors.Is(err, ErrInvalidSettings):
		return stats.OutcomeRejected
	default:
		return stats.OutcomeError
	}
}
