package ui

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/fatih/color"

	"github.com/arin/gptchat/internal/chat"
)

// StreamPrinter renders a sequence of chat updates to the terminal. Each
// update carries the whole transcript, so only the text appended to the
// assistant turn since the previous update is written.
type StreamPrinter struct {
	// Out receives the reply text.
	Out io.Writer
	// Status receives the status line. Nil means Out.
	Status io.Writer
	// Prefix is written before the first fragment (e.g. "  ").
	Prefix string
	// OnFirst runs once, before anything is rendered. Used to stop a spinner.
	OnFirst func()
}

// Render consumes updates and returns the last one.
func (p *StreamPrinter) Render(updates iter.Seq[chat.Update]) chat.Update {
	var (
		last    chat.Update
		printed int
		started bool
		onFirst = p.OnFirst
		tail    strings.Builder
	)

	for u := range updates {
		if onFirst != nil {
			onFirst()
			onFirst = nil
		}
		last = u
		if u.Done {
			continue
		}

		turn, ok := u.History.Last()
		if !ok || turn.Role != chat.RoleAssistant {
			continue
		}
		if len(turn.Content) < printed {
			printed = 0
		}
		delta := turn.Content[printed:]
		if delta == "" {
			continue
		}
		if !started {
			fmt.Fprint(p.Out, p.Prefix)
			started = true
		}
		fmt.Fprint(p.Out, delta)
		printed = len(turn.Content)
		tail.Reset()
		tail.WriteString(delta)
	}

	// Ensure we end with a newline.
	if started && !strings.HasSuffix(tail.String(), "\n") {
		fmt.Fprintln(p.Out)
	}

	p.printStatus(last)
	return last
}

func (p *StreamPrinter) printStatus(u chat.Update) {
	w := p.Status
	if w == nil {
		w = p.Out
	}
	switch {
	case u.Err != nil:
		color.New(color.FgRed).Fprintf(w, "  ✗ %s\n\n", u.Status)
	case u.Status != "":
		color.New(color.FgHiBlack).Fprintf(w, "  ✓ %s\n\n", u.Status)
	default:
		fmt.Fprintln(w)
	}
}
