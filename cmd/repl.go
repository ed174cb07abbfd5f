package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/arin/gptchat/internal/chat"
)

// replState holds what the slash commands of the chat shell can change.
type replState struct {
	session  *chat.Session
	settings chat.Settings
	out      io.Writer
}

// handle runs input if it is a shell command. It reports whether the input
// was consumed and whether the shell should exit.
func (r *replState) handle(input string) (handled, quit bool) {
	switch strings.ToLower(input) {
	case "exit", "quit", "bye":
		return true, true
	}
	if !strings.HasPrefix(input, "/") {
		return false, false
	}

	fields := strings.Fields(input)
	name, args := fields[0], fields[1:]

	dim := color.New(color.FgHiBlack)
	red := color.New(color.FgRed)

	switch name {
	case "/clear":
		r.session.Clear()
		r.session.ClearPrompt()
		dim.Fprintf(r.out, "  Conversation cleared.\n\n")
	case "/model":
		r.update(args, "/model <id>", func(v string, s *chat.Settings) error {
			s.Model = v
			return nil
		})
	case "/tokens":
		r.update(args, "/tokens <n>", func(v string, s *chat.Settings) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%q is not a number", v)
			}
			s.MaxTokens = n
			return nil
		})
	case "/temp":
		r.update(args, "/temp <t>", func(v string, s *chat.Settings) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%q is not a number", v)
			}
			s.Temperature = f
			return nil
		})
	case "/settings":
		r.printSettings()
	case "/stats":
		printStats(r.out, r.session.Stats())
	case "/help":
		printHelp(r.out)
	default:
		red.Fprintf(r.out, "  Unknown command %s. Type /help.\n\n", name)
	}
	return true, false
}

// update applies one setting change and keeps it only if the result is valid.
func (r *replState) update(args []string, usage string, apply func(string, *chat.Settings) error) {
	red := color.New(color.FgRed)
	if len(args) != 1 {
		red.Fprintf(r.out, "  Usage: %s\n\n", usage)
		return
	}
	next := r.settings
	if err := apply(args[0], &next); err != nil {
		red.Fprintf(r.out, "  %v\n\n", err)
		return
	}
	if err := next.Validate(); err != nil {
		red.Fprintf(r.out, "  %v\n\n", err)
		return
	}
	r.settings = next
	r.printSettings()
}

func (r *replState) printSettings() {
	green := color.New(color.FgGreen)
	green.Fprint(r.out, "  Model:       ")
	fmt.Fprintln(r.out, r.settings.Model)
	green.Fprint(r.out, "  Max tokens:  ")
	fmt.Fprintln(r.out, r.settings.MaxTokens)
	green.Fprint(r.out, "  Temperature: ")
	fmt.Fprintf(r.out, "%.1f\n\n", r.settings.Temperature)
}

func printHelp(w io.Writer) {
	cyan := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.FgHiBlack)
	cyan.Fprintln(w, "  Commands")
	for _, c := range [][2]string{
		{"/clear", "start over with an empty conversation"},
		{"/model <id>", "switch model (" + strings.Join(chat.Models, ", ") + ")"},
		{"/tokens <n>", fmt.Sprintf("max tokens, %d-%d in steps of %d", chat.MinMaxTokens, chat.MaxMaxTokens, chat.MaxTokensStep)},
		{"/temp <t>", fmt.Sprintf("temperature, %.1f-%.1f in steps of %.1f", chat.MinTemperature, chat.MaxTemperature, chat.TemperatureStep)},
		{"/settings", "show current settings"},
		{"/stats", "show reply metrics for this session"},
		{"exit", "leave"},
	} {
		fmt.Fprintf(w, "  %-14s", c[0])
		dim.Fprintln(w, c[1])
	}
	fmt.Fprintln(w)
}
