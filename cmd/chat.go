package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arin/gptchat/internal/chat"
	"github.com/arin/gptchat/internal/ui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start a conversational session. Replies stream in as they are generated
and the conversation carries over between messages.

Press Ctrl-C to stop a reply. Type /help for commands, 'exit' to quit.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	cyan := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)

	fmt.Fprintln(os.Stderr)
	cyan.Fprintln(os.Stderr, "  gptchat")
	dim.Fprintf(os.Stderr, "  %s · %d tokens · temperature %.1f\n", a.settings.Model, a.settings.MaxTokens, a.settings.Temperature)
	dim.Fprintf(os.Stderr, "  Type /help for commands, 'exit' to quit.\n\n")

	sess := chat.NewSession("terminal", a.agg)
	repl := &replState{session: sess, settings: a.settings, out: os.Stderr}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		green.Fprint(os.Stderr, "  you → ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if handled, quit := repl.handle(input); quit {
			dim.Fprintf(os.Stderr, "\n  Later! 👋\n\n")
			break
		} else if handled {
			continue
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		sp := ui.NewSpinner("Thinking...")
		sp.Start()

		printer := &ui.StreamPrinter{
			Out:     os.Stdout,
			Status:  os.Stderr,
			Prefix:  cyan.Sprint("  gpt → "),
			OnFirst: sp.Stop,
		}
		last := printer.Render(sess.Generate(ctx, input, repl.settings))
		sp.Stop()
		stop()

		if last.Err != nil {
			a.log.Debug("reply failed", zap.Error(last.Err))
		}
	}

	return scanner.Err()
}
