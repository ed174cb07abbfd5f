package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arin/gptchat/internal/chat"
	"github.com/arin/gptchat/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve chat sessions over HTTP",
	Long: `Start an HTTP server that hosts chat sessions. Replies to
POST /sessions/{id}/generate stream back as Server-Sent Events.

The listen address defaults to the 'listen' config key (:7860).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.log.Sync()

		if err := a.settings.Validate(); err != nil {
			return err
		}

		addr := a.cfg.Listen
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(chat.NewStore(a.agg), a.settings, a.log)
		color.New(color.FgGreen).Fprintf(os.Stderr, "  ✓ gptchat ready on http://localhost%s\n", addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":7860", "Address to listen on")
}
