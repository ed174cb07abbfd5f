package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arin/gptchat/internal/chat"
	"github.com/arin/gptchat/internal/config"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models and setting ranges gptchat accepts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		current := applyFlags(cmd, cfg.Settings())

		cyan := color.New(color.FgCyan, color.Bold)
		green := color.New(color.FgGreen)
		dim := color.New(color.FgHiBlack)

		cyan.Fprintln(os.Stderr, "\n  Models")
		for _, m := range chat.Models {
			if m == current.Model {
				green.Printf("  * %s\n", m)
			} else {
				fmt.Printf("    %s\n", m)
			}
		}

		fmt.Fprintln(os.Stderr)
		cyan.Fprintln(os.Stderr, "  Ranges")
		dim.Fprint(os.Stderr, "  max tokens   ")
		fmt.Printf("%d-%d step %d (current %d)\n", chat.MinMaxTokens, chat.MaxMaxTokens, chat.MaxTokensStep, current.MaxTokens)
		dim.Fprint(os.Stderr, "  temperature  ")
		fmt.Printf("%.1f-%.1f step %.1f (current %.1f)\n", chat.MinTemperature, chat.MaxTemperature, chat.TemperatureStep, current.Temperature)
		fmt.Fprintln(os.Stderr)
		return nil
	},
}
