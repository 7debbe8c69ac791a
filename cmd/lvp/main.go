package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lvpkg/lvp-processing-service/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "lvp",
	Short:         "LVP - reduce videos into compact LLM-ready packages",
	SilenceUsage:  true,
	SilenceErrors: false,
	Long: `LVP reduces a video into a compact .lvp package: scene-adaptive
keyframes, an optional transcript, and scene metadata, small enough to
hand to a multimodal language model in a single request.`,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

// cliLogger builds the logger used by subcommands. Output goes to stderr
// so that stdout stays clean for --json consumers.
func cliLogger(cmd *cobra.Command) (*zap.Logger, error) {
	level := "warn"
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	return logger.New(level)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
