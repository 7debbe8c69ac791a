package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lvpkg/lvp-processing-service/internal/lvp"
	"github.com/lvpkg/lvp-processing-service/internal/providers"
)

var askCmd = &cobra.Command{
	Use:   "ask <package.lvp> <question>",
	Short: "Ask a multimodal model a question about a package",
	Long: `Ask sends the package's keyframes and transcript to a hosted
multimodal model together with your question.

The API key is read from ANTHROPIC_API_KEY or OPENAI_API_KEY depending
on the selected provider.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd, args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().String("provider", "claude", "Model provider: claude, openai")
}

func runAsk(cmd *cobra.Command, path, question string) error {
	log, err := cliLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	providerName, _ := cmd.Flags().GetString("provider")
	apiKey := os.Getenv(apiKeyEnv(providerName))
	provider, err := providers.New(providerName, apiKey)
	if err != nil {
		return err
	}

	pkg, err := lvp.Load(path, log)
	if err != nil {
		return err
	}

	answer, err := provider.Query(cmd.Context(), pkg, question)
	if err != nil {
		return err
	}

	fmt.Println(answer)
	return nil
}

func apiKeyEnv(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	default:
		return "ANTHROPIC_API_KEY"
	}
}
