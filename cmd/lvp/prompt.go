package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lvpkg/lvp-processing-service/internal/lvp"
)

var promptCmd = &cobra.Command{
	Use:   "prompt <package.lvp>",
	Short: "Render a package as a text prompt for an LLM",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPrompt(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, path string) error {
	log, err := cliLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	pkg, err := lvp.Load(path, log)
	if err != nil {
		return err
	}

	fmt.Print(lvp.LLMPrompt(pkg))
	return nil
}
