package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lvpkg/lvp-processing-service/internal/lvp"
)

var extractCmd = &cobra.Command{
	Use:   "extract <package.lvp>",
	Short: "Extract a package's keyframes and transcript into a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "", "Output directory (default: <package> without extension)")
}

func runExtract(cmd *cobra.Command, path string) error {
	log, err := cliLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	pkg, err := lvp.Load(path, log)
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("output")
	if outDir == "" {
		outDir = strings.TrimSuffix(path, filepath.Ext(path))
	}

	kfDir := filepath.Join(outDir, "keyframes")
	if err := os.MkdirAll(kfDir, 0755); err != nil {
		return err
	}

	manifest, err := json.MarshalIndent(pkg.Manifest, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "manifest.json"), manifest, 0644); err != nil {
		return err
	}

	for _, kf := range pkg.Keyframes {
		name := fmt.Sprintf("frame_%04d.webp", kf.Index)
		if err := os.WriteFile(filepath.Join(kfDir, name), kf.Data, 0644); err != nil {
			return err
		}
	}

	if pkg.HasTranscript() {
		if err := os.WriteFile(filepath.Join(outDir, "transcript.txt"), []byte(pkg.FullText()), 0644); err != nil {
			return err
		}
	}

	fmt.Printf("Extracted %d keyframes to %s\n", len(pkg.Keyframes), outDir)
	return nil
}
