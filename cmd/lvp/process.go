package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
	"github.com/lvpkg/lvp-processing-service/internal/infra/ffmpeg"
	"github.com/lvpkg/lvp-processing-service/internal/infra/whisper"
	"github.com/lvpkg/lvp-processing-service/internal/lvp"
	"github.com/lvpkg/lvp-processing-service/internal/usecase"
)

var processCmd = &cobra.Command{
	Use:   "process <video>",
	Short: "Process a video into a .lvp package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringP("profile", "p", "balanced",
		"Device profile: "+strings.Join(entity.ProfileNames(), ", "))
	processCmd.Flags().StringP("output", "o", "", "Output path (default: <video>.lvp)")
	processCmd.Flags().IntP("keyframes", "k", 0, "Override the profile keyframe budget")
	processCmd.Flags().Float64("sample-fps", 0, "Candidate frame sampling rate")
	processCmd.Flags().Bool("no-transcript", false, "Skip audio transcription")
	processCmd.Flags().Bool("json", false, "Print the summary as JSON")
}

func runProcess(cmd *cobra.Command, videoPath string) error {
	log, err := cliLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	profileName, _ := cmd.Flags().GetString("profile")
	profile, err := entity.ProfileByName(profileName)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".lvp"
	}

	keyframes, _ := cmd.Flags().GetInt("keyframes")
	sampleFPS, _ := cmd.Flags().GetFloat64("sample-fps")
	noTranscript, _ := cmd.Flags().GetBool("no-transcript")
	asJSON, _ := cmd.Flags().GetBool("json")

	pipeline := usecase.NewPipeline(
		ffmpeg.NewProber(log),
		ffmpeg.NewDecoder(log),
		ffmpeg.NewEncoder(log),
		whisper.NewTranscriber("whisper", "base", log),
		usecase.PipelineConfig{SampleFPS: sampleFPS},
		log,
	)

	pkg, err := pipeline.Run(cmd.Context(), videoPath, profile, usecase.PipelineOptions{
		IncludeTranscript: !noTranscript,
		TargetKeyframes:   keyframes,
	})
	if err != nil {
		return err
	}

	savedPath, err := lvp.Save(pkg, output)
	if err != nil {
		return err
	}

	var archiveSize int64
	if st, err := os.Stat(savedPath); err == nil {
		archiveSize = st.Size()
	}
	summary := lvp.Summarize(pkg, archiveSize)

	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(summary)
	}

	fmt.Printf("Package written to %s\n", savedPath)
	printSummary(summary)
	return nil
}

func printSummary(s lvp.Summary) {
	fmt.Printf("  Source:      %s (%.1fs, %.1f MB)\n", s.SourceFile, s.DurationSeconds, s.OriginalSizeMB)
	fmt.Printf("  Keyframes:   %d across %d scenes\n", s.Keyframes, s.Scenes)
	fmt.Printf("  Transcript:  %v\n", s.HasTranscript)
	if s.Profile != "" {
		fmt.Printf("  Profile:     %s\n", s.Profile)
	}
	if s.PackageSizeKB > 0 {
		fmt.Printf("  Package:     %.1f KB (%.0fx smaller)\n", s.PackageSizeKB, s.CompressionRatio)
	}
}
