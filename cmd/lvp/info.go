package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lvpkg/lvp-processing-service/internal/lvp"
)

var infoCmd = &cobra.Command{
	Use:   "info <package.lvp>",
	Short: "Show the contents of a .lvp package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInfo(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().Bool("json", false, "Print as JSON")
}

func runInfo(cmd *cobra.Command, path string) error {
	log, err := cliLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	pkg, err := lvp.Load(path, log)
	if err != nil {
		return err
	}

	var archiveSize int64
	if st, err := os.Stat(path); err == nil {
		archiveSize = st.Size()
	}
	summary := lvp.Summarize(pkg, archiveSize)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return json.NewEncoder(os.Stdout).Encode(summary)
	}

	fmt.Printf("%s (lvp %s, created %s)\n", path,
		pkg.Manifest.LVPVersion, pkg.Manifest.CreatedAt.Format("2006-01-02 15:04:05"))
	printSummary(summary)

	if len(pkg.Scenes) > 0 {
		fmt.Println("  Scenes:")
		for _, sc := range pkg.Scenes {
			fmt.Printf("    %3d  %7.1fs - %7.1fs  %d keyframes\n",
				sc.Index, sc.StartTime, sc.EndTime, len(pkg.SceneKeyframes(sc.Index)))
		}
	}
	return nil
}
