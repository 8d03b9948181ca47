// Package main processes a suggestion issue event into the data files
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/meur/dtwiki/internal/config"
	"github.com/meur/dtwiki/internal/submission"
)

var (
	eventPath  string
	outputPath string
	dataDir    string
)

var rootCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Append a submitted suggestion to its data file",
	Long: `Reads an issue event, detects the suggestion kind from the title prefix,
validates the fenced JSON block of the body and appends it to the matching
data file. Issues without a known prefix are skipped.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&eventPath, "event", "", "issue event payload (overrides GITHUB_EVENT_PATH)")
	rootCmd.Flags().StringVar(&outputPath, "output", "", "step output file (overrides GITHUB_OUTPUT)")
	rootCmd.Flags().StringVar(&dataDir, "data", "", "data directory (overrides DATA_DIR)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	var cfg config.SuggestConfig
	if err := config.ParseEnv(&cfg); err != nil {
		return err
	}
	if eventPath != "" {
		cfg.EventPath = eventPath
	}
	if outputPath != "" {
		cfg.OutputPath = outputPath
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if cfg.EventPath == "" {
		return fmt.Errorf("no event payload: set GITHUB_EVENT_PATH or --event")
	}

	ev, err := submission.ReadEvent(cfg.EventPath)
	if err != nil {
		return err
	}

	label, ok := submission.LabelForTitle(ev.Issue.Title)
	if !ok {
		log.Printf("Issue #%d has no suggestion prefix, skipping", ev.Issue.Number)
		return submission.WriteOutputs(cfg.OutputPath, [][2]string{{"skipped", "true"}})
	}

	data, err := submission.ExtractJSON(ev.Issue.Body)
	if err != nil {
		return err
	}

	res, err := submission.Process(cfg.DataDir, label, data)
	if err != nil {
		return err
	}
	log.Printf("✓ Added %s suggestion from issue #%d to %s (%d entries)", res.Label, ev.Issue.Number, res.JSONFile, res.Total)

	return submission.WriteOutputs(cfg.OutputPath, [][2]string{
		{"json_file", res.JSONFile},
		{"label", string(res.Label)},
		{"total", strconv.Itoa(res.Total)},
	})
}
