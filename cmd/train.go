package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-auth/internal/config"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train faces from the drivers database",
	Long: `Register every driver that has a profile photo and is not yet in the
face store. Photos with no face or with more than one face are skipped.

Examples:
  face-auth train
  face-auth train --concurrency 8
  face-auth train --json`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().Int("concurrency", 0, "Number of photos processed in parallel (default from TRAIN_CONCURRENCY)")
	trainCmd.Flags().Bool("json", false, "Output as JSON")
}

func runTrain(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	concurrency := mustGetInt(cmd, "concurrency")

	a, err := newApp(func(cfg *config.Config) {
		if concurrency > 0 {
			cfg.Train.Concurrency = concurrency
		}
	})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Progress bar (only for non-JSON output), sized on the first callback
	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if jsonOutput {
			return
		}
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Training faces"),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("photos"),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionFullWidth(),
			)
		}
		_ = bar.Set(done)
	}

	report, err := a.service.TrainAllWithProgress(ctx, progress)
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}
	if err != nil {
		if report != nil {
			fmt.Printf("Interrupted: %d of %d drivers processed, %d trained and saved\n",
				report.Processed, report.Candidates, report.Trained)
		}
		return fmt.Errorf("training failed: %w", err)
	}

	if jsonOutput {
		return outputJSON(report)
	}

	fmt.Printf("Run:        %s\n", report.RunID)
	fmt.Printf("Candidates: %d\n", report.Candidates)
	fmt.Printf("Trained:    %d\n", report.Trained)
	fmt.Printf("Skipped:    %d (already trained)\n", report.Skipped)
	if len(report.Rejected) > 0 {
		reasons := make([]string, 0, len(report.Rejected))
		for reason := range report.Rejected {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		fmt.Println("Rejected:")
		for _, reason := range reasons {
			fmt.Printf("  %-16s %d\n", reason, report.Rejected[reason])
		}
	}
	fmt.Printf("Total trained faces: %d\n", report.Total)
	return nil
}
