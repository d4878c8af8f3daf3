package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-auth/internal/recognition"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize <image-file>",
	Short: "Match a local photo against the trained faces",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().Bool("json", false, "Output as JSON")
}

func runRecognize(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.service.Recognize(context.Background(), data)
	// a no-match still carries the best distance
	if err != nil && recognition.KindOf(err) != recognition.KindNoMatch {
		var rerr *recognition.Error
		if errors.As(err, &rerr) && rerr.Kind != recognition.KindInternal {
			return errors.New(rerr.Msg)
		}
		return fmt.Errorf("recognition failed: %w", err)
	}

	if mustGetBool(cmd, "json") {
		return outputJSON(rec)
	}

	if !rec.Matched {
		fmt.Printf("Face not recognized (best distance %.4f, threshold %.2f)\n", rec.Distance, a.service.Threshold())
		return nil
	}
	fmt.Printf("Driver:     %d\n", rec.DriverID)
	fmt.Printf("Name:       %s\n", rec.Name)
	fmt.Printf("Confidence: %.4f\n", rec.Confidence)
	fmt.Printf("Distance:   %.4f\n", rec.Distance)
	return nil
}
