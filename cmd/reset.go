package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove all trained faces",
	Long: `Remove every trained face from memory and delete the snapshot file.
Faces can be trained again with "face-auth train".`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
}

func runReset(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	size := a.store.Size()
	if size == 0 {
		fmt.Println("No trained faces to reset.")
		return nil
	}

	if !mustGetBool(cmd, "yes") {
		if !confirmAction(fmt.Sprintf("Remove %d trained faces from %s? [y/N]: ", size, a.store.Path())) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := a.service.Reset(); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	fmt.Printf("Removed %d trained faces.\n", size)
	return nil
}
