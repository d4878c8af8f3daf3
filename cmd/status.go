package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List trained drivers",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().Bool("json", false, "Output as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	status := a.service.Status()
	if mustGetBool(cmd, "json") {
		return outputJSON(status)
	}

	fmt.Printf("Store: %s\n", a.store.Path())
	fmt.Printf("Trained faces: %d\n", status.TrainedFaces)
	if status.TrainedFaces == 0 {
		return nil
	}
	fmt.Println()
	fmt.Printf("%-10s %s\n", "DRIVER", "NAME")
	for i, id := range status.DriverIDs {
		fmt.Printf("%-10d %s\n", id, status.Names[i])
	}
	return nil
}
