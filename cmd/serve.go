package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-auth/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Face Auth HTTP API.
On startup the trained face store is loaded and, unless disabled, every driver
in the drivers table that has a profile photo and is not yet trained is
registered before the server starts accepting requests.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (default from WEB_PORT or 5000)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from WEB_HOST or 0.0.0.0)")
	serveCmd.Flags().Bool("no-train", false, "Skip training from the drivers database on startup")
}

// resolveServeHostPort resolves port and host. Flags win over the environment.
func resolveServeHostPort(cmd *cobra.Command, port int, host string) (int, string) {
	if cmd.Flags().Changed("port") {
		port = mustGetInt(cmd, "port")
	}
	if cmd.Flags().Changed("host") {
		host = mustGetString(cmd, "host")
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Printf("Loaded %d trained faces from %s\n", a.store.Size(), a.store.Path())

	if a.cfg.Train.OnStartup && !mustGetBool(cmd, "no-train") {
		fmt.Printf("Training faces from drivers database...\n")
		report, err := a.service.TrainAll(ctx)
		if err != nil {
			// the service stays usable for single-face training
			fmt.Printf("Warning: startup training failed: %v\n", err)
		} else {
			fmt.Printf("Trained %d new drivers (%d total)\n", report.Trained, report.Total)
		}
	}

	port, host := resolveServeHostPort(cmd, a.cfg.Web.Port, a.cfg.Web.Host)
	server := web.NewServer(a.cfg, a.service, a.logger, port, host)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Face Auth API on http://%s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
