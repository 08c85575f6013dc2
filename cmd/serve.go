package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/bioguard/internal/config"
	"github.com/kozaktomas/bioguard/internal/oracle"
	"github.com/kozaktomas/bioguard/internal/profile"
	"github.com/kozaktomas/bioguard/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the terminal web server",
	Long: `Start the Bioguard Core web server.
The server exposes the capture workflow, the profile records and the
analytics dashboard to the browser frontend.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().String("session-secret", "", "Secret for signing session cookies (defaults to random)")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")
	sessionSecret := mustGetString(cmd, "session-secret")

	if sessionSecret == "" {
		sessionSecret = os.Getenv("BIOGUARD_SESSION_SECRET")
	}
	if envPort := os.Getenv("BIOGUARD_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("BIOGUARD_HOST"); envHost != "" {
		host = envHost
	}
	return port, host, sessionSecret
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	store, err := profile.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening profile store: %w", err)
	}
	fmt.Printf("Profile store at %s (%d profiles)\n", cfg.Store.Path, store.Len())

	client, err := oracle.NewClientFromConfig(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("creating oracle client: %w", err)
	}
	fmt.Printf("Oracle provider: %s\n", client.ProviderName())

	port, host, sessionSecret := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, store, client, port, host, sessionSecret)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	fmt.Printf("Starting Bioguard Core on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
