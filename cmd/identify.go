package cmd

import (
	"fmt"

	"github.com/kozaktomas/bioguard/internal/capture"
	"github.com/kozaktomas/bioguard/internal/config"
	"github.com/kozaktomas/bioguard/internal/oracle"
	"github.com/kozaktomas/bioguard/internal/profile"
	"github.com/kozaktomas/bioguard/internal/workflow"
	"github.com/spf13/cobra"
)

var identifyCmd = &cobra.Command{
	Use:   "identify <image>",
	Short: "Identify a person from a face image",
	Long: `Identify a captured face against all enrolled profiles. The oracle
compares the capture with the stored biometric descriptors and reports
the best match with a confidence score, or no match at all.`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := cmd.Context()

	store, err := profile.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening profile store: %w", err)
	}

	client, err := oracle.NewClientFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating oracle client: %w", err)
	}

	imageData, err := capture.FileSource{Path: args[0]}.Acquire(ctx)
	if err != nil {
		return err
	}

	ctrl := workflow.New(store, client, cfg.DefaultDepartment())

	fmt.Printf("Comparing %s against %d profiles with %s...\n", args[0], store.Len(), client.ProviderName())
	if err := ctrl.HandleCapture(ctx, imageData); err != nil {
		return describeOracleError(err)
	}

	result := ctrl.Result()
	if result == nil {
		return fmt.Errorf("identification produced no result")
	}

	if result.Profile == nil {
		fmt.Println("ACCESS DENIED - no match")
	} else {
		fmt.Println("ACCESS GRANTED")
		fmt.Printf("  Name:       %s\n", result.Profile.FullName)
		fmt.Printf("  Department: %s\n", result.Profile.Department)
		fmt.Printf("  Access:     %s\n", result.Profile.AccessLevel)
	}
	fmt.Printf("  Confidence: %.0f%%\n", result.Confidence)
	fmt.Printf("  Reason:     %s\n", result.Reason)
	return nil
}
