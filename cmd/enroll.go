package cmd

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/bioguard/internal/capture"
	"github.com/kozaktomas/bioguard/internal/config"
	"github.com/kozaktomas/bioguard/internal/oracle"
	"github.com/kozaktomas/bioguard/internal/profile"
	"github.com/kozaktomas/bioguard/internal/workflow"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <image>",
	Short: "Enroll a person from a face image",
	Long: `Enroll a person into the profile store. The image is sent to the oracle
for biometric feature extraction and the resulting descriptors are stored
together with the capture.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("name", "", "Full name of the person (required)")
	enrollCmd.Flags().String("department", "", "Department (defaults to the first configured one)")
	enrollCmd.Flags().String("access", string(profile.AccessStandard), "Access level: standard, restricted or administrator")
	_ = enrollCmd.MarkFlagRequired("name")
}

func runEnroll(cmd *cobra.Command, args []string) error {
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

	department := mustGetString(cmd, "department")
	if department == "" {
		department = cfg.DefaultDepartment()
	}
	access, err := profile.ParseAccessLevel(mustGetString(cmd, "access"))
	if err != nil {
		return err
	}

	ctrl := workflow.New(store, client, cfg.DefaultDepartment())
	if err := ctrl.SetMode(workflow.ModeRegistration); err != nil {
		return err
	}

	fmt.Printf("Analyzing %s with %s...\n", args[0], client.ProviderName())
	if err := ctrl.HandleCapture(ctx, imageData); err != nil {
		return describeOracleError(err)
	}

	if err := ctrl.UpdateDraft(workflow.Form{
		FullName:    mustGetString(cmd, "name"),
		Department:  department,
		AccessLevel: access,
	}); err != nil {
		return err
	}

	p, err := ctrl.CommitDraft()
	if err != nil {
		return err
	}

	fmt.Printf("Enrolled %s (%s)\n", p.FullName, p.ID)
	fmt.Printf("  Department: %s\n", p.Department)
	fmt.Printf("  Access:     %s\n", p.AccessLevel)
	fmt.Printf("  %s\n", p.BiometricSummary())
	return nil
}

// describeOracleError turns the oracle error taxonomy into operator-facing
// messages.
func describeOracleError(err error) error {
	switch {
	case errors.Is(err, oracle.ErrTimeout):
		return fmt.Errorf("the oracle did not answer in time: %w", err)
	case errors.Is(err, oracle.ErrUnavailable):
		return fmt.Errorf("the oracle is unreachable: %w", err)
	case errors.Is(err, oracle.ErrInvalidResponse):
		return fmt.Errorf("the oracle returned an unusable response: %w", err)
	default:
		return err
	}
}
