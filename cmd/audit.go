package cmd

import (
	"fmt"

	"github.com/kozaktomas/bioguard/internal/config"
	"github.com/kozaktomas/bioguard/internal/oracle"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Re-verify stored profiles against the oracle",
	Long: `Run the stored enrollment capture of every profile through the oracle
again and report profiles whose photos no longer yield usable biometric
descriptors. Useful after switching providers or models.`,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().Bool("verbose", false, "Print the fresh descriptors for every profile")
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := cmd.Context()

	store, err := openStore()
	if err != nil {
		return err
	}

	client, err := oracle.NewClientFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating oracle client: %w", err)
	}

	profiles := store.List()
	if len(profiles) == 0 {
		fmt.Println("No profiles to audit")
		return nil
	}

	verbose := mustGetBool(cmd, "verbose")
	fmt.Printf("Auditing %d profile(s) with %s\n", len(profiles), client.ProviderName())

	bar := progressbar.NewOptions(len(profiles),
		progressbar.OptionSetDescription("Auditing profiles"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("profiles"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	type finding struct {
		id   string
		name string
		err  error
	}
	var failures []finding

	for _, p := range profiles {
		if len(p.Photo) == 0 {
			failures = append(failures, finding{p.ID, p.FullName, fmt.Errorf("no stored photo")})
			bar.Add(1)
			continue
		}

		analysis, err := client.RequestFeatureAnalysis(ctx, p.Photo)
		if err != nil {
			failures = append(failures, finding{p.ID, p.FullName, err})
			bar.Add(1)
			continue
		}

		if verbose {
			fmt.Printf("\n%s (%s)\n", p.FullName, p.ID)
			fmt.Printf("  stored: %s\n", p.BiometricSummary())
			fmt.Printf("  fresh:  Face: %s, Iris: %s, Ears: %s, Eyes: %s\n",
				analysis.Face, analysis.Iris, analysis.Ears, analysis.Eyes)
		}
		bar.Add(1)
	}
	bar.Finish()
	fmt.Println()

	if len(failures) == 0 {
		fmt.Printf("All %d profile(s) passed\n", len(profiles))
		return nil
	}

	fmt.Printf("%d profile(s) failed the audit:\n", len(failures))
	for _, f := range failures {
		fmt.Printf("  %s  %-24s %v\n", f.id, f.name, f.err)
	}

	usage := client.Usage()
	fmt.Printf("\nToken usage: %d in, %d out\n", usage.InputTokens, usage.OutputTokens)
	return fmt.Errorf("%d of %d profiles failed re-verification", len(failures), len(profiles))
}
