package cmd

import (
	"fmt"
	"os"

	"github.com/kozaktomas/bioguard/internal/config"
	"github.com/kozaktomas/bioguard/internal/profile"
	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage enrolled profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled profiles",
	RunE:  runProfilesList,
}

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a profile by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesDelete,
}

var profilesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export profiles to a file",
	RunE:  runProfilesExport,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesDeleteCmd)
	profilesCmd.AddCommand(profilesExportCmd)

	profilesListCmd.Flags().String("query", "", "Filter by name, department or id")
	profilesExportCmd.Flags().String("format", "json", "Export format: json or csv")
	profilesExportCmd.Flags().String("output", "", "Output file (defaults to stdout)")
	profilesExportCmd.Flags().Bool("photos", true, "Include enrollment photos in the JSON export")
}

func openStore() (*profile.Store, error) {
	cfg := config.Load()
	store, err := profile.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening profile store: %w", err)
	}
	return store, nil
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	profiles := store.List()
	if query := mustGetString(cmd, "query"); query != "" {
		profiles = profile.Filter(profiles, query)
	}

	if len(profiles) == 0 {
		fmt.Println("No profiles found")
		return nil
	}

	for _, p := range profiles {
		fmt.Printf("%s  %-24s %-12s %-14s %s\n",
			p.ID, p.FullName, p.Department, p.AccessLevel,
			p.EnrolledTime().Format("2006-01-02 15:04"))
	}
	fmt.Printf("\n%d profile(s)\n", len(profiles))
	return nil
}

func runProfilesDelete(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	id := args[0]
	p, err := store.Get(id)
	if err != nil {
		return fmt.Errorf("profile %s: %w", id, err)
	}

	if err := store.Remove(id); err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}

	fmt.Printf("Deleted %s (%s)\n", p.FullName, id)
	return nil
}

func runProfilesExport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	profiles := store.List()

	var data []byte
	switch format := mustGetString(cmd, "format"); format {
	case "json":
		if !mustGetBool(cmd, "photos") {
			for i := range profiles {
				profiles[i].Photo = nil
			}
		}
		data, err = profile.ExportJSON(profiles)
	case "csv":
		data, err = profile.ExportCSV(profiles)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return fmt.Errorf("exporting profiles: %w", err)
	}

	output := mustGetString(cmd, "output")
	if output == "" {
		fmt.Print(string(data))
		return nil
	}

	if err := os.WriteFile(output, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Printf("Exported %d profile(s) to %s\n", len(profiles), output)
	return nil
}
