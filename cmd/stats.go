package cmd

import (
	"fmt"

	"github.com/kozaktomas/bioguard/internal/analytics"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show population statistics over enrolled profiles",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	summary := analytics.Summarize(store.List())

	fmt.Printf("Enrolled profiles: %d\n", summary.Total)
	if summary.Total == 0 {
		return nil
	}

	fmt.Println("\nBy department:")
	for dept, count := range summary.ByDepartment {
		fmt.Printf("  %-14s %d\n", dept, count)
	}

	fmt.Println("\nBy access level:")
	for level, count := range summary.ByAccessLevel {
		fmt.Printf("  %-14s %d\n", level, count)
	}

	if summary.Newest != nil {
		fmt.Printf("\nNewest enrollment: %s (%s)\n",
			summary.Newest.FullName, summary.Newest.At.Format("2006-01-02 15:04"))
	}
	if summary.Oldest != nil {
		fmt.Printf("Oldest enrollment: %s (%s)\n",
			summary.Oldest.FullName, summary.Oldest.At.Format("2006-01-02 15:04"))
	}
	return nil
}
