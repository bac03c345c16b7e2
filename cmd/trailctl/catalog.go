package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	catalogadapter "trail-orchestrator/internal/adapter/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Offline catalog utilities",
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print statistics for a catalog CSV file",
	Long: `Load a catalog file the same way the server does and print what the
recommendation engine will see.

Examples:
  trailctl catalog stats -f data/100mountains_dashboard.csv`,
	RunE: runCatalogStats,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogStatsCmd)

	catalogStatsCmd.Flags().StringP("file", "f", "data/100mountains_dashboard.csv", "catalog CSV path")
}

func runCatalogStats(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")

	catalog, err := catalogadapter.LoadFile(path)
	if err != nil {
		return err
	}

	summary := catalog.Summary()
	fmt.Printf("trails:     %d\n", summary.TrailCount)
	fmt.Printf("mountains:  %d\n", summary.MountainCount)
	fmt.Printf("mean appeal: %.2f\n", summary.MeanAppeal)
	fmt.Printf("mean infra:  %.2f\n", summary.MeanInfra)

	tiers := make(map[string]int)
	missingParking := 0
	for _, r := range catalog.Records() {
		tiers[r.DifficultyTier]++
		if r.ParkingDistanceM < 0 {
			missingParking++
		}
	}

	names := make([]string, 0, len(tiers))
	for name := range tiers {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\ndifficulty distribution:")
	for _, name := range names {
		fmt.Printf("  %-14s %d\n", name, tiers[name])
	}
	fmt.Printf("\nrows without parking data: %d\n", missingParking)
	return nil
}
