package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pricewatch/pricewatch/pkg/storage"
)

var checkCmd = &cobra.Command{
	Use:   "check [item-id]",
	Short: "Check prices now; one item when given an ID, otherwise a full sweep",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, _, store, err := initEngine(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 0 {
		if err := eng.RunSweep(cmd.Context()); err != nil {
			return fmt.Errorf("sweep: %w", err)
		}
		stats := eng.Stats()
		fmt.Printf("Sweep complete: %d checks, %d alerts, %d errors\n",
			stats.ChecksToday, stats.AlertsToday, stats.ErrorsToday)
		return nil
	}

	item, err := store.GetItem(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("item %s not found", args[0])
		}
		return err
	}

	if err := eng.CheckItem(cmd.Context(), item); err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	updated, err := store.GetItem(cmd.Context(), item.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Checked %s:\n", updated.ID)
	if updated.Title != "" {
		fmt.Printf("  Title:    %s\n", updated.Title)
	}
	fmt.Printf("  Price:    %.2f %s\n", updated.CurrentPrice, updated.Currency)
	fmt.Printf("  Lowest:   %.2f\n", updated.LowestPrice)
	fmt.Printf("  Highest:  %.2f\n", updated.HighestPrice)
	if updated.TargetPrice > 0 {
		fmt.Printf("  Target:   %.2f (%s)\n", updated.TargetPrice, updated.AlertStatus)
	}

	return nil
}
