package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pricewatch/pricewatch/pkg/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history <item-id>",
	Short: "Show an item's price history",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("days", "d", 30, "How many days back to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	days, _ := cmd.Flags().GetInt("days")
	if days <= 0 {
		days = 30
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	item, err := store.GetItem(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("item %s not found", args[0])
		}
		return err
	}

	now := time.Now().UTC()
	obs, err := store.ListObservations(cmd.Context(), item.ID, now.AddDate(0, 0, -days), now)
	if err != nil {
		return fmt.Errorf("list observations: %w", err)
	}

	if len(obs) == 0 {
		fmt.Println("No observations in the selected window.")
		return nil
	}

	title := item.Title
	if title == "" {
		title = item.ProductUID
	}
	fmt.Printf("%s (%s)\n", title, item.Platform)
	fmt.Printf("Lowest %.2f / Highest %.2f %s\n\n", item.LowestPrice, item.HighestPrice, item.Currency)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "OBSERVED\tPRICE\tAVAILABILITY\tSELLER\n")
	for _, o := range obs {
		fmt.Fprintf(w, "%s\t%.2f %s\t%s\t%s\n",
			o.ObservedAt.Format("2006-01-02 15:04"),
			o.Price, o.Currency, o.Availability, o.Seller,
		)
	}
	w.Flush()

	return nil
}
