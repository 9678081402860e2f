package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pricewatch/pricewatch/pkg/model"
	"github.com/pricewatch/pricewatch/pkg/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked items",
	RunE:  runList,
}

var removeCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Stop tracking an item and delete its history",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var pauseCmd = &cobra.Command{
	Use:   "pause <item-id>",
	Short: "Pause checks for an item",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setActive(cmd, args[0], false) },
}

var resumeCmd = &cobra.Command{
	Use:   "resume <item-id>",
	Short: "Resume checks for a paused item",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setActive(cmd, args[0], true) },
}

var targetCmd = &cobra.Command{
	Use:   "target <item-id> <price>",
	Short: "Set or update an item's target price",
	Args:  cobra.ExactArgs(2),
	RunE:  runTarget,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(targetCmd)

	listCmd.Flags().StringP("platform", "p", "", "Filter by platform")
	listCmd.Flags().StringP("owner", "o", "", "Filter by owner ID")
	listCmd.Flags().Bool("active", false, "Show only active items")
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	platform, _ := cmd.Flags().GetString("platform")
	owner, _ := cmd.Flags().GetString("owner")
	activeOnly, _ := cmd.Flags().GetBool("active")

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	filter := storage.ItemFilter{
		OwnerID:    owner,
		Platform:   model.Platform(platform),
		ActiveOnly: activeOnly,
	}
	if filter.Platform != "" && !filter.Platform.Valid() {
		return fmt.Errorf("unknown platform %q", platform)
	}

	items, err := store.ListItems(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}

	if len(items) == 0 {
		fmt.Println("No tracked items. Use 'pricewatch add' to start tracking.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tPLATFORM\tTITLE\tPRICE\tTARGET\tLOWEST\tALERT\tACTIVE\n")
	for _, item := range items {
		title := item.Title
		if title == "" {
			title = item.CanonicalID
		}
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		active := "yes"
		if !item.IsActive {
			active = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%.2f\t%s\t%s\n",
			item.ID, item.Platform, title,
			item.CurrentPrice, item.TargetPrice, item.LowestPrice,
			item.AlertStatus, active,
		)
	}
	w.Flush()

	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteItem(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("item %s not found", args[0])
		}
		return fmt.Errorf("delete item: %w", err)
	}

	fmt.Printf("Removed %s\n", args[0])
	return nil
}

func setActive(cmd *cobra.Command, id string, active bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SetActive(cmd.Context(), id, active); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("item %s not found", id)
		}
		return err
	}

	if active {
		fmt.Printf("Resumed %s\n", id)
	} else {
		fmt.Printf("Paused %s\n", id)
	}
	return nil
}

func runTarget(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var price float64
	if _, err := fmt.Sscanf(args[1], "%f", &price); err != nil || price <= 0 {
		return fmt.Errorf("invalid target price %q", args[1])
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SetTargetPrice(cmd.Context(), args[0], price); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("item %s not found", args[0])
		}
		return err
	}

	fmt.Printf("Target for %s set to %.2f\n", args[0], price)
	return nil
}
