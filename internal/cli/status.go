package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pricewatch/pricewatch/pkg/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracker and source configuration status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	registry, err := initRegistry(cfg)
	if err != nil {
		return err
	}

	total, err := store.CountItems(cmd.Context())
	if err != nil {
		return fmt.Errorf("count items: %w", err)
	}

	fmt.Printf("Tracked items: %d\n", total)
	fmt.Printf("Simulation:    %v\n", registry.SimulationEnabled())
	fmt.Println("Sources:")
	for _, p := range []model.Platform{
		model.PlatformAmazon, model.PlatformEBay, model.PlatformWalmart,
		model.PlatformBestBuy, model.PlatformTarget,
	} {
		state := "not configured"
		if registry.Configured(p) {
			state = "configured"
		} else if registry.SimulationEnabled() {
			state = "simulated"
		}
		fmt.Printf("  %-8s %s\n", p, state)
	}

	channels := initChannels(cfg)
	if len(channels) == 0 {
		fmt.Println("Channels:  none enabled")
	} else {
		fmt.Println("Channels:")
		for _, ch := range channels {
			fmt.Printf("  %s\n", ch.Name())
		}
	}

	return nil
}
