package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pricewatch/pricewatch/pkg/model"
	"github.com/pricewatch/pricewatch/pkg/sources"
)

var addCmd = &cobra.Command{
	Use:   "add <url-or-id>",
	Short: "Start tracking a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringP("platform", "p", "", "Platform (amazon, ebay, walmart, bestbuy, target, newegg, custom); detected from URL when omitted")
	addCmd.Flags().Float64P("target", "t", 0, "Target price that fires the alert")
	addCmd.Flags().StringP("email", "e", "", "Notification email for this item")
	addCmd.Flags().StringP("owner", "o", "", "Owner ID (default from config)")
	addCmd.Flags().Bool("check", false, "Run an immediate price check after adding")
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	urlOrID := strings.TrimSpace(args[0])
	platformFlag, _ := cmd.Flags().GetString("platform")
	target, _ := cmd.Flags().GetFloat64("target")
	email, _ := cmd.Flags().GetString("email")
	owner, _ := cmd.Flags().GetString("owner")
	checkNow, _ := cmd.Flags().GetBool("check")

	if target < 0 {
		return fmt.Errorf("target price must be positive")
	}
	if owner == "" {
		owner = cfg.Defaults.Owner
	}
	if email == "" {
		email = cfg.Defaults.NotifyEmail
	}

	platform := model.Platform(platformFlag)
	if platform == "" {
		detected, ok := sources.DetectPlatform(urlOrID)
		if !ok {
			return fmt.Errorf("cannot detect platform from %q; pass --platform", urlOrID)
		}
		platform = detected
	}
	if !platform.Valid() {
		return fmt.Errorf("unknown platform %q", platform)
	}

	eng, registry, store, err := initEngine(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	item := &model.TrackedItem{
		OwnerID:     owner,
		Platform:    platform,
		ProductUID:  urlOrID,
		TargetPrice: target,
		NotifyEmail: email,
		IsActive:    true,
		Currency:    cfg.Defaults.Currency,
	}
	if strings.HasPrefix(urlOrID, "http") {
		item.ProductURL = urlOrID
	}
	if canonical, ok := registry.ExtractID(platform, urlOrID); ok {
		item.CanonicalID = canonical
	}

	if err := store.CreateItem(cmd.Context(), item); err != nil {
		return fmt.Errorf("create item: %w", err)
	}

	fmt.Printf("Tracking started:\n")
	fmt.Printf("  ID:        %s\n", item.ID)
	fmt.Printf("  Platform:  %s\n", item.Platform)
	if item.CanonicalID != "" {
		fmt.Printf("  Product:   %s\n", item.CanonicalID)
	}
	if item.TargetPrice > 0 {
		fmt.Printf("  Target:    %.2f %s\n", item.TargetPrice, item.Currency)
	}

	if checkNow {
		if err := eng.CheckItem(cmd.Context(), item); err != nil {
			fmt.Printf("  First check failed: %v\n", err)
			return nil
		}
		updated, err := store.GetItem(cmd.Context(), item.ID)
		if err != nil {
			return err
		}
		fmt.Printf("  Price:     %.2f %s\n", updated.CurrentPrice, updated.Currency)
		if updated.Title != "" {
			fmt.Printf("  Title:     %s\n", updated.Title)
		}
	}

	return nil
}
