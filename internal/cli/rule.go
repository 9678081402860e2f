package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pricewatch/pricewatch/pkg/model"
	"github.com/pricewatch/pricewatch/pkg/storage"
)

var ruleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Manage secondary alert rules",
}

var ruleAddCmd = &cobra.Command{
	Use:   "add <item-id>",
	Short: "Add an alert rule to an item",
	Args:  cobra.ExactArgs(1),
	RunE:  runRuleAdd,
}

func init() {
	rootCmd.AddCommand(ruleCmd)
	ruleCmd.AddCommand(ruleAddCmd)

	ruleAddCmd.Flags().StringP("kind", "k", "price_drop", "Rule kind (price_drop, price_increase, back_in_stock)")
	ruleAddCmd.Flags().Float64P("price", "p", 0, "Threshold price (required for price rules)")
	ruleAddCmd.Flags().StringP("expires", "x", "", "Expiry, a duration like 720h or a YYYY-MM-DD date")
}

func runRuleAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	kindFlag, _ := cmd.Flags().GetString("kind")
	price, _ := cmd.Flags().GetFloat64("price")
	expiresFlag, _ := cmd.Flags().GetString("expires")

	kind := model.AlertKind(kindFlag)
	switch kind {
	case model.KindPriceDrop, model.KindPriceIncrease:
		if price <= 0 {
			return fmt.Errorf("%s rules need a positive --price", kind)
		}
	case model.KindBackInStock:
		// Threshold unused; the rule fires on availability.
	default:
		return fmt.Errorf("unknown rule kind %q", kindFlag)
	}

	var expiresAt *time.Time
	if expiresFlag != "" {
		t, err := parseExpiry(expiresFlag)
		if err != nil {
			return err
		}
		expiresAt = &t
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.GetItem(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("item %s not found", args[0])
		}
		return err
	}

	rule := &model.AlertRule{
		ItemID:      args[0],
		Kind:        kind,
		TargetPrice: price,
		ExpiresAt:   expiresAt,
	}
	if err := store.CreateRule(cmd.Context(), rule); err != nil {
		return fmt.Errorf("create rule: %w", err)
	}

	fmt.Printf("Rule added:\n")
	fmt.Printf("  ID:    %s\n", rule.ID)
	fmt.Printf("  Kind:  %s\n", rule.Kind)
	if price > 0 {
		fmt.Printf("  Price: %.2f\n", price)
	}
	if expiresAt != nil {
		fmt.Printf("  Until: %s\n", expiresAt.Format(time.RFC3339))
	}

	return nil
}

func parseExpiry(v string) (time.Time, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return time.Now().UTC().Add(d), nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid expiry %q", v)
}
