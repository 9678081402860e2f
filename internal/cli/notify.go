package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pricewatch/pricewatch/pkg/model"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Manage notification preferences",
}

var notifySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update a channel preference",
	RunE:  runNotifySet,
}

var notifyLogCmd = &cobra.Command{
	Use:   "log <item-id>",
	Short: "Show recent delivery attempts for an item",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotifyLog,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifySetCmd)
	notifyCmd.AddCommand(notifyLogCmd)

	notifySetCmd.Flags().StringP("owner", "o", "", "Owner ID (default from config)")
	notifySetCmd.Flags().StringP("channel", "c", "", "Channel (email, slack, sms, push, webhook)")
	notifySetCmd.Flags().StringP("recipient", "r", "", "Channel recipient: address, phone number, URL or user key")
	notifySetCmd.Flags().String("secret", "", "Webhook signing secret")
	notifySetCmd.Flags().String("events", "price_drop", "Comma-separated events to deliver (price_drop, price_increase, back_in_stock)")
	notifySetCmd.Flags().Bool("disable", false, "Disable this channel preference")
	_ = notifySetCmd.MarkFlagRequired("channel")
	_ = notifySetCmd.MarkFlagRequired("recipient")

	notifyLogCmd.Flags().IntP("limit", "n", 20, "Max rows to show")
}

func runNotifySet(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	owner, _ := cmd.Flags().GetString("owner")
	channel, _ := cmd.Flags().GetString("channel")
	recipient, _ := cmd.Flags().GetString("recipient")
	secret, _ := cmd.Flags().GetString("secret")
	events, _ := cmd.Flags().GetString("events")
	disable, _ := cmd.Flags().GetBool("disable")

	if owner == "" {
		owner = cfg.Defaults.Owner
	}

	ch := model.Channel(channel)
	switch ch {
	case model.ChannelEmail, model.ChannelSlack, model.ChannelSMS, model.ChannelPush, model.ChannelWebhook:
	default:
		return fmt.Errorf("unknown channel %q", channel)
	}

	setting := &model.NotificationSetting{
		OwnerID:   owner,
		Channel:   ch,
		Enabled:   !disable,
		Recipient: recipient,
		Secret:    secret,
	}
	for _, ev := range strings.Split(events, ",") {
		switch model.AlertKind(strings.TrimSpace(ev)) {
		case model.KindPriceDrop:
			setting.NotifyPriceDrop = true
		case model.KindPriceIncrease:
			setting.NotifyPriceIncrease = true
		case model.KindBackInStock:
			setting.NotifyBackInStock = true
		case "":
		default:
			return fmt.Errorf("unknown event %q", ev)
		}
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.UpsertSetting(cmd.Context(), setting); err != nil {
		return fmt.Errorf("save setting: %w", err)
	}

	state := "enabled"
	if disable {
		state = "disabled"
	}
	fmt.Printf("Preference saved: %s via %s (%s)\n", owner, ch, state)
	return nil
}

func runNotifyLog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListNotifications(cmd.Context(), args[0], limit)
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No deliveries recorded for this item.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SENT\tCHANNEL\tRECIPIENT\tSTATUS\tSUBJECT\n")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.SentAt.Format("2006-01-02 15:04"),
			r.Channel, r.Recipient, r.Status, r.Subject,
		)
	}
	w.Flush()

	return nil
}
