package model

import "time"

// Platform identifies the e-commerce site a product lives on.
type Platform string

const (
	PlatformAmazon  Platform = "amazon"
	PlatformEBay    Platform = "ebay"
	PlatformWalmart Platform = "walmart"
	PlatformBestBuy Platform = "bestbuy"
	PlatformTarget  Platform = "target"
	PlatformNewegg  Platform = "newegg"
	PlatformCustom  Platform = "custom"
)

// Platforms lists every supported platform.
var Platforms = []Platform{
	PlatformAmazon, PlatformEBay, PlatformWalmart, PlatformBestBuy,
	PlatformTarget, PlatformNewegg, PlatformCustom,
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// AlertStatus tracks the lifecycle of an alert.
type AlertStatus string

const (
	AlertPending   AlertStatus = "pending"
	AlertTriggered AlertStatus = "triggered"
	AlertExpired   AlertStatus = "expired"
	AlertDisabled  AlertStatus = "disabled"
)

// AlertKind distinguishes what condition a secondary alert rule watches.
type AlertKind string

const (
	KindPriceDrop     AlertKind = "price_drop"
	KindPriceIncrease AlertKind = "price_increase"
	KindBackInStock   AlertKind = "back_in_stock"
)

// Availability describes stock state reported by a price source.
type Availability string

const (
	AvailabilityInStock    Availability = "in_stock"
	AvailabilityOutOfStock Availability = "out_of_stock"
	AvailabilityLimited    Availability = "limited"
	AvailabilityUnknown    Availability = "unknown"
)

// Channel identifies a notification delivery mechanism.
type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelSlack   Channel = "slack"
	ChannelSMS     Channel = "sms"
	ChannelPush    Channel = "push"
	ChannelWebhook Channel = "webhook"
)

// DeliveryStatus is the outcome of a single notification attempt.
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// MaxConsecutiveErrors is the failure streak at which an item is
// automatically deactivated.
const MaxConsecutiveErrors = 10

// TrackedItem is one subscription to price monitoring for one product on
// one platform.
type TrackedItem struct {
	ID          string   `json:"id" db:"id"`
	OwnerID     string   `json:"owner_id,omitempty" db:"owner_id"` // empty for anonymous tracking
	Platform    Platform `json:"platform" db:"platform"`
	ProductUID  string   `json:"product_uid" db:"product_uid"`             // platform-specific identifier or URL
	CanonicalID string   `json:"canonical_id,omitempty" db:"canonical_id"` // e.g. extracted ASIN

	// Cached metadata, populated opportunistically. First write wins.
	Title      string `json:"title,omitempty" db:"title"`
	ImageURL   string `json:"image_url,omitempty" db:"image_url"`
	ProductURL string `json:"product_url,omitempty" db:"product_url"`
	Brand      string `json:"brand,omitempty" db:"brand"`
	Category   string `json:"category,omitempty" db:"category"`

	CurrentPrice  float64 `json:"current_price" db:"current_price"`
	OriginalPrice float64 `json:"original_price,omitempty" db:"original_price"`
	LowestPrice   float64 `json:"lowest_price,omitempty" db:"lowest_price"`
	HighestPrice  float64 `json:"highest_price,omitempty" db:"highest_price"`
	Currency      string  `json:"currency" db:"currency"` // ISO 4217

	TargetPrice      float64     `json:"target_price" db:"target_price"`
	AlertStatus      AlertStatus `json:"alert_status" db:"alert_status"`
	AlertTriggeredAt *time.Time  `json:"alert_triggered_at,omitempty" db:"alert_triggered_at"`
	NotifyEmail      string      `json:"notify_email,omitempty" db:"notify_email"` // legacy single recipient

	IsActive          bool       `json:"is_active" db:"is_active"`
	CheckCount        int64      `json:"check_count" db:"check_count"`
	LastChecked       *time.Time `json:"last_checked,omitempty" db:"last_checked"`
	LastError         string     `json:"last_error,omitempty" db:"last_error"`
	ConsecutiveErrors int        `json:"consecutive_errors" db:"consecutive_errors"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PriceObservation is one append-only history entry for a tracked item.
type PriceObservation struct {
	ID           string       `json:"id" db:"id"`
	ItemID       string       `json:"item_id" db:"item_id"`
	Price        float64      `json:"price" db:"price"`
	Currency     string       `json:"currency" db:"currency"`
	Availability Availability `json:"availability" db:"availability"`
	Seller       string       `json:"seller,omitempty" db:"seller"`
	Condition    string       `json:"condition,omitempty" db:"condition"`
	ObservedAt   time.Time    `json:"observed_at" db:"observed_at"`
}

// AlertRule is a secondary alert beyond the item's primary target price.
// Each rule transitions pending -> triggered independently and is never
// reset automatically.
type AlertRule struct {
	ID             string      `json:"id" db:"id"`
	ItemID         string      `json:"item_id" db:"item_id"`
	Kind           AlertKind   `json:"kind" db:"kind"`
	TargetPrice    float64     `json:"target_price" db:"target_price"`
	Status         AlertStatus `json:"status" db:"status"`
	TriggeredAt    *time.Time  `json:"triggered_at,omitempty" db:"triggered_at"`
	TriggeredPrice float64     `json:"triggered_price,omitempty" db:"triggered_price"`
	ExpiresAt      *time.Time  `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

// Expired reports whether the rule's expiry has passed at the given time.
func (r *AlertRule) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && !r.ExpiresAt.IsZero() && now.After(*r.ExpiresAt)
}

// NotificationRecord is a write-only audit row for one delivery attempt.
type NotificationRecord struct {
	ID        string         `json:"id" db:"id"`
	OwnerID   string         `json:"owner_id,omitempty" db:"owner_id"`
	ItemID    string         `json:"item_id,omitempty" db:"item_id"`
	Channel   Channel        `json:"channel" db:"channel"`
	Recipient string         `json:"recipient" db:"recipient"`
	Subject   string         `json:"subject" db:"subject"`
	Status    DeliveryStatus `json:"status" db:"status"`
	Error     string         `json:"error,omitempty" db:"error"`
	SentAt    time.Time      `json:"sent_at" db:"sent_at"`
}

// NotificationSetting is one user's preference for one channel.
type NotificationSetting struct {
	ID      string  `json:"id" db:"id"`
	OwnerID string  `json:"owner_id" db:"owner_id"`
	Channel Channel `json:"channel" db:"channel"`
	Enabled bool    `json:"enabled" db:"enabled"`

	// Recipient is channel-specific: an email address, phone number,
	// webhook URL or push user key.
	Recipient string `json:"recipient" db:"recipient"`
	// Secret signs webhook payloads when set.
	Secret string `json:"secret,omitempty" db:"secret"`

	NotifyPriceDrop     bool `json:"notify_price_drop" db:"notify_price_drop"`
	NotifyPriceIncrease bool `json:"notify_price_increase" db:"notify_price_increase"`
	NotifyBackInStock   bool `json:"notify_back_in_stock" db:"notify_back_in_stock"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WantsEvent reports whether this setting opts in to the given alert kind.
func (s *NotificationSetting) WantsEvent(kind AlertKind) bool {
	switch kind {
	case KindPriceDrop:
		return s.NotifyPriceDrop
	case KindPriceIncrease:
		return s.NotifyPriceIncrease
	case KindBackInStock:
		return s.NotifyBackInStock
	default:
		return false
	}
}

// DailyStats is one rolled-up row of per-day engine activity.
type DailyStats struct {
	ID                 string    `json:"id" db:"id"`
	StatDate           time.Time `json:"stat_date" db:"stat_date"`
	TotalItems         int64     `json:"total_items" db:"total_items"`
	ChecksToday        int64     `json:"checks_today" db:"checks_today"`
	AlertsToday        int64     `json:"alerts_today" db:"alerts_today"`
	NotificationsToday int64     `json:"notifications_today" db:"notifications_today"`
	ErrorsToday        int64     `json:"errors_today" db:"errors_today"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// EngineStats is a read-only snapshot of process-wide counters for
// health and status reporting.
type EngineStats struct {
	ChecksToday  int64      `json:"checks_today"`
	AlertsToday  int64      `json:"alerts_today"`
	ErrorsToday  int64      `json:"errors_today"`
	LastCheck    *time.Time `json:"last_check,omitempty"`
	SweepRunning bool       `json:"sweep_running"`
	SchedulerUp  bool       `json:"scheduler_up"`
}
