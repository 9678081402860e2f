package storage

import (
	"context"
	"errors"
	"time"

	"github.com/pricewatch/pricewatch/pkg/model"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// ItemFilter narrows ListItems results.
type ItemFilter struct {
	OwnerID    string
	Platform   model.Platform
	ActiveOnly bool
}

// QuoteUpdate carries the fields of a successful price check that are
// written onto the tracked item in a single statement.
type QuoteUpdate struct {
	Price         float64
	OriginalPrice float64
	Currency      string

	// Metadata backfill. Empty values are ignored; populated item fields
	// are never overwritten (first write wins).
	Title      string
	ImageURL   string
	ProductURL string
	Brand      string
	Category   string

	CheckedAt time.Time
}

// Storage defines the persistence layer for tracked items, price history,
// alert rules and the notification audit log.
type Storage interface {
	// CreateItem persists a new tracked item.
	CreateItem(ctx context.Context, item *model.TrackedItem) error

	// GetItem retrieves one item by id.
	GetItem(ctx context.Context, id string) (*model.TrackedItem, error)

	// ListItems returns items matching the filter, newest first.
	ListItems(ctx context.Context, filter ItemFilter) ([]model.TrackedItem, error)

	// ListCheckable returns the items a sweep should visit: active items
	// whose primary alert has not already fired.
	ListCheckable(ctx context.Context) ([]model.TrackedItem, error)

	// DeleteItem removes an item; history and rules cascade.
	DeleteItem(ctx context.Context, id string) error

	// SetTargetPrice updates the target and re-arms a triggered alert
	// back to pending.
	SetTargetPrice(ctx context.Context, id string, target float64) error

	// SetActive flips the active flag and clears the error streak on
	// reactivation.
	SetActive(ctx context.Context, id string, active bool) error

	// ApplyQuote records a successful check: price, monotonic
	// lowest/highest bounds, metadata backfill, check bookkeeping.
	ApplyQuote(ctx context.Context, id string, q QuoteUpdate) error

	// RecordCheckFailure increments the error streak, stores the error
	// and deactivates the item once the streak reaches the limit. It
	// returns the resulting streak and active flag.
	RecordCheckFailure(ctx context.Context, id, errMsg string, at time.Time) (streak int, active bool, err error)

	// TransitionAlertStatus conditionally moves the primary alert from
	// one status to another. It reports false when another writer got
	// there first.
	TransitionAlertStatus(ctx context.Context, id string, from, to model.AlertStatus, at *time.Time) (bool, error)

	// CountItems returns the total number of tracked items.
	CountItems(ctx context.Context) (int64, error)

	// AppendObservation adds one price history entry.
	AppendObservation(ctx context.Context, obs *model.PriceObservation) error

	// ListObservations returns history for an item within [from, to),
	// ordered by observation time ascending. Zero bounds are open.
	ListObservations(ctx context.Context, itemID string, from, to time.Time) ([]model.PriceObservation, error)

	// PruneObservations deletes history older than the cutoff and
	// returns the number of rows removed.
	PruneObservations(ctx context.Context, cutoff time.Time) (int64, error)

	// CreateRule persists a secondary alert rule.
	CreateRule(ctx context.Context, rule *model.AlertRule) error

	// ListPendingRules returns an item's pending rules. Expiry is the
	// caller's concern; the engine skips rules past their ExpiresAt.
	ListPendingRules(ctx context.Context, itemID string) ([]model.AlertRule, error)

	// TriggerRule conditionally fires a pending rule, stamping price and
	// time. It reports false when the rule was no longer pending.
	TriggerRule(ctx context.Context, ruleID string, price float64, at time.Time) (bool, error)

	// ExpireRules marks pending rules past their expiry as expired.
	ExpireRules(ctx context.Context, now time.Time) (int64, error)

	// RecordNotification appends one delivery-attempt audit row.
	RecordNotification(ctx context.Context, rec *model.NotificationRecord) error

	// ListNotifications returns recent audit rows for an item, newest
	// first. Used by reporting only, never by the engine.
	ListNotifications(ctx context.Context, itemID string, limit int) ([]model.NotificationRecord, error)

	// UpsertSetting creates or updates a user's channel preference.
	UpsertSetting(ctx context.Context, s *model.NotificationSetting) error

	// ListEnabledSettings returns a user's enabled channel settings.
	// Event filtering happens in the dispatcher via WantsEvent.
	ListEnabledSettings(ctx context.Context, ownerID string) ([]model.NotificationSetting, error)

	// InsertDailyStats records one rolled-up stats row.
	InsertDailyStats(ctx context.Context, stats *model.DailyStats) error

	// GetDailyStats retrieves the rollup for one stat date.
	GetDailyStats(ctx context.Context, date time.Time) (*model.DailyStats, error)

	// Close releases resources.
	Close() error
}
