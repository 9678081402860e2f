// Package engine drives price sweeps: fetching quotes, persisting
// observations, and firing threshold and rule alerts.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pricewatch/pricewatch/pkg/metrics"
	"github.com/pricewatch/pricewatch/pkg/model"
	"github.com/pricewatch/pricewatch/pkg/notify"
	"github.com/pricewatch/pricewatch/pkg/sources"
	"github.com/pricewatch/pricewatch/pkg/storage"
)

// Options tunes sweep behavior.
type Options struct {
	// Concurrency bounds how many items are checked at once. Items are
	// processed in batches of this size. Defaults to 5.
	Concurrency int

	// BatchPause is the courtesy delay between batches so upstream
	// APIs are not hammered. Defaults to one second.
	BatchPause time.Duration
}

// Engine checks tracked items against their sources and dispatches
// alerts when thresholds are crossed.
type Engine struct {
	store      storage.Storage
	registry   *sources.Registry
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
	opts       Options

	sweepRunning atomic.Bool

	mu          sync.Mutex
	checksToday int64
	alertsToday int64
	errorsToday int64
	notifsToday int64
	lastCheck   time.Time
}

// New creates an engine.
func New(store storage.Storage, registry *sources.Registry, dispatcher *notify.Dispatcher, logger *slog.Logger, opts Options) *Engine {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 5
	}
	if opts.BatchPause <= 0 {
		opts.BatchPause = time.Second
	}
	return &Engine{
		store:      store,
		registry:   registry,
		dispatcher: dispatcher,
		logger:     logger,
		opts:       opts,
	}
}

// RunSweep checks every active item once. At most one sweep runs at a
// time; a call that finds one already in flight returns nil without
// doing anything. Item failures are contained: one bad item never
// aborts the sweep.
func (e *Engine) RunSweep(ctx context.Context) error {
	if !e.sweepRunning.CompareAndSwap(false, true) {
		e.logger.Debug("sweep already running, skipping")
		return nil
	}
	defer e.sweepRunning.Store(false)

	start := time.Now()
	items, err := e.store.ListCheckable(ctx)
	if err != nil {
		return fmt.Errorf("list checkable items: %w", err)
	}
	metrics.ItemsActive.Set(float64(len(items)))
	if len(items) == 0 {
		return nil
	}

	e.logger.Info("sweep started", "items", len(items), "concurrency", e.opts.Concurrency)

	for offset := 0; offset < len(items); offset += e.opts.Concurrency {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := offset + e.opts.Concurrency
		if end > len(items) {
			end = len(items)
		}

		batch := items[offset:end]
		var wg sync.WaitGroup
		for i := range batch {
			wg.Add(1)
			go func(it *model.TrackedItem) {
				defer wg.Done()
				if err := e.CheckItem(ctx, it); err != nil {
					e.logger.Warn("item check failed",
						"item_id", it.ID, "platform", it.Platform, "error", err)
				}
			}(&batch[i])
		}
		wg.Wait()

		if end < len(items) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(e.opts.BatchPause):
			}
		}
	}

	elapsed := time.Since(start)
	metrics.SweepDuration.Observe(elapsed.Seconds())
	e.logger.Info("sweep finished", "items", len(items), "elapsed", elapsed)
	return nil
}

// CheckItem fetches a fresh quote for one item, records it, and fires
// any alerts the new price satisfies. The same path serves scheduled
// sweeps and on-demand checks.
func (e *Engine) CheckItem(ctx context.Context, item *model.TrackedItem) error {
	now := time.Now().UTC()
	quote, err := e.registry.Fetch(ctx, item.Platform, item.ProductUID)
	if err != nil {
		metrics.ChecksTotal.WithLabelValues("error").Inc()
		e.bumpCounters(1, 0, 1)

		streak, active, recErr := e.store.RecordCheckFailure(ctx, item.ID, err.Error(), now)
		if recErr != nil {
			return fmt.Errorf("record check failure: %w", recErr)
		}
		if !active {
			e.logger.Warn("item deactivated after repeated failures",
				"item_id", item.ID, "platform", item.Platform, "streak", streak)
		}
		return fmt.Errorf("fetch %s/%s: %w", item.Platform, item.ProductUID, err)
	}

	oldPrice := item.CurrentPrice

	if err := e.store.ApplyQuote(ctx, item.ID, storage.QuoteUpdate{
		Price:         quote.Price,
		OriginalPrice: quote.OriginalPrice,
		Currency:      quote.Currency,
		Title:         quote.Title,
		ImageURL:      quote.ImageURL,
		ProductURL:    quote.ProductURL,
		Brand:         quote.Brand,
		Category:      quote.Category,
		CheckedAt:     now,
	}); err != nil {
		return fmt.Errorf("apply quote: %w", err)
	}

	obs := &model.PriceObservation{
		ID:           uuid.NewString(),
		ItemID:       item.ID,
		Price:        quote.Price,
		Currency:     quote.Currency,
		Availability: quote.Availability,
		Seller:       quote.Seller,
		ObservedAt:   now,
	}
	if err := e.store.AppendObservation(ctx, obs); err != nil {
		return fmt.Errorf("append observation: %w", err)
	}

	metrics.ChecksTotal.WithLabelValues("ok").Inc()
	e.bumpCounters(1, 0, 0)

	e.evaluateTarget(ctx, item, quote, oldPrice, now)
	e.evaluateRules(ctx, item, quote, oldPrice, now)
	return nil
}

// evaluateTarget fires the item's one-shot target alert when the new
// price is at or below the target. The pending->triggered transition is
// a conditional update, so concurrent checks of the same item produce
// exactly one notification.
func (e *Engine) evaluateTarget(ctx context.Context, item *model.TrackedItem, quote *sources.Quote, oldPrice float64, now time.Time) {
	if item.TargetPrice <= 0 || quote.Price > item.TargetPrice {
		return
	}

	won, err := e.store.TransitionAlertStatus(ctx, item.ID, model.AlertPending, model.AlertTriggered, &now)
	if err != nil {
		e.logger.Error("transition alert status", "item_id", item.ID, "error", err)
		return
	}
	if !won {
		return
	}

	metrics.AlertsTriggeredTotal.Inc()
	e.bumpCounters(0, 1, 0)
	e.logger.Info("target alert triggered",
		"item_id", item.ID, "price", quote.Price, "target", item.TargetPrice)

	e.send(ctx, item, quote, notify.Message{
		Event:        model.KindPriceDrop,
		ItemID:       item.ID,
		CurrentPrice: quote.Price,
		TargetPrice:  item.TargetPrice,
		OldPrice:     oldPrice,
		Body: fmt.Sprintf("Price dropped to %.2f %s, at or below your target of %.2f.",
			quote.Price, quote.Currency, item.TargetPrice),
	})
}

// evaluateRules fires any pending secondary rules the quote satisfies.
// Rules are independent of the item-level target alert and of each
// other.
func (e *Engine) evaluateRules(ctx context.Context, item *model.TrackedItem, quote *sources.Quote, oldPrice float64, now time.Time) {
	rules, err := e.store.ListPendingRules(ctx, item.ID)
	if err != nil {
		e.logger.Error("list pending rules", "item_id", item.ID, "error", err)
		return
	}

	for _, rule := range rules {
		if rule.Expired(now) || !ruleSatisfied(rule, quote) {
			continue
		}

		won, err := e.store.TriggerRule(ctx, rule.ID, quote.Price, now)
		if err != nil {
			e.logger.Error("trigger rule", "rule_id", rule.ID, "error", err)
			continue
		}
		if !won {
			continue
		}

		metrics.AlertsTriggeredTotal.Inc()
		e.bumpCounters(0, 1, 0)
		e.logger.Info("rule triggered",
			"rule_id", rule.ID, "item_id", item.ID, "kind", rule.Kind, "price", quote.Price)

		e.send(ctx, item, quote, notify.Message{
			Event:        rule.Kind,
			ItemID:       item.ID,
			CurrentPrice: quote.Price,
			TargetPrice:  rule.TargetPrice,
			OldPrice:     oldPrice,
			Body:         ruleBody(rule, quote),
		})
	}
}

func ruleSatisfied(rule model.AlertRule, quote *sources.Quote) bool {
	switch rule.Kind {
	case model.KindPriceDrop:
		return quote.Price <= rule.TargetPrice
	case model.KindPriceIncrease:
		return quote.Price >= rule.TargetPrice
	case model.KindBackInStock:
		return quote.Availability == model.AvailabilityInStock
	default:
		return false
	}
}

func ruleBody(rule model.AlertRule, quote *sources.Quote) string {
	switch rule.Kind {
	case model.KindPriceIncrease:
		return fmt.Sprintf("Price rose to %.2f %s, at or above %.2f.",
			quote.Price, quote.Currency, rule.TargetPrice)
	case model.KindBackInStock:
		return fmt.Sprintf("Back in stock at %.2f %s.", quote.Price, quote.Currency)
	default:
		return fmt.Sprintf("Price dropped to %.2f %s, at or below %.2f.",
			quote.Price, quote.Currency, rule.TargetPrice)
	}
}

func (e *Engine) send(ctx context.Context, item *model.TrackedItem, quote *sources.Quote, msg notify.Message) {
	msg.Title = item.Title
	if msg.Title == "" {
		msg.Title = quote.Title
	}
	msg.Platform = item.Platform
	msg.ProductURL = item.ProductURL
	if msg.ProductURL == "" {
		msg.ProductURL = quote.ProductURL
	}
	msg.Currency = quote.Currency

	sent, err := e.dispatcher.Dispatch(ctx, item, msg)
	if err != nil {
		e.logger.Error("dispatch notifications", "item_id", item.ID, "error", err)
	}
	if sent > 0 {
		e.mu.Lock()
		e.notifsToday += int64(sent)
		e.mu.Unlock()
	}
}

func (e *Engine) bumpCounters(checks, alerts, errors int64) {
	e.mu.Lock()
	e.checksToday += checks
	e.alertsToday += alerts
	e.errorsToday += errors
	if checks > 0 {
		e.lastCheck = time.Now().UTC()
	}
	e.mu.Unlock()
}

// Stats returns a snapshot of today's counters.
func (e *Engine) Stats() model.EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	stats := model.EngineStats{
		ChecksToday:  e.checksToday,
		AlertsToday:  e.alertsToday,
		ErrorsToday:  e.errorsToday,
		SweepRunning: e.sweepRunning.Load(),
	}
	if !e.lastCheck.IsZero() {
		last := e.lastCheck
		stats.LastCheck = &last
	}
	return stats
}

// ResetDailyCounters zeroes today's counters and returns the values
// they held, for the midnight stats rollup.
func (e *Engine) ResetDailyCounters() (checks, alerts, errors, notifications int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	checks, alerts, errors, notifications = e.checksToday, e.alertsToday, e.errorsToday, e.notifsToday
	e.checksToday, e.alertsToday, e.errorsToday, e.notifsToday = 0, 0, 0, 0
	return checks, alerts, errors, notifications
}
