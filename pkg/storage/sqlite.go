package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pricewatch/pricewatch/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLite implements the Storage interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Pragmas are per-connection; a single pooled connection keeps them
	// in force for every statement.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	// Cascading deletes for history and rules
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

const itemColumns = `id, owner_id, platform, product_uid, canonical_id,
	title, image_url, product_url, brand, category,
	current_price, original_price, lowest_price, highest_price, currency,
	target_price, alert_status, alert_triggered_at, notify_email,
	is_active, check_count, last_checked, last_error, consecutive_errors,
	created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*model.TrackedItem, error) {
	var it model.TrackedItem
	var triggeredAt, lastChecked sql.NullTime
	err := row.Scan(
		&it.ID, &it.OwnerID, &it.Platform, &it.ProductUID, &it.CanonicalID,
		&it.Title, &it.ImageURL, &it.ProductURL, &it.Brand, &it.Category,
		&it.CurrentPrice, &it.OriginalPrice, &it.LowestPrice, &it.HighestPrice, &it.Currency,
		&it.TargetPrice, &it.AlertStatus, &triggeredAt, &it.NotifyEmail,
		&it.IsActive, &it.CheckCount, &lastChecked, &it.LastError, &it.ConsecutiveErrors,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if triggeredAt.Valid {
		it.AlertTriggeredAt = &triggeredAt.Time
	}
	if lastChecked.Valid {
		it.LastChecked = &lastChecked.Time
	}
	return &it, nil
}

func (s *SQLite) CreateItem(ctx context.Context, item *model.TrackedItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	if item.Currency == "" {
		item.Currency = "USD"
	}
	if item.AlertStatus == "" {
		item.AlertStatus = model.AlertPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tracked_items (id, owner_id, platform, product_uid, canonical_id,
			title, image_url, product_url, brand, category,
			current_price, original_price, lowest_price, highest_price, currency,
			target_price, alert_status, alert_triggered_at, notify_email,
			is_active, check_count, last_checked, last_error, consecutive_errors,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.OwnerID, item.Platform, item.ProductUID, item.CanonicalID,
		item.Title, item.ImageURL, item.ProductURL, item.Brand, item.Category,
		item.CurrentPrice, item.OriginalPrice, item.LowestPrice, item.HighestPrice, item.Currency,
		item.TargetPrice, item.AlertStatus, nullTime(item.AlertTriggeredAt), item.NotifyEmail,
		item.IsActive, item.CheckCount, nullTime(item.LastChecked), item.LastError, item.ConsecutiveErrors,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tracked item: %w", err)
	}
	return nil
}

func (s *SQLite) GetItem(ctx context.Context, id string) (*model.TrackedItem, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM tracked_items WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (s *SQLite) ListItems(ctx context.Context, filter ItemFilter) ([]model.TrackedItem, error) {
	query := "SELECT " + itemColumns + " FROM tracked_items"
	var conditions []string
	var args []any
	if filter.OwnerID != "" {
		conditions = append(conditions, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.Platform != "" {
		conditions = append(conditions, "platform = ?")
		args = append(args, filter.Platform)
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = 1")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	return s.queryItems(ctx, query, args...)
}

func (s *SQLite) ListCheckable(ctx context.Context) ([]model.TrackedItem, error) {
	return s.queryItems(ctx,
		"SELECT "+itemColumns+` FROM tracked_items
		 WHERE is_active = 1 AND alert_status != ?
		 ORDER BY last_checked ASC`, model.AlertTriggered)
}

func (s *SQLite) queryItems(ctx context.Context, query string, args ...any) ([]model.TrackedItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []model.TrackedItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *SQLite) DeleteItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tracked_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	return nil
}

// SetTargetPrice changes the target and re-arms a previously triggered
// alert. A price already below the new target fires again on the next
// sweep; that is intentional.
func (s *SQLite) SetTargetPrice(ctx context.Context, id string, target float64) error {
	if target <= 0 {
		return fmt.Errorf("target price must be positive, got %v", target)
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE tracked_items SET
			target_price = ?,
			alert_triggered_at = CASE WHEN alert_status = 'triggered' THEN NULL ELSE alert_triggered_at END,
			alert_status = CASE WHEN alert_status = 'triggered' THEN 'pending' ELSE alert_status END,
			updated_at = ?
		 WHERE id = ?`,
		target, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set target price: %w", err)
	}
	return requireRow(result, id)
}

func (s *SQLite) SetActive(ctx context.Context, id string, active bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tracked_items SET
			is_active = ?,
			consecutive_errors = CASE WHEN ? THEN 0 ELSE consecutive_errors END,
			updated_at = ?
		 WHERE id = ?`,
		active, active, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	return requireRow(result, id)
}

func (s *SQLite) ApplyQuote(ctx context.Context, id string, q QuoteUpdate) error {
	at := q.CheckedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE tracked_items SET
			current_price = ?,
			original_price = CASE WHEN ? > 0 THEN ? WHEN original_price <= 0 THEN ? ELSE original_price END,
			lowest_price = CASE WHEN lowest_price <= 0 OR ? < lowest_price THEN ? ELSE lowest_price END,
			highest_price = CASE WHEN ? > highest_price THEN ? ELSE highest_price END,
			currency = CASE WHEN ? != '' THEN ? ELSE currency END,
			title = CASE WHEN title = '' THEN ? ELSE title END,
			image_url = CASE WHEN image_url = '' THEN ? ELSE image_url END,
			product_url = CASE WHEN product_url = '' THEN ? ELSE product_url END,
			brand = CASE WHEN brand = '' THEN ? ELSE brand END,
			category = CASE WHEN category = '' THEN ? ELSE category END,
			check_count = check_count + 1,
			consecutive_errors = 0,
			last_error = '',
			last_checked = ?,
			updated_at = ?
		 WHERE id = ?`,
		q.Price,
		q.OriginalPrice, q.OriginalPrice, q.Price,
		q.Price, q.Price,
		q.Price, q.Price,
		q.Currency, q.Currency,
		q.Title, q.ImageURL, q.ProductURL, q.Brand, q.Category,
		at, at, id,
	)
	if err != nil {
		return fmt.Errorf("apply quote: %w", err)
	}
	return requireRow(result, id)
}

func (s *SQLite) RecordCheckFailure(ctx context.Context, id, errMsg string, at time.Time) (int, bool, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE tracked_items SET
			consecutive_errors = consecutive_errors + 1,
			is_active = CASE WHEN consecutive_errors + 1 >= ? THEN 0 ELSE is_active END,
			last_error = ?,
			last_checked = ?,
			updated_at = ?
		 WHERE id = ?`,
		model.MaxConsecutiveErrors, errMsg, at, at, id,
	)
	if err != nil {
		return 0, false, fmt.Errorf("record check failure: %w", err)
	}

	var streak int
	var active bool
	err = s.db.QueryRowContext(ctx,
		"SELECT consecutive_errors, is_active FROM tracked_items WHERE id = ?", id,
	).Scan(&streak, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return 0, false, fmt.Errorf("read failure state: %w", err)
	}
	return streak, active, nil
}

func (s *SQLite) TransitionAlertStatus(ctx context.Context, id string, from, to model.AlertStatus, at *time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tracked_items SET alert_status = ?, alert_triggered_at = ?, updated_at = ?
		 WHERE id = ? AND alert_status = ?`,
		to, nullTime(at), time.Now().UTC(), id, from,
	)
	if err != nil {
		return false, fmt.Errorf("transition alert status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return rows == 1, nil
}

func (s *SQLite) CountItems(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tracked_items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

func (s *SQLite) AppendObservation(ctx context.Context, obs *model.PriceObservation) error {
	if obs.ID == "" {
		obs.ID = uuid.New().String()
	}
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now().UTC()
	}
	if obs.Currency == "" {
		obs.Currency = "USD"
	}
	if obs.Availability == "" {
		obs.Availability = model.AvailabilityUnknown
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO price_observations (id, item_id, price, currency, availability, seller, condition, observed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		obs.ID, obs.ItemID, obs.Price, obs.Currency, obs.Availability, obs.Seller, obs.Condition, obs.ObservedAt,
	)
	if err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}
	return nil
}

func (s *SQLite) ListObservations(ctx context.Context, itemID string, from, to time.Time) ([]model.PriceObservation, error) {
	query := `SELECT id, item_id, price, currency, availability, seller, condition, observed_at
		 FROM price_observations WHERE item_id = ?`
	args := []any{itemID}
	if !from.IsZero() {
		query += " AND observed_at >= ?"
		args = append(args, from)
	}
	if !to.IsZero() {
		query += " AND observed_at < ?"
		args = append(args, to)
	}
	query += " ORDER BY observed_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var obs []model.PriceObservation
	for rows.Next() {
		var o model.PriceObservation
		if err := rows.Scan(&o.ID, &o.ItemID, &o.Price, &o.Currency, &o.Availability,
			&o.Seller, &o.Condition, &o.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan observation row: %w", err)
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

func (s *SQLite) PruneObservations(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM price_observations WHERE observed_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune observations: %w", err)
	}
	return result.RowsAffected()
}

func (s *SQLite) CreateRule(ctx context.Context, rule *model.AlertRule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}
	if rule.Status == "" {
		rule.Status = model.AlertPending
	}
	if rule.Kind == "" {
		rule.Kind = model.KindPriceDrop
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alert_rules (id, item_id, kind, target_price, status, triggered_at, triggered_price, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.ItemID, rule.Kind, rule.TargetPrice, rule.Status,
		nullTime(rule.TriggeredAt), rule.TriggeredPrice, nullTime(rule.ExpiresAt), rule.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert rule: %w", err)
	}
	return nil
}

func (s *SQLite) ListPendingRules(ctx context.Context, itemID string) ([]model.AlertRule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, item_id, kind, target_price, status, triggered_at, triggered_price, expires_at, created_at
		 FROM alert_rules
		 WHERE item_id = ? AND status = ?
		 ORDER BY created_at ASC`,
		itemID, model.AlertPending,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending rules: %w", err)
	}
	defer rows.Close()

	var rules []model.AlertRule
	for rows.Next() {
		var r model.AlertRule
		var triggeredAt, expiresAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.ItemID, &r.Kind, &r.TargetPrice, &r.Status,
			&triggeredAt, &r.TriggeredPrice, &expiresAt, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rule row: %w", err)
		}
		if triggeredAt.Valid {
			r.TriggeredAt = &triggeredAt.Time
		}
		if expiresAt.Valid {
			r.ExpiresAt = &expiresAt.Time
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func (s *SQLite) TriggerRule(ctx context.Context, ruleID string, price float64, at time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE alert_rules SET status = ?, triggered_at = ?, triggered_price = ?
		 WHERE id = ? AND status = ?`,
		model.AlertTriggered, at, price, ruleID, model.AlertPending,
	)
	if err != nil {
		return false, fmt.Errorf("trigger rule: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return rows == 1, nil
}

func (s *SQLite) ExpireRules(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE alert_rules SET status = ?
		 WHERE status = ? AND expires_at IS NOT NULL AND expires_at <= ?`,
		model.AlertExpired, model.AlertPending, now,
	)
	if err != nil {
		return 0, fmt.Errorf("expire rules: %w", err)
	}
	return result.RowsAffected()
}

func (s *SQLite) RecordNotification(ctx context.Context, rec *model.NotificationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.SentAt.IsZero() {
		rec.SentAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notification_records (id, owner_id, item_id, channel, recipient, subject, status, error, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OwnerID, rec.ItemID, rec.Channel, rec.Recipient, rec.Subject, rec.Status, rec.Error, rec.SentAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification record: %w", err)
	}
	return nil
}

func (s *SQLite) ListNotifications(ctx context.Context, itemID string, limit int) ([]model.NotificationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, item_id, channel, recipient, subject, status, error, sent_at
		 FROM notification_records WHERE item_id = ?
		 ORDER BY sent_at DESC LIMIT ?`,
		itemID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var recs []model.NotificationRecord
	for rows.Next() {
		var r model.NotificationRecord
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.ItemID, &r.Channel, &r.Recipient,
			&r.Subject, &r.Status, &r.Error, &r.SentAt); err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (s *SQLite) UpsertSetting(ctx context.Context, setting *model.NotificationSetting) error {
	if setting.ID == "" {
		setting.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if setting.CreatedAt.IsZero() {
		setting.CreatedAt = now
	}
	setting.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notification_settings (id, owner_id, channel, enabled, recipient, secret,
			notify_price_drop, notify_price_increase, notify_back_in_stock, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(owner_id, channel) DO UPDATE SET
		   enabled = excluded.enabled,
		   recipient = excluded.recipient,
		   secret = excluded.secret,
		   notify_price_drop = excluded.notify_price_drop,
		   notify_price_increase = excluded.notify_price_increase,
		   notify_back_in_stock = excluded.notify_back_in_stock,
		   updated_at = excluded.updated_at`,
		setting.ID, setting.OwnerID, setting.Channel, setting.Enabled, setting.Recipient, setting.Secret,
		setting.NotifyPriceDrop, setting.NotifyPriceIncrease, setting.NotifyBackInStock,
		setting.CreatedAt, setting.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert notification setting: %w", err)
	}
	return nil
}

func (s *SQLite) ListEnabledSettings(ctx context.Context, ownerID string) ([]model.NotificationSetting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, channel, enabled, recipient, secret,
			notify_price_drop, notify_price_increase, notify_back_in_stock, created_at, updated_at
		 FROM notification_settings
		 WHERE owner_id = ? AND enabled = 1
		 ORDER BY channel`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query notification settings: %w", err)
	}
	defer rows.Close()

	var settings []model.NotificationSetting
	for rows.Next() {
		var st model.NotificationSetting
		if err := rows.Scan(&st.ID, &st.OwnerID, &st.Channel, &st.Enabled, &st.Recipient, &st.Secret,
			&st.NotifyPriceDrop, &st.NotifyPriceIncrease, &st.NotifyBackInStock,
			&st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan setting row: %w", err)
		}
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

func (s *SQLite) InsertDailyStats(ctx context.Context, stats *model.DailyStats) error {
	if stats.ID == "" {
		stats.ID = uuid.New().String()
	}
	if stats.CreatedAt.IsZero() {
		stats.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_stats (id, stat_date, total_items, checks_today, alerts_today, notifications_today, errors_today, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(stat_date) DO UPDATE SET
		   total_items = excluded.total_items,
		   checks_today = excluded.checks_today,
		   alerts_today = excluded.alerts_today,
		   notifications_today = excluded.notifications_today,
		   errors_today = excluded.errors_today`,
		stats.ID, stats.StatDate, stats.TotalItems, stats.ChecksToday,
		stats.AlertsToday, stats.NotificationsToday, stats.ErrorsToday, stats.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert daily stats: %w", err)
	}
	return nil
}

func (s *SQLite) GetDailyStats(ctx context.Context, date time.Time) (*model.DailyStats, error) {
	var stats model.DailyStats
	err := s.db.QueryRowContext(ctx,
		`SELECT id, stat_date, total_items, checks_today, alerts_today, notifications_today, errors_today, created_at
		 FROM daily_stats WHERE stat_date = ?`, date,
	).Scan(&stats.ID, &stats.StatDate, &stats.TotalItems, &stats.ChecksToday,
		&stats.AlertsToday, &stats.NotificationsToday, &stats.ErrorsToday, &stats.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("daily stats for %s: %w", date.Format("2006-01-02"), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get daily stats: %w", err)
	}
	return &stats, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	return nil
}

func nullTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return *t
}
