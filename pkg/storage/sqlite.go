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
	_ "modernc.org/sqlite"

	"github.com/ogulcanaydogan/subguard/pkg/model"
)

const subscriptionColumns = `id, name, cost, billing_cycle, category, next_billing_date, last_used, status, notes, created_at, updated_at`

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

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLite) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	if err := insertSubscription(ctx, s.db, sub); err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func insertSubscription(ctx context.Context, db execer, sub *model.Subscription) error {
	prepareForInsert(sub)
	_, err := db.ExecContext(ctx,
		`INSERT INTO subscriptions (`+subscriptionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Name, sub.Cost, string(sub.BillingCycle), sub.Category,
		model.FormatDate(sub.NextBillingDate), nullableDate(sub.LastUsed),
		string(sub.Status), sub.Notes, sub.CreatedAt, sub.UpdatedAt,
	)
	return err
}

func prepareForInsert(sub *model.Subscription) {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.Status == "" {
		sub.Status = model.StatusActive
	}
	if sub.BillingCycle == "" {
		sub.BillingCycle = model.CycleMonthly
	}
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = sub.CreatedAt
	}
}

func (s *SQLite) GetSubscription(ctx context.Context, id string) (*model.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?`, id)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("subscription %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

func (s *SQLite) ListSubscriptions(ctx context.Context, filter model.ListFilter) ([]model.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions`
	where, args := buildWhereClause(filter)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY next_billing_date = '', next_billing_date, name, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]model.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription row: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func (s *SQLite) UpdateSubscription(ctx context.Context, sub *model.Subscription) error {
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = time.Now().UTC()
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE subscriptions SET
		   name = ?, cost = ?, billing_cycle = ?, category = ?, next_billing_date = ?,
		   last_used = ?, status = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		sub.Name, sub.Cost, string(sub.BillingCycle), sub.Category,
		model.FormatDate(sub.NextBillingDate), nullableDate(sub.LastUsed),
		string(sub.Status), sub.Notes, sub.UpdatedAt, sub.ID,
	)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	return requireAffected(result, sub.ID)
}

func (s *SQLite) DeleteSubscription(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return requireAffected(result, id)
}

func (s *SQLite) MarkUsed(ctx context.Context, id string, day time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE subscriptions SET last_used = ?, updated_at = ? WHERE id = ?`,
		model.FormatDate(model.Date(day)), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("mark subscription used: %w", err)
	}
	return requireAffected(result, id)
}

func (s *SQLite) ImportSubscriptions(ctx context.Context, subs []model.Subscription) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range subs {
		if err := insertSubscription(ctx, tx, &subs[i]); err != nil {
			return 0, fmt.Errorf("import row %d (%s): %w", i+1, subs[i].Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(subs), nil
}

func (s *SQLite) GetSettings(ctx context.Context) (model.Settings, error) {
	var (
		st     model.Settings
		notify int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT email_notifications, renewal_reminder_days, unused_threshold_days, renewal_window_days, updated_at
		 FROM settings WHERE id = 1`,
	).Scan(&notify, &st.RenewalReminderDays, &st.UnusedThresholdDays, &st.RenewalWindowDays, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	st.EmailNotifications = notify != 0
	return st, nil
}

func (s *SQLite) SaveSettings(ctx context.Context, settings model.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if settings.UpdatedAt.IsZero() {
		settings.UpdatedAt = time.Now().UTC()
	}
	notify := 0
	if settings.EmailNotifications {
		notify = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (id, email_notifications, renewal_reminder_days, unused_threshold_days, renewal_window_days, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email_notifications = excluded.email_notifications,
		   renewal_reminder_days = excluded.renewal_reminder_days,
		   unused_threshold_days = excluded.unused_threshold_days,
		   renewal_window_days = excluded.renewal_window_days,
		   updated_at = excluded.updated_at`,
		notify, settings.RenewalReminderDays, settings.UnusedThresholdDays, settings.RenewalWindowDays, settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row scanner) (*model.Subscription, error) {
	var (
		sub                 model.Subscription
		cycle, status, next string
		lastUsed            sql.NullString
	)
	if err := row.Scan(&sub.ID, &sub.Name, &sub.Cost, &cycle, &sub.Category, &next, &lastUsed,
		&status, &sub.Notes, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	sub.BillingCycle = model.BillingCycle(cycle)
	sub.Status = model.Status(status)

	if next != "" {
		d, err := model.ParseDate(next)
		if err != nil {
			return nil, fmt.Errorf("subscription %s next_billing_date: %w", sub.ID, err)
		}
		sub.NextBillingDate = d
	}
	if lastUsed.Valid {
		d, err := model.ParseOptionalDate(lastUsed.String)
		if err != nil {
			return nil, fmt.Errorf("subscription %s last_used: %w", sub.ID, err)
		}
		sub.LastUsed = d
	}
	return &sub, nil
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return model.FormatDate(*t)
}

func requireAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("subscription %q: %w", id, ErrNotFound)
	}
	return nil
}

// buildWhereClause constructs a SQL WHERE clause from a ListFilter.
func buildWhereClause(filter model.ListFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}

	return strings.Join(conditions, " AND "), args
}
