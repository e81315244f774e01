// Package analytics records privacy-conscious visitor metrics and contact
// delivery outcomes in SQLite. Raw IP addresses and form content are never
// stored.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zachkp/devfolio/internal/analytics/migrations"
)

// Delivery outcomes.
const (
	OutcomeSent     = "sent"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
)

type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	VisitedAt time.Time `json:"visited_at"`
}

type Delivery struct {
	ID          int64     `json:"id"`
	Transport   string    `json:"transport"`
	Outcome     string    `json:"outcome"`
	Error       string    `json:"error,omitempty"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalVisitors    int64      `json:"total_visitors"`
	UniqueVisitors   int64      `json:"unique_visitors"`
	VisitorsToday    int64      `json:"visitors_today"`
	VisitorsThisWeek int64      `json:"visitors_this_week"`
	MessagesSent     int64      `json:"messages_sent"`
	MessagesFailed   int64      `json:"messages_failed"`
	MessagesRejected int64      `json:"messages_rejected"`
	RecentVisitors   []Visit    `json:"recent_visitors"`
	RecentDeliveries []Delivery `json:"recent_deliveries"`
}

// Store is the SQLite-backed analytics store.
type Store struct {
	db *sql.DB
}

// Open opens and migrates the store at dsn. In-memory DSNs keep data only for
// the life of the process.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("analytics dsn is required")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection: sqlite serializes writers anyway, and in-memory
	// databases live only as long as their connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordVisit stores one page view.
func (s *Store) RecordVisit(ctx context.Context, v Visit) error {
	if v.HashedIP == "" {
		return fmt.Errorf("hashed ip is required")
	}
	if v.VisitedAt.IsZero() {
		v.VisitedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visitors (hashed_ip, user_agent, path, visited_at) VALUES (?, ?, ?, ?)`,
		v.HashedIP, v.UserAgent, v.Path, v.VisitedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// RecordDelivery stores the outcome of one contact submission.
func (s *Store) RecordDelivery(ctx context.Context, d Delivery) error {
	switch d.Outcome {
	case OutcomeSent, OutcomeFailed, OutcomeRejected:
	default:
		return fmt.Errorf("unknown delivery outcome %q", d.Outcome)
	}
	if d.DeliveredAt.IsZero() {
		d.DeliveredAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deliveries (transport, outcome, error, delivered_at) VALUES (?, ?, ?, ?)`,
		d.Transport, d.Outcome, d.Error, d.DeliveredAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	return nil
}

// PurgeVisitsBefore deletes visits older than cutoff and returns how many went.
func (s *Store) PurgeVisitsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM visitors WHERE visited_at < ?`, cutoff.UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge visits: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

// RecentVisits returns up to limit visits, newest first.
func (s *Store) RecentVisits(ctx context.Context, limit int) ([]Visit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, user_agent, path, visited_at
		FROM visitors
		ORDER BY visited_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		var at int64
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &at); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		v.VisitedAt = time.UnixMilli(at).UTC()
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// RecentDeliveries returns up to limit delivery outcomes, newest first.
func (s *Store) RecentDeliveries(ctx context.Context, limit int) ([]Delivery, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transport, outcome, error, delivered_at
		FROM deliveries
		ORDER BY delivered_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []Delivery
	for rows.Next() {
		var d Delivery
		var at int64
		if err := rows.Scan(&d.ID, &d.Transport, &d.Outcome, &d.Error, &at); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		d.DeliveredAt = time.UnixMilli(at).UTC()
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

// Stats summarises visits and deliveries as of now.
func (s *Store) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{}
	y, m, d := now.UTC().Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).UnixMilli()
	weekAgo := now.Add(-7 * 24 * time.Hour).UTC().UnixMilli()

	counts := []struct {
		dest  *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE visited_at >= ?`, []any{startOfDay}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE visited_at >= ?`, []any{weekAgo}},
		{&stats.MessagesSent, `SELECT COUNT(*) FROM deliveries WHERE outcome = ?`, []any{OutcomeSent}},
		{&stats.MessagesFailed, `SELECT COUNT(*) FROM deliveries WHERE outcome = ?`, []any{OutcomeFailed}},
		{&stats.MessagesRejected, `SELECT COUNT(*) FROM deliveries WHERE outcome = ?`, []any{OutcomeRejected}},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("count: %w", err)
		}
	}

	var err error
	if stats.RecentVisitors, err = s.RecentVisits(ctx, 50); err != nil {
		return nil, err
	}
	if stats.RecentDeliveries, err = s.RecentDeliveries(ctx, 20); err != nil {
		return nil, err
	}
	return stats, nil
}
