package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Zachkp/devfolio/internal/analytics/migrations"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if err := applyMigrations(ctx, store.db, migrations.FS); err != nil {
		t.Fatalf("re-apply migrations: %v", err)
	}
	var n int
	if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+migrationTable).Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != 2 {
		t.Fatalf("applied migrations = %d, want 2", n)
	}
}

func TestStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	visits := []Visit{
		{HashedIP: "aaaa", Path: "/", VisitedAt: now.Add(-time.Hour)},
		{HashedIP: "aaaa", Path: "/", VisitedAt: now.Add(-2 * time.Hour)},
		{HashedIP: "bbbb", Path: "/", VisitedAt: now.Add(-3 * 24 * time.Hour)},
		{HashedIP: "cccc", Path: "/", VisitedAt: now.Add(-30 * 24 * time.Hour)},
	}
	for _, v := range visits {
		if err := store.RecordVisit(ctx, v); err != nil {
			t.Fatalf("record visit: %v", err)
		}
	}
	deliveries := []Delivery{
		{Transport: "emailjs", Outcome: OutcomeSent, DeliveredAt: now.Add(-time.Minute)},
		{Transport: "emailjs", Outcome: OutcomeFailed, Error: "emailjs: 400 bad template", DeliveredAt: now},
		{Transport: "emailjs", Outcome: OutcomeRejected, DeliveredAt: now.Add(-2 * time.Minute)},
	}
	for _, d := range deliveries {
		if err := store.RecordDelivery(ctx, d); err != nil {
			t.Fatalf("record delivery: %v", err)
		}
	}

	stats, err := store.Stats(ctx, now)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	got := [7]int64{
		stats.TotalVisitors, stats.UniqueVisitors, stats.VisitorsToday, stats.VisitorsThisWeek,
		stats.MessagesSent, stats.MessagesFailed, stats.MessagesRejected,
	}
	want := [7]int64{4, 3, 2, 3, 1, 1, 1}
	if got != want {
		t.Fatalf("counts = %v, want %v", got, want)
	}
	if len(stats.RecentVisitors) != 4 || !stats.RecentVisitors[0].VisitedAt.Equal(now.Add(-time.Hour)) {
		t.Fatalf("recent visitors = %+v", stats.RecentVisitors)
	}
	if stats.RecentDeliveries[0].Outcome != OutcomeFailed || stats.RecentDeliveries[0].Error == "" {
		t.Fatalf("newest delivery = %+v, want the failure", stats.RecentDeliveries[0])
	}
}

func TestRecordDeliveryRejectsUnknownOutcome(t *testing.T) {
	store := openTestStore(t)
	if err := store.RecordDelivery(context.Background(), Delivery{Transport: "smtp", Outcome: "bounced"}); err == nil {
		t.Fatal("expected error for unknown outcome")
	}
}

func TestRecordVisitRequiresHash(t *testing.T) {
	store := openTestStore(t)
	if err := store.RecordVisit(context.Background(), Visit{Path: "/"}); err == nil {
		t.Fatal("expected error for missing hashed ip")
	}
}

func TestPurgeVisitsBefore(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	for _, at := range []time.Time{now.AddDate(-2, 0, 0), now.AddDate(0, -1, 0), now} {
		if err := store.RecordVisit(ctx, Visit{HashedIP: "h", Path: "/", VisitedAt: at}); err != nil {
			t.Fatalf("record visit: %v", err)
		}
	}

	n, err := store.PurgeVisitsBefore(ctx, now.AddDate(-1, 0, 0))
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("purged = %d, want 1", n)
	}
	visits, err := store.RecentVisits(ctx, 10)
	if err != nil {
		t.Fatalf("recent visits: %v", err)
	}
	var times []time.Time
	for _, v := range visits {
		times = append(times, v.VisitedAt)
	}
	if diff := cmp.Diff([]time.Time{now, now.AddDate(0, -1, 0)}, times); diff != "" {
		t.Fatalf("remaining visits mismatch (-want +got):\n%s", diff)
	}
}

func TestHasher(t *testing.T) {
	h, err := NewHasher()
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	a := h.Hash("203.0.113.7")
	if len(a) != 16 {
		t.Fatalf("hash length = %d, want 16", len(a))
	}
	if a != h.Hash("203.0.113.7") {
		t.Fatal("hash should be stable within a process")
	}
	if a == h.Hash("203.0.113.8") {
		t.Fatal("different IPs should hash differently")
	}

	other, err := NewHasher()
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	if other.Hash("203.0.113.7") == a {
		t.Fatal("salts should differ between hashers")
	}
}

func TestUpSection(t *testing.T) {
	got := upSection("-- +migrate Up\nCREATE TABLE t (id INTEGER);\n-- +migrate Down\nDROP TABLE t;\n")
	if got != "\nCREATE TABLE t (id INTEGER);\n" {
		t.Fatalf("up section = %q", got)
	}
	if got := upSection("SELECT 1;"); got != "SELECT 1;" {
		t.Fatalf("no markers = %q", got)
	}
}
