// Package recordtest は record.Store 実装が満たすべき共通の振る舞いを検証します。
package recordtest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ogurasousui/congregation-records/internal/core/record"
)

// Clock はテスト用の手動で進める時計です。
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock は指定時刻から始まる Clock を生成します。
func NewClock(now time.Time) *Clock {
	return &Clock{now: now.UTC()}
}

// Now は現在時刻を返します。
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance は時計を進めます。
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Factory はテストごとに空の Store を生成します。
type Factory func(t *testing.T, clock record.Clock) record.Store

// RunContract は Store 実装に共通の契約テストを実行します。
func RunContract(t *testing.T, factory Factory) {
	t.Helper()

	start := time.Date(2024, 8, 1, 9, 30, 0, 0, time.UTC)
	cleaning := record.MustCollection(record.CollectionCleaning)
	reports := record.MustCollection(record.CollectionReports)
	tickets := record.MustCollection(record.CollectionBusTickets)
	publishers := record.MustCollection(record.CollectionPublishers)

	t.Run("create then list", func(t *testing.T) {
		clock := NewClock(start)
		store := factory(t, clock)
		ctx := context.Background()

		created, err := store.Create(ctx, cleaning, record.Document{"date": "2024-08-01", "group": "A"}, "actor-1")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if created.ID() == "" {
			t.Fatalf("expected generated id")
		}
		if got := created["date"]; got != "2024-08-01T00:00:00.000Z" {
			t.Fatalf("unexpected date: %v", got)
		}
		if got := created[record.FieldCreatedAt]; got != record.FormatInstant(start) {
			t.Fatalf("unexpected createdAt: %v", got)
		}
		if created[record.FieldCreatedBy] != "actor-1" || created[record.FieldUpdatedBy] != "actor-1" {
			t.Fatalf("unexpected audit actors: %v", created)
		}
		if created[record.FieldIsActive] != true {
			t.Fatalf("expected isActive true")
		}

		docs, err := store.List(ctx, cleaning, record.ListOptions{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(docs) != 1 || docs[0].ID() != created.ID() || docs[0]["group"] != "A" {
			t.Fatalf("unexpected list: %v", docs)
		}
	})

	t.Run("ids are unique", func(t *testing.T) {
		store := factory(t, NewClock(start))
		ctx := context.Background()

		seen := map[string]struct{}{}
		for i := 0; i < 5; i++ {
			doc, err := store.Create(ctx, cleaning, record.Document{"date": "2024-08-01"}, "actor-1")
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if _, dup := seen[doc.ID()]; dup {
				t.Fatalf("duplicate id %s", doc.ID())
			}
			seen[doc.ID()] = struct{}{}
		}
	})

	t.Run("archive hides from list", func(t *testing.T) {
		clock := NewClock(start)
		store := factory(t, clock)
		ctx := context.Background()

		created, err := store.Create(ctx, cleaning, record.Document{"date": "2024-08-01"}, "actor-1")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		clock.Advance(time.Hour)
		if err := store.Archive(ctx, cleaning, created.ID(), "actor-2"); err != nil {
			t.Fatalf("archive: %v", err)
		}
		if err := store.Archive(ctx, cleaning, created.ID(), "actor-2"); err != nil {
			t.Fatalf("archive twice: %v", err)
		}

		docs, err := store.List(ctx, cleaning, record.ListOptions{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(docs) != 0 {
			t.Fatalf("archived record listed: %v", docs)
		}

		got, err := store.Get(ctx, cleaning, created.ID())
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got[record.FieldIsActive] != false {
			t.Fatalf("expected isActive false, got %v", got[record.FieldIsActive])
		}
		if got[record.FieldUpdatedBy] != "actor-2" || got[record.FieldUpdatedAt] != record.FormatInstant(start.Add(time.Hour)) {
			t.Fatalf("unexpected update stamp: %v", got)
		}
		if got[record.FieldCreatedBy] != "actor-1" {
			t.Fatalf("createdBy changed: %v", got[record.FieldCreatedBy])
		}
	})

	t.Run("archive is one way", func(t *testing.T) {
		clock := NewClock(start)
		store := factory(t, clock)
		ctx := context.Background()

		created, err := store.Create(ctx, cleaning, record.Document{"date": "2024-08-01", "group": "A"}, "actor-1")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := store.Archive(ctx, cleaning, created.ID(), "actor-2"); err != nil {
			t.Fatalf("archive: %v", err)
		}
		updated, err := store.Update(ctx, cleaning, created.ID(), record.Document{record.FieldIsActive: true, "group": "B"}, "actor-3")
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated[record.FieldIsActive] != false || updated["group"] != "B" {
			t.Fatalf("patch must not revive an archived record: %v", updated)
		}
		docs, err := store.List(ctx, cleaning, record.ListOptions{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(docs) != 0 {
			t.Fatalf("archived record listed: %v", docs)
		}
	})

	t.Run("collection date fields", func(t *testing.T) {
		store := factory(t, NewClock(start))
		ctx := context.Background()

		schedule, err := store.Create(ctx, cleaning, record.Document{"date": "2024-08-01", "endDate": "2024-08-15"}, "actor-1")
		if err != nil {
			t.Fatalf("create cleaning: %v", err)
		}
		if schedule["endDate"] != "2024-08-15T00:00:00.000Z" {
			t.Fatalf("unexpected endDate: %v", schedule["endDate"])
		}

		report, err := store.Create(ctx, reports, record.Document{"date": "2024-07-01", "submittedAt": "2024-08-01"}, "actor-1")
		if err != nil {
			t.Fatalf("create report: %v", err)
		}
		if report["date"] != "2024-07-01T00:00:00.000Z" || report["submittedAt"] != "2024-08-01T00:00:00.000Z" {
			t.Fatalf("unexpected report dates: %v", report)
		}

		publisher, err := store.Create(ctx, publishers, record.Document{"name": "Ana", "birthDate": "1990-05-02", "baptismDate": "2005-07-15"}, "actor-1")
		if err != nil {
			t.Fatalf("create publisher: %v", err)
		}
		if publisher["birthDate"] != "1990-05-02T00:00:00.000Z" || publisher["baptismDate"] != "2005-07-15T00:00:00.000Z" {
			t.Fatalf("unexpected publisher dates: %v", publisher)
		}
		updated, err := store.Update(ctx, publishers, publisher.ID(), record.Document{"baptismDate": "2006-01-10"}, "actor-1")
		if err != nil {
			t.Fatalf("update publisher: %v", err)
		}
		if updated["baptismDate"] != "2006-01-10T00:00:00.000Z" {
			t.Fatalf("unexpected baptismDate: %v", updated["baptismDate"])
		}

		if _, err := store.Create(ctx, publishers, record.Document{"name": "Bruno"}, "actor-1"); !errors.Is(err, record.ErrValidation) {
			t.Fatalf("missing birthDate: expected ErrValidation, got %v", err)
		}
	})

	t.Run("update merges and removes fields", func(t *testing.T) {
		clock := NewClock(start)
		store := factory(t, clock)
		ctx := context.Background()

		created, err := store.Create(ctx, cleaning, record.Document{"date": "2024-08-01", "group": "A", "notes": "x"}, "actor-1")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		clock.Advance(time.Minute)

		updated, err := store.Update(ctx, cleaning, created.ID(), record.Document{
			"group":                "B",
			"notes":                nil,
			record.FieldID:         "hijack",
			record.FieldCreatedBy:  "someone",
			record.FieldCreatedAt:  "1999-01-01",
		}, "actor-2")
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.ID() != created.ID() {
			t.Fatalf("id changed: %s", updated.ID())
		}
		if updated["group"] != "B" {
			t.Fatalf("group not merged: %v", updated["group"])
		}
		if _, ok := updated["notes"]; ok {
			t.Fatalf("notes not removed")
		}
		if updated[record.FieldCreatedBy] != "actor-1" || updated[record.FieldCreatedAt] != created[record.FieldCreatedAt] {
			t.Fatalf("protected fields changed: %v", updated)
		}
		if updated[record.FieldUpdatedAt] != record.FormatInstant(start.Add(time.Minute)) {
			t.Fatalf("updatedAt not restamped: %v", updated[record.FieldUpdatedAt])
		}

		got, err := store.Get(ctx, cleaning, created.ID())
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got["group"] != "B" {
			t.Fatalf("update not persisted: %v", got)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		store := factory(t, NewClock(start))
		ctx := context.Background()

		if _, err := store.Update(ctx, cleaning, "missing", record.Document{"group": "B"}, "actor-1"); !errors.Is(err, record.ErrNotFound) {
			t.Fatalf("update: expected ErrNotFound, got %v", err)
		}
		if _, err := store.Get(ctx, cleaning, "missing"); !errors.Is(err, record.ErrNotFound) {
			t.Fatalf("get: expected ErrNotFound, got %v", err)
		}
		if err := store.Archive(ctx, cleaning, "missing", "actor-1"); !errors.Is(err, record.ErrNotFound) {
			t.Fatalf("archive: expected ErrNotFound, got %v", err)
		}
		if err := store.HardDelete(ctx, tickets, "missing"); !errors.Is(err, record.ErrNotFound) {
			t.Fatalf("delete: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("sorting", func(t *testing.T) {
		store := factory(t, NewClock(start))
		ctx := context.Background()

		for _, date := range []string{"2024-08-02", "2024-08-03", "2024-08-01"} {
			if _, err := store.Create(ctx, cleaning, record.Document{"date": date}, "actor-1"); err != nil {
				t.Fatalf("create: %v", err)
			}
		}

		desc, err := store.List(ctx, cleaning, record.ListOptions{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		assertDates(t, desc, "2024-08-03", "2024-08-02", "2024-08-01")

		asc, err := store.List(ctx, cleaning, record.ListOptions{SortField: "date", Direction: record.DirectionAsc})
		if err != nil {
			t.Fatalf("list asc: %v", err)
		}
		assertDates(t, asc, "2024-08-01", "2024-08-02", "2024-08-03")

		if _, err := store.List(ctx, cleaning, record.ListOptions{Direction: "sideways"}); !errors.Is(err, record.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("lenient filter", func(t *testing.T) {
		store := factory(t, NewClock(start))
		ctx := context.Background()

		created, err := store.Create(ctx, reports, record.Document{"submittedAt": "2024-08-01T10:00:00Z", "hours": 10}, "actor-1")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		docs, err := store.List(ctx, reports, record.ListOptions{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(docs) != 1 || docs[0]["hours"] != float64(10) {
			t.Fatalf("unexpected list: %v", docs)
		}
		if err := store.Archive(ctx, reports, created.ID(), "actor-1"); err != nil {
			t.Fatalf("archive: %v", err)
		}
		docs, err = store.List(ctx, reports, record.ListOptions{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(docs) != 0 {
			t.Fatalf("archived report listed: %v", docs)
		}
	})

	t.Run("raw collection", func(t *testing.T) {
		store := factory(t, NewClock(start))
		ctx := context.Background()

		created, err := store.Create(ctx, tickets, record.Document{"saleDate": "2024-08-01", "name": "Ana"}, "actor-1")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		for _, f := range []string{record.FieldCreatedAt, record.FieldCreatedBy, record.FieldUpdatedAt, record.FieldUpdatedBy, record.FieldIsActive} {
			if _, ok := created[f]; ok {
				t.Fatalf("raw record carries %s", f)
			}
		}
		if err := store.Archive(ctx, tickets, created.ID(), "actor-1"); !errors.Is(err, record.ErrUnsupportedOperation) {
			t.Fatalf("archive raw: expected ErrUnsupportedOperation, got %v", err)
		}
		if err := store.HardDelete(ctx, tickets, created.ID()); err != nil {
			t.Fatalf("delete: %v", err)
		}
		docs, err := store.List(ctx, tickets, record.ListOptions{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(docs) != 0 {
			t.Fatalf("deleted record listed: %v", docs)
		}
	})

	t.Run("hard delete rejected for base records", func(t *testing.T) {
		store := factory(t, NewClock(start))
		ctx := context.Background()

		created, err := store.Create(ctx, cleaning, record.Document{"date": "2024-08-01"}, "actor-1")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := store.HardDelete(ctx, cleaning, created.ID()); !errors.Is(err, record.ErrUnsupportedOperation) {
			t.Fatalf("expected ErrUnsupportedOperation, got %v", err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		store := factory(t, NewClock(start))
		ctx := context.Background()

		if _, err := store.Create(ctx, cleaning, record.Document{"group": "A"}, "actor-1"); !errors.Is(err, record.ErrValidation) {
			t.Fatalf("missing date: expected ErrValidation, got %v", err)
		}
		if _, err := store.Create(ctx, cleaning, record.Document{"date": "not-a-date"}, "actor-1"); !errors.Is(err, record.ErrValidation) {
			t.Fatalf("bad date: expected ErrValidation, got %v", err)
		}
		docs, err := store.List(ctx, cleaning, record.ListOptions{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(docs) != 0 {
			t.Fatalf("invalid record persisted: %v", docs)
		}
	})
}

func assertDates(t *testing.T, docs []record.Document, want ...string) {
	t.Helper()
	if len(docs) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(docs))
	}
	for i, w := range want {
		if got := docs[i]["date"]; got != w+"T00:00:00.000Z" {
			t.Fatalf("record %d: expected date %s, got %v", i, w, got)
		}
	}
}
