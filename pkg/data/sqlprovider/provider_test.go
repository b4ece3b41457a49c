package sqlprovider_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/goliatone/go-dcgeneral/pkg/data"
	"github.com/goliatone/go-dcgeneral/pkg/data/idgen"
	"github.com/goliatone/go-dcgeneral/pkg/data/sqlprovider"
)

const newsSchema = `
CREATE TABLE tl_news (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	pid       INTEGER NOT NULL DEFAULT 0,
	headline  TEXT NOT NULL DEFAULT '',
	sorting   INTEGER NOT NULL DEFAULT 0
);`

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if err := sqlprovider.Migrate(context.Background(), db, newsSchema); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestProvider_SaveAndFetchAll(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	p, err := sqlprovider.New(db, "tl_news")
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	for i, headline := range []string{"gamma", "alpha", "beta"} {
		m := p.EmptyModel().
			SetProperty("pid", 1).
			SetProperty("headline", headline).
			SetProperty("sorting", (i+1)*10)
		if err := p.Save(ctx, m); err != nil {
			t.Fatalf("save %s: %v", headline, err)
		}
		if m.ID() == "" {
			t.Fatalf("expected id assigned for %s", headline)
		}
	}
	other := p.EmptyModel().SetProperty("pid", 2).SetProperty("headline", "other")
	if err := p.Save(ctx, other); err != nil {
		t.Fatalf("save other: %v", err)
	}

	cfg := p.EmptyConfig()
	cfg.AddFilter(data.Equal("pid", 1)).SetSorting(data.SortField{Property: "headline"})
	got, err := p.FetchAll(ctx, cfg)
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}

	var headlines []string
	for _, m := range got.Models() {
		headlines = append(headlines, data.ToString(m.Property("headline")))
	}
	if diff := cmp.Diff([]string{"alpha", "beta", "gamma"}, headlines); diff != "" {
		t.Fatalf("headline order mismatch (-want +got):\n%s", diff)
	}

	count, err := p.Count(ctx, cfg)
	if err != nil || count != 3 {
		t.Fatalf("count = %d (%v), want 3", count, err)
	}

	like := p.EmptyConfig()
	like.AddFilter(data.Like("headline", "*ph*"))
	match, err := p.Fetch(ctx, like)
	if err != nil || match == nil {
		t.Fatalf("fetch like: %v", err)
	}
	if match.Property("headline") != "alpha" {
		t.Fatalf("unexpected like match %v", match.Property("headline"))
	}
}

func TestProvider_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	p, err := sqlprovider.New(db, "tl_news")
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	m := p.EmptyModel().SetProperty("headline", "draft")
	if err := p.Save(ctx, m); err != nil {
		t.Fatalf("insert: %v", err)
	}
	m.SetProperty("headline", "final")
	if err := p.Save(ctx, m); err != nil {
		t.Fatalf("update: %v", err)
	}

	cfg := p.EmptyConfig()
	stored, err := p.Fetch(ctx, *cfg.SetID(m.ID()))
	if err != nil || stored == nil {
		t.Fatalf("fetch: %v", err)
	}
	if stored.Property("headline") != "final" {
		t.Fatalf("expected updated headline, got %v", stored.Property("headline"))
	}

	if err := p.Delete(ctx, stored); err != nil {
		t.Fatalf("delete: %v", err)
	}
	missing, err := p.Fetch(ctx, *cfg.SetID(m.ID()))
	if err != nil || missing != nil {
		t.Fatalf("expected nil after delete, got %v (%v)", missing, err)
	}
}

func TestProvider_UUIDKeys(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	if err := sqlprovider.Migrate(ctx, db, `CREATE TABLE tl_page (id TEXT PRIMARY KEY, title TEXT)`); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	p, err := sqlprovider.New(db, "tl_page", sqlprovider.WithIDGenerator(idgen.UUID{}))
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	m := p.EmptyModel().SetProperty("title", "Home")
	if err := p.Save(ctx, m); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := uuid.Parse(m.ID()); err != nil {
		t.Fatalf("expected uuid id, got %q", m.ID())
	}
}

func TestNew_RejectsInvalidIdentifiers(t *testing.T) {
	db := openDB(t)
	if _, err := sqlprovider.New(db, "tl_news; DROP TABLE x"); err == nil {
		t.Fatalf("expected invalid table error")
	}
	p, err := sqlprovider.New(db, "tl_news")
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	cfg := p.EmptyConfig()
	cfg.AddFilter(data.Equal("pid = 1 OR 1", 1))
	if _, err := p.FetchAll(context.Background(), cfg); err == nil {
		t.Fatalf("expected invalid filter property error")
	}
}
