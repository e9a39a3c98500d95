package repos_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"watchflip/internal/domain"
	"watchflip/internal/repos"
)

func TestWatchRepoCRUD(t *testing.T) {
	db, err := repos.OpenDB("sqlite", ":memory:", false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	repo := repos.NewWatchRepo(db)

	bought := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	conf := 80
	w := domain.Watch{
		Brand: "Omega", Model: "Speedmaster", PurchasePrice: decimal.RequireFromString("3200.10"),
		PurchaseDate: &bought, RevenueServiced: decimal.NewNullDecimal(decimal.NewFromInt(4100)),
		Status: domain.StatusReadyToSell, Tags: []string{"chrono"}, AIConfidence: &conf,
		AIRecommendation: domain.RecommendBuy,
	}
	if err := repo.Create(ctx, &w); err != nil {
		t.Fatal(err)
	}
	if w.ID == "" || w.CreatedAt.IsZero() {
		t.Fatalf("create did not assign id/timestamps: %+v", w)
	}

	got, err := repo.Get(ctx, w.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.PurchasePrice.Equal(w.PurchasePrice) || got.PurchaseDate == nil || !got.PurchaseDate.Equal(bought) {
		t.Fatalf("round trip: %+v", got)
	}
	if got.RevenueCleaned.Valid || !got.RevenueServiced.Valid || got.Tags[0] != "chrono" || len(got.Images) != 0 {
		t.Fatalf("optional fields: %+v", got)
	}
	if got.AIConfidence == nil || *got.AIConfidence != 80 || got.AIRecommendation != domain.RecommendBuy {
		t.Fatalf("ai fields: %+v", got)
	}

	got.Notes = "serviced 2023"
	got.Images = []string{"/media/a.jpg"}
	if err := repo.Update(ctx, &got); err != nil {
		t.Fatal(err)
	}
	again, _ := repo.Get(ctx, w.ID)
	if again.Notes != "serviced 2023" || len(again.Images) != 1 {
		t.Fatalf("update lost fields: %+v", again)
	}

	if err := repo.Delete(ctx, w.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Get(ctx, w.ID); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, w.ID); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
	missing := domain.Watch{ID: "nope", Brand: "x", Model: "y", Status: domain.StatusSold}
	if err := repo.Update(ctx, &missing); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}
}

func TestWatchRepoListNewestFirst(t *testing.T) {
	db, err := repos.OpenDB("sqlite", ":memory:", true)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	repo := repos.NewWatchRepo(db)
	ws, err := repo.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(ws) != 4 {
		t.Fatalf("want 4 seeded watches, got %d", len(ws))
	}
	for i := 1; i < len(ws); i++ {
		if ws[i].CreatedAt.After(ws[i-1].CreatedAt) {
			t.Fatalf("not newest first at %d", i)
		}
	}
	if ws[0].Brand != "Hamilton" {
		t.Fatalf("newest should be the last seeded watch, got %s", ws[0].Brand)
	}
}

func TestPrefsRepo(t *testing.T) {
	db, err := repos.OpenDB("sqlite", ":memory:", false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	r := repos.NewPrefsRepo(db)
	if _, err := r.Get(ctx, "k"); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := r.Set(ctx, "k", "1"); err != nil {
		t.Fatal(err)
	}
	if err := r.Set(ctx, "k", "2"); err != nil {
		t.Fatal(err)
	}
	if v, _ := r.Get(ctx, "k"); v != "2" {
		t.Fatalf("want upserted value, got %q", v)
	}
	if err := r.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Get(ctx, "k"); !errors.Is(err, repos.ErrNotFound) {
		t.Fatal("delete did not remove key")
	}
}
