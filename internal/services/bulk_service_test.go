package services_test

import (
	"context"
	"errors"
	"testing"

	"watchflip/internal/domain"
	"watchflip/internal/repos"
	"watchflip/internal/services"
)

func seed(t *testing.T, svc *services.WatchService, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := range ids {
		w, err := svc.Create(context.Background(), input("Seiko", "Model", "100"))
		if err != nil {
			t.Fatal(err)
		}
		ids[i] = w.ID
	}
	return ids
}

func TestBulkDeleteIndependent(t *testing.T) {
	svc, _ := newWatchService(t)
	bulk := services.NewBulkService(svc, 3)
	ctx := context.Background()
	ids := seed(t, svc, 2)

	res := bulk.Delete(ctx, []string{ids[0], "missing", ids[1]})
	if len(res.Succeeded) != 2 || len(res.Failed) != 1 || res.Failed[0].ID != "missing" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !res.Partial() {
		t.Fatal("mixed outcome should be partial")
	}
	for _, id := range ids {
		if _, err := svc.Get(ctx, id); !errors.Is(err, repos.ErrNotFound) {
			t.Fatalf("%s should be gone, got %v", id, err)
		}
	}
}

func TestBulkStatusSoldNeedsPrice(t *testing.T) {
	svc, _ := newWatchService(t)
	bulk := services.NewBulkService(svc, 2)
	ctx := context.Background()
	ids := seed(t, svc, 2)

	res, err := bulk.UpdateStatus(ctx, ids, domain.StatusSold)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Failed) != 2 {
		t.Fatalf("sold without price should fail per item: %+v", res)
	}

	res, err = bulk.UpdateStatus(ctx, ids, domain.StatusReadyToSell)
	if err != nil || len(res.Succeeded) != 2 {
		t.Fatalf("status update: %v %+v", err, res)
	}

	if _, err := bulk.UpdateStatus(ctx, ids, domain.Status("lost")); err == nil {
		t.Fatal("invalid status should fail the whole request")
	}
}

func TestBulkEdit(t *testing.T) {
	svc, _ := newWatchService(t)
	bulk := services.NewBulkService(svc, 2)
	ctx := context.Background()
	ids := seed(t, svc, 2)
	if _, err := svc.Update(ctx, ids[0], domain.WatchInput{Tags: []string{"vintage"}}); err != nil {
		t.Fatal(err)
	}

	res, err := bulk.Edit(ctx, ids, domain.BulkPatch{AddTags: []string{"Vintage", "diver"}, ServiceCost: dec("45")})
	if err != nil || len(res.Succeeded) != 2 {
		t.Fatalf("edit: %v %+v", err, res)
	}
	w, _ := svc.Get(ctx, ids[0])
	if len(w.Tags) != 2 || w.Tags[0] != "vintage" || w.Tags[1] != "diver" {
		t.Fatalf("tags = %v", w.Tags)
	}
	if !w.ServiceCost.Valid || w.ServiceCost.Decimal.String() != "45" {
		t.Fatalf("service cost = %v", w.ServiceCost)
	}

	if _, err := bulk.Edit(ctx, ids, domain.BulkPatch{}); err == nil {
		t.Fatal("empty patch should be rejected")
	}
}
