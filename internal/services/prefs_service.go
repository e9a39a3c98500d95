package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"watchflip/internal/domain"
	"watchflip/internal/metrics"
	"watchflip/internal/repos"
	"watchflip/internal/validate"
)

// Preference keys. Each holds a JSON array.
const (
	KeyAlerts    = "priceAlerts"
	KeySearches  = "watchSavedSearches"
	KeyTemplates = "watchTemplates"
)

// KV is a string store; Get returns repos.ErrNotFound for unknown keys.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// PrefsService keeps operator preferences server-side.
type PrefsService struct {
	KV  KV
	Now func() time.Time
}

func NewPrefsService(kv KV) *PrefsService { return &PrefsService{KV: kv, Now: time.Now} }

func load[T any](ctx context.Context, kv KV, key string) ([]T, error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, repos.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

func store[T any](ctx context.Context, kv KV, key string, items []T) error {
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return kv.Set(ctx, key, string(b))
}

// upsert replaces the item with the same id or appends it.
func upsert[T any](items []T, item T, id func(T) string) []T {
	for i := range items {
		if id(items[i]) == id(item) {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func remove[T any](ctx context.Context, kv KV, key, id string, idOf func(T) string) error {
	items, err := load[T](ctx, kv, key)
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, it := range items {
		if idOf(it) != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return fmt.Errorf("%s %s: %w", key, id, repos.ErrNotFound)
	}
	return store(ctx, kv, key, kept)
}

func (s *PrefsService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func searchID(x domain.SavedSearch) string { return x.ID }
func templateID(x domain.Template) string  { return x.ID }
func alertID(x domain.PriceAlert) string   { return x.ID }

func (s *PrefsService) Searches(ctx context.Context) ([]domain.SavedSearch, error) {
	return load[domain.SavedSearch](ctx, s.KV, KeySearches)
}

func (s *PrefsService) SaveSearch(ctx context.Context, x domain.SavedSearch) (domain.SavedSearch, error) {
	x.Name = strings.TrimSpace(x.Name)
	if x.Name == "" {
		return x, validate.Violations{"name": validate.CodeRequired}.Err()
	}
	items, err := s.Searches(ctx)
	if err != nil {
		return x, err
	}
	if x.ID == "" {
		x.ID = uuid.NewString()
	}
	if x.CreatedAt.IsZero() {
		x.CreatedAt = s.now()
	}
	return x, store(ctx, s.KV, KeySearches, upsert(items, x, searchID))
}

func (s *PrefsService) DeleteSearch(ctx context.Context, id string) error {
	return remove(ctx, s.KV, KeySearches, id, searchID)
}

func (s *PrefsService) Templates(ctx context.Context) ([]domain.Template, error) {
	return load[domain.Template](ctx, s.KV, KeyTemplates)
}

func (s *PrefsService) SaveTemplate(ctx context.Context, x domain.Template) (domain.Template, error) {
	v := validate.Violations{}
	x.Name = strings.TrimSpace(x.Name)
	if x.Name == "" {
		v["name"] = validate.CodeRequired
	}
	if strings.TrimSpace(x.Brand) == "" {
		v["brand"] = validate.CodeRequired
	}
	for field, d := range map[string]decimal.NullDecimal{
		"defaultPurchasePrice": x.DefaultPurchasePrice,
		"defaultServiceCost":   x.DefaultServiceCost,
		"defaultCleaningCost":  x.DefaultCleaningCost,
	} {
		if d.Valid && d.Decimal.IsNegative() {
			v[field] = validate.CodeNonNegative
		}
	}
	if err := v.Err(); err != nil {
		return x, err
	}
	x.Tags = domain.NormalizeTags(x.Tags)
	items, err := s.Templates(ctx)
	if err != nil {
		return x, err
	}
	if x.ID == "" {
		x.ID = uuid.NewString()
	}
	if x.CreatedAt.IsZero() {
		x.CreatedAt = s.now()
	}
	return x, store(ctx, s.KV, KeyTemplates, upsert(items, x, templateID))
}

func (s *PrefsService) DeleteTemplate(ctx context.Context, id string) error {
	return remove(ctx, s.KV, KeyTemplates, id, templateID)
}

func (s *PrefsService) Alerts(ctx context.Context) ([]domain.PriceAlert, error) {
	return load[domain.PriceAlert](ctx, s.KV, KeyAlerts)
}

func (s *PrefsService) SaveAlert(ctx context.Context, x domain.PriceAlert) (domain.PriceAlert, error) {
	v := validate.Violations{}
	if _, ok := validate.ID(x.WatchID); !ok {
		v["watchId"] = validate.CodeRequired
	}
	if !x.TargetProfit.Valid && !x.TargetPrice.Valid {
		v["targetProfit"] = validate.CodeRequired
	}
	if x.TargetPrice.Valid && !x.TargetPrice.Decimal.IsPositive() {
		v["targetPrice"] = validate.CodePositive
	}
	if err := v.Err(); err != nil {
		return x, err
	}
	items, err := s.Alerts(ctx)
	if err != nil {
		return x, err
	}
	if x.ID == "" {
		x.ID = uuid.NewString()
		x.Active = true
	}
	if x.CreatedAt.IsZero() {
		x.CreatedAt = s.now()
	}
	return x, store(ctx, s.KV, KeyAlerts, upsert(items, x, alertID))
}

func (s *PrefsService) DeleteAlert(ctx context.Context, id string) error {
	return remove(ctx, s.KV, KeyAlerts, id, alertID)
}

// CheckAlerts reports every active alert whose watch has reached its target
// profit (purchase-only basis) or target best revenue.
func (s *PrefsService) CheckAlerts(ctx context.Context, ws []domain.Watch) ([]domain.AlertHit, error) {
	alerts, err := s.Alerts(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Watch, len(ws))
	for _, w := range ws {
		byID[w.ID] = w
	}
	hits := []domain.AlertHit{}
	for _, a := range alerts {
		w, ok := byID[a.WatchID]
		if !a.Active || !ok {
			continue
		}
		name := strings.TrimSpace(w.Brand + " " + w.Model)
		if a.TargetProfit.Valid && metrics.ProjectedProfit(w, metrics.PurchaseOnly).GreaterThanOrEqual(a.TargetProfit.Decimal) {
			hits = append(hits, domain.AlertHit{Alert: a, Brand: w.Brand, Model: w.Model,
				Message: fmt.Sprintf("%s has reached target profit of $%s!", name, a.TargetProfit.Decimal.StringFixed(2))})
		}
		if a.TargetPrice.Valid && metrics.BestRevenue(w).GreaterThanOrEqual(a.TargetPrice.Decimal) {
			hits = append(hits, domain.AlertHit{Alert: a, Brand: w.Brand, Model: w.Model,
				Message: fmt.Sprintf("%s has reached target price of $%s!", name, a.TargetPrice.Decimal.StringFixed(2))})
		}
	}
	return hits, nil
}
