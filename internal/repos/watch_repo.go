package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"watchflip/internal/domain"
)

// ErrNotFound is returned for ids that do not exist.
var ErrNotFound = errors.New("not found")

// tsLayout is fixed width so TEXT ordering matches time ordering.
const tsLayout = "2006-01-02T15:04:05.000000Z"

type WatchRepo struct{ db *sqlx.DB }

func NewWatchRepo(db *sqlx.DB) *WatchRepo { return &WatchRepo{db: db} }

// watchRow is the storage shape of domain.Watch.
type watchRow struct {
	ID               string              `db:"id"`
	Brand            string              `db:"brand"`
	Model            string              `db:"model"`
	ReferenceNumber  sql.NullString      `db:"reference_number"`
	Title            sql.NullString      `db:"title"`
	Description      sql.NullString      `db:"description"`
	ConditionNotes   sql.NullString      `db:"condition_notes"`
	Notes            sql.NullString      `db:"notes"`
	PurchasePrice    decimal.Decimal     `db:"purchase_price"`
	PurchaseDate     sql.NullString      `db:"purchase_date"`
	RevenueAsIs      decimal.NullDecimal `db:"revenue_as_is"`
	RevenueCleaned   decimal.NullDecimal `db:"revenue_cleaned"`
	RevenueServiced  decimal.NullDecimal `db:"revenue_serviced"`
	ServiceCost      decimal.NullDecimal `db:"service_cost"`
	CleaningCost     decimal.NullDecimal `db:"cleaning_cost"`
	OtherCosts       decimal.NullDecimal `db:"other_costs"`
	Status           string              `db:"status"`
	SoldDate         sql.NullString      `db:"sold_date"`
	SoldPrice        decimal.NullDecimal `db:"sold_price"`
	TagsJSON         string              `db:"tags_json"`
	ImagesJSON       string              `db:"images_json"`
	IsFavorite       int                 `db:"is_favorite"`
	EbayURL          sql.NullString      `db:"ebay_url"`
	EbayListingID    sql.NullString      `db:"ebay_listing_id"`
	AIAnalysis       sql.NullString      `db:"ai_analysis"`
	AIRecommendation sql.NullString      `db:"ai_recommendation"`
	AIConfidence     sql.NullInt64       `db:"ai_confidence"`
	CreatedAt        string              `db:"created_at"`
	UpdatedAt        string              `db:"updated_at"`
}

const watchColumns = `
	id, brand, model, reference_number, title, description, condition_notes, notes,
	purchase_price, purchase_date, revenue_as_is, revenue_cleaned, revenue_serviced,
	service_cost, cleaning_cost, other_costs, status, sold_date, sold_price,
	tags_json, images_json, is_favorite, ebay_url, ebay_listing_id,
	ai_analysis, ai_recommendation, ai_confidence, created_at, updated_at`

const insertWatchSQL = `
INSERT INTO watches(` + watchColumns + `)
VALUES(
	:id, :brand, :model, :reference_number, :title, :description, :condition_notes, :notes,
	:purchase_price, :purchase_date, :revenue_as_is, :revenue_cleaned, :revenue_serviced,
	:service_cost, :cleaning_cost, :other_costs, :status, :sold_date, :sold_price,
	:tags_json, :images_json, :is_favorite, :ebay_url, :ebay_listing_id,
	:ai_analysis, :ai_recommendation, :ai_confidence, :created_at, :updated_at)`

const updateWatchSQL = `
UPDATE watches SET
	brand = :brand, model = :model, reference_number = :reference_number, title = :title,
	description = :description, condition_notes = :condition_notes, notes = :notes,
	purchase_price = :purchase_price, purchase_date = :purchase_date,
	revenue_as_is = :revenue_as_is, revenue_cleaned = :revenue_cleaned, revenue_serviced = :revenue_serviced,
	service_cost = :service_cost, cleaning_cost = :cleaning_cost, other_costs = :other_costs,
	status = :status, sold_date = :sold_date, sold_price = :sold_price,
	tags_json = :tags_json, images_json = :images_json, is_favorite = :is_favorite,
	ebay_url = :ebay_url, ebay_listing_id = :ebay_listing_id,
	ai_analysis = :ai_analysis, ai_recommendation = :ai_recommendation, ai_confidence = :ai_confidence,
	updated_at = :updated_at
WHERE id = :id`

func nullStr(s string) sql.NullString { return sql.NullString{String: s, Valid: s != ""} }

func nullTime(t *time.Time) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(tsLayout), Valid: true}
}

func parseTS(s string) time.Time {
	if t, err := time.Parse(tsLayout, s); err == nil {
		return t
	}
	// rows written by hand or by older builds
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

func parseNullTS(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTS(s.String)
	if t.IsZero() {
		return nil
	}
	return &t
}

func toRow(w domain.Watch) watchRow {
	tags, _ := json.Marshal(nonNil(w.Tags))
	images, _ := json.Marshal(nonNil(w.Images))
	fav := 0
	if w.IsFavorite {
		fav = 1
	}
	var conf sql.NullInt64
	if w.AIConfidence != nil {
		conf = sql.NullInt64{Int64: int64(*w.AIConfidence), Valid: true}
	}
	return watchRow{
		ID:               w.ID,
		Brand:            w.Brand,
		Model:            w.Model,
		ReferenceNumber:  nullStr(w.ReferenceNumber),
		Title:            nullStr(w.Title),
		Description:      nullStr(w.Description),
		ConditionNotes:   nullStr(w.ConditionNotes),
		Notes:            nullStr(w.Notes),
		PurchasePrice:    w.PurchasePrice,
		PurchaseDate:     nullTime(w.PurchaseDate),
		RevenueAsIs:      w.RevenueAsIs,
		RevenueCleaned:   w.RevenueCleaned,
		RevenueServiced:  w.RevenueServiced,
		ServiceCost:      w.ServiceCost,
		CleaningCost:     w.CleaningCost,
		OtherCosts:       w.OtherCosts,
		Status:           string(w.Status),
		SoldDate:         nullTime(w.SoldDate),
		SoldPrice:        w.SoldPrice,
		TagsJSON:         string(tags),
		ImagesJSON:       string(images),
		IsFavorite:       fav,
		EbayURL:          nullStr(w.EbayURL),
		EbayListingID:    nullStr(w.EbayListingID),
		AIAnalysis:       nullStr(w.AIAnalysis),
		AIRecommendation: nullStr(string(w.AIRecommendation)),
		AIConfidence:     conf,
		CreatedAt:        w.CreatedAt.UTC().Format(tsLayout),
		UpdatedAt:        w.UpdatedAt.UTC().Format(tsLayout),
	}
}

func (r watchRow) toDomain() domain.Watch {
	w := domain.Watch{
		ID:               r.ID,
		Brand:            r.Brand,
		Model:            r.Model,
		ReferenceNumber:  r.ReferenceNumber.String,
		Title:            r.Title.String,
		Description:      r.Description.String,
		ConditionNotes:   r.ConditionNotes.String,
		Notes:            r.Notes.String,
		PurchasePrice:    r.PurchasePrice,
		PurchaseDate:     parseNullTS(r.PurchaseDate),
		RevenueAsIs:      r.RevenueAsIs,
		RevenueCleaned:   r.RevenueCleaned,
		RevenueServiced:  r.RevenueServiced,
		ServiceCost:      r.ServiceCost,
		CleaningCost:     r.CleaningCost,
		OtherCosts:       r.OtherCosts,
		Status:           domain.Status(r.Status),
		SoldDate:         parseNullTS(r.SoldDate),
		SoldPrice:        r.SoldPrice,
		IsFavorite:       r.IsFavorite != 0,
		EbayURL:          r.EbayURL.String,
		EbayListingID:    r.EbayListingID.String,
		AIAnalysis:       r.AIAnalysis.String,
		AIRecommendation: domain.Recommendation(r.AIRecommendation.String),
		CreatedAt:        parseTS(r.CreatedAt),
		UpdatedAt:        parseTS(r.UpdatedAt),
	}
	if r.AIConfidence.Valid {
		c := int(r.AIConfidence.Int64)
		w.AIConfidence = &c
	}
	w.Tags = decodeList(r.TagsJSON)
	w.Images = decodeList(r.ImagesJSON)
	return w
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func decodeList(s string) []string {
	out := []string{}
	if s != "" {
		_ = json.Unmarshal([]byte(s), &out)
	}
	return out
}

// List returns every watch, newest first.
func (r *WatchRepo) List(ctx context.Context) ([]domain.Watch, error) {
	var rows []watchRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+watchColumns+` FROM watches ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list watches: %w", err)
	}
	out := make([]domain.Watch, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (r *WatchRepo) Get(ctx context.Context, id string) (domain.Watch, error) {
	var row watchRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+watchColumns+` FROM watches WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Watch{}, fmt.Errorf("watch %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Watch{}, fmt.Errorf("get watch: %w", err)
	}
	return row.toDomain(), nil
}

// Create assigns id and timestamps on w.
func (r *WatchRepo) Create(ctx context.Context, w *domain.Watch) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	w.CreatedAt, w.UpdatedAt = now, now
	if w.Tags == nil {
		w.Tags = []string{}
	}
	if w.Images == nil {
		w.Images = []string{}
	}
	if _, err := r.db.NamedExecContext(ctx, insertWatchSQL, toRow(*w)); err != nil {
		return fmt.Errorf("insert watch: %w", err)
	}
	return nil
}

// Update writes every column of w and refreshes UpdatedAt.
func (r *WatchRepo) Update(ctx context.Context, w *domain.Watch) error {
	w.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, updateWatchSQL, toRow(*w))
	if err != nil {
		return fmt.Errorf("update watch: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("watch %s: %w", w.ID, ErrNotFound)
	}
	return nil
}

func (r *WatchRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM watches WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete watch: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("watch %s: %w", id, ErrNotFound)
	}
	return nil
}
