package repos

import (
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// OpenDB connects to sqlite (default) or postgres and makes sure the schema
// exists. Demo rows are only inserted when seed is true and the table is empty.
func OpenDB(driver, dsn string, seed bool) (*sqlx.DB, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = "sqlite"
	}
	if driver != "sqlite" && driver != "postgres" {
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// One connection keeps :memory: databases shared across calls.
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if seed {
		if err := seedIfEmpty(db); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Watches
CREATE TABLE IF NOT EXISTS watches(
  id TEXT PRIMARY KEY,
  brand TEXT NOT NULL,
  model TEXT NOT NULL,
  reference_number TEXT,
  title TEXT,
  description TEXT,
  condition_notes TEXT,
  notes TEXT,
  purchase_price TEXT NOT NULL,
  purchase_date TEXT,
  revenue_as_is TEXT,
  revenue_cleaned TEXT,
  revenue_serviced TEXT,
  service_cost TEXT,
  cleaning_cost TEXT,
  other_costs TEXT,
  status TEXT NOT NULL DEFAULT 'needs_service'
    CHECK (status IN ('needs_service','ready_to_sell','problem_item','sold')),
  sold_date TEXT,
  sold_price TEXT,
  tags_json TEXT NOT NULL DEFAULT '[]',
  images_json TEXT NOT NULL DEFAULT '[]',
  is_favorite INTEGER NOT NULL DEFAULT 0,
  ebay_url TEXT,
  ebay_listing_id TEXT,
  ai_analysis TEXT,
  ai_recommendation TEXT,
  ai_confidence INTEGER CHECK (ai_confidence IS NULL OR (ai_confidence BETWEEN 0 AND 100)),
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_watches_created_at ON watches(created_at);
CREATE INDEX IF NOT EXISTS idx_watches_status     ON watches(status);
CREATE INDEX IF NOT EXISTS idx_watches_brand      ON watches(LOWER(brand));

-- Preferences (saved searches, templates, price alerts)
CREATE TABLE IF NOT EXISTS preferences(
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM watches`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo watches")

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, w := range demoWatches() {
		row := toRow(w)
		if _, err := tx.NamedExec(insertWatchSQL, row); err != nil {
			return err
		}
	}
	return tx.Commit()
}
