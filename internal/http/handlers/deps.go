package handlers

import (
	"github.com/jmoiron/sqlx"

	"watchflip/internal/analyzer"
	"watchflip/internal/config"
	"watchflip/internal/events"
	"watchflip/internal/repos"
	"watchflip/internal/scraper"
	"watchflip/internal/services"
)

// Collaborators are the optional outbound dependencies. Nil fields fall
// back to their disabled or no-op implementations.
type Collaborators struct {
	Events   events.Publisher
	Scraper  scraper.Scraper
	Analyzer analyzer.Analyzer
}

type Deps struct {
	Auth *services.AuthService

	WatchHandler     *WatchHandler
	BulkHandler      *BulkHandler
	InsightsHandler  *InsightsHandler
	ExportHandler    *ExportHandler
	ListingHandler   *ListingHandler
	PrefsHandler     *PrefsHandler
	DashboardHandler *DashboardHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService, col Collaborators) *Deps {
	watchRepo := repos.NewWatchRepo(db)
	prefsRepo := repos.NewPrefsRepo(db)

	watchSvc := services.NewWatchService(watchRepo, col.Events, cfg.MediaDir)
	bulkSvc := services.NewBulkService(watchSvc, cfg.BulkWorkers)
	listingSvc := services.NewListingService(col.Scraper, col.Analyzer)
	prefsSvc := services.NewPrefsService(prefsRepo)

	return &Deps{
		Auth:             auth,
		WatchHandler:     &WatchHandler{Watches: watchSvc},
		BulkHandler:      &BulkHandler{Bulk: bulkSvc},
		InsightsHandler:  &InsightsHandler{Watches: watchSvc},
		ExportHandler:    &ExportHandler{Watches: watchSvc},
		ListingHandler:   &ListingHandler{Listings: listingSvc},
		PrefsHandler:     &PrefsHandler{Prefs: prefsSvc, Watches: watchSvc},
		DashboardHandler: &DashboardHandler{Watches: watchSvc, Prefs: prefsSvc},
	}
}
