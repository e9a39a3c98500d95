package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"watchflip/internal/analyzer"
	"watchflip/internal/config"
	"watchflip/internal/discovery"
	"watchflip/internal/events"
	"watchflip/internal/http/handlers"
	applog "watchflip/internal/log"
	"watchflip/internal/repos"
	"watchflip/internal/scraper"
	"watchflip/internal/services"
	"watchflip/internal/workers"
)

const serviceName = "watchflip"

var (
	templatesDir string
	staticDir    string
	accessLog    bool
	devMode      bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := loadConfig()
		if err != nil {
			return err
		}
		defer closeLog()
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&templatesDir, "templates", "./web/templates", "Directory with page templates")
	serveCmd.Flags().StringVar(&staticDir, "static", "./web/static", "Directory with static assets")
	serveCmd.Flags().BoolVar(&accessLog, "access-log", true, "Write an access log line per request")
	serveCmd.Flags().BoolVar(&devMode, "dev", false, "Reload templates on every request")
}

// collaborators builds the outbound dependencies selected by cfg.
func collaborators(cfg config.Config) (handlers.Collaborators, error) {
	retry := workers.Retry{MaxAttempts: cfg.MaxRetries + 1, BaseDelay: time.Second}
	col := handlers.Collaborators{Events: events.Nop{}}

	if len(cfg.KafkaBrokers) > 0 {
		col.Events = events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Printf("[events] kafka topic %s via %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	}
	if cfg.ScraperMode == "chromedp" {
		col.Scraper = scraper.NewChrome(cfg.ChromeBin, cfg.ScrapeTimeout, retry)
	}
	if cfg.AnalyzerMode != "disabled" {
		a, err := analyzer.NewLive(analyzer.Options{
			Provider: cfg.AnalyzerMode,
			APIKey:   cfg.AnalyzerKey(),
			Model:    cfg.AnalyzerModel,
			Timeout:  cfg.AnalyzerTO,
			Retry:    retry,
		})
		if err != nil {
			return col, err
		}
		col.Analyzer = a
	}
	return col, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN, cfg.SeedDemo)
	if err != nil {
		return err
	}
	defer db.Close()

	col, err := collaborators(cfg)
	if err != nil {
		return err
	}
	defer col.Events.Close()

	auth := services.NewAuthService("", cfg.OperatorHash)
	if auth.Open() {
		applog.Warn(nil, "auth.open", nil, map[string]any{"hint": "set OPERATOR_PASSWORD_HASH to require a login for writes"})
	}

	deps := handlers.NewDeps(db, cfg, auth, col)
	app := handlers.NewApp(deps, handlers.AppConfig{
		TemplatesDir: templatesDir,
		StaticDir:    staticDir,
		MediaDir:     cfg.MediaDir,
		AccessLog:    accessLog,
		ReloadViews:  devMode,
	})

	if cfg.ConsulAddr != "" {
		id := cfg.ServiceID
		if id == "" {
			id = fmt.Sprintf("%s-%s", serviceName, cfg.Port)
		}
		cc, err := discovery.NewConsulClient(cfg.ConsulAddr)
		if err != nil {
			return err
		}
		if err := cc.RegisterService(id, serviceName, cfg.Port); err != nil {
			applog.Warn(nil, "consul.register", err, map[string]any{"addr": cfg.ConsulAddr})
		} else {
			log.Printf("[consul] registered %s at %s", id, cfg.ConsulAddr)
			defer func() {
				if err := cc.DeregisterService(id); err != nil {
					applog.Warn(nil, "consul.deregister", err, nil)
				}
			}()
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- app.Listen(":" + cfg.Port) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Printf("[server] shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}
