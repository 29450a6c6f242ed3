package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/diewo77/pcquote/internal/config"
	"github.com/diewo77/pcquote/internal/handlers"
	"github.com/diewo77/pcquote/internal/metrics"
	"github.com/diewo77/pcquote/internal/render"
	"github.com/diewo77/pcquote/internal/search"
	"github.com/diewo77/pcquote/internal/server"
	"github.com/diewo77/pcquote/internal/services"
	"github.com/diewo77/pcquote/internal/share"
	"github.com/diewo77/pcquote/internal/shell"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// App wires services and handlers from the configuration.
type App struct {
	Handler http.Handler
	closers []io.Closer
}

// NewApp creates the application with all routes configured.
func NewApp(ctx context.Context, cfg *config.Config, db *gorm.DB, log *logrus.Logger) (*App, error) {
	app := &App{}
	m := metrics.New()

	catalog := services.NewCatalogService(db)
	company := services.NewCompanyService(db)
	history := services.NewHistoryService(db)
	docs := services.NewDocumentService(history, company, render.NewPDF(log))
	builder := services.NewQuotationBuilder(catalog, services.QuotationDefaults{
		DiscountRate: cfg.Quotation.DiscountRate,
		GSTRate:      cfg.Quotation.GSTRate,
		ValidityDays: cfg.Quotation.ValidityDays,
	})

	var limiter *rate.Limiter
	if cfg.Search.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Search.RatePerSecond), max(cfg.Search.Burst, 1))
	}
	upstream := search.NewClient(cfg.Search.ServiceURL, cfg.Search.TimeoutDuration(), limiter)
	searchSvc := search.NewService(upstream, app.searchCache(ctx, cfg, log), cfg.Search.CacheTTLDuration(), log)

	sharer, err := share.New(ctx, cfg.Share)
	if err != nil {
		return nil, fmt.Errorf("share target: %w", err)
	}
	if c, ok := sharer.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}

	installPath := cfg.App.InstallPath
	if installPath == "" {
		if installPath, err = shell.InstallPath(); err != nil {
			log.WithError(err).Warn("cannot resolve installation path")
		}
	}

	app.Handler = server.New(server.Handlers{
		App:       handlers.NewAppHandler(db, installPath),
		Catalog:   handlers.NewCatalogHandler(catalog, m, log),
		Search:    handlers.NewSearchHandler(searchSvc, search.NewLatest(cfg.Search.Debounce()), m, log),
		Company:   handlers.NewCompanyHandler(company, log),
		Quotation: handlers.NewQuotationHandler(builder, docs, sharer, cfg.Share.Prefix, m, log),
		History:   handlers.NewHistoryHandler(history, docs, m, log),
		Metrics:   m,
		Log:       log,
		Origins:   cfg.Server.Origins(),
	})
	return app, nil
}

// searchCache uses redis when configured and reachable, otherwise memory.
func (a *App) searchCache(ctx context.Context, cfg *config.Config, log *logrus.Logger) search.Cache {
	if cfg.Redis.Addr == "" {
		return search.NewMemoryCache()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).WithField("addr", cfg.Redis.Addr).Warn("redis unavailable, using in-memory search cache")
		_ = rdb.Close()
		return search.NewMemoryCache()
	}
	a.closers = append(a.closers, rdb)
	log.WithField("addr", cfg.Redis.Addr).Info("search cache backed by redis")
	return search.NewRedisCache(rdb, log)
}

// Close releases external clients.
func (a *App) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}
