package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/vbonduro/lostfound/internal/collection"
	"github.com/vbonduro/lostfound/internal/collection/postgrest"
	"github.com/vbonduro/lostfound/internal/collection/sqltable"
	"github.com/vbonduro/lostfound/internal/config"
	"github.com/vbonduro/lostfound/internal/db"
	"github.com/vbonduro/lostfound/internal/photostore"
	"github.com/vbonduro/lostfound/internal/photostore/local"
	s3store "github.com/vbonduro/lostfound/internal/photostore/s3"
	"github.com/vbonduro/lostfound/internal/resolver"
	"github.com/vbonduro/lostfound/internal/resolver/cloudinary"
	"github.com/vbonduro/lostfound/internal/resolver/inline"
	"github.com/vbonduro/lostfound/internal/resolver/stored"
	"github.com/vbonduro/lostfound/internal/service"
	"github.com/vbonduro/lostfound/internal/store"
)

// app holds everything built from a Config.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	service *service.ItemService
	photos  photostore.PhotoStore
	closers []func()
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	coll, err := a.openCollection()
	if err != nil {
		a.close()
		return nil, err
	}

	if cfg.ImageStrategy == config.StrategyStored {
		if a.photos, err = openPhotoStore(ctx, cfg); err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize photo store: %w", err)
		}
	}

	images := newResolver(cfg, a.photos, logger)
	a.service = service.NewItemService(store.NewItemStore(coll, logger), images, logger)
	return a, nil
}

func (a *app) openCollection() (collection.Collection, error) {
	switch a.cfg.StoreBackend {
	case config.BackendPostgres:
		database, err := db.OpenPostgres(a.cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closeDB(database)
		a.logger.Info("using postgres item store", "table", a.cfg.SupabaseTable)
		return sqltable.NewPostgres(database, a.cfg.SupabaseTable, a.logger), nil
	case config.BackendPostgREST:
		a.logger.Info("using postgrest item store", "url", a.cfg.SupabaseURL, "table", a.cfg.SupabaseTable)
		return postgrest.NewClient(a.cfg.SupabaseURL, a.cfg.SupabaseAnonKey, a.cfg.SupabaseTable, a.logger), nil
	default:
		database, err := db.Open(a.cfg.DBPath)
		if err != nil {
			return nil, err
		}
		a.closeDB(database)
		a.logger.Info("using sqlite item store", "path", a.cfg.DBPath)
		return sqltable.NewSQLite(database, a.logger), nil
	}
}

func (a *app) closeDB(database *sql.DB) {
	a.closers = append(a.closers, func() {
		if err := database.Close(); err != nil {
			a.logger.Error("failed to close database", "error", err)
		}
	})
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func openPhotoStore(ctx context.Context, cfg *config.Config) (photostore.PhotoStore, error) {
	if cfg.PhotoBackend == config.PhotoS3 {
		return s3store.NewS3PhotoStore(ctx, s3store.Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			Prefix:   cfg.S3Prefix,
		})
	}
	return local.NewLocalPhotoStore(cfg.PhotoPath)
}

func newResolver(cfg *config.Config, photos photostore.PhotoStore, logger *slog.Logger) resolver.Resolver {
	switch cfg.ImageStrategy {
	case config.StrategyRemote:
		logger.Info("using remote image hosting", "destinations", len(cfg.Destinations))
		return cloudinary.NewUploader(cfg.ImageHostURL, cfg.Destinations, logger)
	case config.StrategyStored:
		logger.Info("using stored photos", "backend", cfg.PhotoBackend)
		return stored.New(photos)
	default:
		logger.Info("using inline images", "compress", cfg.InlineCompress)
		return inline.NewEncoder(inline.Options{
			Compress: cfg.InlineCompress,
			MaxWidth: cfg.InlineMaxWidth,
			Quality:  cfg.InlineQuality,
		}, logger)
	}
}
