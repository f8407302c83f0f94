package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/zipmap/internal/refdata"
	"github.com/sells-group/zipmap/internal/store"
)

// openStore opens the configured job store backend.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		s, err := store.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	}
	return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// newRefStore builds the reference geometry store from config.
func newRefStore() *refdata.Store {
	return refdata.NewStore(refdata.Config{
		ZIPShapefile:   cfg.Ref.ZIPShapefile,
		StateShapefile: cfg.Ref.StateShapefile,
		OffsetsFile:    cfg.Ref.OffsetsFile,
		ZIPKeyField:    cfg.Ref.ZIPKeyField,
		StateKeyField:  cfg.Ref.StateKeyField,
		CacheDir:       cfg.Ref.CacheDir,
	})
}
