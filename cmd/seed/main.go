// Command seed imports material YAML files into the materials table.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/oneday-english/oneday/internal/catalog"
	"github.com/oneday-english/oneday/internal/platform/config"
	"github.com/oneday-english/oneday/internal/platform/database"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	loaded, err := catalog.LoadDir(cfg.MaterialsPath)
	if err != nil {
		slog.Error("failed to load materials", "path", cfg.MaterialsPath, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	pg, err := catalog.NewPostgres(db.Pool)
	if err != nil {
		slog.Error("failed to build catalog", "error", err)
		os.Exit(1)
	}

	count := 0
	for _, typ := range []catalog.ActivityType{
		catalog.TypeVocab, catalog.TypeListening, catalog.TypeReading, catalog.TypeGrammar,
	} {
		for level := 1; level <= 9; level++ {
			items, err := loaded.Items(ctx, typ, level)
			if err != nil {
				slog.Error("failed to list materials", "type", typ, "level", level, "error", err)
				os.Exit(1)
			}
			for _, item := range items {
				if err := pg.Upsert(ctx, item); err != nil {
					slog.Error("failed to import material", "id", item.ID, "error", err)
					os.Exit(1)
				}
				count++
			}
		}
	}

	slog.Info("materials imported", "count", count)
}
