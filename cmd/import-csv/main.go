package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"animehub/pkg/database"
	"animehub/pkg/models"
	"animehub/pkg/utils"
)

const insertBatch = 1000

type source struct {
	collection string
	path       string
	parse      rowParser
}

func main() {
	var (
		configPath string
		drop       bool
		timeout    time.Duration
		paths      = map[string]*string{}
	)

	root := &cobra.Command{
		Use:           "import-csv",
		Short:         "Seed the anime database from CSV exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sources := []source{
				{models.GenreCollection, *paths[models.GenreCollection], parseGenre},
				{models.StudioCollection, *paths[models.StudioCollection], parseStudio},
				{models.DemographicCollection, *paths[models.DemographicCollection], parseDemographic},
				{models.AnimeCollection, *paths[models.AnimeCollection], parseAnime},
				{models.RankingCollection, *paths[models.RankingCollection], parseRanking},
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return run(ctx, configPath, drop, sources)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "config file (default ./animehub.yaml)")
	flags.BoolVar(&drop, "drop", false, "drop each collection before importing it")
	flags.DurationVar(&timeout, "timeout", 5*time.Minute, "overall import timeout")
	for _, d := range []struct{ collection, file string }{
		{models.GenreCollection, "data/genres_l.csv"},
		{models.StudioCollection, "data/studios_l.csv"},
		{models.DemographicCollection, "data/demo_l.csv"},
		{models.AnimeCollection, "data/anime_table.csv"},
		{models.RankingCollection, "data/anime_ranking_table.csv"},
	} {
		paths[d.collection] = flags.String(d.collection, d.file, "input CSV for "+d.collection+" (empty skips it)")
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "import-csv:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, drop bool, sources []source) error {
	cfg, err := utils.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	conn, err := database.Open(ctx, database.Config{URI: cfg.MongoURI, Name: cfg.DBName})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close(context.Background()) }()

	for _, src := range sources {
		if src.path == "" {
			continue
		}
		n, err := importFile(ctx, conn.DB, src, drop)
		if err != nil {
			return fmt.Errorf("import %s: %w", src.collection, err)
		}
		logger.Info("imported collection",
			zap.String("collection", src.collection),
			zap.String("file", src.path),
			zap.Int("documents", n))
	}

	if err := database.EnsureIndexes(ctx, conn.DB); err != nil {
		return err
	}
	logger.Info("indexes ensured", zap.String("db", cfg.DBName))
	return nil
}

func importFile(ctx context.Context, db *mongo.Database, src source, drop bool) (int, error) {
	f, err := os.Open(src.path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	docs, err := readDocs(f, src.parse)
	if err != nil {
		return 0, err
	}

	coll := db.Collection(src.collection)
	if drop {
		if err := coll.Drop(ctx); err != nil {
			return 0, fmt.Errorf("drop: %w", err)
		}
	}

	for start := 0; start < len(docs); start += insertBatch {
		end := min(start+insertBatch, len(docs))
		if _, err := coll.InsertMany(ctx, docs[start:end]); err != nil {
			var bulk mongo.BulkWriteException
			if errors.As(err, &bulk) {
				return start, fmt.Errorf("insert batch at %d: %d write errors: %w", start, len(bulk.WriteErrors), err)
			}
			return start, err
		}
	}
	return len(docs), nil
}
