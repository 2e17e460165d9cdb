package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"animehub/pkg/models"
)

type indexSpec struct {
	collection string
	field      string
	unique     bool
}

// lookup keys are unique; the join keys on the data collections are not
var indexSpecs = []indexSpec{
	{models.GenreCollection, "genres_id", true},
	{models.GenreCollection, "genres_de", false},
	{models.StudioCollection, "studio_id", true},
	{models.StudioCollection, "studio_de", false},
	{models.DemographicCollection, "demo_id", true},
	{models.AnimeCollection, "mal_id", false},
	{models.AnimeCollection, "studio_id", false},
	{models.RankingCollection, "mal_id", false},
	{models.RankingCollection, "title", false},
}

// EnsureIndexes creates the indexes the dashboard pipelines join and filter on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, spec := range indexSpecs {
		model := mongo.IndexModel{
			Keys:    bson.D{{Key: spec.field, Value: 1}},
			Options: options.Index().SetUnique(spec.unique),
		}
		if _, err := db.Collection(spec.collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index %s.%s: %w", spec.collection, spec.field, err)
		}
	}
	return nil
}
