package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"animehub/pkg/models"
)

var (
	// ErrLookupMiss means a display label has no matching lookup document.
	ErrLookupMiss   = errors.New("lookup miss")
	ErrUnknownQuery = errors.New("unknown query")
)

// Store is the slice of the document database the catalog reads from.
// FindOne returns an error wrapping mongo.ErrNoDocuments on a miss.
type Store interface {
	Aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline) ([]bson.M, error)
	FindOne(ctx context.Context, collection string, filter bson.D) (bson.M, error)
	Distinct(ctx context.Context, collection, field string) ([]any, error)
}

// Fixed inputs of the user panel.
const (
	UserGenre  = "Adventure"
	UserStudio = "Madhouse"
)

var (
	FeaturedTitles    = []string{"Yakitate!! Japan", "Haikyuu!!", "Gakuen Alice", "Magi: The Kingdom of Magic"}
	DemographicTitles = []string{"Trigun", "Gleipnir", "Shirokuma Cafe", "Gakuen Alice", "Heybot!"}
)

type handlerFunc func(ctx context.Context, p Params) ([]Record, error)

type Repo struct {
	Store    Store
	handlers map[QueryID]handlerFunc
}

func NewRepo(store Store) *Repo {
	r := &Repo{Store: store}
	r.handlers = map[QueryID]handlerFunc{
		UserAdventurePopular: func(ctx context.Context, _ Params) ([]Record, error) {
			return r.popularGenre(ctx, UserGenre, true)
		},
		UserMadhouseFinished: func(ctx context.Context, _ Params) ([]Record, error) {
			return r.studioFinished(ctx, UserStudio)
		},
		UserFeaturedRanks: func(ctx context.Context, _ Params) ([]Record, error) {
			return r.titleRanks(ctx, FeaturedTitles)
		},
		UserDemographicCheck: func(ctx context.Context, _ Params) ([]Record, error) {
			return r.titleDemographics(ctx, DemographicTitles, ColDemoDe)
		},
		GenrePopular: func(ctx context.Context, p Params) ([]Record, error) {
			return r.popularGenre(ctx, p.Genre, false)
		},
		StudioFinished: func(ctx context.Context, p Params) ([]Record, error) {
			return r.studioFinished(ctx, p.Studio)
		},
		TitleRanks: func(ctx context.Context, p Params) ([]Record, error) {
			return r.titleRanks(ctx, p.Titles)
		},
		TitleDemographics: func(ctx context.Context, p Params) ([]Record, error) {
			return r.titleDemographics(ctx, p.Titles, ColType)
		},
		DemographicPopularity: func(ctx context.Context, _ Params) ([]Record, error) {
			return r.aggregate(ctx, models.RankingCollection, DemographicPopularityPipeline())
		},
		TopStudios: func(ctx context.Context, _ Params) ([]Record, error) {
			return r.aggregate(ctx, models.RankingCollection, TopStudiosPipeline())
		},
		SeasonPopularity: func(ctx context.Context, _ Params) ([]Record, error) {
			return r.aggregate(ctx, models.RankingCollection, SeasonPopularityPipeline())
		},
		GenreEngagement: r.genreEngagement,
	}
	return r
}

// Run executes the query registered for id with the given widget state.
func (r *Repo) Run(ctx context.Context, id QueryID, p Params) ([]Record, error) {
	h, ok := r.handlers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuery, id)
	}
	return h(ctx, p)
}

func (r *Repo) aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline) ([]Record, error) {
	return r.Store.Aggregate(ctx, collection, pipeline)
}

// resolve maps a display label to its internal id in a lookup collection.
func (r *Repo) resolve(ctx context.Context, collection, labelField, idField, label string) (any, error) {
	doc, err := r.Store.FindOne(ctx, collection, bson.D{{Key: labelField, Value: label}})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s %q in %s: %w", labelField, label, collection, ErrLookupMiss)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve %s %q: %w", labelField, label, err)
	}
	id, ok := doc[idField]
	if !ok || id == nil {
		return nil, fmt.Errorf("%s %q has no %s: %w", labelField, label, idField, ErrLookupMiss)
	}
	return id, nil
}

func (r *Repo) popularGenre(ctx context.Context, genre string, grouped bool) ([]Record, error) {
	id, err := r.resolve(ctx, models.GenreCollection, "genres_de", "genres_id", genre)
	if err != nil {
		return nil, err
	}
	// genres_id on ranking rows is text, so the id is compared as text
	return r.aggregate(ctx, models.RankingCollection, PopularGenrePipeline(idString(id), genre, grouped))
}

func (r *Repo) studioFinished(ctx context.Context, studio string) ([]Record, error) {
	id, err := r.resolve(ctx, models.StudioCollection, "studio_de", "studio_id", studio)
	if err != nil {
		return nil, err
	}
	return r.aggregate(ctx, models.AnimeCollection, StudioFinishedPipeline(id))
}

func (r *Repo) titleRanks(ctx context.Context, titles []string) ([]Record, error) {
	if len(titles) == 0 {
		return []Record{}, nil
	}
	return r.aggregate(ctx, models.RankingCollection, TitleRanksPipeline(titles))
}

func (r *Repo) titleDemographics(ctx context.Context, titles []string, labelColumn string) ([]Record, error) {
	if len(titles) == 0 {
		return []Record{}, nil
	}
	return r.aggregate(ctx, models.RankingCollection, TitleDemographicsPipeline(titles, labelColumn))
}

func (r *Repo) genreEngagement(ctx context.Context, _ Params) ([]Record, error) {
	recs, err := r.aggregate(ctx, models.AnimeCollection, GenreEngagementPipeline())
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		for _, col := range []string{ColCompleted, ColOnHold, ColDropped} {
			if v, ok := toFloat(rec[col]); ok {
				rec[col] = FormatPercent(v)
			}
		}
	}
	return recs, nil
}

// FormatPercent renders a percentage with two decimals and a "%" suffix.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func idString(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return fmt.Sprint(n)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// Options holds the choices offered by the analyst panel widgets.
type Options struct {
	Genres  []string `json:"genres"`
	Studios []string `json:"studios"`
	Titles  []string `json:"titles"`
}

func (r *Repo) Options(ctx context.Context) (Options, error) {
	var (
		opts Options
		err  error
	)
	if opts.Genres, err = r.distinctStrings(ctx, models.GenreCollection, "genres_de"); err != nil {
		return Options{}, err
	}
	if opts.Studios, err = r.distinctStrings(ctx, models.StudioCollection, "studio_de"); err != nil {
		return Options{}, err
	}
	if opts.Titles, err = r.distinctStrings(ctx, models.RankingCollection, "title"); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func (r *Repo) distinctStrings(ctx context.Context, collection, field string) ([]string, error) {
	values, err := r.Store.Distinct(ctx, collection, field)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}
