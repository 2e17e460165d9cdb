package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"animehub/pkg/models"
)

type aggCall struct {
	collection string
	pipeline   mongo.Pipeline
}

type fakeStore struct {
	docs     map[string][]bson.M // lookup collections for FindOne
	results  map[string][]bson.M // canned Aggregate output per collection
	distinct map[string][]any
	aggErr   error
	calls    []aggCall
}

func (f *fakeStore) Aggregate(_ context.Context, collection string, pipeline mongo.Pipeline) ([]bson.M, error) {
	f.calls = append(f.calls, aggCall{collection, pipeline})
	if f.aggErr != nil {
		return nil, f.aggErr
	}
	out := make([]bson.M, 0, len(f.results[collection]))
	for _, doc := range f.results[collection] {
		cp := bson.M{}
		for k, v := range doc {
			cp[k] = v
		}
		out = append(out, cp)
	}
	return out, nil
}

func (f *fakeStore) FindOne(_ context.Context, collection string, filter bson.D) (bson.M, error) {
	for _, doc := range f.docs[collection] {
		match := true
		for _, e := range filter {
			if doc[e.Key] != e.Value {
				match = false
			}
		}
		if match {
			return doc, nil
		}
	}
	return nil, fmt.Errorf("find one in %s: %w", collection, mongo.ErrNoDocuments)
}

func (f *fakeStore) Distinct(_ context.Context, collection, field string) ([]any, error) {
	return f.distinct[collection+"."+field], nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs: map[string][]bson.M{
			models.GenreCollection: {
				{"genres_id": int32(2), "genres_de": "Adventure"},
				{"genres_id": "8", "genres_de": "Drama"},
			},
			models.StudioCollection: {
				{"studio_id": "S1", "studio_de": "Madhouse"},
				{"studio_id": "S2", "studio_de": "Bones"},
			},
		},
		results: map[string][]bson.M{},
	}
}

// stageBody returns the body of the first stage named name.
func stageBody(t *testing.T, p mongo.Pipeline, name string) any {
	t.Helper()
	for _, s := range p {
		if len(s) == 1 && s[0].Key == name {
			return s[0].Value
		}
	}
	t.Fatalf("pipeline has no %s stage", name)
	return nil
}

func stageNames(p mongo.Pipeline) []string {
	names := make([]string, 0, len(p))
	for _, s := range p {
		names = append(names, s[0].Key)
	}
	return names
}

func field(d bson.D, key string) any {
	for _, e := range d {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

func TestEveryDefinitionHasHandler(t *testing.T) {
	r := NewRepo(newFakeStore())
	for _, d := range Definitions() {
		_, ok := r.handlers[d.ID]
		assert.True(t, ok, "no handler for %s", d.ID)
	}
	assert.Len(t, r.handlers, len(Definitions()))
}

func TestRunUnknownQuery(t *testing.T) {
	r := NewRepo(newFakeStore())
	_, err := r.Run(context.Background(), QueryID("nope"), Params{})
	assert.ErrorIs(t, err, ErrUnknownQuery)
}

func TestPopularGenreResolvesIDAsText(t *testing.T) {
	store := newFakeStore()
	r := NewRepo(store)

	_, err := r.Run(context.Background(), GenrePopular, Params{Genre: "Adventure"})
	require.NoError(t, err)
	require.Len(t, store.calls, 1)
	assert.Equal(t, models.RankingCollection, store.calls[0].collection)

	p := store.calls[0].pipeline
	assert.Equal(t, []string{"$addFields", "$match", "$project"}, stageNames(p))

	match := stageBody(t, p, "$match").(bson.D)
	assert.Equal(t, "2", field(match, "genres_id_array"))
	assert.Equal(t, bson.D{{Key: "$gt", Value: PopularityFloor}}, field(match, "popularity"))

	project := stageBody(t, p, "$project").(bson.D)
	assert.Equal(t, bson.D{{Key: "$literal", Value: "Adventure"}}, field(project, ColGenre))
}

func TestUserPopularGenreGroupsAndSorts(t *testing.T) {
	store := newFakeStore()
	r := NewRepo(store)

	_, err := r.Run(context.Background(), UserAdventurePopular, Params{Genre: "ignored"})
	require.NoError(t, err)
	require.Len(t, store.calls, 1)

	p := store.calls[0].pipeline
	assert.Equal(t, []string{"$addFields", "$match", "$group", "$sort", "$project"}, stageNames(p))
	assert.Equal(t, bson.D{{Key: ColPopularity, Value: -1}}, stageBody(t, p, "$sort"))

	group := stageBody(t, p, "$group").(bson.D)
	assert.Equal(t, bson.D{{Key: "$max", Value: "$popularity"}}, field(group, ColPopularity))
}

func TestLookupMissIsFatalForTheQuery(t *testing.T) {
	store := newFakeStore()
	r := NewRepo(store)

	_, err := r.Run(context.Background(), GenrePopular, Params{Genre: "Isekai"})
	assert.ErrorIs(t, err, ErrLookupMiss)
	assert.Contains(t, err.Error(), "Isekai")

	_, err = r.Run(context.Background(), StudioFinished, Params{Studio: "Nowhere"})
	assert.ErrorIs(t, err, ErrLookupMiss)
	assert.Empty(t, store.calls, "no aggregation after a lookup miss")
}

func TestStudioFinishedScenario(t *testing.T) {
	store := newFakeStore()
	store.results[models.AnimeCollection] = []bson.M{
		{"title": "A", "studio": "Madhouse"},
		{"title": "B", "studio": "Madhouse"},
	}
	r := NewRepo(store)

	recs, err := r.Run(context.Background(), StudioFinished, Params{Studio: "Madhouse"})
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{"title": "A", "studio": "Madhouse"},
		{"title": "B", "studio": "Madhouse"},
	}, recs)

	require.Len(t, store.calls, 1)
	assert.Equal(t, models.AnimeCollection, store.calls[0].collection)
	match := stageBody(t, store.calls[0].pipeline, "$match").(bson.D)
	assert.Equal(t, "S1", field(match, "studio_id"))
	assert.Equal(t, models.StatusFinishedAiring, field(match, "status"))
}

func TestEmptyTitleSelectionSkipsDatabase(t *testing.T) {
	for _, id := range []QueryID{TitleRanks, TitleDemographics} {
		t.Run(string(id), func(t *testing.T) {
			store := newFakeStore()
			r := NewRepo(store)

			recs, err := r.Run(context.Background(), id, Params{})
			require.NoError(t, err)
			assert.NotNil(t, recs)
			assert.Empty(t, recs)
			assert.Empty(t, store.calls)
		})
	}
}

func TestUserFixedTitleQueries(t *testing.T) {
	store := newFakeStore()
	r := NewRepo(store)

	_, err := r.Run(context.Background(), UserFeaturedRanks, Params{})
	require.NoError(t, err)
	_, err = r.Run(context.Background(), UserDemographicCheck, Params{})
	require.NoError(t, err)
	require.Len(t, store.calls, 2)

	ranks := stageBody(t, store.calls[0].pipeline, "$match").(bson.D)
	assert.Equal(t, bson.D{{Key: "$in", Value: FeaturedTitles}}, field(ranks, "title"))

	demo := stageBody(t, store.calls[1].pipeline, "$match").(bson.D)
	assert.Equal(t, bson.D{{Key: "$in", Value: DemographicTitles}}, field(demo, "title"))
}

func TestTitleRanksCastsAndSorts(t *testing.T) {
	p := TitleRanksPipeline([]string{"Trigun"})
	group := stageBody(t, p, "$group").(bson.D)
	assert.Equal(t,
		bson.D{{Key: "$first", Value: bson.D{{Key: "$toInt", Value: "$rank"}}}},
		field(group, ColRank))
	assert.Equal(t, bson.D{{Key: ColRank, Value: 1}}, stageBody(t, p, "$sort"))
}

func TestTitleDemographicsFallsBackToLabel(t *testing.T) {
	p := TitleDemographicsPipeline([]string{"Heybot!"}, ColType)

	unwind := stageBody(t, p, "$unwind").(bson.D)
	assert.Equal(t, true, field(unwind, "preserveNullAndEmptyArrays"))

	project := stageBody(t, p, "$project").(bson.D)
	assert.Equal(t,
		bson.D{{Key: "$ifNull", Value: bson.A{"$demo_de", models.NoDemographicDataLabel}}},
		field(project, ColType))
}

func TestTopStudiosLimitsBeforeJoin(t *testing.T) {
	p := TopStudiosPipeline()
	assert.Equal(t,
		[]string{"$group", "$sort", "$limit", "$lookup", "$unwind", "$group", "$sort", "$project"},
		stageNames(p))
	assert.Equal(t, TopStudiosLimit, stageBody(t, p, "$limit"))
	assert.Equal(t, bson.D{{Key: "averageRank", Value: 1}}, p[len(p)-2][0].Value)
}

func TestDemographicPopularitySortsDescending(t *testing.T) {
	p := DemographicPopularityPipeline()
	assert.Equal(t, bson.D{{Key: "averagePopularity", Value: -1}}, stageBody(t, p, "$sort"))

	project := stageBody(t, p, "$project").(bson.D)
	assert.Equal(t, bson.D{{Key: "$round", Value: bson.A{"$averagePopularity", 2}}}, field(project, ColAveragePopularity))
}

func TestSeasonPopularitySortsByYearThenSeason(t *testing.T) {
	p := SeasonPopularityPipeline()
	assert.Equal(t, bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.season", Value: 1}}, stageBody(t, p, "$sort"))
}

func TestGenreEngagementFormatsPercentages(t *testing.T) {
	store := newFakeStore()
	store.results[models.AnimeCollection] = []bson.M{
		{ColGenreName: "Action", ColCompleted: 45.67, ColOnHold: 3.1, ColDropped: int32(2)},
		{ColGenreName: "Empty", ColCompleted: nil, ColOnHold: nil, ColDropped: nil},
	}
	r := NewRepo(store)

	recs, err := r.Run(context.Background(), GenreEngagement, Params{})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "45.67%", recs[0][ColCompleted])
	assert.Equal(t, "3.10%", recs[0][ColOnHold])
	assert.Equal(t, "2.00%", recs[0][ColDropped])
	assert.Nil(t, recs[1][ColCompleted])
}

func TestGenreEngagementGuardsZeroScoringUsers(t *testing.T) {
	ratio := perUserRatio("statistics_completed")
	cond := field(ratio, "$cond").(bson.A)
	require.Len(t, cond, 3)
	assert.Equal(t, bson.D{{Key: "$gt", Value: bson.A{"$ranking_data.statistics_num_scoring_users", 0}}}, cond[0])
	assert.Nil(t, cond[2])
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "45.67%", FormatPercent(0.4567*100))
	assert.Equal(t, "0.00%", FormatPercent(0))
	assert.Equal(t, "100.00%", FormatPercent(100))
}

func TestAggregateErrorPropagates(t *testing.T) {
	store := newFakeStore()
	store.aggErr = errors.New("boom")
	r := NewRepo(store)

	_, err := r.Run(context.Background(), TopStudios, Params{})
	assert.EqualError(t, err, "boom")
}

func TestOptionsAreSortedStrings(t *testing.T) {
	store := newFakeStore()
	store.distinct = map[string][]any{
		models.GenreCollection + ".genres_de":  {"Drama", "Action", nil},
		models.StudioCollection + ".studio_de": {"Madhouse", "Bones"},
		models.RankingCollection + ".title":    {"Trigun", "", "Gleipnir"},
	}
	r := NewRepo(store)

	opts, err := r.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Action", "Drama"}, opts.Genres)
	assert.Equal(t, []string{"Bones", "Madhouse"}, opts.Studios)
	assert.Equal(t, []string{"Gleipnir", "Trigun"}, opts.Titles)
}

func TestForPanel(t *testing.T) {
	assert.Len(t, ForPanel(PanelUser, ""), 4)
	assert.Len(t, ForPanel(PanelAnalyst, ""), 8)
	assert.Len(t, ForPanel(PanelAnalyst, GroupUserView), 4)
	assert.Len(t, ForPanel(PanelAnalyst, GroupAnalystView), 4)

	d, ok := Lookup(TopStudios)
	require.True(t, ok)
	assert.Equal(t, []string{ColStudioName, ColAverageRank}, d.Columns)
}
