package catalog

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"animehub/pkg/models"
)

// PopularityFloor is the exclusive lower bound of the popular-genre queries.
const PopularityFloor = 500

func stage(name string, body any) bson.D {
	return bson.D{{Key: name, Value: body}}
}

func lookup(from, localField, foreignField, as string) bson.D {
	return stage("$lookup", bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: foreignField},
		{Key: "as", Value: as},
	})
}

func round2(expr any) bson.D {
	return bson.D{{Key: "$round", Value: bson.A{expr, 2}}}
}

// PopularGenrePipeline splits the ranking row's comma-joined genres_id and
// keeps rows carrying genreID with popularity above PopularityFloor. The
// grouped form collapses duplicate titles to their max popularity and sorts
// by popularity descending.
func PopularGenrePipeline(genreID, genreLabel string, grouped bool) mongo.Pipeline {
	p := mongo.Pipeline{
		stage("$addFields", bson.D{
			{Key: "genres_id_array", Value: bson.D{{Key: "$split", Value: bson.A{"$genres_id", ","}}}},
		}),
		stage("$match", bson.D{
			{Key: "genres_id_array", Value: genreID},
			{Key: "popularity", Value: bson.D{{Key: "$gt", Value: PopularityFloor}}},
		}),
	}
	if !grouped {
		return append(p, stage("$project", bson.D{
			{Key: "_id", Value: 0},
			{Key: ColTitle, Value: 1},
			{Key: ColPopularity, Value: 1},
			{Key: ColGenre, Value: bson.D{{Key: "$literal", Value: genreLabel}}},
		}))
	}
	return append(p,
		stage("$group", bson.D{
			{Key: "_id", Value: "$title"},
			{Key: ColPopularity, Value: bson.D{{Key: "$max", Value: "$popularity"}}},
		}),
		stage("$sort", bson.D{{Key: ColPopularity, Value: -1}}),
		stage("$project", bson.D{
			{Key: "_id", Value: 0},
			{Key: ColTitle, Value: "$_id"},
			{Key: ColPopularity, Value: 1},
			{Key: ColGenre, Value: bson.D{{Key: "$literal", Value: genreLabel}}},
		}),
	)
}

// StudioFinishedPipeline runs against anime_table.
func StudioFinishedPipeline(studioID any) mongo.Pipeline {
	return mongo.Pipeline{
		stage("$match", bson.D{
			{Key: "studio_id", Value: studioID},
			{Key: "status", Value: models.StatusFinishedAiring},
		}),
		lookup(models.StudioCollection, "studio_id", "studio_id", "studio_info"),
		stage("$unwind", "$studio_info"),
		stage("$group", bson.D{
			{Key: "_id", Value: "$title"},
			{Key: ColStudio, Value: bson.D{{Key: "$first", Value: "$studio_info.studio_de"}}},
		}),
		stage("$project", bson.D{
			{Key: "_id", Value: 0},
			{Key: ColTitle, Value: "$_id"},
			{Key: ColStudio, Value: 1},
		}),
	}
}

func matchTitles(titles []string) bson.D {
	return stage("$match", bson.D{{Key: "title", Value: bson.D{{Key: "$in", Value: titles}}}})
}

func TitleRanksPipeline(titles []string) mongo.Pipeline {
	return mongo.Pipeline{
		matchTitles(titles),
		stage("$group", bson.D{
			{Key: "_id", Value: "$title"},
			{Key: ColRank, Value: bson.D{{Key: "$first", Value: bson.D{{Key: "$toInt", Value: "$rank"}}}}},
			{Key: ColPopularity, Value: bson.D{{Key: "$first", Value: "$popularity"}}},
		}),
		stage("$sort", bson.D{{Key: ColRank, Value: 1}}),
		stage("$project", bson.D{
			{Key: "_id", Value: 0},
			{Key: ColTitle, Value: "$_id"},
			{Key: ColRank, Value: 1},
			{Key: ColPopularity, Value: 1},
		}),
	}
}

// TitleDemographicsPipeline left-joins demo_l; titles without a demographic
// get NoDemographicDataLabel in labelColumn.
func TitleDemographicsPipeline(titles []string, labelColumn string) mongo.Pipeline {
	return mongo.Pipeline{
		matchTitles(titles),
		lookup(models.DemographicCollection, "demo_id", "demo_id", "demo_data"),
		stage("$unwind", bson.D{
			{Key: "path", Value: "$demo_data"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}),
		stage("$group", bson.D{
			{Key: "_id", Value: "$title"},
			{Key: "demo_de", Value: bson.D{{Key: "$first", Value: "$demo_data.demo_de"}}},
		}),
		stage("$project", bson.D{
			{Key: "_id", Value: 0},
			{Key: ColTitle, Value: "$_id"},
			{Key: labelColumn, Value: bson.D{{Key: "$ifNull", Value: bson.A{"$demo_de", models.NoDemographicDataLabel}}}},
		}),
	}
}

func DemographicPopularityPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		lookup(models.DemographicCollection, "demo_id", "demo_id", "demo_data"),
		stage("$unwind", "$demo_data"),
		stage("$group", bson.D{
			{Key: "_id", Value: "$demo_data.demo_de"},
			{Key: "averagePopularity", Value: bson.D{{Key: "$avg", Value: "$popularity"}}},
		}),
		stage("$sort", bson.D{{Key: "averagePopularity", Value: -1}}),
		stage("$project", bson.D{
			{Key: "_id", Value: 0},
			{Key: ColType, Value: "$_id"},
			{Key: ColAveragePopularity, Value: round2("$averagePopularity")},
		}),
	}
}

// TopStudiosLimit caps the top-studios query.
const TopStudiosLimit = 5

func TopStudiosPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		stage("$group", bson.D{
			{Key: "_id", Value: "$studio_id"},
			{Key: "averageRank", Value: bson.D{{Key: "$avg", Value: "$rank"}}},
		}),
		stage("$sort", bson.D{{Key: "averageRank", Value: 1}}),
		stage("$limit", TopStudiosLimit),
		lookup(models.StudioCollection, "_id", "studio_id", "studio_info"),
		stage("$unwind", "$studio_info"),
		stage("$group", bson.D{
			{Key: "_id", Value: "$studio_info.studio_de"},
			{Key: "averageRank", Value: bson.D{{Key: "$first", Value: "$averageRank"}}},
		}),
		stage("$sort", bson.D{{Key: "averageRank", Value: 1}}),
		stage("$project", bson.D{
			{Key: "_id", Value: 0},
			{Key: ColStudioName, Value: "$_id"},
			{Key: ColAverageRank, Value: round2("$averageRank")},
		}),
	}
}

func SeasonPopularityPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		lookup(models.AnimeCollection, "mal_id", "mal_id", "anime_details"),
		stage("$unwind", "$anime_details"),
		stage("$group", bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "year", Value: bson.D{{Key: "$toInt", Value: "$anime_details.start_season.year"}}},
				{Key: "season", Value: "$anime_details.start_season.season"},
			}},
			{Key: "average_popularity", Value: bson.D{{Key: "$avg", Value: "$popularity"}}},
		}),
		stage("$sort", bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.season", Value: 1}}),
		stage("$project", bson.D{
			{Key: "_id", Value: 0},
			{Key: ColYear, Value: "$_id.year"},
			{Key: ColSeason, Value: "$_id.season"},
			{Key: ColAveragePopularity, Value: round2("$average_popularity")},
		}),
	}
}

// perUserRatio is field / num_scoring_users * 100, or null when the anime
// has no scoring users. $avg skips the nulls.
func perUserRatio(field string) bson.D {
	users := "$ranking_data.statistics_num_scoring_users"
	return bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$gt", Value: bson.A{users, 0}}},
		bson.D{{Key: "$multiply", Value: bson.A{
			bson.D{{Key: "$divide", Value: bson.A{"$ranking_data." + field, users}}},
			100,
		}}},
		nil,
	}}}
}

// GenreEngagementPipeline yields per-genre averages rounded to 2 decimals.
// The percent suffix is applied by the repo so every value carries exactly
// two decimals.
func GenreEngagementPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		lookup(models.GenreCollection, "genres_id", "genres_id", "genres_data"),
		stage("$unwind", "$genres_data"),
		lookup(models.RankingCollection, "mal_id", "mal_id", "ranking_data"),
		stage("$unwind", "$ranking_data"),
		stage("$group", bson.D{
			{Key: "_id", Value: "$genres_data.genres_de"},
			{Key: "completed", Value: bson.D{{Key: "$avg", Value: perUserRatio("statistics_completed")}}},
			{Key: "onHold", Value: bson.D{{Key: "$avg", Value: perUserRatio("statistics_on_hold")}}},
			{Key: "dropped", Value: bson.D{{Key: "$avg", Value: perUserRatio("statistics_dropped")}}},
		}),
		stage("$project", bson.D{
			{Key: "_id", Value: 0},
			{Key: ColGenreName, Value: "$_id"},
			{Key: ColCompleted, Value: round2("$completed")},
			{Key: ColOnHold, Value: round2("$onHold")},
			{Key: ColDropped, Value: round2("$dropped")},
		}),
	}
}
