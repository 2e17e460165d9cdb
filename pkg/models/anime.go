package models

// Collection names in the anime database.
const (
	AnimeCollection       = "anime_table"
	RankingCollection     = "anime_ranking_table"
	GenreCollection       = "genres_l"
	StudioCollection      = "studios_l"
	DemographicCollection = "demo_l"
)

const (
	StatusFinishedAiring   = "finished_airing"
	NoDemographicDataLabel = "No demographic data"
)

type StartSeason struct {
	Year   any    `bson:"year" json:"year"`
	Season string `bson:"season" json:"season"`
}

// Anime is one document of anime_table.
type Anime struct {
	MalID       int64       `bson:"mal_id" json:"mal_id"`
	Title       string      `bson:"title" json:"title"`
	StudioID    string      `bson:"studio_id,omitempty" json:"studio_id,omitempty"`
	GenresID    string      `bson:"genres_id,omitempty" json:"genres_id,omitempty"`
	DemoID      string      `bson:"demo_id,omitempty" json:"demo_id,omitempty"`
	Status      string      `bson:"status,omitempty" json:"status,omitempty"`
	StartSeason StartSeason `bson:"start_season" json:"start_season"`
}

// RankingEntry is a snapshot row of anime_ranking_table.
// GenresID is a comma-joined list of genre ids ("1,4,22").
type RankingEntry struct {
	MalID             int64   `bson:"mal_id" json:"mal_id"`
	Title             string  `bson:"title" json:"title"`
	Rank              any     `bson:"rank" json:"rank"`
	Popularity        float64 `bson:"popularity" json:"popularity"`
	StudioID          string  `bson:"studio_id,omitempty" json:"studio_id,omitempty"`
	DemoID            string  `bson:"demo_id,omitempty" json:"demo_id,omitempty"`
	GenresID          string  `bson:"genres_id,omitempty" json:"genres_id,omitempty"`
	StatsCompleted    float64 `bson:"statistics_completed" json:"statistics_completed"`
	StatsOnHold       float64 `bson:"statistics_on_hold" json:"statistics_on_hold"`
	StatsDropped      float64 `bson:"statistics_dropped" json:"statistics_dropped"`
	StatsScoringUsers float64 `bson:"statistics_num_scoring_users" json:"statistics_num_scoring_users"`
}
