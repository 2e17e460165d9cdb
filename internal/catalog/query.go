package catalog

import "go.mongodb.org/mongo-driver/bson"

// Record is one flat result row: column name to scalar value.
type Record = bson.M

type Panel string

const (
	PanelUser    Panel = "user"
	PanelAnalyst Panel = "analyst"
	PanelAdmin   Panel = "admin"
)

// Input names the widget a query needs before it can run.
type Input string

const (
	InputNone   Input = ""
	InputGenre  Input = "genre"
	InputStudio Input = "studio"
	InputTitles Input = "titles"
)

type QueryID string

const (
	UserAdventurePopular QueryID = "user_adventure_popular"
	UserMadhouseFinished QueryID = "user_madhouse_finished"
	UserFeaturedRanks    QueryID = "user_featured_ranks"
	UserDemographicCheck QueryID = "user_demographic_check"

	GenrePopular          QueryID = "genre_popular"
	StudioFinished        QueryID = "studio_finished"
	TitleRanks            QueryID = "title_ranks"
	TitleDemographics     QueryID = "title_demographics"
	DemographicPopularity QueryID = "demographic_popularity"
	TopStudios            QueryID = "top_studios"
	SeasonPopularity      QueryID = "season_popularity"
	GenreEngagement       QueryID = "genre_engagement"
)

// Dropdown groups on the analyst panel.
const (
	GroupUserView    = "Choose a query from User view"
	GroupAnalystView = "Choose a query from Analyst view"
)

// Params carries the widget state for one interaction.
type Params struct {
	Genre  string   `json:"genre,omitempty"`
	Studio string   `json:"studio,omitempty"`
	Titles []string `json:"titles,omitempty"`
}

type Definition struct {
	ID      QueryID  `json:"id"`
	Panel   Panel    `json:"panel"`
	Group   string   `json:"group,omitempty"`
	Label   string   `json:"label"`
	Input   Input    `json:"input,omitempty"`
	Columns []string `json:"columns"`
}

// Column names shared across definitions.
const (
	ColTitle      = "title"
	ColPopularity = "popularity"
	ColGenre      = "genre"
	ColStudio     = "studio"
	ColRank       = "rank"
	ColDemoDe     = "demo_de"

	ColType              = "Type"
	ColAveragePopularity = "Average Popularity"
	ColStudioName        = "Studio"
	ColAverageRank       = "Average Rank"
	ColYear              = "Year"
	ColSeason            = "Season"
	ColGenreName         = "Genre"
	ColCompleted         = "Episodes Completed Per User"
	ColOnHold            = "Episodes On Hold Per User"
	ColDropped           = "Episodes Dropped Per User"
)

// definitions is ordered the way the dropdowns list them.
var definitions = []Definition{
	{
		ID: UserAdventurePopular, Panel: PanelUser,
		Label:   "Fetch popular 'Adventure' anime with a popularity over 500",
		Columns: []string{ColTitle, ColPopularity, ColGenre},
	},
	{
		ID: UserMadhouseFinished, Panel: PanelUser,
		Label:   "Retrieve all 'Madhouse' studio anime titles that have finished airing",
		Columns: []string{ColTitle, ColStudio},
	},
	{
		ID: UserFeaturedRanks, Panel: PanelUser,
		Label:   "Retrieve and display the rank and popularity of specific anime titles",
		Columns: []string{ColTitle, ColRank, ColPopularity},
	},
	{
		ID: UserDemographicCheck, Panel: PanelUser,
		Label:   "Check for demographic information availability for a specific anime",
		Columns: []string{ColTitle, ColDemoDe},
	},
	{
		ID: GenrePopular, Panel: PanelAnalyst, Group: GroupUserView, Input: InputGenre,
		Label:   "Retrieve Popular Anime of a Specific Genre",
		Columns: []string{ColTitle, ColPopularity, ColGenre},
	},
	{
		ID: StudioFinished, Panel: PanelAnalyst, Group: GroupUserView, Input: InputStudio,
		Label:   "Retrieve Finished Airing Anime Titles for a Specific Studio",
		Columns: []string{ColTitle, ColStudio},
	},
	{
		ID: TitleRanks, Panel: PanelAnalyst, Group: GroupUserView, Input: InputTitles,
		Label:   "Retrieve and Display Rank and Popularity of Specific Anime Titles",
		Columns: []string{ColTitle, ColRank, ColPopularity},
	},
	{
		ID: TitleDemographics, Panel: PanelAnalyst, Group: GroupUserView, Input: InputTitles,
		Label:   "Check Availability of Demographic Information for a Specific Anime Title",
		Columns: []string{ColTitle, ColType},
	},
	{
		ID: DemographicPopularity, Panel: PanelAnalyst, Group: GroupAnalystView,
		Label:   "Average Popularity Of Anime Within Each Type",
		Columns: []string{ColType, ColAveragePopularity},
	},
	{
		ID: TopStudios, Panel: PanelAnalyst, Group: GroupAnalystView,
		Label:   "Top 5 Studios by Average Anime Rankings",
		Columns: []string{ColStudioName, ColAverageRank},
	},
	{
		ID: SeasonPopularity, Panel: PanelAnalyst, Group: GroupAnalystView,
		Label:   "Analyze Anime Title Popularity Over Time by Season",
		Columns: []string{ColYear, ColSeason, ColAveragePopularity},
	},
	{
		ID: GenreEngagement, Panel: PanelAnalyst, Group: GroupAnalystView,
		Label:   "Calculate Average Episodes Stats by Anime Genre per User",
		Columns: []string{ColGenreName, ColCompleted, ColOnHold, ColDropped},
	},
}

var byID = func() map[QueryID]Definition {
	m := make(map[QueryID]Definition, len(definitions))
	for _, d := range definitions {
		m[d.ID] = d
	}
	return m
}()

// Lookup returns the definition registered for id.
func Lookup(id QueryID) (Definition, bool) {
	d, ok := byID[id]
	return d, ok
}

// Definitions returns every registered query in dropdown order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// ForPanel returns the queries offered on panel, optionally narrowed to one
// dropdown group ("" means all groups).
func ForPanel(panel Panel, group string) []Definition {
	var out []Definition
	for _, d := range definitions {
		if d.Panel != panel {
			continue
		}
		if group != "" && d.Group != group {
			continue
		}
		out = append(out, d)
	}
	return out
}
