package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animehub/pkg/models"
)

func TestReadDocsAnime(t *testing.T) {
	in := "mal_id,title,studio_id,genres_id,status,start_season_year,start_season_season\n" +
		"1,Cowboy Bebop,14,1,finished_airing,1998,spring\n" +
		",missing id,14,1,finished_airing,1998,spring\n" +
		"19.0,Monster,11,8,finished_airing,2004,spring\n"

	docs, err := readDocs(strings.NewReader(in), parseAnime)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	first := docs[0].(models.Anime)
	assert.Equal(t, int64(1), first.MalID)
	assert.Equal(t, "14", first.StudioID)
	assert.Equal(t, int64(1998), first.StartSeason.Year)
	assert.Equal(t, "spring", first.StartSeason.Season)
	assert.Equal(t, int64(19), docs[1].(models.Anime).MalID)
}

func TestReadDocsRanking(t *testing.T) {
	in := "MAL_ID,Title,Rank,Popularity,Genres_ID,Statistics_Completed,Statistics_Num_Scoring_Users\n" +
		"5114,Fullmetal Alchemist: Brotherhood,1,3,\"1,2,8\",1500000,2000000\n" +
		"30,Unranked,,12000.5,4,,\n"

	docs, err := readDocs(strings.NewReader(in), parseRanking)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	fma := docs[0].(models.RankingEntry)
	assert.Equal(t, int64(1), fma.Rank)
	assert.Equal(t, "1,2,8", fma.GenresID)
	assert.InDelta(t, 1500000, fma.StatsCompleted, 0.001)

	other := docs[1].(models.RankingEntry)
	assert.Nil(t, other.Rank)
	assert.InDelta(t, 12000.5, other.Popularity, 0.001)
	assert.Zero(t, other.StatsScoringUsers)
}

func TestReadDocsBadNumber(t *testing.T) {
	in := "mal_id,title,popularity\n7,Trigun,lots\n"

	_, err := readDocs(strings.NewReader(in), parseRanking)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "popularity")
}

func TestReadDocsLookup(t *testing.T) {
	in := "genres_id,genres_de\n1,Action\n2,\n3,Comedy\n"

	docs, err := readDocs(strings.NewReader(in), parseGenre)
	require.NoError(t, err)
	assert.Equal(t, []any{
		models.Genre{ID: "1", Label: "Action"},
		models.Genre{ID: "3", Label: "Comedy"},
	}, docs)
}

func TestReadDocsEmptyFile(t *testing.T) {
	docs, err := readDocs(strings.NewReader(""), parseStudio)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestNumberOrText(t *testing.T) {
	assert.Nil(t, numberOrText(""))
	assert.Equal(t, int64(12), numberOrText("12"))
	assert.Equal(t, 12.5, numberOrText("12.5"))
	assert.Equal(t, "N/A", numberOrText("N/A"))
}
