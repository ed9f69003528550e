package tour_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/citywalk/internal/tour"
)

const generatedJSON = `[
  {
    "title": "Old town",
    "description": "Walk the lanes",
    "duration": "2h",
    "distance": 3.5,
    "difficulty": "easy",
    "theme": "history",
    "stops": [
      {"name": "Cathedral", "description": "Intro [HOOK] Look up. [STORY] Built in 1200. [SECRET] A hidden frog.", "latitude": 42.46, "longitude": -2.44, "type": "monument"},
      {"name": "Market", "description": "Tapas", "lat": 42.47, "lng": -2.45, "category": "banana"}
    ]
  },
  {"title": "Empty", "stops": []}
]`

func TestDecode_Array(t *testing.T) {
	res := tour.Decode("Logroño", generatedJSON)
	require.True(t, res.OK(), "err: %v", res.Err)
	require.Len(t, res.Tours, 1, "tours without stops are dropped")

	tr := res.Tours[0]
	assert.NotEmpty(t, tr.ID)
	assert.Equal(t, "Logroño", tr.City)
	assert.Equal(t, "2h", tr.Duration)
	require.Len(t, tr.Stops, 2)

	first := tr.Stops[0]
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, tr.Stops[1].ID)
	assert.Equal(t, tour.CategoryArchitecture, first.Category)
	assert.Equal(t, "Intro", first.Description)
	assert.Equal(t, "Look up.", first.Narrative.Hook)
	assert.Equal(t, "Built in 1200.", first.Narrative.Story)
	assert.Equal(t, "A hidden frog.", first.Narrative.Secret)

	second := tr.Stops[1]
	assert.Equal(t, tour.CategoryCulture, second.Category)
	assert.Equal(t, 42.47, second.Latitude)
	assert.Equal(t, -2.45, second.Longitude)

	assert.Greater(t, tr.DistanceKM, 0.0)
	assert.NotEqual(t, 3.5, tr.DistanceKM, "distance is recomputed from coordinates")
}

func TestDecode_FencedObject(t *testing.T) {
	raw := "```json\n{\"tours\": [{\"title\": \"T\", \"distance\": 2, \"stops\": [{\"name\": \"A\", \"hook\": \"h\", \"story\": \"s\"}]}]}\n```"
	res := tour.Decode("X", raw)
	require.True(t, res.OK(), "err: %v", res.Err)
	assert.Equal(t, "h", res.Tours[0].Stops[0].Narrative.Hook)
	assert.Equal(t, "s", res.Tours[0].Stops[0].Narrative.Story)
	assert.Equal(t, 2.0, res.Tours[0].DistanceKM, "single stop keeps the generator distance")
}

func TestDecode_PhotoSpot(t *testing.T) {
	raw := `[{"title": "T", "stops": [
	  {"name": "A", "photoSpot": {"angle": "low", "bestTime": "sunset", "caption": "c"}},
	  {"name": "B", "photoSpot": {"angle": "wide", "best_time": "dawn"}},
	  {"name": "C", "photoSpot": {}}
	]}]`
	res := tour.Decode("X", raw)
	require.True(t, res.OK(), "err: %v", res.Err)
	stops := res.Tours[0].Stops
	require.Len(t, stops, 3)

	require.NotNil(t, stops[0].PhotoSpot)
	assert.Equal(t, tour.PhotoSpot{Angle: "low", BestTime: "sunset", Caption: "c"}, *stops[0].PhotoSpot)
	require.NotNil(t, stops[1].PhotoSpot)
	assert.Equal(t, "dawn", stops[1].PhotoSpot.BestTime)
	assert.Nil(t, stops[2].PhotoSpot, "an empty hint is dropped")
}

func TestDecode_Malformed(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":        "",
		"prose":        "Sorry, I cannot help with that.",
		"broken json":  `[{"title": `,
		"empty array":  `[]`,
		"no stops":     `[{"title": "x", "stops": []}]`,
		"nameless":     `[{"title": "x", "stops": [{"name": "  "}]}]`,
		"wrong object": `{"foo": 1}`,
	} {
		t.Run(name, func(t *testing.T) {
			res := tour.Decode("X", raw)
			assert.False(t, res.OK())
			assert.ErrorIs(t, res.Err, tour.ErrMalformed)
			assert.Empty(t, res.Tours)
		})
	}
}

func TestCoerceCategory(t *testing.T) {
	assert.Equal(t, tour.CategoryFood, tour.CoerceCategory(" FOOD "))
	assert.Equal(t, tour.CategoryHistorical, tour.CoerceCategory("historia"))
	assert.Equal(t, tour.CategoryArt, tour.CoerceCategory("museum"))
	assert.Equal(t, tour.CategoryNature, tour.CoerceCategory("park"))
	assert.Equal(t, tour.CategoryPhoto, tour.CoerceCategory("viewpoint"))
	assert.Equal(t, tour.CategoryCulture, tour.CoerceCategory(""))
	assert.Equal(t, tour.CategoryCulture, tour.CoerceCategory("nightlife"))
}

func TestSplitSections_NoMarkers(t *testing.T) {
	plain, n := tour.SplitSections("  just text ")
	assert.Equal(t, "just text", plain)
	assert.Equal(t, tour.Narrative{}, n)
}
