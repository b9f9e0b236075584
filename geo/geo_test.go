package geo

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	t.Run("one degree of latitude", func(t *testing.T) {
		d := Distance(Point{Lng: 0, Lat: 0}, Point{Lng: 0, Lat: 1})
		assert.InDelta(t, 111195.08, d, 0.5)
	})

	t.Run("same point", func(t *testing.T) {
		p := Point{Lng: -79.38, Lat: 43.65}
		assert.Zero(t, Distance(p, p))
	})

	t.Run("near-identical submissions are millimetres apart", func(t *testing.T) {
		d := Distance(Point{Lng: -79.38, Lat: 43.65}, Point{Lng: -79.38000001, Lat: 43.65000001})
		assert.Less(t, d, 0.01)
	})

	t.Run("symmetric across the antimeridian", func(t *testing.T) {
		a := Point{Lng: 179.99995, Lat: 0}
		b := Point{Lng: -179.99995, Lat: 0}
		assert.InDelta(t, 11.1, Distance(a, b), 0.1)
		assert.Equal(t, Distance(a, b), Distance(b, a))
	})
}

func TestEncode(t *testing.T) {
	// Reference value from the geohash Wikipedia article.
	assert.Equal(t, "ezs42", Encode(Point{Lng: -5.6, Lat: 42.6}, 5))
	assert.Len(t, Encode(Point{Lng: -79.38, Lat: 43.65}, MaxPrecision), MaxPrecision)
}

func TestCoveringCells(t *testing.T) {
	cells := coveringCells(Point{Lng: -79.38, Lat: 43.65}, 6)
	assert.Len(t, cells, 9)
	assert.Contains(t, cells, Encode(Point{Lng: -79.38, Lat: 43.65}, 6))

	h, w := CellSize(6)
	for _, dy := range []float64{-h, 0, h} {
		for _, dx := range []float64{-w, 0, w} {
			assert.Contains(t, cells, Encode(Point{Lng: -79.38 + dx, Lat: 43.65 + dy}, 6))
		}
	}

	edge := coveringCells(Point{Lng: 179.9999, Lat: 89.9999}, 3)
	assert.Len(t, edge, 4, "no neighbours past the pole or the antimeridian")
}

func TestCellSize(t *testing.T) {
	h, w := CellSize(1)
	assert.Equal(t, 45.0, h)
	assert.Equal(t, 45.0, w)

	h, w = CellSize(2)
	assert.Equal(t, 5.625, h)
	assert.Equal(t, 11.25, w)
}

func TestIndexWithinOrdersByDistance(t *testing.T) {
	idx := NewIndex()
	origin := Point{Lng: -79.38, Lat: 43.65}
	idx.Put(Entry{ID: "far", Tag: "human", Point: Point{Lng: -79.37, Lat: 43.65}})
	idx.Put(Entry{ID: "near", Tag: "human", Point: Point{Lng: -79.3801, Lat: 43.65}})
	idx.Put(Entry{ID: "mid", Tag: "cleanliness", Point: Point{Lng: -79.381, Lat: 43.65}})

	hits := idx.Within(origin, 2000, nil)
	require.Len(t, hits, 3)
	assert.Equal(t, []string{"near", "mid", "far"}, ids(hits))
	assert.True(t, sort.SliceIsSorted(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance }))

	hits = idx.Within(origin, 100, nil)
	assert.Equal(t, []string{"near", "mid"}, ids(hits))
}

func TestIndexNearestWithinFilter(t *testing.T) {
	idx := NewIndex()
	origin := Point{Lng: -79.38, Lat: 43.65}
	idx.Put(Entry{ID: "a", Tag: "cleanliness", Point: Point{Lng: -79.38000001, Lat: 43.65000001}})
	idx.Put(Entry{ID: "b", Tag: "infrastructure", Point: Point{Lng: -79.38002, Lat: 43.65}})

	sameType := func(e Entry) bool { return e.Tag == "infrastructure" }

	hit, ok := idx.NearestWithin(origin, 5, sameType)
	require.True(t, ok)
	assert.Equal(t, "b", hit.ID)

	_, ok = idx.NearestWithin(origin, 1, sameType)
	assert.False(t, ok)
}

func TestIndexPutReplacesAndRemove(t *testing.T) {
	idx := NewIndex()
	idx.Put(Entry{ID: "a", Point: Point{Lng: 10, Lat: 10}})
	idx.Put(Entry{ID: "a", Point: Point{Lng: -10, Lat: -10}})
	assert.Equal(t, 1, idx.Len())

	assert.Empty(t, idx.Within(Point{Lng: 10, Lat: 10}, 1000, nil))
	assert.Len(t, idx.Within(Point{Lng: -10, Lat: -10}, 1000, nil), 1)

	idx.Remove("a")
	idx.Remove("missing")
	assert.Zero(t, idx.Len())
	assert.Empty(t, idx.Within(Point{Lng: -10, Lat: -10}, 1000, nil))
}

func TestIndexAcrossAntimeridianAndPole(t *testing.T) {
	idx := NewIndex()
	idx.Put(Entry{ID: "east", Point: Point{Lng: 179.99995, Lat: 0}})
	idx.Put(Entry{ID: "pole", Point: Point{Lng: 12, Lat: 89.99999}})

	hits := idx.Within(Point{Lng: -179.99995, Lat: 0}, 20, nil)
	assert.Equal(t, []string{"east"}, ids(hits))

	hits = idx.Within(Point{Lng: -168, Lat: 89.99999}, 50, nil)
	assert.Equal(t, []string{"pole"}, ids(hits))
}

func TestIndexMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	idx := NewIndex()
	var all []Entry
	for i := 0; i < 600; i++ {
		e := Entry{
			ID:    fmt.Sprintf("r%03d", i),
			Point: Point{Lng: -79.5 + rng.Float64()*0.3, Lat: 43.6 + rng.Float64()*0.2},
		}
		all = append(all, e)
		idx.Put(e)
	}

	for _, radius := range []float64{5, 150, 800, 5000, 60000} {
		for q := 0; q < 25; q++ {
			center := Point{Lng: -79.5 + rng.Float64()*0.3, Lat: 43.6 + rng.Float64()*0.2}
			want := []string{}
			for _, e := range all {
				if Distance(center, e.Point) <= radius {
					want = append(want, e.ID)
				}
			}
			got := ids(idx.Within(center, radius, nil))
			sort.Strings(got)
			sort.Strings(want)
			assert.Equal(t, want, got, "radius %v center %+v", radius, center)
		}
	}
}

func TestBoundaries(t *testing.T) {
	assert.True(t, TorontoBounds.Contains(Point{Lng: -79.38, Lat: 43.65}))
	assert.False(t, TorontoBounds.Contains(Point{Lng: -73.57, Lat: 45.50}))

	square := NewPolygon(
		[]Point{{Lng: 0, Lat: 0}, {Lng: 10, Lat: 0}, {Lng: 10, Lat: 10}, {Lng: 0, Lat: 10}, {Lng: 0, Lat: 0}},
		[]Point{{Lng: 4, Lat: 4}, {Lng: 6, Lat: 4}, {Lng: 6, Lat: 6}, {Lng: 4, Lat: 6}, {Lng: 4, Lat: 4}},
	)
	assert.True(t, square.Contains(Point{Lng: 2, Lat: 2}))
	assert.False(t, square.Contains(Point{Lng: 5, Lat: 5}), "inside the hole")
	assert.False(t, square.Contains(Point{Lng: 11, Lat: 5}))

	region := Region{square, TorontoBounds}
	assert.True(t, region.Contains(Point{Lng: -79.38, Lat: 43.65}))
	assert.True(t, region.Contains(Point{Lng: 8, Lat: 8}))
	assert.False(t, region.Contains(Point{Lng: 50, Lat: 50}))
}

func TestParseRegion(t *testing.T) {
	fc := `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"name": "ward 1"}, "geometry": {"type": "Polygon", "coordinates": [
				[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]],
				[[4, 4], [6, 4], [6, 6], [4, 6], [4, 4]]
			]}},
			{"type": "Feature", "properties": {}, "geometry": {"type": "MultiPolygon", "coordinates": [
				[[[20, 20], [21, 20], [21, 21], [20, 21], [20, 20]]],
				[[[30, 30], [31, 30], [31, 31], [30, 31], [30, 30]]]
			]}},
			{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [50, 50]}}
		]
	}`
	region, err := ParseRegion([]byte(fc))
	require.NoError(t, err)
	assert.Len(t, region, 3)
	assert.True(t, region.Contains(Point{Lng: 2, Lat: 2}))
	assert.False(t, region.Contains(Point{Lng: 5, Lat: 5}), "inside the hole")
	assert.True(t, region.Contains(Point{Lng: 30.5, Lat: 30.5}))
	assert.False(t, region.Contains(Point{Lng: 50, Lat: 50}))

	region, err = ParseRegion([]byte(`{"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 1], [0, 0]]]}`))
	require.NoError(t, err)
	assert.True(t, region.Contains(Point{Lng: 0.5, Lat: 0.5}))

	_, err = ParseRegion([]byte(`{"type": "Point", "coordinates": [1, 1]}`))
	assert.Error(t, err)

	_, err = ParseRegion([]byte(`not json`))
	assert.Error(t, err)
}

func TestLoadRegion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "area.geojson")
	require.NoError(t, os.WriteFile(path, []byte(`{"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [[[-79.64, 43.58], [-79.11, 43.58], [-79.11, 43.86], [-79.64, 43.86], [-79.64, 43.58]]]}}`), 0o600))

	region, err := LoadRegion(path)
	require.NoError(t, err)
	assert.True(t, region.Contains(Point{Lng: -79.38, Lat: 43.65}))
	assert.False(t, region.Contains(Point{Lng: -73.57, Lat: 45.50}))

	_, err = LoadRegion(filepath.Join(t.TempDir(), "missing.geojson"))
	assert.Error(t, err)
}

func ids(hits []Hit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.ID)
	}
	return out
}
