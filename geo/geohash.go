package geo

import (
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"
)

// MaxPrecision is the finest geohash level the index buckets on (cells of roughly 150 m).
const MaxPrecision = 7

// cellSizes holds the height and width in degrees of a cell at each precision.
var cellSizes = func() (sizes [MaxPrecision + 1][2]float64) {
	for p := 1; p <= MaxPrecision; p++ {
		box := geohash.Decode(strings.Repeat("0", p))
		sw, ne := box.SouthWest(), box.NorthEast()
		sizes[p] = [2]float64{ne.Lat() - sw.Lat(), ne.Lng() - sw.Lng()}
	}
	return sizes
}()

// Encode returns the base32 geohash of p at the given precision.
func Encode(p Point, precision int) string {
	return geohash.EncodeWithPrecision(p.Lat, p.Lng, precision)
}

// CellSize returns the height and width in degrees of a geohash cell at the given precision.
func CellSize(precision int) (lat, lng float64) {
	if precision >= 1 && precision <= MaxPrecision {
		return cellSizes[precision][0], cellSizes[precision][1]
	}
	box := geohash.Decode(strings.Repeat("0", precision))
	sw, ne := box.SouthWest(), box.NorthEast()
	return ne.Lat() - sw.Lat(), ne.Lng() - sw.Lng()
}

// coveringCells returns p's cell at precision plus its adjacent cells. Neighbours beyond the
// poles or the antimeridian are left out; queryLevel never picks a level whose search box
// reaches past them.
func coveringCells(p Point, precision int) []string {
	center := Encode(p, precision)
	box := geohash.Decode(center)
	sw, ne := box.SouthWest(), box.NorthEast()

	rows := []string{center}
	if ne.Lat() < 90 {
		rows = append(rows, geohash.CalculateAdjacent(center, "top"))
	}
	if sw.Lat() > -90 {
		rows = append(rows, geohash.CalculateAdjacent(center, "bottom"))
	}

	cells := make([]string, 0, 9)
	for _, row := range rows {
		cells = append(cells, row)
		if ne.Lng() < 180 {
			cells = append(cells, geohash.CalculateAdjacent(row, "right"))
		}
		if sw.Lng() > -180 {
			cells = append(cells, geohash.CalculateAdjacent(row, "left"))
		}
	}
	return cells
}
