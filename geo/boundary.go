package geo

// BoundaryChecker decides whether a point lies inside the service region.
type BoundaryChecker interface {
	Contains(p Point) bool
}

// BBox is an axis-aligned longitude/latitude rectangle.
type BBox struct {
	North float64
	South float64
	East  float64
	West  float64
}

// TorontoBounds approximates the City of Toronto limits.
var TorontoBounds = BBox{
	North: 43.8554579,
	South: 43.5810245,
	East:  -79.1157305,
	West:  -79.639219,
}

func (b BBox) Contains(p Point) bool {
	return p.Lat >= b.South && p.Lat <= b.North && p.Lng >= b.West && p.Lng <= b.East
}

// Polygon follows GeoJSON ring order: the first ring is the shell, the rest are holes.
type Polygon struct {
	Rings [][]Point
	bbox  BBox
}

func NewPolygon(rings ...[]Point) Polygon {
	b := BBox{North: -90, South: 90, East: -180, West: 180}
	for _, r := range rings {
		for _, pt := range r {
			if pt.Lng < b.West {
				b.West = pt.Lng
			}
			if pt.Lng > b.East {
				b.East = pt.Lng
			}
			if pt.Lat < b.South {
				b.South = pt.Lat
			}
			if pt.Lat > b.North {
				b.North = pt.Lat
			}
		}
	}
	return Polygon{Rings: rings, bbox: b}
}

func (poly Polygon) Contains(p Point) bool {
	if len(poly.Rings) == 0 || !poly.bbox.Contains(p) {
		return false
	}
	if !inRing(p, poly.Rings[0]) {
		return false
	}
	for _, hole := range poly.Rings[1:] {
		if inRing(p, hole) {
			return false
		}
	}
	return true
}

// Region is a union of shapes.
type Region []BoundaryChecker

func (r Region) Contains(p Point) bool {
	for _, shape := range r {
		if shape.Contains(p) {
			return true
		}
	}
	return false
}

// inRing is the even-odd ray casting test.
func inRing(p Point, ring []Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].Lng, ring[i].Lat
		xj, yj := ring[j].Lng, ring[j].Lat
		if (yi > p.Lat) != (yj > p.Lat) && p.Lng < (xj-xi)*(p.Lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}
