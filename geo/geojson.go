package geo

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LoadRegion reads a service region from a GeoJSON file. See ParseRegion.
func LoadRegion(path string) (Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundary file: %w", err)
	}
	return ParseRegion(data)
}

// ParseRegion turns a GeoJSON FeatureCollection, Feature or bare geometry into a Region made
// of every Polygon and MultiPolygon it contains. Other geometry types are ignored.
func ParseRegion(data []byte) (Region, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse boundary: %w", err)
	}

	var geoms []orb.Geometry
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse boundary: %w", err)
		}
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("parse boundary: %w", err)
		}
		geoms = append(geoms, f.Geometry)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("parse boundary: %w", err)
		}
		geoms = append(geoms, g.Geometry())
	}

	var region Region
	for _, g := range geoms {
		switch shape := g.(type) {
		case orb.Polygon:
			region = append(region, fromOrb(shape))
		case orb.MultiPolygon:
			for _, poly := range shape {
				region = append(region, fromOrb(poly))
			}
		}
	}
	if len(region) == 0 {
		return nil, fmt.Errorf("boundary has no polygons")
	}
	return region, nil
}

func fromOrb(poly orb.Polygon) Polygon {
	rings := make([][]Point, 0, len(poly))
	for _, ring := range poly {
		pts := make([]Point, 0, len(ring))
		for _, pt := range ring {
			pts = append(pts, Point{Lng: pt.Lon(), Lat: pt.Lat()})
		}
		rings = append(rings, pts)
	}
	return NewPolygon(rings...)
}
