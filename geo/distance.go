// Package geo holds the spherical geometry used for report proximity: great-circle distance,
// geohash bucketing, a radius index and service-region checks.
package geo

import "math"

// EarthRadiusMeters is the IUGG mean Earth radius.
const EarthRadiusMeters = 6371008.8

// Point is a WGS84 position in degrees.
type Point struct {
	Lng float64
	Lat float64
}

// Distance returns the haversine great-circle distance between a and b in meters.
func Distance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	if h > 1 {
		h = 1
	}
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// boundingDegrees returns the half-height and half-width in degrees of the box enclosing the
// spherical cap of radius meters around p. ok is false when the cap reaches a pole.
func boundingDegrees(p Point, meters float64) (dLat, dLng float64, ok bool) {
	ang := meters / EarthRadiusMeters
	dLat = ang * 180 / math.Pi
	if p.Lat+dLat >= 90 || p.Lat-dLat <= -90 {
		return 0, 0, false
	}
	s := math.Sin(ang) / math.Cos(p.Lat*math.Pi/180)
	if s >= 1 {
		return 0, 0, false
	}
	dLng = math.Asin(s) * 180 / math.Pi
	return dLat, dLng, true
}
