package controllers

import (
	"net/http"
	"strings"

	"civicreport-be/apperrors"
	"civicreport-be/geo"
	"civicreport-be/models"
	"civicreport-be/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type MapsController struct {
	geocoder services.Geocoder
	boundary geo.BoundaryChecker
	log      *logrus.Entry
}

// NewMapsController falls back to the Toronto bounding box when boundary is nil.
func NewMapsController(geocoder services.Geocoder, boundary geo.BoundaryChecker, log *logrus.Entry) *MapsController {
	if boundary == nil {
		boundary = geo.TorontoBounds
	}
	return &MapsController{geocoder: geocoder, boundary: boundary, log: log}
}

func (mc *MapsController) point(c *gin.Context) (models.GeoPoint, error) {
	lat, err := queryFloat(c, "lat")
	if err != nil {
		return models.GeoPoint{}, err
	}
	lng, err := queryFloat(c, "lng")
	if err != nil {
		return models.GeoPoint{}, err
	}
	p := models.NewPoint(lng, lat)
	if err := p.Validate(); err != nil {
		return models.GeoPoint{}, apperrors.Validation(err.Error(), err)
	}
	return p, nil
}

// Geocode handles GET /api/maps/geocode?lat=&lng= and returns the address at a point.
func (mc *MapsController) Geocode(c *gin.Context) {
	p, err := mc.point(c)
	if err != nil {
		respondError(c, mc.log, err)
		return
	}
	if mc.geocoder == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Geocoding is not configured"})
		return
	}
	place, err := mc.geocoder.ReverseGeocode(c.Request.Context(), p)
	if err != nil {
		respondError(c, mc.log, apperrors.Internal("Geocoding failed", err))
		return
	}
	if place == nil {
		respondError(c, mc.log, apperrors.NotFound("Address", nil))
		return
	}
	c.JSON(http.StatusOK, place)
}

// ReverseGeocode handles GET /api/maps/reverse-geocode?address= and returns the point for
// an address.
func (mc *MapsController) ReverseGeocode(c *gin.Context) {
	address := strings.TrimSpace(c.Query("address"))
	if address == "" {
		respondError(c, mc.log, apperrors.Validation("address is required", nil))
		return
	}
	if mc.geocoder == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Geocoding is not configured"})
		return
	}
	place, err := mc.geocoder.Geocode(c.Request.Context(), address)
	if err != nil {
		respondError(c, mc.log, apperrors.Internal("Geocoding failed", err))
		return
	}
	if place == nil {
		respondError(c, mc.log, apperrors.NotFound("Location", nil))
		return
	}
	c.JSON(http.StatusOK, place)
}

func (mc *MapsController) CheckBoundaries(c *gin.Context) {
	p, err := mc.point(c)
	if err != nil {
		respondError(c, mc.log, err)
		return
	}
	in := mc.boundary.Contains(geo.Point{Lng: p.Lng(), Lat: p.Lat()})
	c.JSON(http.StatusOK, gin.H{"isInToronto": in})
}
