package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportType enum
type ReportType string

const (
	Infrastructure ReportType = "infrastructure"
	Cleanliness    ReportType = "cleanliness"
	Human          ReportType = "human"
)

func (t ReportType) Valid() bool {
	switch t {
	case Infrastructure, Cleanliness, Human:
		return true
	}
	return false
}

// ReportStatus enum
type ReportStatus string

const (
	WaitingForVerification ReportStatus = "Waiting for verification"
	Verified               ReportStatus = "Verified"
	InProgress             ReportStatus = "In progress"
	Solved                 ReportStatus = "Solved"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case WaitingForVerification, Verified, InProgress, Solved:
		return true
	}
	return false
}

const (
	UnknownAddress = "Unknown location"
	Uncategorized  = "Uncategorized"
)

// GeoPoint is a GeoJSON point; Coordinates is [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

func NewPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

func (p GeoPoint) Lng() float64 { return p.Coordinates[0] }
func (p GeoPoint) Lat() float64 { return p.Coordinates[1] }

func (p GeoPoint) Validate() error {
	if p.Type != "" && p.Type != "Point" {
		return fmt.Errorf("location type must be Point")
	}
	if len(p.Coordinates) != 2 {
		return fmt.Errorf("location coordinates must be [longitude, latitude]")
	}
	if lng := p.Coordinates[0]; !finite(lng) || lng < -180 || lng > 180 {
		return fmt.Errorf("longitude %v out of range", lng)
	}
	if lat := p.Coordinates[1]; !finite(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range", lat)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Report represents a civic issue reported by a user
type Report struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID           string             `bson:"user" json:"user" validate:"required"`
	Type              ReportType         `bson:"type" json:"type"`
	Description       string             `bson:"description" json:"description" validate:"required,max=2000"`
	Location          GeoPoint           `bson:"location" json:"location"`
	Address           string             `bson:"address" json:"address" validate:"required"`
	Category          string             `bson:"category" json:"category"`
	Status            ReportStatus       `bson:"status" json:"status"`
	VerificationCount int                `bson:"verificationCount" json:"verificationCount" validate:"min=0"`
	Images            []string           `bson:"images" json:"images" validate:"max=10,dive,required"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

var validate = validator.New()

// Validate checks the fields a stored report must always carry.
func (r *Report) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("description is required")
	}
	if err := validate.Struct(r); err != nil {
		return err
	}
	if !r.Type.Valid() {
		return fmt.Errorf("invalid report type %q", r.Type)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("invalid status %q", r.Status)
	}
	return r.Location.Validate()
}

// Clone returns a copy that shares no slices with r.
func (r *Report) Clone() *Report {
	c := *r
	c.Location.Coordinates = append([]float64(nil), r.Location.Coordinates...)
	if r.Images != nil {
		c.Images = append([]string(nil), r.Images...)
	}
	return &c
}

// StatusCount is one bucket of the report statistics.
type StatusCount struct {
	Name  string `bson:"name" json:"name"`
	Value int64  `bson:"value" json:"value"`
}

type ReportStats struct {
	Total    int64         `json:"total"`
	ByStatus []StatusCount `json:"byStatus"`
	ByType   []StatusCount `json:"byType"`
}

// Place is a geocoder result.
type Place struct {
	Address  string   `json:"address"`
	Location GeoPoint `json:"location"`
}
