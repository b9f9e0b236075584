package controllers

import (
	"net/http"
	"strconv"

	"civicreport-be/apperrors"
	"civicreport-be/models"
	"civicreport-be/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ReportController struct {
	svc *services.ReportService
	log *logrus.Entry
}

func NewReportController(svc *services.ReportService, log *logrus.Entry) *ReportController {
	return &ReportController{svc: svc, log: log}
}

type locationInput struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates" binding:"required,len=2"`
}

type createReportInput struct {
	Type        models.ReportType `json:"type" binding:"required,oneof=infrastructure cleanliness human"`
	Description string            `json:"description" binding:"required,max=2000"`
	Location    locationInput     `json:"location" binding:"required"`
	Images      []string          `json:"images" binding:"max=10,dive,required"`
}

type updateStatusInput struct {
	Status models.ReportStatus `json:"status" binding:"required"`
}

// CreateReport handles POST /api/reports
func (rc *ReportController) CreateReport(c *gin.Context) {
	var input createReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := rc.svc.Submit(c.Request.Context(), services.SubmitInput{
		OwnerID:     currentUserID(c),
		Type:        input.Type,
		Description: input.Description,
		Location:    models.GeoPoint{Type: input.Location.Type, Coordinates: input.Location.Coordinates},
		Images:      input.Images,
	})
	if err != nil {
		respondError(c, rc.log, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (rc *ReportController) GetReports(c *gin.Context) {
	reports, err := rc.svc.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, rc.log, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// GetNearbyReports handles GET /api/reports/nearby?lat=&lng=&radius=
func (rc *ReportController) GetNearbyReports(c *gin.Context) {
	lat, err := queryFloat(c, "lat")
	if err != nil {
		respondError(c, rc.log, err)
		return
	}
	lng, err := queryFloat(c, "lng")
	if err != nil {
		respondError(c, rc.log, err)
		return
	}
	var radius float64
	if raw := c.Query("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, rc.log, apperrors.Validation("radius must be a number", err))
			return
		}
	}

	reports, err := rc.svc.ListNear(c.Request.Context(), models.NewPoint(lng, lat), radius)
	if err != nil {
		respondError(c, rc.log, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (rc *ReportController) GetMyReports(c *gin.Context) {
	reports, err := rc.svc.ListByOwner(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, rc.log, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (rc *ReportController) GetStats(c *gin.Context) {
	stats, err := rc.svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, rc.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (rc *ReportController) GetReport(c *gin.Context) {
	report, err := rc.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, rc.log, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (rc *ReportController) GetVerifications(c *gin.Context) {
	entries, err := rc.svc.Verifications(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, rc.log, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// UpdateStatus handles PUT /api/reports/:id/status. Owners set the status directly; anyone
// else counts as one verification.
func (rc *ReportController) UpdateStatus(c *gin.Context) {
	var input updateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := rc.svc.UpdateStatus(c.Request.Context(), currentUserID(c), c.Param("id"), input.Status)
	if err != nil {
		respondError(c, rc.log, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (rc *ReportController) DeleteReport(c *gin.Context) {
	if err := rc.svc.DeleteReport(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		respondError(c, rc.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Report removed"})
}
