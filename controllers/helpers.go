package controllers

import (
	"math"
	"net/http"
	"strconv"

	"civicreport-be/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError writes err as {"error": message} with the status its AppError carries.
// Internal failures are logged and reported with a generic message.
func respondError(c *gin.Context, log *logrus.Entry, err error) {
	appErr := apperrors.From(err)
	if appErr.Status >= http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.JSON(appErr.Status, gin.H{"error": appErr.Message})
}

func currentUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

func queryFloat(c *gin.Context, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, apperrors.Validation(key+" is required", nil)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.Validation(key+" must be a number", err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperrors.Validation(key+" must be a finite number", nil)
	}
	return v, nil
}
