package routes

import (
	"civicreport-be/controllers"

	"github.com/gin-gonic/gin"
)

func MapsRoutes(r *gin.Engine, mc *controllers.MapsController) {
	maps := r.Group("/api/maps")
	{
		maps.GET("/geocode", mc.Geocode)
		maps.GET("/reverse-geocode", mc.ReverseGeocode)
		maps.GET("/check-boundaries", mc.CheckBoundaries)
	}
}
