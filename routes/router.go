package routes

import (
	"net/http"
	"time"

	"civicreport-be/config"
	"civicreport-be/controllers"
	"civicreport-be/geo"
	"civicreport-be/metrics"
	"civicreport-be/middlewares"
	"civicreport-be/services"
	"civicreport-be/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Deps is everything the HTTP layer needs. Redis, Geocoder and Boundary may be nil.
type Deps struct {
	Config   *config.Config
	Log      *logrus.Entry
	Reports  *services.ReportService
	Users    store.UserStore
	Geocoder services.Geocoder
	Boundary geo.BoundaryChecker
	Redis    redis.Cmdable
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(cors.New(corsConfig(d.Config.CORSOrigins)))

	auth := middlewares.AuthMiddleware(d.Config.JWTSecret, d.Log)
	rateLimit := middlewares.ReportRateLimiter(d.Redis, d.Config.ReportLimitQueue, d.Config.ReportDailyLimit, d.Log)

	AuthRoutes(r, controllers.NewAuthController(d.Users, d.Config, d.Log), auth)
	ReportRoutes(r, controllers.NewReportController(d.Reports, d.Log), auth, rateLimit)
	MapsRoutes(r, controllers.NewMapsController(d.Geocoder, d.Boundary, d.Log))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middlewares.RequestIDHeader},
		ExposeHeaders: []string{middlewares.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	// Cookies only flow to explicitly listed origins.
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
