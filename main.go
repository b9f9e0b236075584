package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civicreport-be/clients"
	"civicreport-be/config"
	"civicreport-be/geo"
	"civicreport-be/logger"
	"civicreport-be/routes"
	"civicreport-be/services"
	"civicreport-be/store"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	log := logger.New("civicreport-be")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	var (
		reports       store.ReportStore
		index         store.GeoIndex
		users         store.UserStore
		verifications store.VerificationLog
		mongoClient   *mongo.Client
	)
	switch cfg.StoreDriver {
	case "memory":
		mem := store.NewMemoryReportStore()
		reports, index = mem, mem
		users = store.NewMemoryUserStore()
		verifications = store.NewMemoryVerificationLog()
		log.Warn("using in-memory storage, data will not survive a restart")
	default:
		client, db, err := config.ConnectDB(ctx, cfg)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to MongoDB")
		}
		mongoClient = client
		mongoReports := store.NewMongoReportStore(db.Collection(config.ReportsCollection))
		reports, index = mongoReports, mongoReports
		users = store.NewMongoUserStore(db.Collection(config.UsersCollection))
		verifications = store.NewMongoVerificationLog(db.Collection(config.VerificationsCollection))
		log.Info("MongoDB connection established successfully")
	}

	var rdb redis.Cmdable
	redisClient, err := config.ConnectRedis(ctx, cfg)
	switch {
	case err != nil:
		log.WithError(err).Warn("redis unavailable, rate limiting and geocode cache disabled")
	case redisClient == nil:
		log.Info("REDIS_ADDRESS not set, rate limiting and geocode cache disabled")
	default:
		rdb = redisClient
	}

	httpClient := &http.Client{Timeout: cfg.ExternalTimeout}

	var geocoder services.Geocoder
	if cfg.GoogleMapsAPIKey != "" {
		geocoder = clients.NewGoogleGeocoder(httpClient, cfg.GoogleMapsAPIKey, log.WithField("component", "geocoder"))
		if rdb != nil {
			geocoder = clients.NewCachedGeocoder(geocoder, rdb, cfg.GeocodeCacheTTL, log.WithField("component", "geocode_cache"))
		}
	} else {
		log.Warn("GOOGLE_MAPS_API_KEY not set, addresses fall back to \"Unknown location\"")
	}

	var classifier services.Classifier
	if cfg.OpenAIAPIKey != "" {
		classifier = clients.NewOpenAIClassifier(httpClient, cfg.OpenAIAPIKey, cfg.OpenAIModel, log.WithField("component", "classifier"))
	} else {
		log.Warn("OPENAI_API_KEY not set, categories fall back to \"Uncategorized\"")
	}

	opts := []services.Option{
		services.WithVerificationLog(verifications),
		services.WithExternalTimeout(cfg.ExternalTimeout),
	}
	var boundary geo.BoundaryChecker = geo.TorontoBounds
	if cfg.BoundaryFile != "" {
		region, err := geo.LoadRegion(cfg.BoundaryFile)
		if err != nil {
			log.WithError(err).Fatal("failed to load service area")
		}
		log.WithFields(logrus.Fields{"file": cfg.BoundaryFile, "polygons": len(region)}).Info("service area loaded")
		boundary = region
	}
	if cfg.BoundaryCheck {
		opts = append(opts, services.WithBoundary(boundary))
	}
	svc := services.NewReportService(reports, index, geocoder, classifier, log.WithField("component", "reports"), opts...)

	router := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Log:      log,
		Reports:  svc,
		Users:    users,
		Geocoder: geocoder,
		Boundary: boundary,
		Redis:    rdb,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if mongoClient != nil {
		_ = mongoClient.Disconnect(shutdownCtx)
	}
}
