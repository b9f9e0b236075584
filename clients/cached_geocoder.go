package clients

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"civicreport-be/metrics"
	"civicreport-be/models"
	"civicreport-be/services"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	reverseKeyPrefix  = "geocode:rev:"
	forwardKeyPrefix  = "geocode:fwd:"
	cacheKeyPrecision = 9
)

// CachedGeocoder puts a Redis read-through cache in front of another Geocoder. Reverse
// lookups are keyed by a precision-9 geohash, roughly a 5 m cell. Only positive results are
// cached and cache failures fall through to the wrapped geocoder.
type CachedGeocoder struct {
	next services.Geocoder
	rdb  redis.Cmdable
	ttl  time.Duration
	log  *logrus.Entry
}

func NewCachedGeocoder(next services.Geocoder, rdb redis.Cmdable, ttl time.Duration, log *logrus.Entry) *CachedGeocoder {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedGeocoder{next: next, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, point models.GeoPoint) (*models.Place, error) {
	key := reverseKeyPrefix + geohash.EncodeWithPrecision(point.Lat(), point.Lng(), cacheKeyPrecision)
	return c.cached(ctx, key, func() (*models.Place, error) {
		return c.next.ReverseGeocode(ctx, point)
	})
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (*models.Place, error) {
	key := forwardKeyPrefix + strings.ToLower(strings.Join(strings.Fields(address), " "))
	return c.cached(ctx, key, func() (*models.Place, error) {
		return c.next.Geocode(ctx, address)
	})
}

func (c *CachedGeocoder) cached(ctx context.Context, key string, load func() (*models.Place, error)) (*models.Place, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var place models.Place
		if jerr := json.Unmarshal(raw, &place); jerr == nil {
			metrics.GeocodeCacheTotal.WithLabelValues("hit").Inc()
			return &place, nil
		}
		metrics.GeocodeCacheTotal.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.GeocodeCacheTotal.WithLabelValues("miss").Inc()
	default:
		metrics.GeocodeCacheTotal.WithLabelValues("error").Inc()
		c.log.WithError(err).Warn("geocode cache read failed")
	}

	place, err := load()
	if err != nil || place == nil {
		return place, err
	}
	if buf, jerr := json.Marshal(place); jerr == nil {
		if serr := c.rdb.Set(ctx, key, buf, c.ttl).Err(); serr != nil {
			c.log.WithError(serr).Warn("geocode cache write failed")
		}
	}
	return place, nil
}
