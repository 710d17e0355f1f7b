// Package directory resolves doctor and service ids to display names, with a
// Redis TTL cache in front of the backend's directory endpoints.
package directory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oakpark-dental/clinic-portal/internal/clinicapi"
	"github.com/oakpark-dental/clinic-portal/pkg/logging"
)

const (
	doctorsKey  = "directory:doctors"
	servicesKey = "directory:services"
)

// Upstream is the directory slice of the clinic API.
type Upstream interface {
	ListDoctors(ctx context.Context) ([]clinicapi.Doctor, error)
	ListServices(ctx context.Context) ([]clinicapi.Service, error)
}

// Directory serves read-only doctor/service lookups. A nil redis client
// degrades to a pure passthrough; a cache miss or a redis error falls back to
// the upstream call.
type Directory struct {
	upstream Upstream
	redis    *redis.Client
	ttl      time.Duration
	logger   *logging.Logger
}

func New(upstream Upstream, redisClient *redis.Client, ttl time.Duration, logger *logging.Logger) *Directory {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Directory{
		upstream: upstream,
		redis:    redisClient,
		ttl:      ttl,
		logger:   logger.Component("directory"),
	}
}

// Doctors returns the doctor directory, cached.
func (d *Directory) Doctors(ctx context.Context) ([]clinicapi.Doctor, error) {
	var doctors []clinicapi.Doctor
	if d.readCache(ctx, doctorsKey, &doctors) {
		return doctors, nil
	}

	doctors, err := d.upstream.ListDoctors(ctx)
	if err != nil {
		return nil, err
	}
	d.writeCache(ctx, doctorsKey, doctors)
	return doctors, nil
}

// Services returns the service directory, cached.
func (d *Directory) Services(ctx context.Context) ([]clinicapi.Service, error) {
	var services []clinicapi.Service
	if d.readCache(ctx, servicesKey, &services) {
		return services, nil
	}

	services, err := d.upstream.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	d.writeCache(ctx, servicesKey, services)
	return services, nil
}

// DoctorName resolves a doctor id to its display name; ok is false for
// unknown ids.
func (d *Directory) DoctorName(ctx context.Context, id int) (string, bool) {
	doctors, err := d.Doctors(ctx)
	if err != nil {
		d.logger.Warn("doctor lookup unavailable", "error", err)
		return "", false
	}
	for _, doc := range doctors {
		if doc.ID == id {
			return doc.Name, true
		}
	}
	return "", false
}

// Invalidate drops both cache entries; the next lookup refetches.
func (d *Directory) Invalidate(ctx context.Context) {
	if d.redis == nil {
		return
	}
	if err := d.redis.Del(ctx, doctorsKey, servicesKey).Err(); err != nil {
		d.logger.Warn("cache invalidation failed", "error", err)
	}
}

func (d *Directory) readCache(ctx context.Context, key string, out any) bool {
	if d.redis == nil {
		return false
	}
	data, err := d.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			d.logger.Warn("cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		d.logger.Warn("cache entry corrupt, ignoring", "key", key, "error", err)
		return false
	}
	return true
}

func (d *Directory) writeCache(ctx context.Context, key string, value any) {
	if d.redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := d.redis.Set(ctx, key, data, d.ttl).Err(); err != nil {
		d.logger.Warn("cache write failed", "key", key, "error", err)
	}
}
