package limiter

import (
	"sync"

	"golang.org/x/time/rate"
	"liyu1981.xyz/device-manager-service/pkg/device"
)

// RateLimiterStore keeps one token bucket per device key. Keys come from Key
// so a smartwatch and a computer sharing an id are limited separately.
type RateLimiterStore struct {
	limiters     map[string]*rate.Limiter
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int
}

func NewRateLimiterStore(defaultRate rate.Limit, defaultBurst int) *RateLimiterStore {
	return &RateLimiterStore{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  defaultRate,
		defaultBurst: defaultBurst,
	}
}

func Key(kind device.Kind, id string) string {
	return kind.Tag() + "/" + id
}

func (s *RateLimiterStore) GetLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(s.defaultRate, s.defaultBurst)
		s.limiters[key] = limiter
	}
	return limiter
}

func (s *RateLimiterStore) SetLimiter(key string, deviceRate rate.Limit, deviceBurst int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limiters[key] = rate.NewLimiter(deviceRate, deviceBurst)
}

// Allow takes one token from the device's bucket.
func (s *RateLimiterStore) Allow(kind device.Kind, id string) bool {
	return s.GetLimiter(Key(kind, id)).Allow()
}

// Forget drops a device's limiter, e.g. after the device is removed.
func (s *RateLimiterStore) Forget(kind device.Kind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.limiters, Key(kind, id))
}
