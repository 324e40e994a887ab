package grpc

import (
	"golang.org/x/time/rate"
	"liyu1981.xyz/device-manager-service/pkg/device"
	"liyu1981.xyz/device-manager-service/pkg/limiter"
	"liyu1981.xyz/device-manager-service/pkg/registry"
)

type DeviceServer struct {
	Registry         *registry.Registry
	RateLimiterStore *limiter.RateLimiterStore
}

func (s *DeviceServer) GetLimiter(kind device.Kind, id string) *rate.Limiter {
	if s.RateLimiterStore == nil {
		return nil
	} else {
		return s.RateLimiterStore.GetLimiter(limiter.Key(kind, id))
	}
}

func (s *DeviceServer) CheckDeviceLimiter(kind device.Kind, id string) bool {
	l := s.GetLimiter(kind, id)
	if l == nil {
		return true
	}
	return l.Allow()
}

var _ DeviceServiceServer = (*DeviceServer)(nil)
