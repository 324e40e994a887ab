package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"liyu1981.xyz/device-manager-service/pkg/device"
	"liyu1981.xyz/device-manager-service/pkg/limiter"
	"liyu1981.xyz/device-manager-service/pkg/notify"
	"liyu1981.xyz/device-manager-service/pkg/registry"
)

type RestfulServer struct {
	Server           *gin.Engine
	Registry         *registry.Registry
	Alert            notify.IAlert
	RateLimiterStore *limiter.RateLimiterStore
}

func (rs *RestfulServer) GetLimiter(kind device.Kind, id string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(limiter.Key(kind, id))
	}
}

func (rs *RestfulServer) CheckDeviceLimiter(kind device.Kind, id string) bool {
	l := rs.GetLimiter(kind, id)
	if l == nil {
		return true
	}
	return l.Allow()
}

func (rs *RestfulServer) SetLimiter(kind device.Kind, id string, deviceRate float64, deviceBurst int) {
	if rs.RateLimiterStore == nil {
		return
	}
	rs.RateLimiterStore.SetLimiter(limiter.Key(kind, id), rate.Limit(deviceRate), deviceBurst)
}

func (rs *RestfulServer) Setup() {
	rs.Server.GET("/healthz", rs.HealthCheck)

	api := rs.Server.Group("/api/devices")
	{
		api.GET("", rs.ListDevices)
		api.GET("/count", rs.CountDevices)
		api.POST("/:kind", rs.AddDevice)
	}

	devices := api.Group("/:kind/:id")
	{
		devices.GET("", rs.GetDevice)
		devices.DELETE("", rs.RemoveDevice)
		devices.PATCH("/name", rs.RenameDevice)
		devices.PATCH("/battery", rs.UpdateBattery)
		devices.PATCH("/os", rs.UpdateOperatingSystem)
		devices.PATCH("/ip", rs.UpdateIpAddress)
		devices.PATCH("/network", rs.UpdateNetworkName)
		devices.POST("/on", rs.TurnOn)
		devices.POST("/off", rs.TurnOff)
		devices.GET("/alerts", rs.GetAlerts)
		devices.POST("/limiter", rs.PostLimiter)
	}
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrDuplicateID),
		errors.Is(err, device.ErrAlreadyOn),
		errors.Is(err, device.ErrAlreadyOff):
		return http.StatusConflict
	case errors.Is(err, registry.ErrCapacityExceeded):
		return http.StatusInsufficientStorage
	// an unauthorized network given to a setter is a bad field, not a failed precondition
	case errors.Is(err, device.ErrInvalidField),
		errors.Is(err, device.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, device.ErrEmptyBattery),
		errors.Is(err, device.ErrMissingOperatingSystem),
		errors.Is(err, device.ErrUnauthorizedNetwork):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
