package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"liyu1981.xyz/device-manager-service/pkg/common"
	"liyu1981.xyz/device-manager-service/pkg/device"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
)

type DeviceResponse struct {
	device.Record
	Line string `json:"line"`
}

func toResponse(d device.Device) DeviceResponse {
	return DeviceResponse{Record: device.ToRecord(d), Line: d.String()}
}

type ListResponse struct {
	Count    int              `json:"count"`
	Capacity int              `json:"capacity"`
	Devices  []DeviceResponse `json:"devices"`
}

type CountResponse struct {
	Count    int `json:"count"`
	Capacity int `json:"capacity"`
}

func abortWithError(c *gin.Context, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		common.GetCategoryLogger(common.LoggerNameRestfulServer, common.LoggerCategoryRpcRequest).
			Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

// deviceParams resolves :kind and :id and applies the device's rate limit.
// It writes the response and returns false when the request must stop.
func (rs *RestfulServer) deviceParams(c *gin.Context) (device.Kind, string, bool) {
	kind, err := device.ParseKind(c.Param("kind"))
	if err != nil {
		abortWithError(c, err)
		return "", "", false
	}

	id := c.Param("id")
	if !rs.CheckDeviceLimiter(kind, id) {
		c.Status(http.StatusTooManyRequests)
		return "", "", false
	}
	return kind, id, true
}

func (rs *RestfulServer) ListDevices(c *gin.Context) {
	devices := rs.Registry.GetAll()
	c.JSON(http.StatusOK, ListResponse{
		Count:    len(devices),
		Capacity: rs.Registry.Capacity(),
		Devices:  common.Mapper(devices, toResponse),
	})
}

func (rs *RestfulServer) CountDevices(c *gin.Context) {
	c.JSON(http.StatusOK, CountResponse{
		Count:    rs.Registry.Count(),
		Capacity: rs.Registry.Capacity(),
	})
}

func (rs *RestfulServer) GetDevice(c *gin.Context) {
	kind, id, ok := rs.deviceParams(c)
	if !ok {
		return
	}

	d, err := rs.Registry.Get(id, kind)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(d))
}

type AddDeviceRequest struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	IsOn              bool   `json:"is_on"`
	BatteryPercentage *int   `json:"battery_percentage"`
	OperatingSystem   string `json:"operating_system"`
	IpAddress         string `json:"ip_address"`
	NetworkName       string `json:"network_name"`
}

// Shapes only check presence; value rules belong to the device constructors.
var addDeviceSchemas = map[device.Kind]*z.StructSchema{
	device.KindSmartwatch: z.Struct(z.Shape{
		"ID":                z.String().Required(),
		"Name":              z.String().Required(),
		"IsOn":              z.Bool(),
		"BatteryPercentage": z.Ptr(z.Int()).NotNil(),
	}),
	device.KindPersonalComputer: z.Struct(z.Shape{
		"ID":              z.String().Required(),
		"Name":            z.String().Required(),
		"IsOn":            z.Bool(),
		"OperatingSystem": z.String(),
	}),
	device.KindEmbeddedDevice: z.Struct(z.Shape{
		"ID":          z.String().Required(),
		"Name":        z.String().Required(),
		"IsOn":        z.Bool(),
		"IpAddress":   z.String().Required(),
		"NetworkName": z.String().Required(),
	}),
}

func (req *AddDeviceRequest) record(kind device.Kind) device.Record {
	r := device.Record{Kind: kind, ID: req.ID, Name: req.Name, IsOn: req.IsOn}
	switch kind {
	case device.KindSmartwatch:
		r.BatteryPercentage = req.BatteryPercentage
	case device.KindPersonalComputer:
		r.OperatingSystem = &req.OperatingSystem
	case device.KindEmbeddedDevice:
		r.IpAddress = &req.IpAddress
		r.NetworkName = &req.NetworkName
	}
	return r
}

func (rs *RestfulServer) AddDevice(c *gin.Context) {
	kind, err := device.ParseKind(c.Param("kind"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	var req AddDeviceRequest
	if err := addDeviceSchemas[kind].Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	d, err := device.FromRecord(req.record(kind))
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := rs.Registry.Add(c.Request.Context(), d); err != nil {
		abortWithError(c, err)
		return
	}

	added, err := rs.Registry.Get(d.ID(), kind)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(added))
}

func (rs *RestfulServer) RemoveDevice(c *gin.Context) {
	kind, id, ok := rs.deviceParams(c)
	if !ok {
		return
	}

	if err := rs.Registry.Remove(c.Request.Context(), id, kind); err != nil {
		abortWithError(c, err)
		return
	}
	if rs.RateLimiterStore != nil {
		rs.RateLimiterStore.Forget(kind, id)
	}
	c.Status(http.StatusNoContent)
}

type RenameRequest struct {
	Name string `json:"name"`
}

var renameRequestSchema = z.Struct(z.Shape{
	"Name": z.String().Required(),
})

func (rs *RestfulServer) RenameDevice(c *gin.Context) {
	kind, id, ok := rs.deviceParams(c)
	if !ok {
		return
	}

	var req RenameRequest
	if err := renameRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rs.respondWithDevice(c, kind, id, rs.Registry.Rename(c.Request.Context(), id, kind, req.Name))
}

type BatteryRequest struct {
	BatteryPercentage *int `json:"battery_percentage"`
}

var batteryRequestSchema = z.Struct(z.Shape{
	"BatteryPercentage": z.Ptr(z.Int()).NotNil(),
})

func (rs *RestfulServer) UpdateBattery(c *gin.Context) {
	kind, id, ok := rs.deviceParams(c)
	if !ok || !requireKind(c, kind, device.KindSmartwatch) {
		return
	}

	var req BatteryRequest
	if err := batteryRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rs.respondWithDevice(c, kind, id, rs.Registry.UpdateBattery(c.Request.Context(), id, *req.BatteryPercentage))
}

type OperatingSystemRequest struct {
	OperatingSystem string `json:"operating_system"`
}

var operatingSystemRequestSchema = z.Struct(z.Shape{
	"OperatingSystem": z.String().Required(),
})

func (rs *RestfulServer) UpdateOperatingSystem(c *gin.Context) {
	kind, id, ok := rs.deviceParams(c)
	if !ok || !requireKind(c, kind, device.KindPersonalComputer) {
		return
	}

	var req OperatingSystemRequest
	if err := operatingSystemRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rs.respondWithDevice(c, kind, id, rs.Registry.UpdateOperatingSystem(c.Request.Context(), id, req.OperatingSystem))
}

type IpAddressRequest struct {
	IpAddress string `json:"ip_address"`
}

var ipAddressRequestSchema = z.Struct(z.Shape{
	"IpAddress": z.String().Required(),
})

func (rs *RestfulServer) UpdateIpAddress(c *gin.Context) {
	kind, id, ok := rs.deviceParams(c)
	if !ok || !requireKind(c, kind, device.KindEmbeddedDevice) {
		return
	}

	var req IpAddressRequest
	if err := ipAddressRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rs.respondWithDevice(c, kind, id, rs.Registry.UpdateIpAddress(c.Request.Context(), id, req.IpAddress))
}

type NetworkNameRequest struct {
	NetworkName string `json:"network_name"`
}

var networkNameRequestSchema = z.Struct(z.Shape{
	"NetworkName": z.String().Required(),
})

func (rs *RestfulServer) UpdateNetworkName(c *gin.Context) {
	kind, id, ok := rs.deviceParams(c)
	if !ok || !requireKind(c, kind, device.KindEmbeddedDevice) {
		return
	}

	var req NetworkNameRequest
	if err := networkNameRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rs.respondWithDevice(c, kind, id, rs.Registry.UpdateNetworkName(c.Request.Context(), id, req.NetworkName))
}

func (rs *RestfulServer) TurnOn(c *gin.Context) {
	kind, id, ok := rs.deviceParams(c)
	if !ok {
		return
	}
	rs.respondWithDevice(c, kind, id, rs.Registry.TurnOn(c.Request.Context(), id, kind))
}

func (rs *RestfulServer) TurnOff(c *gin.Context) {
	kind, id, ok := rs.deviceParams(c)
	if !ok {
		return
	}
	rs.respondWithDevice(c, kind, id, rs.Registry.TurnOff(c.Request.Context(), id, kind))
}

// respondWithDevice reports err, or the device's state after a successful
// mutation.
func (rs *RestfulServer) respondWithDevice(c *gin.Context, kind device.Kind, id string, err error) {
	if err != nil {
		abortWithError(c, err)
		return
	}

	d, err := rs.Registry.Get(id, kind)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(d))
}

func requireKind(c *gin.Context, got device.Kind, want device.Kind) bool {
	if got != want {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only a " + want.String() + " has this field"})
		return false
	}
	return true
}

func (rs *RestfulServer) GetAlerts(c *gin.Context) {
	kind, id, ok := rs.deviceParams(c)
	if !ok {
		return
	}

	if rs.Alert == nil {
		c.JSON(http.StatusOK, []any{})
		return
	}

	alerts, err := rs.Alert.GetDeviceAlerts(kind, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, alerts)
}

type LimiterRequest struct {
	Rate  float64 `json:"rate"`
	Burst int     `json:"burst"`
}

var limiterRequestSchema = z.Struct(z.Shape{
	"Rate":  z.Float64().Required(),
	"Burst": z.Int().Required(),
})

func (rs *RestfulServer) PostLimiter(c *gin.Context) {
	kind, err := device.ParseKind(c.Param("kind"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	var req LimiterRequest
	if err := limiterRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rs.SetLimiter(kind, c.Param("id"), req.Rate, req.Burst)

	c.Status(http.StatusOK)
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "devices": rs.Registry.Count()})
}
