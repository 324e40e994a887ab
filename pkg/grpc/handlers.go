package grpc

import (
	"context"
	"errors"
	"fmt"
	"math"

	z "github.com/Oudwins/zog"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"liyu1981.xyz/device-manager-service/pkg/common"
	"liyu1981.xyz/device-manager-service/pkg/device"
	"liyu1981.xyz/device-manager-service/pkg/registry"
)

func validateDeviceID(deviceID *string) z.ZogIssueList {
	var deviceIdValidator = z.String().Min(1).Required()
	return deviceIdValidator.Validate(deviceID)
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func boolField(s *structpb.Struct, key string) bool {
	return s.GetFields()[key].GetBoolValue()
}

// intField reads a whole number. ok is false when the field is missing or
// not a number without a fraction.
func intField(s *structpb.Struct, key string) (int, bool) {
	v, exists := s.GetFields()[key]
	if !exists {
		return 0, false
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber || n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, false
	}
	return int(n.NumberValue), true
}

func invalidArgument(format string, args ...any) error {
	return status.Errorf(codes.InvalidArgument, "validation error: "+format, args...)
}

// deviceTarget resolves the "kind" and "id" every per-device request carries.
func deviceTarget(in *structpb.Struct) (device.Kind, string, error) {
	kind, err := device.ParseKind(stringField(in, "kind"))
	if err != nil {
		return "", "", invalidArgument("%v", err)
	}
	id := stringField(in, "id")
	if issues := validateDeviceID(&id); issues != nil {
		return "", "", invalidArgument("id %v", issues)
	}
	return kind, id, nil
}

// variantTarget is deviceTarget for fields that exist on one kind only.
func variantTarget(in *structpb.Struct, want device.Kind) (string, error) {
	kind, id, err := deviceTarget(in)
	if err != nil {
		return "", err
	}
	if kind != want {
		return "", invalidArgument("only a %s has this field", want)
	}
	return id, nil
}

// CodeFor maps domain errors to gRPC status codes.
func CodeFor(err error) codes.Code {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, registry.ErrDuplicateID):
		return codes.AlreadyExists
	case errors.Is(err, registry.ErrCapacityExceeded):
		return codes.ResourceExhausted
	case errors.Is(err, device.ErrInvalidField),
		errors.Is(err, device.ErrUnknownKind),
		errors.Is(err, device.ErrMalformedRecord):
		return codes.InvalidArgument
	case errors.Is(err, device.ErrAlreadyOn),
		errors.Is(err, device.ErrAlreadyOff),
		errors.Is(err, device.ErrEmptyBattery),
		errors.Is(err, device.ErrMissingOperatingSystem),
		errors.Is(err, device.ErrUnauthorizedNetwork):
		return codes.FailedPrecondition
	}
	return codes.Internal
}

func toStatus(method string, err error) error {
	code := CodeFor(err)
	if code == codes.Internal {
		common.GetCategoryLogger(common.LoggerNameGrpcServer, common.LoggerCategoryRpcRequest).
			Error("Request failed", zap.String("method", method), zap.Error(err))
	}
	return status.Error(code, err.Error())
}

// DeviceFields is the response shape of a single device.
func DeviceFields(d device.Device) map[string]any {
	r := device.ToRecord(d)
	fields := map[string]any{
		"kind":  r.Kind.String(),
		"id":    r.ID,
		"name":  r.Name,
		"is_on": r.IsOn,
		"line":  d.String(),
	}
	if r.BatteryPercentage != nil {
		fields["battery_percentage"] = *r.BatteryPercentage
	}
	if r.OperatingSystem != nil {
		fields["operating_system"] = *r.OperatingSystem
	}
	if r.IpAddress != nil {
		fields["ip_address"] = *r.IpAddress
	}
	if r.NetworkName != nil {
		fields["network_name"] = *r.NetworkName
	}
	return fields
}

func (s *DeviceServer) deviceResponse(method string, kind device.Kind, id string) (*structpb.Struct, error) {
	d, err := s.Registry.Get(id, kind)
	if err != nil {
		return nil, toStatus(method, err)
	}
	return structpb.NewStruct(DeviceFields(d))
}

// mutate runs op against the device named by kind and id and answers with
// the device's new state.
func (s *DeviceServer) mutate(method string, kind device.Kind, id string, op func() error) (*structpb.Struct, error) {
	if err := op(); err != nil {
		return nil, toStatus(method, err)
	}
	return s.deviceResponse(method, kind, id)
}

func (s *DeviceServer) ListDevices(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	devices := s.Registry.GetAll()
	return structpb.NewStruct(map[string]any{
		"count":    len(devices),
		"capacity": s.Registry.Capacity(),
		"devices": common.Mapper(devices, func(d device.Device) any {
			return DeviceFields(d)
		}),
	})
}

func (s *DeviceServer) GetDevice(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	kind, id, err := deviceTarget(in)
	if err != nil {
		return nil, err
	}
	return s.deviceResponse(MethodGetDevice, kind, id)
}

func (s *DeviceServer) CountDevices(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"count":    s.Registry.Count(),
		"capacity": s.Registry.Capacity(),
	})
}

type addDeviceRequest struct {
	ID   string
	Name string
}

var addDeviceValidator = z.Struct(z.Shape{
	"ID":   z.String().Min(1).Required(),
	"Name": z.String().Min(1).Required(),
})

func (s *DeviceServer) AddDevice(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	kind, err := device.ParseKind(stringField(in, "kind"))
	if err != nil {
		return nil, invalidArgument("%v", err)
	}

	req := addDeviceRequest{ID: stringField(in, "id"), Name: stringField(in, "name")}
	if issues := addDeviceValidator.Validate(&req); issues != nil {
		return nil, invalidArgument("%v", issues)
	}

	record := device.Record{Kind: kind, ID: req.ID, Name: req.Name, IsOn: boolField(in, "is_on")}
	switch kind {
	case device.KindSmartwatch:
		battery, ok := intField(in, "battery_percentage")
		if !ok {
			return nil, invalidArgument("battery_percentage must be a whole number")
		}
		record.BatteryPercentage = &battery
	case device.KindPersonalComputer:
		os := stringField(in, "operating_system")
		record.OperatingSystem = &os
	case device.KindEmbeddedDevice:
		ip, network := stringField(in, "ip_address"), stringField(in, "network_name")
		record.IpAddress = &ip
		record.NetworkName = &network
	}

	d, err := device.FromRecord(record)
	if err != nil {
		return nil, toStatus(MethodAddDevice, err)
	}

	return s.mutate(MethodAddDevice, kind, d.ID(), func() error {
		return s.Registry.Add(ctx, d)
	})
}

func (s *DeviceServer) RemoveDevice(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	kind, id, err := deviceTarget(in)
	if err != nil {
		return nil, err
	}

	if err := s.Registry.Remove(ctx, id, kind); err != nil {
		return nil, toStatus(MethodRemoveDevice, err)
	}
	if s.RateLimiterStore != nil {
		s.RateLimiterStore.Forget(kind, id)
	}
	return structpb.NewStruct(map[string]any{"removed": fmt.Sprintf("%s-%s", kind.Tag(), id)})
}

func (s *DeviceServer) RenameDevice(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	kind, id, err := deviceTarget(in)
	if err != nil {
		return nil, err
	}
	return s.mutate(MethodRenameDevice, kind, id, func() error {
		return s.Registry.Rename(ctx, id, kind, stringField(in, "name"))
	})
}

func (s *DeviceServer) UpdateBattery(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := variantTarget(in, device.KindSmartwatch)
	if err != nil {
		return nil, err
	}
	battery, ok := intField(in, "battery_percentage")
	if !ok {
		return nil, invalidArgument("battery_percentage must be a whole number")
	}
	return s.mutate(MethodUpdateBattery, device.KindSmartwatch, id, func() error {
		return s.Registry.UpdateBattery(ctx, id, battery)
	})
}

func (s *DeviceServer) UpdateOperatingSystem(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := variantTarget(in, device.KindPersonalComputer)
	if err != nil {
		return nil, err
	}
	return s.mutate(MethodUpdateOperatingSystem, device.KindPersonalComputer, id, func() error {
		return s.Registry.UpdateOperatingSystem(ctx, id, stringField(in, "operating_system"))
	})
}

func (s *DeviceServer) UpdateIpAddress(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := variantTarget(in, device.KindEmbeddedDevice)
	if err != nil {
		return nil, err
	}
	return s.mutate(MethodUpdateIpAddress, device.KindEmbeddedDevice, id, func() error {
		return s.Registry.UpdateIpAddress(ctx, id, stringField(in, "ip_address"))
	})
}

func (s *DeviceServer) UpdateNetworkName(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := variantTarget(in, device.KindEmbeddedDevice)
	if err != nil {
		return nil, err
	}
	return s.mutate(MethodUpdateNetworkName, device.KindEmbeddedDevice, id, func() error {
		return s.Registry.UpdateNetworkName(ctx, id, stringField(in, "network_name"))
	})
}

func (s *DeviceServer) TurnOn(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	kind, id, err := deviceTarget(in)
	if err != nil {
		return nil, err
	}
	return s.mutate(MethodTurnOn, kind, id, func() error {
		return s.Registry.TurnOn(ctx, id, kind)
	})
}

func (s *DeviceServer) TurnOff(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	kind, id, err := deviceTarget(in)
	if err != nil {
		return nil, err
	}
	return s.mutate(MethodTurnOff, kind, id, func() error {
		return s.Registry.TurnOff(ctx, id, kind)
	})
}
