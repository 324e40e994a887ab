package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Every request and response is a google.protobuf.Struct, so the service
// needs no generated code. Requests name a device with "kind" and "id".
const ServiceName = "devicemanager.v1.DeviceService"

const (
	MethodListDevices           = "ListDevices"
	MethodGetDevice             = "GetDevice"
	MethodCountDevices          = "CountDevices"
	MethodAddDevice             = "AddDevice"
	MethodRemoveDevice          = "RemoveDevice"
	MethodRenameDevice          = "RenameDevice"
	MethodUpdateBattery         = "UpdateBattery"
	MethodUpdateOperatingSystem = "UpdateOperatingSystem"
	MethodUpdateIpAddress       = "UpdateIpAddress"
	MethodUpdateNetworkName     = "UpdateNetworkName"
	MethodTurnOn                = "TurnOn"
	MethodTurnOff               = "TurnOff"
)

// MutatingMethods are the methods the rate limit interceptor applies to.
var MutatingMethods = []string{
	MethodRemoveDevice,
	MethodRenameDevice,
	MethodUpdateBattery,
	MethodUpdateOperatingSystem,
	MethodUpdateIpAddress,
	MethodUpdateNetworkName,
	MethodTurnOn,
	MethodTurnOff,
}

func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type DeviceServiceServer interface {
	ListDevices(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDevice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CountDevices(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddDevice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveDevice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RenameDevice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateBattery(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateOperatingSystem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateIpAddress(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateNetworkName(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TurnOn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TurnOff(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(DeviceServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func methodDesc(method string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DeviceServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(method),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(DeviceServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var DeviceService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DeviceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		methodDesc(MethodListDevices, DeviceServiceServer.ListDevices),
		methodDesc(MethodGetDevice, DeviceServiceServer.GetDevice),
		methodDesc(MethodCountDevices, DeviceServiceServer.CountDevices),
		methodDesc(MethodAddDevice, DeviceServiceServer.AddDevice),
		methodDesc(MethodRemoveDevice, DeviceServiceServer.RemoveDevice),
		methodDesc(MethodRenameDevice, DeviceServiceServer.RenameDevice),
		methodDesc(MethodUpdateBattery, DeviceServiceServer.UpdateBattery),
		methodDesc(MethodUpdateOperatingSystem, DeviceServiceServer.UpdateOperatingSystem),
		methodDesc(MethodUpdateIpAddress, DeviceServiceServer.UpdateIpAddress),
		methodDesc(MethodUpdateNetworkName, DeviceServiceServer.UpdateNetworkName),
		methodDesc(MethodTurnOn, DeviceServiceServer.TurnOn),
		methodDesc(MethodTurnOff, DeviceServiceServer.TurnOff),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "devicemanager/v1/device_service.proto",
}

func RegisterDeviceServiceServer(s grpc.ServiceRegistrar, srv DeviceServiceServer) {
	s.RegisterService(&DeviceService_ServiceDesc, srv)
}

// DeviceServiceClient calls DeviceService over any client connection.
type DeviceServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDeviceServiceClient(cc grpc.ClientConnInterface) *DeviceServiceClient {
	return &DeviceServiceClient{cc: cc}
}

// Call invokes method with fields as the request struct.
func (c *DeviceServiceClient) Call(ctx context.Context, method string, fields map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
