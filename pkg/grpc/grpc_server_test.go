package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"liyu1981.xyz/device-manager-service/pkg/common"
	"liyu1981.xyz/device-manager-service/pkg/device"
	"liyu1981.xyz/device-manager-service/pkg/limiter"
	"liyu1981.xyz/device-manager-service/pkg/registry"
	"liyu1981.xyz/device-manager-service/pkg/registry/mocks"
	"liyu1981.xyz/device-manager-service/pkg/store"
	_ "liyu1981.xyz/device-manager-service/pkg/testing"
)

const bufSize = 1024 * 1024

func startTestServer(t *testing.T) *DeviceServiceClient {
	return startTestServerWith(t, registry.New(store.NewMemoryStore(), registry.Opts{}), nil)
}

func startTestServerWith(t *testing.T, reg *registry.Registry, limiterStore *limiter.RateLimiterStore) *DeviceServiceClient {
	t.Helper()
	listener := bufconn.Listen(bufSize)

	deviceServer := DeviceServer{Registry: reg, RateLimiterStore: limiterStore}
	interceptor := grpc.UnaryInterceptor(deviceServer.CreateRateLimitInterceptor(MutatingMethods))
	server := grpc.NewServer(interceptor)
	RegisterDeviceServiceServer(server, &deviceServer)

	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, s string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewDeviceServiceClient(conn)
}

func requireCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok, "expected gRPC status error")
	require.Equal(t, code, st.Code(), st.Message())
}

func line(t *testing.T, resp *structpb.Struct) string {
	t.Helper()
	require.NotNil(t, resp)
	return resp.GetFields()["line"].GetStringValue()
}

func TestAddAndListDevices(t *testing.T) {
	common.SetTestLoggerNop()
	client := startTestServer(t)
	ctx := context.Background()

	resp, err := client.Call(ctx, MethodAddDevice, map[string]any{
		"kind": "sw", "id": "1", "name": "Apple Watch", "is_on": true, "battery_percentage": 50,
	})
	require.NoError(t, err)
	assert.Equal(t, "SW-1,Apple Watch,True,40%", line(t, resp))
	assert.Equal(t, float64(40), resp.GetFields()["battery_percentage"].GetNumberValue())

	_, err = client.Call(ctx, MethodAddDevice, map[string]any{
		"kind": "pc", "id": "1", "name": "Desk", "operating_system": "Linux",
	})
	require.NoError(t, err)

	_, err = client.Call(ctx, MethodAddDevice, map[string]any{
		"kind": "ed", "id": "1", "name": "Pi", "ip_address": "10.0.0.1", "network_name": "MD Ltd.Lab",
	})
	require.NoError(t, err)

	resp, err = client.Call(ctx, MethodListDevices, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(3), resp.GetFields()["count"].GetNumberValue())
	assert.Equal(t, float64(registry.DefaultCapacity), resp.GetFields()["capacity"].GetNumberValue())

	devices := resp.GetFields()["devices"].GetListValue().GetValues()
	require.Len(t, devices, 3)
	assert.Equal(t, "P-1,Desk,False,Linux", devices[1].GetStructValue().GetFields()["line"].GetStringValue())

	resp, err = client.Call(ctx, MethodCountDevices, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(3), resp.GetFields()["count"].GetNumberValue())

	resp, err = client.Call(ctx, MethodGetDevice, map[string]any{"kind": "EmbeddedDevice", "id": "1"})
	require.NoError(t, err)
	assert.Equal(t, "ED-1,Pi,False,10.0.0.1,MD Ltd.Lab", line(t, resp))
}

func TestAddDevice_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()
	client := startTestServer(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		fields map[string]any
		code   codes.Code
	}{
		{"unknown kind", map[string]any{"kind": "toaster", "id": "1", "name": "T"}, codes.InvalidArgument},
		{"empty id", map[string]any{"kind": "sw", "id": "", "name": "W", "battery_percentage": 50}, codes.InvalidArgument},
		{"missing battery", map[string]any{"kind": "sw", "id": "1", "name": "W"}, codes.InvalidArgument},
		{"fractional battery", map[string]any{"kind": "sw", "id": "1", "name": "W", "battery_percentage": 50.5}, codes.InvalidArgument},
		{"battery out of range", map[string]any{"kind": "sw", "id": "1", "name": "W", "battery_percentage": -1}, codes.InvalidArgument},
		{"bad ip", map[string]any{"kind": "ed", "id": "1", "name": "Pi", "ip_address": "1.2.3", "network_name": "MD Ltd."}, codes.InvalidArgument},
		{"computer on without os", map[string]any{"kind": "pc", "id": "1", "name": "Desk", "is_on": true}, codes.FailedPrecondition},
		{"watch on with empty battery", map[string]any{"kind": "sw", "id": "1", "name": "W", "is_on": true, "battery_percentage": 10}, codes.FailedPrecondition},
	}
	for _, c := range cases {
		_, err := client.Call(ctx, MethodAddDevice, c.fields)
		st, _ := status.FromError(err)
		assert.Equal(t, c.code, st.Code(), c.name)
	}

	fields := map[string]any{"kind": "pc", "id": "1", "name": "Desk"}
	_, err := client.Call(ctx, MethodAddDevice, fields)
	require.NoError(t, err)
	_, err = client.Call(ctx, MethodAddDevice, fields)
	requireCode(t, err, codes.AlreadyExists)

	for i := range registry.DefaultCapacity - 1 {
		_, err = client.Call(ctx, MethodAddDevice, map[string]any{"kind": "ed", "id": fmt.Sprint(i), "name": "Pi", "ip_address": "10.0.0.1", "network_name": "MD Ltd."})
		require.NoError(t, err)
	}
	_, err = client.Call(ctx, MethodAddDevice, map[string]any{"kind": "pc", "id": "2", "name": "Desk"})
	requireCode(t, err, codes.ResourceExhausted)
}

func TestPowerAndUpdates(t *testing.T) {
	common.SetTestLoggerNop()
	client := startTestServer(t)
	ctx := context.Background()

	_, err := client.Call(ctx, MethodAddDevice, map[string]any{"kind": "pc", "id": "1", "name": "Desk"})
	require.NoError(t, err)
	_, err = client.Call(ctx, MethodAddDevice, map[string]any{"kind": "sw", "id": "1", "name": "Watch", "battery_percentage": 30})
	require.NoError(t, err)

	target := map[string]any{"kind": "p", "id": "1"}

	_, err = client.Call(ctx, MethodTurnOn, target)
	requireCode(t, err, codes.FailedPrecondition)

	_, err = client.Call(ctx, MethodUpdateOperatingSystem, map[string]any{"kind": "pc", "id": "1", "operating_system": "  "})
	requireCode(t, err, codes.InvalidArgument)

	resp, err := client.Call(ctx, MethodUpdateOperatingSystem, map[string]any{"kind": "pc", "id": "1", "operating_system": "Linux"})
	require.NoError(t, err)
	assert.Equal(t, "Linux", resp.GetFields()["operating_system"].GetStringValue())

	resp, err = client.Call(ctx, MethodTurnOn, target)
	require.NoError(t, err)
	assert.True(t, resp.GetFields()["is_on"].GetBoolValue())

	_, err = client.Call(ctx, MethodTurnOn, target)
	requireCode(t, err, codes.FailedPrecondition)

	_, err = client.Call(ctx, MethodTurnOff, target)
	require.NoError(t, err)

	resp, err = client.Call(ctx, MethodRenameDevice, map[string]any{"kind": "pc", "id": "1", "name": " Workstation "})
	require.NoError(t, err)
	assert.Equal(t, "Workstation", resp.GetFields()["name"].GetStringValue())

	resp, err = client.Call(ctx, MethodUpdateBattery, map[string]any{"kind": "sw", "id": "1", "battery_percentage": 80})
	require.NoError(t, err)
	assert.Equal(t, "SW-1,Watch,False,80%", line(t, resp))

	// battery only exists on smartwatches
	_, err = client.Call(ctx, MethodUpdateBattery, map[string]any{"kind": "pc", "id": "1", "battery_percentage": 80})
	requireCode(t, err, codes.InvalidArgument)

	_, err = client.Call(ctx, MethodUpdateIpAddress, map[string]any{"kind": "ed", "id": "1", "ip_address": "10.0.0.2"})
	requireCode(t, err, codes.NotFound)

	_, err = client.Call(ctx, MethodRemoveDevice, target)
	require.NoError(t, err)
	_, err = client.Call(ctx, MethodGetDevice, target)
	requireCode(t, err, codes.NotFound)
}

func TestEmbeddedDeviceUpdates(t *testing.T) {
	common.SetTestLoggerNop()
	client := startTestServer(t)
	ctx := context.Background()

	_, err := client.Call(ctx, MethodAddDevice, map[string]any{
		"kind": "ed", "id": "7", "name": "Pi", "is_on": true, "ip_address": "10.0.0.1", "network_name": "MD Ltd.Lab",
	})
	require.NoError(t, err)

	resp, err := client.Call(ctx, MethodUpdateIpAddress, map[string]any{"kind": "ed", "id": "7", "ip_address": "192.168.1.20"})
	require.NoError(t, err)
	assert.Equal(t, "ED-7,Pi,True,192.168.1.20,MD Ltd.Lab", line(t, resp))

	_, err = client.Call(ctx, MethodUpdateNetworkName, map[string]any{"kind": "ed", "id": "7", "network_name": "Guest"})
	requireCode(t, err, codes.InvalidArgument)

	resp, err = client.Call(ctx, MethodUpdateNetworkName, map[string]any{"kind": "ed", "id": "7", "network_name": "MD Ltd.Office"})
	require.NoError(t, err)
	assert.Equal(t, "MD Ltd.Office", resp.GetFields()["network_name"].GetStringValue())
}

func TestPersistenceFailure(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockIStore(ctrl)
	mockStore.EXPECT().
		SaveAll(gomock.Any(), gomock.Any()).
		Return(errors.New("disk full")).
		Times(1)

	client := startTestServerWith(t, registry.New(mockStore, registry.Opts{}), nil)

	_, err := client.Call(context.Background(), MethodAddDevice, map[string]any{"kind": "pc", "id": "1", "name": "Desk"})
	requireCode(t, err, codes.Internal)

	resp, err := client.Call(context.Background(), MethodCountDevices, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(0), resp.GetFields()["count"].GetNumberValue())
}

func TestRateLimitInterceptor(t *testing.T) {
	common.SetTestLoggerNop()

	limiterStore := limiter.NewRateLimiterStore(0, 2) // 2 tokens that never refill
	client := startTestServerWith(t, registry.New(store.NewMemoryStore(), registry.Opts{}), limiterStore)
	ctx := context.Background()

	deviceID := uuid.NewString()
	_, err := client.Call(ctx, MethodAddDevice, map[string]any{"kind": "pc", "id": deviceID, "name": "Desk", "operating_system": "Linux"})
	require.NoError(t, err)

	target := map[string]any{"kind": "pc", "id": deviceID}

	// First 2 requests should pass
	_, err = client.Call(ctx, MethodTurnOn, target)
	require.NoError(t, err)
	_, err = client.Call(ctx, MethodTurnOff, target)
	require.NoError(t, err)

	// 3rd request should fail immediately
	_, err = client.Call(ctx, MethodTurnOn, target)
	requireCode(t, err, codes.ResourceExhausted)

	// reads are not limited
	_, err = client.Call(ctx, MethodGetDevice, target)
	require.NoError(t, err)

	// the same id of another kind has its own bucket
	_, err = client.Call(ctx, MethodTurnOn, map[string]any{"kind": "sw", "id": deviceID})
	requireCode(t, err, codes.NotFound)

	limiterStore.SetLimiter(limiter.Key(device.KindPersonalComputer, deviceID), 1, 1)
	_, err = client.Call(ctx, MethodTurnOn, target)
	require.NoError(t, err)
}

func TestCodeFor(t *testing.T) {
	cases := map[error]codes.Code{
		registry.ErrNotFound:             codes.NotFound,
		registry.ErrDuplicateID:          codes.AlreadyExists,
		registry.ErrCapacityExceeded:     codes.ResourceExhausted,
		device.ErrInvalidField:           codes.InvalidArgument,
		device.ErrUnknownKind:            codes.InvalidArgument,
		device.ErrAlreadyOn:              codes.FailedPrecondition,
		device.ErrAlreadyOff:             codes.FailedPrecondition,
		device.ErrEmptyBattery:           codes.FailedPrecondition,
		device.ErrMissingOperatingSystem: codes.FailedPrecondition,
		device.ErrUnauthorizedNetwork:    codes.FailedPrecondition,
		errors.New("boom"):               codes.Internal,
	}
	for err, code := range cases {
		assert.Equal(t, code, CodeFor(fmt.Errorf("wrapped: %w", err)), err.Error())
	}
}
