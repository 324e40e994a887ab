package grpc

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"liyu1981.xyz/device-manager-service/pkg/common"
	"liyu1981.xyz/device-manager-service/pkg/device"
)

// CreateRateLimitInterceptor limits the listed methods per device, keyed by
// the request's "kind" and "id". Requests without a valid kind pass through
// and are rejected by the handler.
func (s *DeviceServer) CreateRateLimitInterceptor(targetMethods []string) grpc.UnaryServerInterceptor {
	targetMethodMap := common.Reducer(targetMethods,
		func(m map[string]bool, method string) map[string]bool {
			m[FullMethod(method)] = true
			return m
		},
		map[string]bool{},
	)

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if _, ok := targetMethodMap[info.FullMethod]; ok {
			if r, ok := req.(*structpb.Struct); ok {
				kind, err := device.ParseKind(stringField(r, "kind"))
				id := stringField(r, "id")
				if err == nil && !s.CheckDeviceLimiter(kind, id) {
					common.GetCategoryLogger(common.LoggerNameGrpcServer, common.LoggerCategoryRateLimit).
						Info("Rate limit exceeded",
							zap.String("method", info.FullMethod),
							zap.String("kind", kind.String()),
							zap.String("id", id))
					return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded")
				}
			}
		}

		return handler(ctx, req)
	}
}
