package main

import (
	"context"
	"fmt"
	"log"
	"net"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"liyu1981.xyz/device-manager-service/pkg/common"
	"liyu1981.xyz/device-manager-service/pkg/db"
	"liyu1981.xyz/device-manager-service/pkg/device"
	deviceGrpc "liyu1981.xyz/device-manager-service/pkg/grpc"
	deviceHttp "liyu1981.xyz/device-manager-service/pkg/http"
	"liyu1981.xyz/device-manager-service/pkg/limiter"
	"liyu1981.xyz/device-manager-service/pkg/notify"
	"liyu1981.xyz/device-manager-service/pkg/registry"
	"liyu1981.xyz/device-manager-service/pkg/store"
)

// openStore picks the persistence gateway. The sqlite stores also return the
// database so alerts can be kept next to the catalog.
func openStore(settings *common.Settings) (registry.IStore, *db.DB, error) {
	switch settings.StoreType {
	case common.StoreTypeFile:
		return store.NewTextFileStore(settings.StorePath), nil, nil
	case common.StoreTypeYaml:
		return store.NewYAMLStore(settings.StorePath), nil, nil
	case common.StoreTypeMemory:
		return store.NewMemoryStore(), nil, nil
	case common.StoreTypeSqlite, common.StoreTypeMemorySqlite:
		dialector := db.UseSqliteDialector()
		if settings.StoreType == common.StoreTypeMemorySqlite {
			dialector = db.UseMemorySqliteDialector()
		}
		dbInstance, err := db.New(dialector)
		if err != nil {
			return nil, nil, err
		}
		return store.NewSQLStore(dbInstance), dbInstance, nil
	}
	return nil, nil, fmt.Errorf("unknown %s: %q", common.EnvKeyIOTStoreType, settings.StoreType)
}

func main() {
	var err error

	err = godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file, copy .env.example to .env first if in development")
	}

	settings, err := common.LoadSettings()
	if err != nil {
		log.Fatal(err)
	}

	logger := common.GetLogger()

	deviceStore, dbInstance, err := openStore(settings)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", settings.StoreType, err)
	}
	if dbInstance != nil {
		defer dbInstance.Close()
	}

	notifiers := notify.Multi{notify.LogNotifier{}}

	var alerts notify.IAlert
	if dbInstance != nil {
		alertNotifier := notify.NewAlertNotifier(dbInstance)
		alerts = alertNotifier
		notifiers = append(notifiers, alertNotifier)
	}

	if settings.MqttBroker != "" {
		client, err := notify.ConnectMQTT(settings.MqttBroker, settings.MqttClientID)
		if err != nil {
			log.Fatalf("failed to connect to MQTT broker: %v", err)
		}
		defer client.Disconnect(250)
		mqttNotifier := notify.NewMQTTNotifier(client, settings.MqttTopicPrefix)
		defer mqttNotifier.Wait()
		notifiers = append(notifiers, mqttNotifier)
		logger.Info("MQTT notifier enabled", zap.String("broker", settings.MqttBroker))
	}

	var notifier device.Notifier = notifiers
	reg := registry.New(deviceStore, registry.Opts{
		Capacity: settings.Capacity,
		Notifier: notifier,
	})
	if err := reg.Load(context.Background()); err != nil {
		log.Fatalf("failed to load devices: %v", err)
	}

	logger.Info("Device registry ready",
		zap.String("store", settings.StoreType),
		zap.Int("devices", reg.Count()),
		zap.Int("capacity", reg.Capacity()))

	defaultLimiter := zap.String("default_limiter",
		fmt.Sprintf("{\"default_rate\": %v, \"default_burst\": %v}", settings.DefaultRate, settings.DefaultBurst))

	if settings.GrpcHostPort != "" {
		logger.Info("Starting gRPC server on port " + settings.GrpcHostPort)
		go func() {
			deviceGrpcServer := deviceGrpc.DeviceServer{
				Registry:         reg,
				RateLimiterStore: limiter.NewRateLimiterStore(rate.Limit(settings.DefaultRate), settings.DefaultBurst),
			}
			interceptor := deviceGrpcServer.CreateRateLimitInterceptor(deviceGrpc.MutatingMethods)
			s := grpc.NewServer(grpc.UnaryInterceptor(interceptor))
			deviceGrpc.RegisterDeviceServiceServer(s, &deviceGrpcServer)
			logger.Info("gRPC server created with:", defaultLimiter)

			listener, err := net.Listen("tcp", settings.GrpcHostPort)
			if err != nil {
				log.Fatalf("failed to listen: %v", err)
			}

			logger.Info("start gRPC server on " + settings.GrpcHostPort)
			if err := s.Serve(listener); err != nil {
				log.Fatalf("grpc server failed to serve: %v", err)
			}
		}()
	}

	rs := &deviceHttp.RestfulServer{
		Server:           gin.Default(),
		Registry:         reg,
		Alert:            alerts,
		RateLimiterStore: limiter.NewRateLimiterStore(rate.Limit(settings.DefaultRate), settings.DefaultBurst),
	}
	rs.Setup()

	logger.Info("http server created with:", defaultLimiter)

	logger.Info("Starting HTTP server on: " + settings.HttpHostPort)
	if err := rs.Server.Run(settings.HttpHostPort); err != nil {
		log.Fatalf("http server failed to serve: %v", err)
	}
}
