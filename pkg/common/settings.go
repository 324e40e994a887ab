package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	StoreTypeFile         string = "file"
	StoreTypeSqlite       string = "sqlite"
	StoreTypeMemorySqlite string = "memory-sqlite"
	StoreTypeYaml         string = "yaml"
	StoreTypeMemory       string = "memory"

	DefaultHttpHostPort    string = ":1080"
	DefaultStorePath       string = "devices.txt"
	DefaultMqttClientID    string = "device-manager"
	DefaultMqttTopicPrefix string = "devices"
)

// Settings is the process configuration read from the environment (.env is
// loaded into it by godotenv in cmd/server).
type Settings struct {
	StoreType string
	StorePath string
	Capacity  int

	HttpHostPort string
	GrpcHostPort string

	DefaultRate  float64
	DefaultBurst int

	MqttBroker      string
	MqttClientID    string
	MqttTopicPrefix string
}

func envOr(key string, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func LoadSettings() (*Settings, error) {
	s := &Settings{
		StoreType:       envOr(EnvKeyIOTStoreType, StoreTypeFile),
		StorePath:       envOr(EnvKeyIOTStorePath, DefaultStorePath),
		HttpHostPort:    envOr(EnvKeyIOTHttpHostPort, DefaultHttpHostPort),
		GrpcHostPort:    strings.TrimSpace(os.Getenv(EnvKeyIOTGrpcHostPort)),
		MqttBroker:      strings.TrimSpace(os.Getenv(EnvKeyIOTMqttBroker)),
		MqttClientID:    envOr(EnvKeyIOTMqttClientID, DefaultMqttClientID),
		MqttTopicPrefix: envOr(EnvKeyIOTMqttTopicPrefix, DefaultMqttTopicPrefix),
	}

	switch s.StoreType {
	case StoreTypeFile, StoreTypeSqlite, StoreTypeMemorySqlite, StoreTypeYaml, StoreTypeMemory:
	default:
		return nil, fmt.Errorf("unknown %s: %q", EnvKeyIOTStoreType, s.StoreType)
	}

	var err error
	if s.DefaultRate, err = strconv.ParseFloat(os.Getenv(EnvKeyIOTDefaultRate), 64); err != nil {
		return nil, fmt.Errorf("invalid %s, or not set in .env, should be a float64 value: %w", EnvKeyIOTDefaultRate, err)
	}

	var burst int64
	if burst, err = strconv.ParseInt(os.Getenv(EnvKeyIOTDefaultBurst), 10, 64); err != nil {
		return nil, fmt.Errorf("invalid %s, or not set in .env, should be an int value: %w", EnvKeyIOTDefaultBurst, err)
	}
	s.DefaultBurst = int(burst)

	if raw := strings.TrimSpace(os.Getenv(EnvKeyIOTCapacity)); raw != "" {
		capacity, err := strconv.Atoi(raw)
		if err != nil || capacity <= 0 {
			return nil, fmt.Errorf("invalid %s %q, should be a positive int", EnvKeyIOTCapacity, raw)
		}
		s.Capacity = capacity
	}

	return s, nil
}
