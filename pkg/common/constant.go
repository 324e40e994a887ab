package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyIOTStoreType string = "IOT_STORE_TYPE"
	EnvKeyIOTStorePath string = "IOT_STORE_PATH"
	EnvKeyIOTDbPath    string = "IOT_DB_PATH"
	EnvKeyIOTCapacity  string = "IOT_CAPACITY"

	EnvKeyIOTHttpHostPort string = "IOT_HTTP_HOST_PORT"
	EnvKeyIOTGrpcHostPort string = "IOT_GRPC_HOST_PORT"

	EnvKeyIOTDefaultRate  string = "IOT_DEFAULT_RATE"
	EnvKeyIOTDefaultBurst string = "IOT_DEFAULT_BURST"

	EnvKeyIOTMqttBroker      string = "IOT_MQTT_BROKER"
	EnvKeyIOTMqttClientID    string = "IOT_MQTT_CLIENT_ID"
	EnvKeyIOTMqttTopicPrefix string = "IOT_MQTT_TOPIC_PREFIX"

	LoggerNameRegistry      string = "registry"
	LoggerNameStore         string = "store"
	LoggerNameDevice        string = "device"
	LoggerNameNotify        string = "notify"
	LoggerNameRestfulServer string = "restful_server"
	LoggerNameGrpcServer    string = "grpc_server"
	LoggerNameDeviceCtl     string = "devicectl"

	LoggerFieldCategory      string = "category"
	LoggerCategoryMutation   string = "mutation"
	LoggerCategoryLoad       string = "load"
	LoggerCategoryPersist    string = "persist"
	LoggerCategoryParse      string = "parse"
	LoggerCategoryBattery    string = "battery"
	LoggerCategoryAlert      string = "alert"
	LoggerCategoryMqtt       string = "mqtt"
	LoggerCategoryRateLimit  string = "rate_limit"
	LoggerCategoryRpcRequest string = "request"
)
