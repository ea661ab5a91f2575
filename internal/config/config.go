// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers an optional YAML file and env on top.
// - External errors must be wrapped via this package's error helpers.
package config

// Backend selector values.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"

	AlertLog   = "log"
	AlertSNS   = "sns"
	AlertRedis = "redis"

	ClassifierRules   = "rules"
	ClassifierBedrock = "bedrock"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreBackend selects the record store: memory, redis, dynamodb, postgres.
	StoreBackend string `koanf:"store_backend"`

	// AlertBackend selects the alert publisher: log, sns, redis.
	AlertBackend string `koanf:"alert_backend"`

	// Classifier selects the risk classifier: rules (deterministic) or
	// bedrock (delegate-backed, for parity with the hosted labeler).
	Classifier string `koanf:"classifier"`

	// QueryWindow bounds how many newest records a latest-record query
	// fetches before the driver filter applies.
	QueryWindow int `koanf:"query_window"`

	// Redis connection settings, used by the redis store and alert backends.
	RedisAddr         string `koanf:"redis_addr"`
	RedisPassword     string `koanf:"redis_password"`
	RedisDB           int    `koanf:"redis_db"`
	RedisAlertChannel string `koanf:"redis_alert_channel"`

	// PostgresDSN is the full connection string for the postgres store.
	PostgresDSN string `koanf:"postgres_dsn"`

	// AWS settings, used by the dynamodb store, sns alerts and the bedrock
	// classifier.
	AWSRegion      string `koanf:"aws_region"`
	DynamoTable    string `koanf:"dynamo_table"`
	SNSTopicARN    string `koanf:"sns_topic_arn"`
	BedrockModelID string `koanf:"bedrock_model_id"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		StoreBackend:      StoreMemory,
		AlertBackend:      AlertLog,
		Classifier:        ClassifierRules,
		QueryWindow:       10,
		RedisAddr:         "localhost:6379",
		RedisPassword:     "",
		RedisDB:           0,
		RedisAlertChannel: "risk:alerts",
		PostgresDSN:       "",
		AWSRegion:         "us-east-1",
		DynamoTable:       "HealthRiskRecords",
		SNSTopicARN:       "",
		BedrockModelID:    "amazon.titan-text-express-v1",
	}
}
