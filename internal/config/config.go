package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Config is read once at startup from the environment (and .env when present).
type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:"0.0.0.0:8080"`

	// STORE_URL carries no credentials; each handle adds its own.
	StoreURL       string `envconfig:"STORE_URL" required:"true"`
	AnonRole       string `envconfig:"STORE_ANON_ROLE" default:"authenticated"`
	AnonKey        string `envconfig:"STORE_ANON_KEY" required:"true"`
	ServiceRole    string `envconfig:"STORE_SERVICE_ROLE" default:"service_role"`
	ServiceRoleKey string `envconfig:"STORE_SERVICE_ROLE_KEY" required:"true"`
	AutoMigrate    bool   `envconfig:"AUTO_MIGRATE" default:"false"`

	JWTSecret     string `envconfig:"JWT_SECRET" required:"true"`
	TriggerSecret string `envconfig:"TRIGGER_SECRET"`

	StoreTimeout time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`
	SinkTimeout  time.Duration `envconfig:"SINK_TIMEOUT" default:"3s"`
	AuthTimeout  time.Duration `envconfig:"AUTH_TIMEOUT" default:"2s"`

	FanoutLimit     int           `envconfig:"FANOUT_LIMIT" default:"20"`
	ExpiryBatchSize int           `envconfig:"EXPIRY_BATCH_SIZE" default:"500"`
	SweepInterval   time.Duration `envconfig:"SWEEP_INTERVAL" default:"0"`

	// NOTIFY_SINKS is a comma list of log, rabbitmq, redis, websocket.
	NotifySinks      []string `envconfig:"NOTIFY_SINKS" default:"log,websocket"`
	RabbitMQURL      string   `envconfig:"RABBITMQ_URL"`
	RabbitMQExchange string   `envconfig:"RABBITMQ_EXCHANGE" default:"zing.notifications"`
	RedisAddr        string   `envconfig:"REDIS_ADDR"`
	RedisPassword    string   `envconfig:"REDIS_PASSWORD"`
	RedisPushQueue   string   `envconfig:"REDIS_PUSH_QUEUE" default:"zing:push"`

	LogFile      string `envconfig:"LOG_FILE" default:"./logs/app.log"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on env vars")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// HasSink reports whether name was listed in NOTIFY_SINKS.
func (c *Config) HasSink(name string) bool {
	for _, s := range c.NotifySinks {
		if s == name {
			return true
		}
	}
	return false
}
