package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// Server
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"staffhub"`

	// PostgreSQL
	PostgreSQLHost         string   `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort         string   `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser         string   `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword     string   `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase     string   `env:"POSTGRESQL_DATABASE" envDefault:"staffhub"`
	PostgreSQLSchema       string   `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode      string   `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle      int      `env:"POSTGRESQL_MAX_IDLE" envDefault:"10"`
	PostgreSQLMaxOpen      int      `env:"POSTGRESQL_MAX_OPEN" envDefault:"50"`
	PostgreSQLReplicaHosts []string `env:"POSTGRESQL_REPLICA_HOSTS" envSeparator:","` // host or host:port, read-only

	// Redis
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"staffhub"`

	// RabbitMQ
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// JWT
	JWTSecret        string `env:"JWT_SECRET"` // required
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"60"`
	JWTRefreshDays   int    `env:"JWT_REFRESH_DAYS" envDefault:"7"`

	// Snowflake
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// Logger
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// OpenTelemetry
	OTelEnabled  bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelSampler  float64 `env:"OTEL_SAMPLER_RATIO" envDefault:"0.1"`

	// Rate limiting
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`

	// Honor board
	HonorBoardTimezone string `env:"HONORBOARD_TIMEZONE" envDefault:"UTC"`
	HonorBoardCacheTTL int    `env:"HONORBOARD_CACHE_TTL_SECONDS" envDefault:"60"`

	// Uploads
	MediaRoot      string `env:"MEDIA_ROOT" envDefault:"./media"`
	MediaURL       string `env:"MEDIA_URL" envDefault:"/media/"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`

	// Scheduler
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"1h"`
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}
}

// Validate checks the settings every binary needs. Called from main, not init,
// so packages importing config stay usable in tests.
func Validate() error {
	if Cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(Cfg.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 bytes")
	}
	if _, err := time.LoadLocation(Cfg.HonorBoardTimezone); err != nil {
		return errors.New("HONORBOARD_TIMEZONE is not a valid IANA time zone")
	}
	if Cfg.ReconcileInterval <= 0 {
		return errors.New("RECONCILE_INTERVAL must be positive")
	}
	if Cfg.IsProduction() && Cfg.RedisPassword == "" {
		log.Printf("WARN: REDIS_PASSWORD is empty in production")
	}
	return nil
}

func (c *Config) GetDSN() string {
	return c.dsnForHost(c.PostgreSQLHost, c.PostgreSQLPort)
}

// GetReplicaDSNs builds one DSN per configured replica, reusing the primary credentials.
func (c *Config) GetReplicaDSNs() []string {
	dsns := make([]string, 0, len(c.PostgreSQLReplicaHosts))
	for _, h := range c.PostgreSQLReplicaHosts {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		host, port := h, c.PostgreSQLPort
		if i := strings.LastIndex(h, ":"); i > 0 {
			host, port = h[:i], h[i+1:]
		}
		dsns = append(dsns, c.dsnForHost(host, port))
	}
	return dsns
}

func (c *Config) dsnForHost(host, port string) string {
	return "host=" + host +
		" port=" + port +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

// Location returns the zone honor-board windows are computed in, UTC when unset or invalid.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.HonorBoardTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
