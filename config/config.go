package config

import (
	"strings"
	"time"

	"github.com/Karoll-esc/hotel-booking-system/utils"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config is everything main needs to wire the service, read once at startup.
type Config struct {
	Port           string
	DBDriver       string
	DBLogLevel     string
	DBSeed         bool
	Location       *time.Location
	MaxStayNights  int
	RedisAddr      string
	AMQPURL        string
	AMQPExchange   string
	OTLPEndpoint   string
	LokiURL        string
	IdempotencyTTL time.Duration
}

func Load() Config {
	driver := strings.ToLower(utils.EnvOrDefault("DB_DRIVER", DriverMySQL))
	return Config{
		Port:           utils.EnvOrDefault("PORT", "8080"),
		DBDriver:       driver,
		DBLogLevel:     utils.EnvOrDefault("DB_LOG_LEVEL", "warn"),
		DBSeed:         utils.EnvBool("DB_SEED", false),
		Location:       utils.EnvLocation("HOTEL_TIMEZONE"),
		MaxStayNights:  utils.EnvInt("MAX_STAY_NIGHTS", 30),
		RedisAddr:      utils.EnvOrDefault("REDIS_ADDR", ""),
		AMQPURL:        utils.EnvOrDefault("AMQP_URL", ""),
		AMQPExchange:   utils.EnvOrDefault("AMQP_EXCHANGE", "hotel.reservations"),
		OTLPEndpoint:   utils.EnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		LokiURL:        utils.EnvOrDefault("LOKI_URL", ""),
		IdempotencyTTL: time.Duration(utils.EnvInt("IDEMPOTENCY_TTL_HOURS", 24)) * time.Hour,
	}
}
