package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Database  *Database
	HTTP      *HTTP
	Auth      *Auth
	Redis     *Redis
	Kafka     *Kafka
	Journal   *Journal
	Telemetry *Telemetry
	App       *App
}

const AppModeProduction = "PROD"
const AppModeDevelop = "DEV"

type App struct {
	LogLevel string `env:"LOG_LEVEL"`
	Mode     string `env:"APP_MODE"`
}

type Database struct {
	DSN string `env:"DATABASE_URI"`
}

type HTTP struct {
	HostString string `env:"RUN_ADDRESS"`
}

type Auth struct {
	// TokenKey is a hex encoded paseto v4 symmetric key. A random key is
	// generated when it is empty.
	TokenKey string `env:"TOKEN_KEY"`
}

type Redis struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	TTL      time.Duration `env:"COUPON_CACHE_TTL"`
}

type Kafka struct {
	Brokers  []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic    string   `env:"KAFKA_TOPIC"`
	Username string   `env:"KAFKA_USERNAME"`
	Password string   `env:"KAFKA_PASSWORD"`
}

type Journal struct {
	Path string `env:"JOURNAL_PATH"`
}

type Telemetry struct {
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME"`
}

func NewConfig() (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	var db Database
	var http HTTP
	var auth Auth
	var redis Redis
	var kafka Kafka
	var journal Journal
	var telemetry Telemetry
	var app App

	var brokers string

	flag.StringVar(&db.DSN, "d", "", "Database string")
	flag.StringVar(&http.HostString, "a", `localhost:8080`, "HTTP server endpoint")
	flag.StringVar(&auth.TokenKey, "k", "", "Token key (hex)")
	flag.StringVar(&redis.Addr, "redis", "", "Redis address for the coupon cache")
	flag.DurationVar(&redis.TTL, "coupon-ttl", time.Minute, "Coupon cache TTL")
	flag.StringVar(&brokers, "brokers", "", "Kafka brokers, comma separated")
	flag.StringVar(&kafka.Topic, "topic", `order-events`, "Kafka topic for order events")
	flag.StringVar(&journal.Path, "j", "", "Commit journal SQLite file")
	flag.StringVar(&telemetry.Endpoint, "otel", "", "OTLP gRPC endpoint")
	flag.StringVar(&telemetry.ServiceName, "service", `storefront`, "Service name for traces")
	flag.StringVar(&app.LogLevel, "l", `error`, "Log level")
	flag.StringVar(&app.Mode, "m", `DEV`, "PROD / DEV")
	flag.Parse()

	kafka.Brokers = splitList(brokers)

	err := env.Parse(&db)
	if err != nil {
		return nil, fmt.Errorf("error parsing env database config: %w", err)
	}
	err = env.Parse(&http)
	if err != nil {
		return nil, fmt.Errorf("error parsing http config: %w", err)
	}
	err = env.Parse(&auth)
	if err != nil {
		return nil, fmt.Errorf("error parsing auth config: %w", err)
	}
	err = env.Parse(&redis)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis config: %w", err)
	}
	err = env.Parse(&kafka)
	if err != nil {
		return nil, fmt.Errorf("error parsing kafka config: %w", err)
	}
	err = env.Parse(&journal)
	if err != nil {
		return nil, fmt.Errorf("error parsing journal config: %w", err)
	}
	err = env.Parse(&telemetry)
	if err != nil {
		return nil, fmt.Errorf("error parsing telemetry config: %w", err)
	}
	err = env.Parse(&app)
	if err != nil {
		return nil, fmt.Errorf("error parsing app config: %w", err)
	}

	config := Config{
		Database:  &db,
		HTTP:      &http,
		Auth:      &auth,
		Redis:     &redis,
		Kafka:     &kafka,
		Journal:   &journal,
		Telemetry: &telemetry,
		App:       &app,
	}

	return &config, nil
}

func splitList(s string) []string {
	var res []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, part)
		}
	}
	return res
}
