package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix is the prefix of every application environment variable
const EnvPrefix = "TL"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
}

// envOverrides maps the conventional container variables onto config keys.
// They win over both the config file and the TL_ prefixed variables.
var envOverrides = []struct {
	env string
	key string
}{
	{"DB_HOST", "database.host"},
	{"DB_PORT", "database.port"},
	{"DB_USER", "database.username"},
	{"DB_PASSWORD", "database.password"},
	{"DB_NAME", "database.database"},
	{"RABBITMQ_HOST", "rabbitmq.host"},
	{"RABBITMQ_PORT", "rabbitmq.port"},
	{"RABBITMQ_DEFAULT_USER", "rabbitmq.username"},
	{"RABBITMQ_DEFAULT_PASS", "rabbitmq.password"},
	{"WORKER_ID", "worker.id"},
	{"TTS_SERVICE_URL", "tts.serviceUrl"},
	{"REDIS_ADDR", "redis.addr"},
	{"REDIS_PASSWORD", "redis.password"},
	{"NATS_URL", "storage.natsUrl"},
}

// LoadConfig loads configuration for the environment named by TL_ENV
func LoadConfig() (*Config, error) {
	if err := loadDotEnvFile(); err != nil {
		fmt.Println("Warning: Could not load .env file:", err)
	}
	return Load(getEnvironment(), ConfigPaths...)
}

// Load reads <env>.yaml from the first path that has it and applies defaults and env overrides
func Load(env string, paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Environment = env
	processDurations(&config)

	return &config, nil
}

// loadDotEnvFile attempts to load environment variables from .env files
func loadDotEnvFile() error {
	var lastError error

	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return nil
			} else {
				lastError = err
			}
		}
	}

	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}
	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15)       // seconds
	v.SetDefault("server.writeTimeout", 30)      // seconds
	v.SetDefault("server.idleTimeout", 60)       // seconds
	v.SetDefault("server.readHeaderTimeout", 10) // seconds
	v.SetDefault("server.shutdownTimeout", 10)   // seconds

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "tts_ledger")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 50)
	v.SetDefault("database.maxIdleConns", 25)
	v.SetDefault("database.connMaxLifetime", 30) // minutes
	v.SetDefault("database.connMaxIdleTime", 15) // minutes
	v.SetDefault("database.queryTimeout", 5)     // seconds
	v.SetDefault("database.retryAttempts", 5)
	v.SetDefault("database.retryDelay", 2) // seconds
	v.SetDefault("database.isolationLevel", "READ COMMITTED")
	v.SetDefault("database.unitRetries", 5)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.callerInfo", true)

	v.SetDefault("settlement.lockBackend", "none")
	v.SetDefault("settlement.lockTtlMs", 10000)
	v.SetDefault("settlement.lockTimeoutMs", 5000)
	v.SetDefault("settlement.lockRetryMs", 50)
	v.SetDefault("settlement.cleanupInterval", 60) // seconds

	v.SetDefault("exchange.defaultRate", "1.2")

	v.SetDefault("generation.tokensPerWord", 2)
	v.SetDefault("generation.description", "")

	v.SetDefault("rabbitmq.host", "localhost")
	v.SetDefault("rabbitmq.port", 5672)
	v.SetDefault("rabbitmq.username", "guest")
	v.SetDefault("rabbitmq.password", "guest")
	v.SetDefault("rabbitmq.vhost", "/")
	v.SetDefault("rabbitmq.exchange", "ml_exchange")
	v.SetDefault("rabbitmq.queue", "ml_tasks")
	v.SetDefault("rabbitmq.publishTimeout", 15) // seconds

	v.SetDefault("worker.id", "worker-1")
	v.SetDefault("worker.taskTimeout", 300) // seconds

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.backend", "filesystem")
	v.SetDefault("storage.dir", "output")
	v.SetDefault("storage.natsUrl", "nats://localhost:4222")
	v.SetDefault("storage.natsBucket", "tts-artifacts")

	v.SetDefault("tts.serviceUrl", "http://localhost:8000")
	v.SetDefault("tts.language", "en")
	v.SetDefault("tts.temperature", 0.75)
	v.SetDefault("tts.timeout", 120) // seconds
}

// getEnvironment determines the environment to use based on TL_ENV
func getEnvironment() string {
	env := os.Getenv(EnvPrefix + "_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides ensures the conventional variables override config values
func processEnvOverrides(v *viper.Viper) {
	for _, o := range envOverrides {
		if value := os.Getenv(o.env); value != "" {
			v.Set(o.key, value)
		}
	}
}

// processDurations converts the integer YAML values into durations
func processDurations(config *Config) {
	config.Server.ReadTimeout = time.Duration(config.Server.ReadTimeout) * time.Second
	config.Server.WriteTimeout = time.Duration(config.Server.WriteTimeout) * time.Second
	config.Server.IdleTimeout = time.Duration(config.Server.IdleTimeout) * time.Second
	config.Server.ReadHeaderTimeout = time.Duration(config.Server.ReadHeaderTimeout) * time.Second
	config.Server.ShutdownTimeout = time.Duration(config.Server.ShutdownTimeout) * time.Second

	config.Database.ConnMaxLifetime = time.Duration(config.Database.ConnMaxLifetime) * time.Minute
	config.Database.ConnMaxIdleTime = time.Duration(config.Database.ConnMaxIdleTime) * time.Minute
	config.Database.QueryTimeout = time.Duration(config.Database.QueryTimeout) * time.Second
	config.Database.RetryDelay = time.Duration(config.Database.RetryDelay) * time.Second

	config.Settlement.LockTTL = time.Duration(config.Settlement.LockTTL) * time.Millisecond
	config.Settlement.LockTimeout = time.Duration(config.Settlement.LockTimeout) * time.Millisecond
	config.Settlement.LockRetry = time.Duration(config.Settlement.LockRetry) * time.Millisecond
	config.Settlement.CleanupInterval = time.Duration(config.Settlement.CleanupInterval) * time.Second

	config.RabbitMQ.PublishTimeout = time.Duration(config.RabbitMQ.PublishTimeout) * time.Second
	config.Worker.TaskTimeout = time.Duration(config.Worker.TaskTimeout) * time.Second
	config.TTS.Timeout = time.Duration(config.TTS.Timeout) * time.Second
}

// URL builds the AMQP URL from the broker settings
func (c RabbitMQConfig) URL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + strings.TrimPrefix(c.VHost, "/"),
	}
	return u.String()
}
