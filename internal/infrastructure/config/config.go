package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Logger      LoggerConfig     `mapstructure:"logger"`
	Settlement  SettlementConfig `mapstructure:"settlement"`
	Exchange    ExchangeConfig   `mapstructure:"exchange"`
	Generation  GenerationConfig `mapstructure:"generation"`
	RabbitMQ    RabbitMQConfig   `mapstructure:"rabbitmq"`
	Worker      WorkerConfig     `mapstructure:"worker"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Storage     StorageConfig    `mapstructure:"storage"`
	TTS         TTSConfig        `mapstructure:"tts"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
	IsolationLevel  string        `mapstructure:"isolationLevel"`
	UnitRetries     int           `mapstructure:"unitRetries"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"timeFormat"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// SettlementConfig controls how settlements of one user are serialized
type SettlementConfig struct {
	// LockBackend is one of none, redis or database
	LockBackend     string        `mapstructure:"lockBackend"`
	LockTTL         time.Duration `mapstructure:"lockTtlMs"`
	LockTimeout     time.Duration `mapstructure:"lockTimeoutMs"`
	LockRetry       time.Duration `mapstructure:"lockRetryMs"`
	CleanupInterval time.Duration `mapstructure:"cleanupInterval"` // seconds
}

// ExchangeConfig holds the rate seeded on first start
type ExchangeConfig struct {
	DefaultRate string `mapstructure:"defaultRate"`
}

// GenerationConfig holds the request-side generation settings
type GenerationConfig struct {
	TokensPerWord int64  `mapstructure:"tokensPerWord"`
	Description   string `mapstructure:"description"`
}

// RabbitMQConfig holds the broker connection and topology
type RabbitMQConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	VHost          string        `mapstructure:"vhost"`
	Exchange       string        `mapstructure:"exchange"`
	Queue          string        `mapstructure:"queue"`
	PublishTimeout time.Duration `mapstructure:"publishTimeout"` // seconds
}

// WorkerConfig holds worker process settings
type WorkerConfig struct {
	ID          string        `mapstructure:"id"`
	TaskTimeout time.Duration `mapstructure:"taskTimeout"` // seconds
}

// RedisConfig holds the connection used by the redis lock backend
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig selects where generated audio is kept
type StorageConfig struct {
	// Backend is filesystem or nats
	Backend    string `mapstructure:"backend"`
	Dir        string `mapstructure:"dir"`
	NatsURL    string `mapstructure:"natsUrl"`
	NatsBucket string `mapstructure:"natsBucket"`
}

// TTSConfig points at the speech inference server
type TTSConfig struct {
	ServiceURL  string        `mapstructure:"serviceUrl"`
	Language    string        `mapstructure:"language"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"` // seconds
}
