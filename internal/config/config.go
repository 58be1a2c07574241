package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/pholguinc/api-streaming/pkg/config"
	"github.com/pholguinc/api-streaming/pkg/database"
	"github.com/pholguinc/api-streaming/pkg/log"
)

type Config struct {
	Server    ServerConfig
	WebSocket WebSocketConfig
	Presence  PresenceConfig
	Auth      AuthConfig
	Database  database.Config
	Redis     RedisConfig
	Kafka     KafkaConfig
	Log       log.Config
}

type ServerConfig struct {
	Host string
	Port int
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
}

type PresenceConfig struct {
	BroadcastDebounce time.Duration `mapstructure:"broadcast_debounce"`
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
}

type AuthConfig struct {
	Secret string
	Issuer string
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Prefix   string
}

type KafkaConfig struct {
	Enabled    bool
	Brokers    string
	Topic      string
	Partitions int
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("presence.broadcast_debounce", "100ms")
	v.SetDefault("presence.reconcile_interval", "30s")
	v.SetDefault("auth.secret", "dev-secret")
	v.SetDefault("auth.issuer", "api-streaming")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.file_path", "streams.db")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", "5s")
	v.SetDefault("redis.prefix", "streams:cache")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "stream-lifecycle")
	v.SetDefault("kafka.partitions", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.service_name", "coordinator")

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("auth.secret", "AUTH_SECRET")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.enabled", "KAFKA_ENABLED")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.topic", "KAFKA_TOPIC")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)
	cfg.Presence.BroadcastDebounce = parseDuration(v, "presence.broadcast_debounce", 100*time.Millisecond)
	cfg.Presence.ReconcileInterval = parseDuration(v, "presence.reconcile_interval", 30*time.Second)
	cfg.Redis.CacheTTL = parseDuration(v, "redis.cache_ttl", 5*time.Second)

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
