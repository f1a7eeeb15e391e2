package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values
type Config struct {
	AppEnv          string
	AppPort         string
	ShutdownTimeout time.Duration

	// MongoDB; empty URI switches the service to the in-memory store.
	MongoURI string
	MongoDB  string

	// Redis chat-list cache; empty addr disables caching.
	RedisAddr string
	RedisPwd  string
	RedisDB   int

	// Kafka event mirror; no brokers disables it.
	KafkaBrokers []string
	KafkaTopic   string

	// Bot
	QuoteAPIBase         string
	BotReplyDelay        time.Duration
	RandomSenderInterval time.Duration
}

// Load reads configuration from config.yaml and/or environment variables.
// A missing config file is fine; every key has a default.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "5000")
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DB", "quotechat")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("KAFKA_BROKERS", []string{})
	v.SetDefault("KAFKA_TOPIC", "quotechat.events")
	v.SetDefault("QUOTE_API_BASE", "https://dummyjson.com")
	v.SetDefault("BOT_REPLY_DELAY", 3*time.Second)
	v.SetDefault("RANDOM_SENDER_INTERVAL", 30*time.Second)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{
		AppEnv:               v.GetString("APP_ENV"),
		AppPort:              v.GetString("APP_PORT"),
		ShutdownTimeout:      v.GetDuration("SHUTDOWN_TIMEOUT"),
		MongoURI:             v.GetString("MONGO_URI"),
		MongoDB:              v.GetString("MONGO_DB"),
		RedisAddr:            v.GetString("REDIS_ADDR"),
		RedisPwd:             v.GetString("REDIS_PASSWORD"),
		RedisDB:              v.GetInt("REDIS_DB"),
		KafkaBrokers:         v.GetStringSlice("KAFKA_BROKERS"),
		KafkaTopic:           v.GetString("KAFKA_TOPIC"),
		QuoteAPIBase:         v.GetString("QUOTE_API_BASE"),
		BotReplyDelay:        v.GetDuration("BOT_REPLY_DELAY"),
		RandomSenderInterval: v.GetDuration("RANDOM_SENDER_INTERVAL"),
	}
	return cfg, nil
}
