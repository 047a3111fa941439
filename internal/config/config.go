package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Evidence oracle (OpenAI-compatible chat completions with vision)
	OracleAPIKey string `env:"ORACLE_API_KEY"`
	OracleAPIURL string `env:"ORACLE_API_URL" envDefault:"https://openrouter.ai/api/v1"`
	OracleModel  string `env:"ORACLE_MODEL" envDefault:"openai/gpt-4o"`

	// Payout provider: RazorpayX
	RazorpayBaseURL   string `env:"RAZORPAY_BASE_URL" envDefault:"https://api.razorpay.com/v1"`
	RazorpayIFSCURL   string `env:"RAZORPAY_IFSC_URL" envDefault:"https://ifsc.razorpay.com"`
	RazorpayKeyID     string `env:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `env:"RAZORPAY_KEY_SECRET"`
	RazorpayXAccount  string `env:"RAZORPAYX_ACCOUNT_NO"`

	// Redis (withdrawal locks). Empty disables locking.
	RedisAddress string `env:"REDIS_ADDRESS"`

	// Kafka domain events. Empty brokers disables publishing.
	KafkaBrokers     string `env:"KAFKA_BROKERS"`
	KafkaTopicEvents string `env:"KAFKA_TOPIC_EVENTS" envDefault:"sharemitra-events"`

	// HTTP
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Task administration
	LinkPreviewEnabled bool `env:"LINK_PREVIEW_ENABLED" envDefault:"false"`

	// Telegram operator logging
	BotToken           string `env:"BOT_TOKEN"`
	LogTelegramChatID  int64  `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError      int    `env:"LOG_TOPIC_ERROR"`
	LogTopicSubmission int    `env:"LOG_TOPIC_SUBMISSION"`
	LogTopicPayout     int    `env:"LOG_TOPIC_PAYOUT"`
	LogTopicReconcile  int    `env:"LOG_TOPIC_RECONCILE"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) KafkaBrokerList() []string {
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
