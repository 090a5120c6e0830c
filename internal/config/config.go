package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0:8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"DEBUG"`
	PostgresConfig
	GroqConfig
}

func NewConfig() (*Config, error) {
	config := &Config{}

	err := env.Parse(config)
	if err != nil {
		err = fmt.Errorf("config.NewConfig: %w", err)
	}
	return config, err
}

type PostgresConfig struct {
	Conn            string `env:"POSTGRES_CONN" envDefault:"postgres://test:test@db:5432/test?sslmode=disable"`
	AutoMigrateUp   string `env:"AUTO_MIGRATE_UP" envDefault:"true"`
	AutoMigrateDown string `env:"AUTO_MIGRATE_DOWN" envDefault:"false"`
	MigrationsURL   string `env:"MIGRATIONS_URL" envDefault:"file://internal/repository/db/migrations"`
}

func NewPostgresConfig() (*PostgresConfig, error) {
	config := &PostgresConfig{}

	err := env.Parse(config)
	if err != nil {
		err = fmt.Errorf("config.NewPostgresConfig: %w", err)
	}
	return config, err
}

// GroqConfig configures the hosted chat-completion service both AI
// adapters talk to.
type GroqConfig struct {
	APIKey         string        `env:"GROQ_API_KEY"`
	Model          string        `env:"GROQ_MODEL" envDefault:"llama-3.3-70b-versatile"`
	BaseURL        string        `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	RequestTimeout time.Duration `env:"GROQ_REQUEST_TIMEOUT" envDefault:"30s"`
	MaxRetries     int           `env:"GROQ_MAX_RETRIES" envDefault:"3"`
}

func NewGroqConfig() (*GroqConfig, error) {
	config := &GroqConfig{}

	err := env.Parse(config)
	if err != nil {
		err = fmt.Errorf("config.NewGroqConfig: %w", err)
	}
	return config, err
}
