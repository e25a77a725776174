// Package config loads the deployment configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`
	MongoURI      string `env:"MONGODB_URI,required"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"lingotale"`

	GeminiAPIKey string `env:"GEMINI_API_KEY,required"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	QlooAPIKey  string `env:"QLOO_API_KEY,required"`
	QlooBaseURL string `env:"QLOO_BASE_URL" envDefault:"https://hackathon.api.qloo.com"`

	ClassifierURL   string `env:"CLASSIFIER_URL,required"`
	ClassifierToken string `env:"CLASSIFIER_TOKEN"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Language pairing and vocabulary sizing for story generation.
	Language        string `env:"STORY_LANGUAGE" envDefault:"english"`
	ForeignLanguage string `env:"FOREIGN_LANGUAGE" envDefault:"spanish"`
	PoolSize        int    `env:"POOL_SIZE" envDefault:"20"`
	WordType        string `env:"WORD_TYPE" envDefault:"common"`
}

// Load reads the .env file if present, then parses the environment. A
// missing .env is fine; missing required variables are not.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
