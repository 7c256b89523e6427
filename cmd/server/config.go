package main

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	sourceCSV = "csv"
	sourceDB  = "db"
)

type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"release"`

	EnableDB    bool   `envconfig:"ENABLE_DB" default:"false"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	TrainingData         string `envconfig:"TRAINING_DATA" default:"data/data_set.csv"`
	LabelColumn          string `envconfig:"LABEL_COLUMN" default:"prognosis"`
	SpecializationData   string `envconfig:"SPECIALIZATION_DATA" default:"data/disease_specialization_mapping.csv"`
	SpecializationSource string `envconfig:"SPECIALIZATION_SOURCE" default:"csv"`

	ModelIterations      int     `envconfig:"MODEL_ITERATIONS" default:"100"`
	ModelLearningRate    float64 `envconfig:"MODEL_LEARNING_RATE" default:"0.1"`
	ModelNumLeaves       int     `envconfig:"MODEL_NUM_LEAVES" default:"31"`
	ModelMinChildSamples int     `envconfig:"MODEL_MIN_CHILD_SAMPLES" default:"1"`
	ModelSeed            int64   `envconfig:"MODEL_SEED" default:"42"`
	TestFraction         float64 `envconfig:"TEST_FRACTION" default:"0.2"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.SpecializationSource = strings.ToLower(strings.TrimSpace(cfg.SpecializationSource))

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	switch cfg.SpecializationSource {
	case sourceCSV:
	case sourceDB:
		if !cfg.EnableDB {
			return nil, fmt.Errorf("SPECIALIZATION_SOURCE=db requires ENABLE_DB=true")
		}
	default:
		return nil, fmt.Errorf("SPECIALIZATION_SOURCE must be %q or %q, got %q", sourceCSV, sourceDB, cfg.SpecializationSource)
	}
	if cfg.TestFraction < 0 || cfg.TestFraction >= 1 {
		return nil, fmt.Errorf("TEST_FRACTION must be in [0,1), got %v", cfg.TestFraction)
	}
	if cfg.ModelIterations < 1 {
		return nil, fmt.Errorf("MODEL_ITERATIONS must be at least 1, got %d", cfg.ModelIterations)
	}
	if cfg.ModelLearningRate <= 0 {
		return nil, fmt.Errorf("MODEL_LEARNING_RATE must be positive, got %v", cfg.ModelLearningRate)
	}
	if cfg.ModelNumLeaves < 2 {
		return nil, fmt.Errorf("MODEL_NUM_LEAVES must be at least 2, got %d", cfg.ModelNumLeaves)
	}
	if cfg.ModelMinChildSamples < 1 {
		return nil, fmt.Errorf("MODEL_MIN_CHILD_SAMPLES must be at least 1, got %d", cfg.ModelMinChildSamples)
	}

	return cfg, nil
}
