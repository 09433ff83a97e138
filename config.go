package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort       string     `env:"SERVER_PORT" envDefault:"8080" validate:"required,numeric"`
	DynamoEndpoint   string     `env:"DYNAMODB_ENDPOINT" validate:"omitempty,url"`
	DynamoTableName  string     `env:"PALETTES_TABLE_NAME" envDefault:"eighty4-colors-palettes" validate:"required"`
	JWTSecret        string     `env:"JWT_SECRET"`
	JWTIssuer        string     `env:"JWT_ISSUER"`
	AWSRegion        string     `env:"AWS_REGION" envDefault:"us-east-2" validate:"required"`
	CORSAllowOrigin  string     `env:"CORS_ALLOW_ORIGIN" envDefault:"*" validate:"required"`
	LogLevel         slog.Level `env:"LOG_LEVEL" envDefault:"info"`
	DevBypassAuth    bool       `env:"DEV_BYPASS_AUTH"`
	LambdaRuntimeAPI string     `env:"AWS_LAMBDA_RUNTIME_API"`
}

// Lambda reports whether the process was started by the Lambda runtime.
func (c Config) Lambda() bool {
	return c.LambdaRuntimeAPI != ""
}

// LoadConfig reads an optional .env file, then the process environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	// API Gateway resolves the caller before Lambda invocations, so the
	// secret only matters for the standalone server.
	if cfg.JWTSecret == "" && !cfg.DevBypassAuth && !cfg.Lambda() {
		return Config{}, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return cfg, nil
}
