// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the runtime configuration of the server and CLI commands.
type Config struct {
	Env            string `env:"APP_ENV" validate:"required,oneof=development test staging production"`
	Port           string `env:"APP_PORT" validate:"required,numeric"`
	DBUser         string `env:"DB_USER" validate:"required"`
	DBPass         string `env:"DB_PASS"`
	DBHost         string `env:"DB_HOST" validate:"required"`
	DBPort         string `env:"DB_PORT" validate:"required,numeric"`
	DBName         string `env:"DB_NAME" validate:"required"`
	JWTSecret      string `env:"JWT_SECRET" validate:"required,min=16"`
	AccessTTLMin   int    `env:"ACCESS_TOKEN_TTL_MIN" validate:"required,min=1,max=1440"`
	RefreshTTLDays int    `env:"REFRESH_TOKEN_TTL_DAYS" validate:"required,min=1,max=365"`
	BcryptCost     int    `env:"BCRYPT_COST" validate:"required,min=4,max=31"`
	RabbitURL      string `env:"RABBITMQ_URL" validate:"omitempty,url"`
	LogDir         string `env:"LOG_DIR"`
}

// AccessTTL is the lifetime of access tokens.
func (c Config) AccessTTL() time.Duration { return time.Duration(c.AccessTTLMin) * time.Minute }

// RefreshTTL is the lifetime of refresh tokens.
func (c Config) RefreshTTL() time.Duration { return time.Duration(c.RefreshTTLDays) * 24 * time.Hour }

var validate = validator.New()

// LoadDotEnv loads path into the process environment when the file exists.
// Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom builds a Config from getenv and validates it.  Every missing or
// invalid variable is reported in the returned error.
func LoadFrom(getenv func(string) string) (Config, error) {
	var problems []string
	atoi := func(key string) int {
		v := getenv(key)
		if v == "" {
			return 0
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: invalid int %q", key, v))
		}
		return n
	}
	cfg := Config{
		Env:            getenv("APP_ENV"),
		Port:           getenv("APP_PORT"),
		DBUser:         getenv("DB_USER"),
		DBPass:         getenv("DB_PASS"),
		DBHost:         getenv("DB_HOST"),
		DBPort:         getenv("DB_PORT"),
		DBName:         getenv("DB_NAME"),
		JWTSecret:      getenv("JWT_SECRET"),
		AccessTTLMin:   atoi("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: atoi("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     atoi("BCRYPT_COST"),
		RabbitURL:      getenv("RABBITMQ_URL"),
		LogDir:         getenv("LOG_DIR"),
	}
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Config{}, err
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s: failed %q", envName(fe.StructField()), fe.Tag()))
		}
	}
	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

// envName maps a Config field to its variable name through the env tag.
func envName(field string) string {
	if f, ok := configType.FieldByName(field); ok {
		if tag := f.Tag.Get("env"); tag != "" {
			return tag
		}
	}
	return field
}
