package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Debug    bool
	TestMode bool
	Env      string
	AppName  string
	Build    string

	// backend REST API
	APIBaseURL     string
	RequestTimeout time.Duration

	// lesson querying
	SearchDebounce     time.Duration
	SearchPageSize     int
	PermissionCacheTTL time.Duration

	// providers
	DefaultFromEmail string
	SendgridAPIKey   string
	RollbarToken     string

	// client-side persistence / cross-process sync
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	AMQPUrl       string
}

// NewConfig loads configuration from `config/.env.<env>` (if present) and
// environment variables prefixed with the current ENV (DEV by default).
func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "MathsTutor")
	conf.SetDefault("apiBaseURL", "http://localhost:5000/api")
	conf.SetDefault("requestTimeout", 30*time.Second)
	conf.SetDefault("searchDebounce", 300*time.Millisecond)
	conf.SetDefault("searchPageSize", 100)
	conf.SetDefault("permissionCacheTTL", 30*time.Minute)
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("redisDB", 0)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	var testMode bool
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:    conf.GetBool("debug"),
		TestMode: testMode,
		Env:      env,
		AppName:  conf.GetString("appName"),
		Build:    conf.GetString("build"),

		APIBaseURL:     strings.TrimRight(conf.GetString("apiBaseURL"), "/"),
		RequestTimeout: conf.GetDuration("requestTimeout"),

		SearchDebounce:     conf.GetDuration("searchDebounce"),
		SearchPageSize:     conf.GetInt("searchPageSize"),
		PermissionCacheTTL: conf.GetDuration("permissionCacheTTL"),

		DefaultFromEmail: conf.GetString("defaultFromEmail"),
		SendgridAPIKey:   conf.GetString("sendgridAPIKey"),
		RollbarToken:     conf.GetString("rollbarToken"),

		RedisAddr:     conf.GetString("redisAddr"),
		RedisPassword: conf.GetString("redisPassword"),
		RedisDB:       conf.GetInt("redisDB"),
		AMQPUrl:       conf.GetString("amqpURL"),
	}
}

// NewTestConfig returns a Config suitable for package tests: short timers,
// no external providers.
func NewTestConfig() *Config {
	return &Config{
		Debug:              true,
		TestMode:           true,
		Env:                "TEST",
		AppName:            "MathsTutor",
		APIBaseURL:         "http://localhost:5000/api",
		RequestTimeout:     5 * time.Second,
		SearchDebounce:     10 * time.Millisecond,
		SearchPageSize:     100,
		PermissionCacheTTL: 30 * time.Minute,
		DefaultFromEmail:   "noreply@localhost",
	}
}
