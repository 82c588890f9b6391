package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every tunable of the service. Nothing in the engine relies on
// hidden defaults: the composition root passes these values down explicitly.
type Config struct {
	AppEnv   string `validate:"oneof=production development test"`
	LogLevel string `validate:"oneof=debug info warn error"`
	Port     string `validate:"required,numeric"`

	DatabaseDriver string `validate:"oneof=sqlite pgx"`
	DatabaseURL    string `validate:"required"`
	SeedPath       string
	RedisURL       string

	Routing  RoutingConfig
	Cache    CacheConfig
	Dispatch DispatchConfig
}

type RoutingConfig struct {
	Providers         []string `validate:"min=1,dive,oneof=osrm ors graphhopper"`
	OSRMBaseURL       string   `validate:"required,url"`
	ORSBaseURL        string   `validate:"required,url"`
	ORSAPIKey         string
	GraphHopperURL    string `validate:"required,url"`
	GraphHopperAPIKey string

	Attempts    int           `validate:"min=1,max=10"`
	BackoffBase time.Duration `validate:"min=0"`
	TimeoutBase time.Duration `validate:"gt=0"`
	TimeoutStep time.Duration `validate:"min=0"`
	// RateLimit is requests per second per provider; 0 disables limiting.
	RateLimit float64 `validate:"min=0"`
	// RateBurst lets that many concurrent evaluations through at once.
	RateBurst int `validate:"min=1"`
}

type CacheConfig struct {
	Size      int           `validate:"min=1"`
	TTL       time.Duration `validate:"gt=0"`
	Precision int           `validate:"min=1,max=9"`
}

type DispatchConfig struct {
	Workers          int           `validate:"min=1"`
	FallbackSpeedKmh float64       `validate:"gt=0"`
	DurationSource   string        `validate:"oneof=provider graph"`
	RelaxExclusivity bool
	CycleInterval    time.Duration `validate:"gt=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", "8080")

	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "data/app.db")
	v.SetDefault("SEED_PATH", "data/seeds/fleet.yaml")
	v.SetDefault("REDIS_URL", "")

	v.SetDefault("ROUTING_PROVIDERS", "osrm,ors,graphhopper")
	v.SetDefault("OSRM_BASE_URL", "https://router.project-osrm.org")
	v.SetDefault("ORS_BASE_URL", "https://api.openrouteservice.org")
	v.SetDefault("ORS_API_KEY", "")
	v.SetDefault("GRAPHHOPPER_BASE_URL", "https://graphhopper.com/api/1")
	v.SetDefault("GRAPHHOPPER_API_KEY", "")
	v.SetDefault("ROUTE_RETRY_ATTEMPTS", 2)
	v.SetDefault("ROUTE_BACKOFF_BASE", "250ms")
	v.SetDefault("ROUTE_TIMEOUT_BASE", "5s")
	v.SetDefault("ROUTE_TIMEOUT_STEP", "5s")
	v.SetDefault("PROVIDER_RATE_LIMIT", 0.0)
	v.SetDefault("PROVIDER_RATE_BURST", 6)

	v.SetDefault("ROUTE_CACHE_SIZE", 256)
	v.SetDefault("ROUTE_CACHE_TTL", "10m")
	v.SetDefault("CACHE_KEY_PRECISION", 5)

	v.SetDefault("EVALUATOR_WORKERS", 6)
	v.SetDefault("FALLBACK_SPEED_KMH", 60.0)
	v.SetDefault("DURATION_SOURCE", "provider")
	v.SetDefault("RELAX_EXCLUSIVITY", true)
	v.SetDefault("CYCLE_INTERVAL", "5s")
}

// Load reads .env (if present) and the environment into a validated Config.
func Load() (*Config, error) {
	// A missing .env is normal outside local runs.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:         v.GetString("APP_ENV"),
		LogLevel:       strings.ToLower(v.GetString("LOG_LEVEL")),
		Port:           v.GetString("PORT"),
		DatabaseDriver: v.GetString("DATABASE_DRIVER"),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		SeedPath:       v.GetString("SEED_PATH"),
		RedisURL:       v.GetString("REDIS_URL"),
		Routing: RoutingConfig{
			Providers:         splitList(v.GetString("ROUTING_PROVIDERS")),
			OSRMBaseURL:       v.GetString("OSRM_BASE_URL"),
			ORSBaseURL:        v.GetString("ORS_BASE_URL"),
			ORSAPIKey:         v.GetString("ORS_API_KEY"),
			GraphHopperURL:    v.GetString("GRAPHHOPPER_BASE_URL"),
			GraphHopperAPIKey: v.GetString("GRAPHHOPPER_API_KEY"),
			Attempts:          v.GetInt("ROUTE_RETRY_ATTEMPTS"),
			BackoffBase:       v.GetDuration("ROUTE_BACKOFF_BASE"),
			TimeoutBase:       v.GetDuration("ROUTE_TIMEOUT_BASE"),
			TimeoutStep:       v.GetDuration("ROUTE_TIMEOUT_STEP"),
			RateLimit:         v.GetFloat64("PROVIDER_RATE_LIMIT"),
			RateBurst:         v.GetInt("PROVIDER_RATE_BURST"),
		},
		Cache: CacheConfig{
			Size:      v.GetInt("ROUTE_CACHE_SIZE"),
			TTL:       v.GetDuration("ROUTE_CACHE_TTL"),
			Precision: v.GetInt("CACHE_KEY_PRECISION"),
		},
		Dispatch: DispatchConfig{
			Workers:          v.GetInt("EVALUATOR_WORKERS"),
			FallbackSpeedKmh: v.GetFloat64("FALLBACK_SPEED_KMH"),
			DurationSource:   strings.ToLower(v.GetString("DURATION_SOURCE")),
			RelaxExclusivity: v.GetBool("RELAX_EXCLUSIVITY"),
			CycleInterval:    v.GetDuration("CYCLE_INTERVAL"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return cfg, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
