package config

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/yourorg/afford-api/internal/env"
)

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type IncomeCache struct {
	TTL         time.Duration
	StaleAfter  time.Duration
	NegativeTTL time.Duration
}

type Hydrator struct {
	Zips           []string
	MaxPrice       float64
	Interval       time.Duration
	Schedule       string // cron spec; wins over Interval when set
	Pause          time.Duration
	RequestTimeout time.Duration
	RunOnce        bool
}

// Config is everything the binaries read from the environment.
type Config struct {
	Port          int
	RapidAPIKey   string
	RapidAPIRPS   float64
	Redis         Redis
	PostgresDSN   string
	IncomeCache   IncomeCache
	ListingMaxAge time.Duration
	Hydrator      Hydrator
}

// Load reads dotenvPath into the environment when it exists, then the environment.
func Load(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
			log.Printf("[INFO] no %s file found, using system environment variables", dotenvPath)
		}
	}
	return &Config{
		Port:        env.GetInt("PORT", 4002),
		RapidAPIKey: env.Get("RAPIDAPI_KEY", env.Get("X_RAPID_API_KEY", "")),
		RapidAPIRPS: env.GetFloat("RAPIDAPI_RPS", 5),
		Redis: Redis{
			Addr:     env.Get("REDIS_ADDR", ""),
			Password: env.Get("REDIS_PASSWORD", ""),
			DB:       env.GetInt("REDIS_DB", 0),
		},
		PostgresDSN: env.Get("PG_DSN", ""),
		IncomeCache: IncomeCache{
			TTL:         env.GetDuration("INCOME_CACHE_TTL", 30*24*time.Hour),
			StaleAfter:  env.GetDuration("INCOME_STALE_AFTER", 7*24*time.Hour),
			NegativeTTL: env.GetDuration("INCOME_NEGATIVE_TTL", 10*time.Minute),
		},
		ListingMaxAge: env.GetDuration("LISTINGS_MAX_AGE", 6*time.Hour),
		Hydrator: Hydrator{
			Zips:           env.List("HYDRATOR_ZIPS"),
			MaxPrice:       env.GetFloat("HYDRATOR_MAX_PRICE", 1_000_000),
			Interval:       env.GetDuration("HYDRATOR_INTERVAL", 6*time.Hour),
			Schedule:       env.Get("HYDRATOR_SCHEDULE", ""),
			Pause:          env.GetDuration("HYDRATOR_PAUSE", 1500*time.Millisecond),
			RequestTimeout: env.GetDuration("HYDRATOR_REQUEST_TIMEOUT", 12*time.Second),
			RunOnce:        env.GetBool("HYDRATOR_RUN_ONCE", false),
		},
	}, nil
}
