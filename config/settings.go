package config

import (
	"Recit/services/geo"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// devSecret signs tokens and sessions outside production only.
const devSecret = "secret"

// Settings holds the tunables injected into the services at start-up.
type Settings struct {
	GamesPageSize     int           `env:"GAMES_PAGE_SIZE" envDefault:"15"`
	UserGamesPageSize int           `env:"USER_GAMES_PAGE_SIZE" envDefault:"3"`
	MessagesPageSize  int           `env:"MESSAGES_PAGE_SIZE" envDefault:"15"`
	DefaultBounds     geo.Bounds    `env:"DEFAULT_BOUNDS" envDefault:"47.7,-122.4,47.5,-122.2"`
	BusQueueSize      int           `env:"BUS_QUEUE_SIZE" envDefault:"64"`
	Timezone          string        `env:"TIMEZONE" envDefault:"UTC"`
	JWTSecret         string        `env:"JWT_SECRET" envDefault:"secret"`
	JWTTTL            time.Duration `env:"JWT_TTL" envDefault:"168h"`
	SessionKey        string        `env:"KEY" envDefault:"secret"`
	Port              string        `env:"PORT"`
	UseHTTPS          bool          `env:"USE_HTTPS" envDefault:"false"`
	Prod              bool          `env:"PROD" envDefault:"false"`
	MigratePostgres   bool          `env:"MIGRATE_POSTGRES" envDefault:"false"`
}

// Location resolves the configured timezone, used to compute the date
// buckets of the games feed.
func (s Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		log.Printf("[CONFIG] Unknown timezone %q, falling back to UTC", s.Timezone)
		return time.UTC
	}
	return loc
}

// LoadSettings reads the .env file if present and parses the environment.
func LoadSettings() (Settings, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Settings{}, fmt.Errorf("error loading .env: %w", err)
		}
	}
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("error parsing settings: %w", err)
	}
	if s.GamesPageSize <= 0 || s.UserGamesPageSize <= 0 || s.MessagesPageSize <= 0 {
		return Settings{}, fmt.Errorf("page sizes must be positive")
	}
	if s.BusQueueSize <= 0 {
		return Settings{}, fmt.Errorf("BUS_QUEUE_SIZE must be positive")
	}
	if s.Prod {
		if s.JWTSecret == "" || s.JWTSecret == devSecret {
			return Settings{}, fmt.Errorf("JWT_SECRET must be set in production")
		}
		if s.SessionKey == "" || s.SessionKey == devSecret {
			return Settings{}, fmt.Errorf("KEY must be set in production")
		}
	}
	return s, nil
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		GamesPageSize:     15,
		UserGamesPageSize: 3,
		MessagesPageSize:  15,
		DefaultBounds:     geo.Bounds{North: 47.7, West: -122.4, South: 47.5, East: -122.2},
		BusQueueSize:      64,
		Timezone:          "UTC",
		JWTSecret:         devSecret,
		JWTTTL:            168 * time.Hour,
		SessionKey:        devSecret,
	}
}
