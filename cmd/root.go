package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Provider names accepted by -provider.
const (
	ProviderGoogle  = "google"
	ProviderYelp    = "yelp"
	ProviderElastic = "elastic"
)

// Config holds CLI configuration.
type Config struct {
	ConfigDir string
	DBPath    string

	Provider     string
	GoogleAPIKey string
	YelpAPIKey   string
	ElasticURL   string
	ElasticIndex string
	CacheSize    int

	// Lat and Lng seed the initial URL. Empty means no location.
	Lat string
	Lng string
	// Position is the device position as "lat,lng". Empty means the lookup
	// never resolves.
	Position string

	Radius     int
	Type       string
	Narrow     int
	AutoSearch bool

	LogFile  string
	LogLevel string

	ShowVersion bool
}

// ParseFlags parses command-line flags and returns configuration.
func ParseFlags(version string) (*Config, error) {
	config := &Config{}

	// Load .env files first so env-based defaults work with flag parsing.
	// Existing environment variables win.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	flag.StringVar(&config.DBPath, "db", "", "Path to SQLite database file (default: ~/.wander/wander.db)")
	flag.StringVar(&config.Provider, "provider", os.Getenv("WANDER_PROVIDER"), "Places provider: google, yelp or elastic (or set WANDER_PROVIDER)")
	flag.StringVar(&config.GoogleAPIKey, "google-key", "", "Google Maps API key (or set GOOGLE_MAPS_API_KEY env var)")
	flag.StringVar(&config.YelpAPIKey, "yelp-key", "", "Yelp Fusion API key (or set YELP_API_KEY env var)")
	flag.StringVar(&config.ElasticURL, "elastic-url", envOr("ELASTIC_URL", "http://localhost:9200"), "Elasticsearch URL (or set ELASTIC_URL)")
	flag.StringVar(&config.ElasticIndex, "elastic-index", "places", "Elasticsearch index holding places")
	flag.IntVar(&config.CacheSize, "cache-size", envInt("WANDER_CACHE_SIZE", 128), "Number of result pages kept in memory")
	flag.StringVar(&config.Lat, "lat", "", "Initial map center latitude")
	flag.StringVar(&config.Lng, "lng", "", "Initial map center longitude")
	flag.StringVar(&config.Position, "position", os.Getenv("WANDER_POSITION"), "Device position as lat,lng (or set WANDER_POSITION)")
	flag.IntVar(&config.Radius, "radius", 1500, "Default search radius in meters")
	flag.StringVar(&config.Type, "type", "tourist_attraction", "Default place type")
	flag.IntVar(&config.Narrow, "narrow", 100, "Terminal width in columns below which the search options collapse")
	flag.BoolVar(&config.AutoSearch, "auto-search", true, "Search automatically after choosing a new center")
	flag.StringVar(&config.LogFile, "log", os.Getenv("WANDER_LOG_FILE"), "Log file path, or \"discard\" (default: ~/.wander/wander.log)")
	flag.StringVar(&config.LogLevel, "log-level", envOr("WANDER_LOG_LEVEL", "info"), "Log level: debug, info, warn or error")
	flag.BoolVar(&config.ShowVersion, "version", false, "Print version and exit")
	flag.Parse()

	if config.ShowVersion {
		fmt.Println("wander", version)
		os.Exit(0)
	}

	config.Provider = strings.ToLower(strings.TrimSpace(config.Provider))
	if config.GoogleAPIKey == "" {
		config.GoogleAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	}
	if config.YelpAPIKey == "" {
		config.YelpAPIKey = os.Getenv("YELP_API_KEY")
	}

	// Set default paths if not specified
	if config.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		config.ConfigDir = filepath.Join(home, ".wander")
		if err := os.MkdirAll(config.ConfigDir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		config.DBPath = filepath.Join(config.ConfigDir, "wander.db")
	} else {
		config.ConfigDir = filepath.Dir(config.DBPath)
	}
	if config.LogFile == "" {
		config.LogFile = filepath.Join(config.ConfigDir, "wander.log")
	}

	if err := config.applyOnboarding(); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyOnboarding fills the provider and its key from the first-run wizard
// when flags and env left them open.
func (c *Config) applyOnboarding() error {
	settings, err := loadOnboardingSettings(c.ConfigDir)
	if err != nil {
		return fmt.Errorf("failed to load onboarding settings: %w", err)
	}

	if c.Provider == "" && shouldRunOnboarding(settings) {
		settings, err = runOnboarding(c.ConfigDir, c.GoogleAPIKey, c.YelpAPIKey)
		if err != nil {
			return fmt.Errorf("failed to run onboarding: %w", err)
		}
	}

	if c.Provider == "" {
		c.Provider = settings.Provider
	}
	if c.Provider == "" {
		c.Provider = c.guessProvider()
	}

	switch c.Provider {
	case ProviderGoogle:
		if c.GoogleAPIKey == "" {
			key, err := loadSecureAPIKey(c.ConfigDir, ProviderGoogle)
			if err != nil {
				return fmt.Errorf("failed to load secure Google API key: %w", err)
			}
			c.GoogleAPIKey = key
		}
	case ProviderYelp:
		if c.YelpAPIKey == "" {
			key, err := loadSecureAPIKey(c.ConfigDir, ProviderYelp)
			if err != nil {
				return fmt.Errorf("failed to load secure Yelp API key: %w", err)
			}
			c.YelpAPIKey = key
		}
	}
	return nil
}

func (c *Config) guessProvider() string {
	switch {
	case c.GoogleAPIKey != "":
		return ProviderGoogle
	case c.YelpAPIKey != "":
		return ProviderYelp
	default:
		return ""
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case "", ProviderGoogle, ProviderYelp, ProviderElastic:
	default:
		return fmt.Errorf("unknown provider %q (want google, yelp or elastic)", c.Provider)
	}
	if c.Radius <= 0 {
		return fmt.Errorf("radius must be positive, got %d", c.Radius)
	}
	if (c.Lat == "") != (c.Lng == "") {
		return fmt.Errorf("-lat and -lng must be given together")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}
