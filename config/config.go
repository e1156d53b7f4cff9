package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type ConfigStruct struct {
	Genius  GeniusConfig
	Scraper ScraperConfig
	Search  SearchConfig
	Sentry  SentryConfig
	Options Options
}

type GeniusConfig struct {
	AccessToken string
	APIURL      string
	MobileURL   string
}

type ScraperConfig struct {
	RelayURL      string
	UserAgent     string
	LrclibEnabled bool
}

type SearchConfig struct {
	MaxPages       int
	PageSize       int
	BatchSize      int
	TimeoutSeconds int
	SongTimeout    int // seconds
}

type SentryConfig struct {
	DSN     string
	Release string
}

type Options struct {
	Port     string
	LogLevel string
}

func (g *GeniusConfig) HasToken() bool {
	return g.AccessToken != ""
}

func (s *ScraperConfig) RelayEnabled() bool {
	return s.RelayURL != ""
}

func (s *SearchConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

func (s *SearchConfig) SongTimeoutDuration() time.Duration {
	return time.Duration(s.SongTimeout) * time.Second
}

var Config *ConfigStruct

func NewConfig() {
	config := &ConfigStruct{
		Genius: GeniusConfig{
			AccessToken: os.Getenv("GENIUS_ACCESS_TOKEN"),
			APIURL:      getURL("GENIUS_API_URL", "https://api.genius.com"),
			MobileURL:   getURL("GENIUS_MOBILE_URL", "https://genius.com/mobile/lyrics"),
		},
		Scraper: ScraperConfig{
			RelayURL:      os.Getenv("LYRICS_RELAY_URL"),
			UserAgent:     getString("SCRAPER_USER_AGENT", DefaultUserAgent),
			LrclibEnabled: os.Getenv("LRCLIB_ENABLED") == "true",
		},
		Search: SearchConfig{
			MaxPages:       getBoundedInt("SEARCH_MAX_PAGES", 3, 10),
			PageSize:       getBoundedInt("SEARCH_PAGE_SIZE", 20, 50),
			BatchSize:      getBoundedInt("SEARCH_BATCH_SIZE", 5, 20),
			TimeoutSeconds: getBoundedInt("SEARCH_TIMEOUT_SECONDS", 60, 300),
			SongTimeout:    getBoundedInt("SONG_TIMEOUT_SECONDS", 10, 60),
		},
		Sentry: SentryConfig{
			DSN:     os.Getenv("SENTRY_DSN"),
			Release: os.Getenv("RELEASE"),
		},
		Options: Options{
			Port:     getString("PORT", "8080"),
			LogLevel: getString("LOG_LEVEL", "info"),
		},
	}

	Config = config
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// getURL is getString without trailing slashes, so paths can be appended.
func getURL(key, fallback string) string {
	return strings.TrimRight(getString(key, fallback), "/")
}

// getBoundedInt reads a positive integer, falling back to def when unset or
// invalid and capping at max.
func getBoundedInt(key string, def, max int) int {
	str := os.Getenv(key)
	if str == "" {
		return def
	}
	n, err := strconv.Atoi(str)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
