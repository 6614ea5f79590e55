package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv                 string
	Port                   string
	WorkDir                string
	APIKey                 string
	PublicRoot             string
	TextureBaseURL         string
	GeneratorBackend       string
	GeneratorPython        string
	GeneratorDir           string
	GeneratorTimeout       time.Duration
	GeneratorLaunchRetries int
	ReuseOutput            bool
	LayoutFile             string
	GeoIPDBPath            string
	DefaultLocale          string
	CORSAllowedOrigins     []string
	HTTPReadTimeout        time.Duration
	HTTPWriteTimeout       time.Duration
	HTTPIdleTimeout        time.Duration
	RateLimitPerMin        int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// WD and API_KEY are read once here and treated as immutable afterwards.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:                 getEnv("APP_ENV", "development"),
		Port:                   getEnv("PORT", "3901"),
		WorkDir:                strings.TrimSpace(os.Getenv("WD")),
		APIKey:                 strings.TrimSpace(os.Getenv("API_KEY")),
		PublicRoot:             getEnv("PUBLIC_ROOT", "public"),
		TextureBaseURL:         strings.TrimSpace(os.Getenv("TEXTURE_BASE_URL")),
		GeneratorBackend:       strings.ToLower(getEnv("GENERATOR_BACKEND", "stable_horde")),
		GeneratorPython:        getEnv("GENERATOR_PYTHON", "python"),
		GeneratorDir:           getEnv("GENERATOR_DIR", "."),
		GeneratorTimeout:       getEnvDuration("GENERATOR_TIMEOUT_SECONDS", 600*time.Second),
		GeneratorLaunchRetries: getEnvInt("GENERATOR_LAUNCH_RETRIES", 1),
		ReuseOutput:            getEnvBool("GALLERY_REUSE_OUTPUT", false),
		LayoutFile:             os.Getenv("GALLERY_LAYOUT_FILE"),
		GeoIPDBPath:            os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:          getEnv("DEFAULT_LOCALE", "en"),
		CORSAllowedOrigins:     splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		HTTPReadTimeout:        getEnvDuration("HTTP_READ_TIMEOUT_SECONDS", 15*time.Second),
		HTTPWriteTimeout:       getEnvDuration("HTTP_WRITE_TIMEOUT_SECONDS", 30*time.Second),
		HTTPIdleTimeout:        getEnvDuration("HTTP_IDLE_TIMEOUT_SECONDS", 60*time.Second),
		RateLimitPerMin:        getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	switch cfg.GeneratorBackend {
	case "stable_horde", "craiyon":
	default:
		return nil, fmt.Errorf("GENERATOR_BACKEND %q is not supported", cfg.GeneratorBackend)
	}

	if cfg.GeneratorBackend == "stable_horde" && cfg.WorkDir == "" {
		return nil, fmt.Errorf("WD is required for the stable_horde backend")
	}

	if cfg.GeneratorTimeout <= 0 {
		return nil, fmt.Errorf("GENERATOR_TIMEOUT_SECONDS must be positive")
	}

	if cfg.GeneratorLaunchRetries < 0 {
		cfg.GeneratorLaunchRetries = 0
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvDuration reads a whole number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
