package config

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all catalog requests.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36"

const (
	DefaultKodiBaseURL     = "https://kodi.titlovi.com/api/subtitles/"
	DefaultDownloadBaseURL = "https://titlovi.com/"
	DefaultAppHeader       = "titlovi-go"
)

type Config struct {
	KodiBaseURL           string `mapstructure:"kodi_base_url"`
	DownloadBaseURL       string `mapstructure:"download_base_url"`
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	ClientTimeout         string `mapstructure:"client_timeout"` // Go duration string like "30s"
	UserAgent             string `mapstructure:"user_agent"`
	AppHeader             string `mapstructure:"app_header"`
	CatalogTimeZone       string `mapstructure:"catalog_timezone"` // zone of zone-less catalog timestamps
	LogLevel              string `mapstructure:"log_level"`
	Credentials           struct {
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
	} `mapstructure:"credentials"`
	Store struct {
		Type string `mapstructure:"type"` // memory, file or sqlite
		Path string `mapstructure:"path"`
	} `mapstructure:"store"`
	Cache struct {
		Provider string `mapstructure:"provider"` // memory or redis
		Size     int    `mapstructure:"size"`
		TTL      string `mapstructure:"ttl"`
		Redis    struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
	Search struct {
		MaxPages    int  `mapstructure:"max_pages"`
		Deduplicate bool `mapstructure:"deduplicate"`
	} `mapstructure:"search"`
	Archive struct {
		Extensions        []string `mapstructure:"extensions"`
		MaxEntrySize      int64    `mapstructure:"max_entry_size"`
		MaxTotalSize      int64    `mapstructure:"max_total_size"`
		FallbackEncoding  string   `mapstructure:"fallback_encoding"`
		NormalizeEncoding bool     `mapstructure:"normalize_encoding"`
	} `mapstructure:"archive"`
	Media struct {
		FFprobeBinary string `mapstructure:"ffprobe_binary"`
	} `mapstructure:"media"`
	Breaker struct {
		FailureThreshold uint   `mapstructure:"failure_threshold"`
		Delay            string `mapstructure:"delay"`
	} `mapstructure:"breaker"`
	Server struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
	DisabledProviders []string `mapstructure:"disabled_providers"`
}

var (
	mu           sync.RWMutex
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: false,
	}).With().Timestamp().Logger()

	cfg, err := Load("")
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}
	apply(cfg)
}

// Reload loads the configuration from path (or the default search paths when
// empty) and replaces the process-wide configuration and log level.
func Reload(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	apply(cfg)
	return cfg, nil
}

func apply(cfg *Config) {
	level := zerolog.InfoLevel
	if cfg.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", cfg.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)

	mu.Lock()
	logger = logger.Level(level)
	globalConfig = cfg
	mu.Unlock()

	logger.Debug().Str("level", level.String()).Msg("Configuration loaded")
}

// Load reads configuration from an explicit file, or from config.yaml in the
// working directory and ./config when path is empty. Environment variables
// prefixed with APP_ override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("credentials.username", "APP_CREDENTIALS_USERNAME", "TITLOVI_USERNAME")
	_ = v.BindEnv("credentials.password", "APP_CREDENTIALS_PASSWORD", "TITLOVI_PASSWORD")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("kodi_base_url", DefaultKodiBaseURL)
	v.SetDefault("download_base_url", DefaultDownloadBaseURL)
	v.SetDefault("client_timeout", "30s")
	v.SetDefault("app_header", DefaultAppHeader)
	v.SetDefault("catalog_timezone", "Europe/Zagreb")
	v.SetDefault("store.type", "file")
	v.SetDefault("store.path", "titlovi-state.toml")
	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.size", 200)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("search.max_pages", 50)
	v.SetDefault("search.deduplicate", true)
	v.SetDefault("archive.extensions", []string{".srt"})
	v.SetDefault("archive.max_entry_size", 20*1024*1024)
	v.SetDefault("archive.max_total_size", 100*1024*1024)
	v.SetDefault("archive.fallback_encoding", "windows-1250")
	v.SetDefault("archive.normalize_encoding", false)
	v.SetDefault("media.ffprobe_binary", "ffprobe")
	v.SetDefault("breaker.failure_threshold", 5)
	v.SetDefault("breaker.delay", "1m")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.address", "localhost")
	v.SetDefault("metrics.port", 9090)
}

// Timeout returns the parsed client timeout, falling back to 30s.
func (c *Config) Timeout() time.Duration {
	return parseDuration(c.ClientTimeout, 30*time.Second)
}

// CacheTTL returns the parsed download cache TTL, falling back to one hour.
func (c *Config) CacheTTL() time.Duration {
	return parseDuration(c.Cache.TTL, time.Hour)
}

// BreakerDelay returns how long the catalog circuit breaker stays open.
func (c *Config) BreakerDelay() time.Duration {
	return parseDuration(c.Breaker.Delay, time.Minute)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logger := GetLogger()
		logger.Warn().Err(err).Str("duration", value).Dur("fallback", fallback).Msg("Invalid duration, using default")
		return fallback
	}
	return d
}

func GetConfig() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return globalConfig
}

func GetUserAgent() string {
	if cfg := GetConfig(); cfg != nil && cfg.UserAgent != "" {
		return cfg.UserAgent
	}

	return DefaultUserAgent
}

func GetLogger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
