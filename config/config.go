package config

import "time"

type Config struct {
	Server    ServerConfig    `json:"server"`
	Images    ImagesConfig    `json:"images"`
	Cache     CacheConfig     `json:"cache"`
	HTTP      HTTPConfig      `json:"http"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Logging   LoggingConfig   `json:"logging"`
}

type ServerConfig struct {
	Port         int           `json:"port" env:"SERVER_PORT" default:"9000"`
	ReadTimeout  time.Duration `json:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"60s"`
	WriteTimeout time.Duration `json:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"120s"`
	IdleTimeout  time.Duration `json:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"120s"`
}

type ImagesConfig struct {
	// Sizes is the ordered width allow-list. Empty permits any width.
	Sizes []int `json:"sizes" env:"IMAGES_SIZES" default:""`
	// Domains is the source hostname allow-list. Empty permits any domain.
	Domains []string `json:"domains" env:"IMAGES_DOMAINS" default:""`
	// Backend selects the transform implementation: "vips" or "native".
	Backend           string `json:"backend" env:"IMAGES_BACKEND" default:"vips"`
	MaxSourceBytes    int    `json:"max_source_bytes" env:"IMAGES_MAX_SOURCE_BYTES" default:"10485760"`
	AllowPrivateHosts bool   `json:"allow_private_hosts" env:"IMAGES_ALLOW_PRIVATE_HOSTS" default:"false"`
}

type CacheConfig struct {
	// Backend selects the cache store: "fs" or "postgres".
	Backend     string `json:"backend" env:"CACHE_BACKEND" default:"fs"`
	RootDir     string `json:"root_dir" env:"CACHE_ROOT_DIR" default:"./data"`
	DatabaseURL string `json:"database_url" env:"CACHE_DATABASE_URL"`
}

type HTTPConfig struct {
	ClientTimeout       time.Duration `json:"client_timeout" env:"HTTP_CLIENT_TIMEOUT" default:"30s"`
	DialTimeout         time.Duration `json:"dial_timeout" env:"HTTP_DIAL_TIMEOUT" default:"10s"`
	TLSHandshakeTimeout time.Duration `json:"tls_handshake_timeout" env:"HTTP_TLS_HANDSHAKE_TIMEOUT" default:"10s"`
	IdleConnTimeout     time.Duration `json:"idle_conn_timeout" env:"HTTP_IDLE_CONN_TIMEOUT" default:"90s"`
}

type RateLimitConfig struct {
	// PerHostInterval paces outbound fetches against a single upstream host.
	PerHostInterval time.Duration `json:"per_host_interval" env:"RATE_LIMIT_PER_HOST_INTERVAL" default:"100ms"`
	PerHostBurst    int           `json:"per_host_burst" env:"RATE_LIMIT_PER_HOST_BURST" default:"5"`
}

type LoggingConfig struct {
	Level  string `json:"level" env:"LOG_LEVEL" default:"info"`
	Format string `json:"format" env:"LOG_FORMAT" default:"json"`
}

// NewConfig creates a new configuration by loading from environment variables
// with fallback to default values.
func NewConfig() (*Config, error) {
	config := &Config{}

	if err := loadFromEnvironment(config); err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Load is an alias for NewConfig.
func Load() (*Config, error) {
	return NewConfig()
}
