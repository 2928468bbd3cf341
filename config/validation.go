package config

import "fmt"

// validateConfig checks the loaded configuration for values that would make
// the service misbehave at runtime. Called once after loading.
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return err
	}
	if err := validateImagesConfig(&config.Images); err != nil {
		return err
	}
	if err := validateCacheConfig(&config.Cache); err != nil {
		return err
	}
	if err := validateRateLimitConfig(&config.RateLimit); err != nil {
		return err
	}
	return validateLoggingConfig(&config.Logging)
}

func validateServerConfig(server *ServerConfig) error {
	if server.Port < 1 || server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", server.Port)
	}
	if server.ReadTimeout <= 0 || server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	return nil
}

func validateImagesConfig(images *ImagesConfig) error {
	switch images.Backend {
	case "vips", "native":
	default:
		return fmt.Errorf("unknown images backend: %q (expected vips or native)", images.Backend)
	}
	if images.MaxSourceBytes <= 0 {
		return fmt.Errorf("images max source bytes must be positive, got %d", images.MaxSourceBytes)
	}
	for _, w := range images.Sizes {
		if w <= 0 {
			return fmt.Errorf("invalid width in IMAGES_SIZES: %d", w)
		}
	}
	for _, d := range images.Domains {
		if d == "" {
			return fmt.Errorf("empty hostname in IMAGES_DOMAINS")
		}
	}
	return nil
}

func validateCacheConfig(cache *CacheConfig) error {
	switch cache.Backend {
	case "fs":
		if cache.RootDir == "" {
			return fmt.Errorf("cache root dir is required for the fs backend")
		}
	case "postgres":
		if cache.DatabaseURL == "" {
			return fmt.Errorf("cache database URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown cache backend: %q (expected fs or postgres)", cache.Backend)
	}
	return nil
}

func validateRateLimitConfig(rl *RateLimitConfig) error {
	if rl.PerHostInterval < 0 {
		return fmt.Errorf("per-host rate limit interval must not be negative")
	}
	if rl.PerHostBurst < 1 {
		return fmt.Errorf("per-host rate limit burst must be at least 1")
	}
	return nil
}

func validateLoggingConfig(logging *LoggingConfig) error {
	switch logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %q", logging.Level)
	}
	switch logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format: %q", logging.Format)
	}
	return nil
}
