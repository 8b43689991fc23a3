package config

import "time"

// RateLimitConfig parameterizes the token-bucket limiter in front of member
// booking routes. Booking storms around popular classes are expected (the
// serializable transaction handles correctness; the limiter only keeps
// retry floods off the database).
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

// LoadRateLimitConfig builds a RateLimitConfig from the environment,
// clamping degenerate values to sane minimums.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        boolEnv("RATE_LIMIT_ENABLED", true),
		Capacity:       intEnv("RATE_LIMIT_CAPACITY", 30),
		RefillTokens:   intEnv("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: durEnv("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            durEnv("RATE_LIMIT_TTL", 10*time.Minute),
		Prefix:         getenv("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if min := 5 * cfg.RefillInterval; cfg.TTL < min {
		cfg.TTL = min
	}
	return cfg
}
