package config

import (
	"log"
	"time"

	cenv "github.com/caarlos0/env/v11"
)

// RateLimitConfig drives the token bucket in front of the sign-in and
// sign-up endpoints.  The defaults allow a short burst of attempts and then
// one attempt every six seconds per client and route.
type RateLimitConfig struct {
	Enabled        bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"10"`
	RefillTokens   int           `env:"RATE_LIMIT_REFILL_TOKENS" envDefault:"1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"6s"`
	TTL            time.Duration `env:"RATE_LIMIT_TTL" envDefault:"10m"`
	KeyStrategy    string        `env:"RATE_LIMIT_KEY_STRATEGY" envDefault:"ip_route"`
	Prefix         string        `env:"RATE_LIMIT_PREFIX" envDefault:"museum:rl"`
	Debug          bool          `env:"RATE_LIMIT_DEBUG" envDefault:"false"`
}

func LoadRateLimitConfig() RateLimitConfig {
	return parseEnv[RateLimitConfig]("rate limit").normalize()
}

func (c RateLimitConfig) normalize() RateLimitConfig {
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
		c.TTL = minTTL
	}
	return c
}

// parseEnv fills a T from the process environment.  Unlike Parse it never
// fails: a malformed variable is logged and every field keeps its default.
func parseEnv[T any](name string) T {
	var v T
	if err := cenv.Parse(&v); err != nil {
		log.Printf("config: %s: %v; using defaults", name, err)
		v = *new(T)
		_ = cenv.ParseWithOptions(&v, cenv.Options{Environment: map[string]string{}})
	}
	return v
}
