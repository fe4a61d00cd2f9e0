package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// StrictRateFallback controls the unknown-pair policy: when true,
	// resolving a pair absent from both the rate store and the default table
	// fails instead of falling back to parity.
	StrictRateFallback bool

	// ConversionTimeout bounds the conversion write transaction. Zero
	// disables the bound.
	ConversionTimeout time.Duration

	// RateLimitFormat is the ulule/limiter formatted rate for the API group,
	// e.g. "100-M" for 100 requests per minute per IP.
	RateLimitFormat string

	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "cashbox-ledger-app")
	viper.SetDefault("STRICT_RATE_FALLBACK", false)
	viper.SetDefault("CONVERSION_TIMEOUT", "10s")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.StrictRateFallback = viper.GetBool("STRICT_RATE_FALLBACK")

	conversionTimeoutStr := viper.GetString("CONVERSION_TIMEOUT")
	conversionTimeout, err := time.ParseDuration(conversionTimeoutStr)
	if err != nil {
		conversionTimeout = 10 * time.Second
		log.Printf("Warning: Invalid value for CONVERSION_TIMEOUT ('%s'). Defaulting to %s.\n", conversionTimeoutStr, conversionTimeout.String())
	}
	cfg.ConversionTimeout = conversionTimeout

	cfg.RateLimitFormat = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = viper.GetStringSlice("CORS_ALLOWED_ORIGINS")

	return cfg, nil
}
