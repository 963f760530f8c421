package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DataPath            string
	RatesTTL            time.Duration
	DefaultBaseCurrency string

	RefreshInterval time.Duration
	RequestTimeout  time.Duration

	CoinGeckoURL           string
	ExchangeRateAPIURL     string
	ExchangeRateAPIKey     string

	Port         string
	IsProduction bool

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
}

// LoadConfig loads configuration from environment variables and a .env file
// if present. Defaults cover a local single-node run.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("DATA_PATH", "data/")
	viper.SetDefault("RATES_TTL_SECONDS", 300)
	viper.SetDefault("DEFAULT_BASE_CURRENCY", "USD")
	viper.SetDefault("REFRESH_INTERVAL_SECONDS", 300)
	viper.SetDefault("REQUEST_TIMEOUT_SECONDS", 10)
	viper.SetDefault("COINGECKO_URL", "https://api.coingecko.com/api/v3")
	viper.SetDefault("EXCHANGERATE_API_URL", "https://v6.exchangerate-api.com/v6")
	viper.SetDefault("EXCHANGERATE_API_KEY", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "tradehub-backend")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DataPath = viper.GetString("DATA_PATH")
	cfg.RatesTTL = time.Duration(viper.GetInt("RATES_TTL_SECONDS")) * time.Second
	cfg.DefaultBaseCurrency = viper.GetString("DEFAULT_BASE_CURRENCY")
	cfg.RefreshInterval = time.Duration(viper.GetInt("REFRESH_INTERVAL_SECONDS")) * time.Second
	cfg.RequestTimeout = time.Duration(viper.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second
	cfg.CoinGeckoURL = viper.GetString("COINGECKO_URL")
	cfg.ExchangeRateAPIURL = viper.GetString("EXCHANGERATE_API_URL")
	cfg.ExchangeRateAPIKey = viper.GetString("EXCHANGERATE_API_KEY")
	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration)
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	if cfg.ExchangeRateAPIKey == "" {
		log.Println("Warning: EXCHANGERATE_API_KEY not set. Fiat rates will rely on the fallback table.")
	}

	return cfg, nil
}
