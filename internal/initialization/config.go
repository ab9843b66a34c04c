package initialization

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all platform configuration.
type Config struct {
	// Server settings
	HTTPAddress string

	// Connection persistence (Redis). Empty address keeps connections
	// in memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Monetization persistence (MongoDB). Empty URI keeps monetization
	// records in memory.
	MongoURI      string
	MongoDatabase string

	// Payments. Empty key selects the simulated processor.
	StripeSecretKey string

	// Row-processing backend
	CoreLoopBaseURL string

	// OAuth providers
	OAuthRedirectURI   string
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string
	SlackClientID      string
	SlackClientSecret  string
	NotionClientID     string
	NotionClientSecret string
}

// LoadConfig loads configuration from files and environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Configure environment variables - do this BEFORE reading config
	v.AutomaticEnv()
	v.SetEnvPrefix("") // No prefix for env vars
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set up explicit mappings between struct fields and environment variables
	envMappings := map[string]string{
		"HTTPAddress":        "HTTP_ADDRESS",
		"RedisAddr":          "REDIS_ADDR",
		"RedisPassword":      "REDIS_PASSWORD",
		"RedisDB":            "REDIS_DB",
		"MongoURI":           "MONGO_URI",
		"MongoDatabase":      "MONGO_DATABASE",
		"StripeSecretKey":    "STRIPE_SECRET_KEY",
		"CoreLoopBaseURL":    "CORELOOP_BASE_URL",
		"OAuthRedirectURI":   "OAUTH_REDIRECT_URI",
		"GoogleClientID":     "GOOGLE_CLIENT_ID",
		"GoogleClientSecret": "GOOGLE_CLIENT_SECRET",
		"GitHubClientID":     "GITHUB_CLIENT_ID",
		"GitHubClientSecret": "GITHUB_CLIENT_SECRET",
		"SlackClientID":      "SLACK_CLIENT_ID",
		"SlackClientSecret":  "SLACK_CLIENT_SECRET",
		"NotionClientID":     "NOTION_CLIENT_ID",
		"NotionClientSecret": "NOTION_CLIENT_SECRET",
	}

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	// Configure the config file settings
	v.SetConfigName("frontand_config") // Name of config file without extension
	v.SetConfigType("yaml")            // Type of config file
	// Add search paths for the config file
	v.AddConfigPath(".")               // Current working directory
	v.AddConfigPath("./config")        // Config subdirectory
	v.AddConfigPath("$HOME/.frontand") // Home directory

	// Try to read from config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, will just use environment variables and defaults
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Info().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	// Unmarshal config into struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	log.Debug().Msgf("Config loaded: HTTPAddress=%s, RedisAddr=%s, MongoURI set=%t, Stripe set=%t",
		config.HTTPAddress, config.RedisAddr, config.MongoURI != "", config.StripeSecretKey != "")

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server settings
	v.SetDefault("HTTPAddress", ":8080")
	v.SetDefault("OAuthRedirectURI", "http://localhost:8080/oauth/callback")
	v.SetDefault("MongoDatabase", "frontand")
}
