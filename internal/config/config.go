package config

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by MustLoad.
const EnvPrefix = "LOCUS"

// ConfigFileEnv points to an optional dotenv file with unprefixed keys (HTTP_PORT=8080).
// Environment variables take precedence over the file.
const ConfigFileEnv = "LOCUS_CONFIG_FILE"

// Config holds the configuration settings for the address resolution service.
type Config struct {
	Env      string         // Env is the current environment: local, development, production.
	HTTPPort int            // HTTPPort is the port of the resolution API and the metrics endpoint.
	Provider ProviderConfig // Provider holds the upstream endpoints and limits.
	Backfill BackfillConfig // Backfill configures the customer address backfill job.
	Database PostgresConfig // Database holds the postgres database configuration.
}

// ProviderConfig describes the three upstream providers.
type ProviderConfig struct {
	GeocoderType            string        // nominatim or google
	GeocoderKey             string        // API key, required for google
	GeocoderURL             string        // overrides the Nominatim base URL
	GeocoderRateLimitPerSec int           // requests per second towards the geocoder, 0 disables the limit
	SearchLimit             int           // candidates returned for free-text searches
	PostalRegistryURL       string        // overrides the ViaCEP base URL
	CoordinateRegistryURL   string        // overrides the BrasilAPI base URL
	Timeout                 time.Duration // per-call timeout
}

// BackfillConfig controls the background job that locates stored customer addresses.
type BackfillConfig struct {
	Enabled  bool
	Workers  int
	Interval time.Duration
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// MustLoad reads the configuration from the environment and the optional config file.
// It panics when a value cannot be parsed.
func MustLoad() *Config {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if file, ok := os.LookupEnv(ConfigFileEnv); ok && file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			panic("failed to read configuration file: " + err.Error())
		}
	}

	httpPort, err := strconv.Atoi(v.GetString("http_port"))
	if err != nil {
		panic("failed to parse port for http server from configuration")
	}

	timeout, err := time.ParseDuration(v.GetString("provider_timeout"))
	if err != nil {
		panic("failed to parse provider timeout from configuration")
	}

	searchLimit, err := strconv.Atoi(v.GetString("geocoder_limit"))
	if err != nil || searchLimit <= 0 {
		panic("failed to parse geocoder limit from configuration, must be a positive integer")
	}

	rateLimit, err := strconv.Atoi(v.GetString("geocoder_rate_limit"))
	if err != nil || rateLimit < 0 {
		panic("failed to parse geocoder rate limit from configuration, must be a non-negative integer")
	}

	workers, err := strconv.Atoi(v.GetString("workers"))
	if err != nil {
		panic("failed to parse workers from configuration, must be an integer")
	}

	interval, err := time.ParseDuration(v.GetString("interval"))
	if err != nil {
		panic("failed to parse interval from configuration")
	}

	backfill, err := strconv.ParseBool(v.GetString("backfill_enabled"))
	if err != nil {
		panic("failed to parse backfill flag from configuration, must be a boolean")
	}

	return &Config{
		Env:      v.GetString("env"),
		HTTPPort: httpPort,
		Provider: ProviderConfig{
			GeocoderType:            v.GetString("geocoder_type"),
			GeocoderKey:             v.GetString("geocoder_key"),
			GeocoderURL:             v.GetString("geocoder_url"),
			SearchLimit:             searchLimit,
			PostalRegistryURL:       v.GetString("postal_registry_url"),
			CoordinateRegistryURL:   v.GetString("coordinate_registry_url"),
			Timeout:                 timeout,
			GeocoderRateLimitPerSec: rateLimit,
		},
		Backfill: BackfillConfig{
			Enabled:  backfill,
			Workers:  workers,
			Interval: interval,
		},
		Database: PostgresConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_username"),
			Password: v.GetString("db_password"),
			Name:     v.GetString("db_name"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("http_port", "8080")
	v.SetDefault("geocoder_type", "nominatim")
	v.SetDefault("geocoder_key", "")
	v.SetDefault("geocoder_url", "")
	v.SetDefault("geocoder_limit", "5")
	v.SetDefault("geocoder_rate_limit", "1")
	v.SetDefault("postal_registry_url", "")
	v.SetDefault("coordinate_registry_url", "")
	v.SetDefault("provider_timeout", "10s")
	v.SetDefault("workers", "4")
	v.SetDefault("interval", "10m")
	v.SetDefault("backfill_enabled", "false")
	v.SetDefault("db_host", "")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_username", "")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "")
}
