package config_test

import (
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/locus/internal/config"
	"github.com/stretchr/testify/assert"
)

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("LOCUS_ENV", "local")
	t.Setenv("LOCUS_INTERVAL", "15m")
	t.Setenv("LOCUS_GEOCODER_TYPE", "google")
	t.Setenv("LOCUS_GEOCODER_KEY", "testAPIKey")
	t.Setenv("LOCUS_PROVIDER_TIMEOUT", "3s")
	t.Setenv("LOCUS_BACKFILL_ENABLED", "true")
	t.Setenv("LOCUS_DB_HOST", "testHost")
	t.Setenv("LOCUS_DB_PORT", "12345")
	t.Setenv("LOCUS_DB_USERNAME", "admin")
	t.Setenv("LOCUS_DB_PASSWORD", "adminpass")
	t.Setenv("LOCUS_DB_NAME", "testName")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "google", cfg.Provider.GeocoderType)
	assert.Equal(t, "testAPIKey", cfg.Provider.GeocoderKey)
	assert.Equal(t, 3*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 5, cfg.Provider.SearchLimit)
	assert.Equal(t, 1, cfg.Provider.GeocoderRateLimitPerSec)
	assert.True(t, cfg.Backfill.Enabled)
	assert.Equal(t, 4, cfg.Backfill.Workers)
	assert.Equal(t, 15*time.Minute, cfg.Backfill.Interval)
	assert.Equal(t, "testHost", cfg.Database.Host)
	assert.Equal(t, "12345", cfg.Database.Port)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "adminpass", cfg.Database.Password)
	assert.Equal(t, "testName", cfg.Database.Name)
}

func Test_MustLoadDefaults(t *testing.T) {
	cfg := config.MustLoad()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "nominatim", cfg.Provider.GeocoderType)
	assert.Equal(t, 10*time.Second, cfg.Provider.Timeout)
	assert.False(t, cfg.Backfill.Enabled)
	assert.Equal(t, "5432", cfg.Database.Port)
}

func Test_MustLoadFromFile(t *testing.T) {
	defer filet.CleanUp(t)

	file := filet.TmpFile(t, "", "ENV=development\nHTTP_PORT=9090\nGEOCODER_LIMIT=3\nWORKERS=8\n")
	t.Setenv("LOCUS_CONFIG_FILE", file.Name())
	t.Setenv("LOCUS_WORKERS", "2")

	cfg := config.MustLoad()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 3, cfg.Provider.SearchLimit)
	assert.Equal(t, 2, cfg.Backfill.Workers, "environment overrides the file")
}

func TestMustLoad_Errors(t *testing.T) {
	tests := []struct {
		key   string
		value string
		panic string
	}{
		{"LOCUS_INTERVAL", "error_value", "failed to parse interval from configuration"},
		{"LOCUS_HTTP_PORT", "error_value", "failed to parse port for http server from configuration"},
		{"LOCUS_WORKERS", "error_value", "failed to parse workers from configuration, must be an integer"},
		{"LOCUS_PROVIDER_TIMEOUT", "soon", "failed to parse provider timeout from configuration"},
		{"LOCUS_GEOCODER_LIMIT", "0", "failed to parse geocoder limit from configuration, must be a positive integer"},
		{"LOCUS_GEOCODER_RATE_LIMIT", "-1", "failed to parse geocoder rate limit from configuration, must be a non-negative integer"},
		{"LOCUS_GEOCODER_RATE_LIMIT", "fast", "failed to parse geocoder rate limit from configuration, must be a non-negative integer"},
		{"LOCUS_BACKFILL_ENABLED", "maybe", "failed to parse backfill flag from configuration, must be a boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			assert.PanicsWithValue(t, tt.panic, func() {
				config.MustLoad()
			})
		})
	}
}
