package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRequiresDatabaseURL(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate())

	cfg.DatabaseURL = "postgresql://localhost:5432/service_station"
	assert.NoError(t, cfg.Validate())
}

func TestEnvironmentPredicates(t *testing.T) {
	assert.True(t, (&Config{GoEnv: "production"}).IsProduction())
	assert.True(t, (&Config{GoEnv: "test"}).IsTest())
	assert.True(t, (&Config{GoEnv: "development"}).IsDevelopment())
	assert.False(t, (&Config{GoEnv: "development"}).IsProduction())
}

func TestGetEnv(t *testing.T) {
	os.Setenv("CONFIG_TEST_KEY", "set-value")
	defer os.Unsetenv("CONFIG_TEST_KEY")

	assert.Equal(t, "set-value", getEnv("CONFIG_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", getEnv("CONFIG_TEST_MISSING", "fallback"))
}

func TestSetConfigSeam(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	cfg := &Config{DatabaseURL: "postgresql://localhost:5432/test", Port: "9090"}
	SetConfig(cfg)
	assert.Equal(t, cfg, GetConfig())
}
