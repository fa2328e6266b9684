package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validProductionConfig() *Config {
	return &Config{
		Env:              "production",
		Port:             "8080",
		JWTSecret:        "secure-secret-at-least-32-chars-long",
		DBPassword:       "secure-password",
		DBSSLMode:        "require",
		StorageSecretKey: "real-storage-secret",
	}
}

func TestConfigValidateProduction(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Valid production config", func(*Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing JWT secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"Default JWT secret", func(c *Config) { c.JWTSecret = "your-secret-key-change-in-production" }, true},
		{"Short JWT secret", func(c *Config) { c.JWTSecret = "short" }, true},
		{"Default DB password", func(c *Config) { c.DBPassword = "password" }, true},
		{"Empty DB password", func(c *Config) { c.DBPassword = "" }, true},
		{"Default storage secret", func(c *Config) { c.StorageSecretKey = "minioadmin" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validProductionConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigValidateDevelopmentIsLenient(t *testing.T) {
	c := &Config{
		Env:              "development",
		Port:             "8460",
		JWTSecret:        "short-dev-secret",
		DBPassword:       "password",
		StorageSecretKey: "minioadmin",
	}
	assert.NoError(t, c.Validate(), "development tolerates weak defaults")
}

func TestConfigIsProduction(t *testing.T) {
	assert.True(t, (&Config{Env: "production"}).IsProduction())
	assert.True(t, (&Config{Env: "prod"}).IsProduction())
	assert.False(t, (&Config{Env: "development"}).IsProduction())
	assert.False(t, (&Config{Env: "test"}).IsProduction())
}
