package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"supertube/internal/structures"
)

func validConfig() *structures.Config {
	return &structures.Config{
		Channels: []structures.ChannelEntry{
			{Name: "Test", ChannelID: "UC123"},
		},
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: structures.StorageConfig{
			Path: "/tmp/supertube.db",
		},
		Refresh: structures.RefreshConfig{
			Interval: 6 * time.Hour,
			Quota: structures.QuotaConfig{
				DailyLimit:      10000,
				SafetyThreshold: 0.9,
			},
		},
		Archive: structures.ArchiveConfig{
			Interval:  24 * time.Hour,
			AfterDays: 30,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	assert.NoError(t, NewCnfValidator(validConfig()).Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_NoChannels(t *testing.T) {
	c := validConfig()
	c.Channels = nil
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_ZeroQuotaLimit(t *testing.T) {
	c := validConfig()
	c.Refresh.Quota.DailyLimit = 0
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_SafetyThresholdAboveOne(t *testing.T) {
	c := validConfig()
	c.Refresh.Quota.SafetyThreshold = 1.5
	assert.Error(t, NewCnfValidator(c).Validate())
}
