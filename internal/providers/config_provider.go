package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"supertube/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "SUPERTUBE_LOG_LEVEL")
	viper.BindEnv("storage.path", "SUPERTUBE_DB_PATH")
	viper.BindEnv("refresh.enabled", "SUPERTUBE_REFRESH_ENABLED")
	viper.BindEnv("refresh.interval", "SUPERTUBE_REFRESH_INTERVAL")
	viper.BindEnv("refresh.quota.dailyLimit", "SUPERTUBE_QUOTA_LIMIT")
	viper.BindEnv("provider.apiKey", "SUPERTUBE_API_KEY")
	viper.BindEnv("cache.enabled", "SUPERTUBE_CACHE_ENABLED")
	viper.BindEnv("cache.size", "SUPERTUBE_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	applyDefaults(&conf)

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "SuperTube"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func applyDefaults(conf *structures.Config) {
	if conf.Storage.FreshnessWindow <= 0 {
		conf.Storage.FreshnessWindow = 12 * time.Hour
	}
	if conf.Storage.MaxVideos <= 0 {
		conf.Storage.MaxVideos = 50
	}
	if conf.Refresh.WatchInterval <= 0 {
		conf.Refresh.WatchInterval = 5 * time.Minute
	}
	if conf.Refresh.Quota.SafetyThreshold <= 0 {
		conf.Refresh.Quota.SafetyThreshold = 0.90
	}
	if conf.Archive.Retention.HotDays <= 0 {
		conf.Archive.Retention.HotDays = 180
	}
	if conf.Archive.Retention.ArchiveDays <= 0 {
		conf.Archive.Retention.ArchiveDays = 730
	}
	if conf.Archive.Retention.AckedAlertDays <= 0 {
		conf.Archive.Retention.AckedAlertDays = 30
	}
	if conf.Provider.Timeout <= 0 {
		conf.Provider.Timeout = 30 * time.Second
	}
}
