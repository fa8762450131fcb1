package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type ChannelEntry struct {
	Name        string `yaml:"name" validate:"required"`
	ChannelID   string `yaml:"channelId" validate:"required"`
	Description string `yaml:"description"`
	Priority    string `yaml:"priority" validate:"in:,high,normal,low"`
}

type StorageConfig struct {
	Path            string        `yaml:"path" validate:"required|unixPath"`
	FreshnessWindow time.Duration `yaml:"freshnessWindow"`
	MaxVideos       int           `yaml:"maxVideos"`
}

type QuotaConfig struct {
	DailyLimit      int     `yaml:"dailyLimit" validate:"required|min:1"`
	SafetyThreshold float64 `yaml:"safetyThreshold"`
}

type RefreshConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Interval      time.Duration `yaml:"interval" validate:"required|min:1"`
	WatchInterval time.Duration `yaml:"watchInterval"`
	Quota         QuotaConfig   `yaml:"quota"`
}

type RetentionConfig struct {
	HotDays        int `yaml:"hotDays"`
	ArchiveDays    int `yaml:"archiveDays"`
	AckedAlertDays int `yaml:"ackedAlertDays"`
}

type ArchiveConfig struct {
	Interval  time.Duration   `yaml:"interval" validate:"required|min:1"`
	AfterDays int             `yaml:"afterDays" validate:"required|min:1"`
	Retention RetentionConfig `yaml:"retention"`
}

type ProviderConfig struct {
	APIKey  string        `yaml:"apiKey"`
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

type AlertRule struct {
	Metric   string  `yaml:"metric" validate:"required"`
	Operator string  `yaml:"operator" validate:"required|in:>=,<=,>,<,=="`
	Value    float64 `yaml:"value"`
	Type     string  `yaml:"type" validate:"in:,success,warning,danger"`
	Message  string  `yaml:"message"`
	Enabled  bool    `yaml:"enabled"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	Channels  []ChannelEntry `yaml:"channels" validate:"required"`
	WebServer Server         `yaml:"webServer"`
	Storage   StorageConfig  `yaml:"storage"`
	Refresh   RefreshConfig  `yaml:"refresh"`
	Archive   ArchiveConfig  `yaml:"archive"`
	Provider  ProviderConfig `yaml:"provider"`
	Alerts    []AlertRule    `yaml:"alerts"`
	Logger    LoggerConfig   `yaml:"logger"`
	Cache     CacheConfig    `yaml:"cache"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}
