package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/angas/elpriskvart-go/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var PriceAreas = []string{"SE1", "SE2", "SE3", "SE4"}

type AppConfigApi struct {
	Address string
	Port    int16
}

type AppConfigDatabase struct {
	Path string
}

type AppConfigEnergyPrice struct {
	Area string `mapstructure:"area"` // "SE1", "SE2", "SE3", "SE4"
	// Surcharge is always configured in öre/kWh, default: 0
	SurchargeOre *float64 `mapstructure:"surcharge_ore"`
	// Override for the elprisetjustnu API base URL, mainly for testing
	BaseUrl *string `mapstructure:"base_url"`
	// Local hour after which tomorrow's prices are published, default: 14
	PublicationHour *int `mapstructure:"publication_hour"`
	// Poll cadence while waiting for a fetch to succeed, default: 30
	RetryIntervalMinutes *int `mapstructure:"retry_interval_minutes"`
	// Poll cadence when no fetch is pending, default: 1
	NormalIntervalHours *int `mapstructure:"normal_interval_hours"`
	// Days of history kept behind today, default: 2
	RetentionDays *int `mapstructure:"retention_days"`
	// Timezone for calendar-day decisions, default: "Europe/Stockholm"
	Timezone *string `mapstructure:"timezone"`
}

func (e AppConfigEnergyPrice) GetSurchargeOre() float64 {
	if e.SurchargeOre == nil {
		return 0
	}
	return *e.SurchargeOre
}

func (e AppConfigEnergyPrice) GetBaseUrl() string {
	if e.BaseUrl == nil {
		return ""
	}
	return *e.BaseUrl
}

func (e AppConfigEnergyPrice) GetPublicationHour() int {
	if e.PublicationHour == nil {
		return 14
	}
	return *e.PublicationHour
}

func (e AppConfigEnergyPrice) GetRetryInterval() time.Duration {
	if e.RetryIntervalMinutes == nil {
		return 30 * time.Minute
	}
	return time.Duration(*e.RetryIntervalMinutes) * time.Minute
}

func (e AppConfigEnergyPrice) GetNormalInterval() time.Duration {
	if e.NormalIntervalHours == nil {
		return time.Hour
	}
	return time.Duration(*e.NormalIntervalHours) * time.Hour
}

func (e AppConfigEnergyPrice) GetRetentionDays() int {
	if e.RetentionDays == nil {
		return 2
	}
	return *e.RetentionDays
}

func (e AppConfigEnergyPrice) GetLocation() (*time.Location, error) {
	tz := "Europe/Stockholm"
	if e.Timezone != nil {
		tz = *e.Timezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", tz, err)
	}
	return loc, nil
}

type AppConfigMqtt struct {
	// Broker host, MQTT publishing is disabled when unset
	Host        *string
	Port        int16
	Username    string
	Password    string
	TopicPrefix *string `mapstructure:"topic_prefix"`
}

func (m AppConfigMqtt) Enabled() bool {
	return m.Host != nil && *m.Host != ""
}

func (m AppConfigMqtt) GetTopicPrefix() string {
	if m.TopicPrefix == nil {
		return "elpriskvart"
	}
	return *m.TopicPrefix
}

type AppConfigLogging struct {
	// Min log level for database: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat == nil {
		return logging.LogAttrFormatJSON
	}
	if strings.EqualFold(*l.DbAttrsFormat, "text") {
		return logging.LogAttrFormatText
	}
	return logging.LogAttrFormatJSON
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type AppConfig struct {
	Api         AppConfigApi
	Database    AppConfigDatabase
	EnergyPrice AppConfigEnergyPrice `mapstructure:"energy_price"`
	Mqtt        AppConfigMqtt
	Logging     AppConfigLogging
}

func (c *AppConfig) Validate() error {
	if !slices.Contains(PriceAreas, c.EnergyPrice.Area) {
		return fmt.Errorf("unknown price area %q, must be one of %s",
			c.EnergyPrice.Area, strings.Join(PriceAreas, ", "))
	}
	if h := c.EnergyPrice.GetPublicationHour(); h < 0 || h > 23 {
		return fmt.Errorf("publication hour %d out of range 0-23", h)
	}
	return nil
}

func Load(path string) (*AppConfig, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("config")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetDefault("energy_price.area", "SE4")

	var c AppConfig

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Watch logs a notice when the config file changes on disk. Settings are
// fixed for the process lifetime, a restart is needed to apply them.
func Watch(logger *slog.Logger) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("config file changed, restart to apply",
			slog.String("file", e.Name))
	})
	viper.WatchConfig()
}
