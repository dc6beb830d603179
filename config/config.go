package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/icodeforyou/spotprice-go/logging"
	"github.com/icodeforyou/spotprice-go/porssisahko"
	"github.com/icodeforyou/spotprice-go/prices"
	"github.com/spf13/viper"
)

type AppConfigApi struct {
	Address string
	Port    int16
	// If not assigned, the server will serve embedded templates.
	// If assigned, templates are read (and hot reloaded) from the
	// "templates" directory inside it. Useful for development.
	WwwDir *string `mapstructure:"www_dir"`
	// Key used to sign the session cookie holding flash messages
	SessionKey string `mapstructure:"session_key"`
}

type AppConfigDatabase struct {
	Path string
	// How many days alerts should be stored in database before they get purged
	DataRetentionDays *int `mapstructure:"data_retention_days"`
	// How many days daily backup files should be stored before they get deleted
	BackupRetentionDays *int `mapstructure:"backup_retention_days"`
}

func (d AppConfigDatabase) GetDataRetentionDays() int {
	if d.DataRetentionDays == nil {
		return 90
	}
	return *d.DataRetentionDays
}

func (d AppConfigDatabase) GetBackupRetentionDays() int {
	if d.BackupRetentionDays == nil {
		return 30
	}
	return *d.BackupRetentionDays
}

type AppConfigPriceApi struct {
	BaseUrl string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"` // Network timeout of a single fetch
	RunAt   string        `mapstructure:"run_at"`  // Cron spec, default: top of each hour
}

type AppConfigLimits struct {
	Lower  float64 `mapstructure:"lower"`  // c/kWh
	Upper  float64 `mapstructure:"upper"`  // c/kWh
	Notify string  `mapstructure:"notify"` // "lower", "higher" or "both"
}

func (l AppConfigLimits) Settings() (prices.Settings, error) {
	mode, err := prices.ParseNotifyMode(l.Notify)
	if err != nil {
		return prices.Settings{}, err
	}
	return prices.Settings{
		Limits: prices.PriceLimits{Lower: l.Lower, Upper: l.Upper},
		Notify: mode,
	}, nil
}

type AppConfigMqtt struct {
	Host     string // Alerts are not published when empty
	Port     int16
	Username string
	Password string
	Topic    string // Topic prefix, e.g. "spotprice"
}

func (m AppConfigMqtt) Enabled() bool {
	return m.Host != ""
}

type AppConfigGui struct {
	// Timezone for displaying times and for the today/tomorrow windows, default: UTC
	Timezone *string `mapstructure:"timezone"`
}

func (g AppConfigGui) GetTimezone() string {
	if g.Timezone == nil {
		return "UTC"
	}
	return *g.Timezone
}

type AppConfigLogging struct {
	// Min log level for database : "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for database console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
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
	Api      AppConfigApi
	Database AppConfigDatabase
	PriceApi AppConfigPriceApi `mapstructure:"price_api"`
	Limits   AppConfigLimits   `mapstructure:"limits"`
	Mqtt     AppConfigMqtt     `mapstructure:"mqtt"`
	Gui      AppConfigGui      `mapstructure:"gui"`
	Logging  AppConfigLogging  `mapstructure:"logging"`

	v *viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.address", "")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.session_key", "")
	v.SetDefault("database.path", "spotprice.db")
	v.SetDefault("price_api.base_url", porssisahko.DefaultBaseUrl)
	v.SetDefault("price_api.timeout", porssisahko.DefaultTimeout)
	v.SetDefault("price_api.run_at", "0 * * * *")
	v.SetDefault("limits.lower", prices.DefaultLowerLimit)
	v.SetDefault("limits.upper", prices.DefaultUpperLimit)
	v.SetDefault("limits.notify", string(prices.NotifyLower))
	v.SetDefault("mqtt.host", "")
	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic", "spotprice")
}

func Load(path string) (*AppConfig, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	c, err := unmarshal(v)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func unmarshal(v *viper.Viper) (*AppConfig, error) {
	var c AppConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}
	if _, err := c.Limits.Settings(); err != nil {
		return nil, fmt.Errorf("invalid limits config: %w", err)
	}
	c.v = v
	return &c, nil
}

// Watch calls onChange with the reloaded config every time the config file is written.
// Invalid edits are logged and ignored.
func (c *AppConfig) Watch(logger *slog.Logger, onChange func(*AppConfig)) {
	if c.v == nil {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		logger.Info("config file changed", slog.String("file", e.Name))
		reloaded, err := unmarshal(c.v)
		if err != nil {
			logger.Error("ignoring config change", slog.Any("error", err))
			return
		}
		onChange(reloaded)
	})
	c.v.WatchConfig()
}

// WatchLimits calls onChange when a config file write changes the limits section.
// Writes that leave the limits as they were are ignored.
func (c *AppConfig) WatchLimits(logger *slog.Logger, onChange func(prices.Settings)) {
	prev, _ := c.Limits.Settings()
	c.Watch(logger, limitsChanged(prev, onChange))
}

func limitsChanged(prev prices.Settings, onChange func(prices.Settings)) func(*AppConfig) {
	return func(reloaded *AppConfig) {
		settings, err := reloaded.Limits.Settings()
		if err != nil || settings == prev {
			return
		}
		prev = settings
		onChange(settings)
	}
}
