// Package config loads the immutable startup configuration of the station.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"weather_station/internal/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "WEATHER"

// Config is the startup configuration. It is read-only after Load; the mutable
// subset lives in models.RuntimeConfig.
type Config struct {
	Station      StationConfig      `mapstructure:"station"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Thermometers ThermometersConfig `mapstructure:"thermometers"`
	Onboard      OnboardConfig      `mapstructure:"onboard"`
	Display      DisplayConfig      `mapstructure:"display"`
	Failure      FailureConfig      `mapstructure:"failure"`
	Primary      PrimaryConfig      `mapstructure:"primary"`
	Secondary    SecondaryConfig    `mapstructure:"secondary"`
	State        StateConfig        `mapstructure:"state"`
	DB           DBConfig           `mapstructure:"db"`
	HTTP         HTTPConfig         `mapstructure:"http"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Power        PowerConfig        `mapstructure:"power"`
}

type StationConfig struct {
	ID       string `mapstructure:"id"`
	Timezone string `mapstructure:"timezone"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	Console    bool   `mapstructure:"console"`
}

type ThermometersConfig struct {
	DevicesDir      string `mapstructure:"devices_dir"`
	AirID           string `mapstructure:"air_id"`
	SecondaryID     string `mapstructure:"secondary_id"`
	UseAir          bool   `mapstructure:"use_air"`
	UseSecondary    bool   `mapstructure:"use_secondary"`
	OnboardFallback bool   `mapstructure:"onboard_fallback"`
}

type OnboardConfig struct {
	HumidityDevice     string  `mapstructure:"humidity_device"`
	PressureDevice     string  `mapstructure:"pressure_device"`
	CPUThermalPath     string  `mapstructure:"cpu_thermal_path"`
	CompensationFactor float64 `mapstructure:"compensation_factor"`
}

type DisplayConfig struct {
	IntervalMinutes int  `mapstructure:"interval_minutes"`
	On              bool `mapstructure:"on"`
	Dim             bool `mapstructure:"dim"`
	SI              bool `mapstructure:"si"`
	Sunrise         int  `mapstructure:"sunrise"`
	Sunset          int  `mapstructure:"sunset"`
}

type FailureConfig struct {
	CSV      bool   `mapstructure:"csv"`
	Dir      string `mapstructure:"dir"`
	Reboot   bool   `mapstructure:"reboot"`
	Max      int    `mapstructure:"max"`
	MaxFiles int    `mapstructure:"max_files"`
}

type PrimaryConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	IntervalMinutes int           `mapstructure:"interval_minutes"`
	URL             string        `mapstructure:"url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MinSpacing      time.Duration `mapstructure:"min_spacing"`
}

type SecondaryConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	IntervalMinutes int           `mapstructure:"interval_minutes"`
	URL             string        `mapstructure:"url"`
	StationID       string        `mapstructure:"station_id"`
	StationKey      string        `mapstructure:"station_key"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MinSpacing      time.Duration `mapstructure:"min_spacing"`
}

type StateConfig struct {
	Backend string `mapstructure:"backend"` // sqlite | file
	Path    string `mapstructure:"path"`    // used by the file backend
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type HTTPConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type PowerConfig struct {
	DryRun bool `mapstructure:"dry_run"`
}

// State backends.
const (
	StateBackendSQLite = "sqlite"
	StateBackendFile   = "file"
)

var (
	errDisplayInterval   = errors.New("display.interval_minutes must be between 1 and 60")
	errPrimaryInterval   = errors.New("primary.interval_minutes must be between 1 and 60")
	errSecondaryInterval = errors.New("secondary.interval_minutes must be between 15 and 60")
	errUploadTimeout     = errors.New("upload timeout must be between 1s and 30s")
	errStateBackend      = errors.New("state.backend must be sqlite or file")
	errFailureMax        = errors.New("failure.max must be positive")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("station.id", "6100245999979349")
	v.SetDefault("station.timezone", "America/Eastern")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "weather_station.log")
	v.SetDefault("logging.max_size_mb", 1)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.console", false)

	v.SetDefault("thermometers.devices_dir", "/sys/bus/w1/devices")
	v.SetDefault("thermometers.air_id", "28-0417a2d9f9ff")
	v.SetDefault("thermometers.secondary_id", "28-0417a2ec2aff")
	v.SetDefault("thermometers.use_air", true)
	v.SetDefault("thermometers.use_secondary", true)
	v.SetDefault("thermometers.onboard_fallback", true)

	v.SetDefault("onboard.humidity_device", "/sys/bus/iio/devices/iio:device0")
	v.SetDefault("onboard.pressure_device", "/sys/bus/iio/devices/iio:device1")
	v.SetDefault("onboard.cpu_thermal_path", "/sys/class/thermal/thermal_zone0/temp")
	v.SetDefault("onboard.compensation_factor", 0.75)

	v.SetDefault("display.interval_minutes", 1)
	v.SetDefault("display.on", true)
	v.SetDefault("display.dim", false)
	v.SetDefault("display.si", true)
	v.SetDefault("display.sunrise", 5)
	v.SetDefault("display.sunset", 19)

	v.SetDefault("failure.csv", true)
	v.SetDefault("failure.dir", "failurelogs")
	v.SetDefault("failure.reboot", true)
	v.SetDefault("failure.max", 18)
	v.SetDefault("failure.max_files", 500)

	v.SetDefault("primary.enabled", true)
	v.SetDefault("primary.interval_minutes", 2)
	v.SetDefault("primary.url", "http://192.168.0.99/weather/assets/ajax/aPostWeather.php")
	v.SetDefault("primary.timeout", "15s")
	v.SetDefault("primary.min_spacing", "30s")

	v.SetDefault("secondary.enabled", false)
	v.SetDefault("secondary.interval_minutes", 15)
	v.SetDefault("secondary.url", "http://weatherstation.wunderground.com/weatherstation/updateweatherstation.php")
	v.SetDefault("secondary.station_id", "")
	v.SetDefault("secondary.station_key", "")
	v.SetDefault("secondary.timeout", "15s")
	v.SetDefault("secondary.min_spacing", "30s")

	v.SetDefault("state.backend", StateBackendSQLite)
	v.SetDefault("state.path", "state.json")

	v.SetDefault("db.path", "weather_station.db")

	v.SetDefault("http.enabled", true)
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.shutdown_timeout", "10s")

	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", "1h")

	v.SetDefault("power.dry_run", false)
}

// Load reads configs/config.yml (or path when non-empty), a .env file when present,
// and WEATHER_* environment overrides, in increasing precedence.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs") // configs/config.yml
		v.SetConfigName("config")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// loadDotEnv loads credentials from an optional .env file.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Validate applies the startup checks. Fatal problems are returned as an error;
// recoverable ones adjust the config and are returned as warnings.
func (c *Config) Validate() ([]string, error) {
	var warnings []string

	if c.Display.IntervalMinutes < 1 || c.Display.IntervalMinutes > 60 {
		return nil, errDisplayInterval
	}
	if c.Primary.IntervalMinutes < 1 || c.Primary.IntervalMinutes > 60 {
		return nil, errPrimaryInterval
	}
	if c.Secondary.IntervalMinutes < 15 || c.Secondary.IntervalMinutes > 60 {
		return nil, errSecondaryInterval
	}
	for _, d := range []time.Duration{c.Primary.Timeout, c.Secondary.Timeout} {
		if d < time.Second || d > 30*time.Second {
			return nil, errUploadTimeout
		}
	}
	if c.Failure.Max <= 0 {
		return nil, errFailureMax
	}
	switch c.State.Backend {
	case StateBackendSQLite, StateBackendFile:
	default:
		return nil, errStateBackend
	}

	if c.Secondary.Enabled && (c.Secondary.StationID == "" || c.Secondary.StationKey == "") {
		c.Secondary.Enabled = false
		warnings = append(warnings, "secondary upload disabled: missing station_id or station_key")
	}
	if c.Auth.SigningKey == "" {
		c.HTTP.Enabled = false
		warnings = append(warnings, "local API disabled: auth.signing_key not set")
	}
	return warnings, nil
}

// Runtime returns the startup values of the mutable configuration.
func (c *Config) Runtime() models.RuntimeConfig {
	return models.RuntimeConfig{
		DisplayOn:            c.Display.On,
		DisplayDim:           c.Display.Dim,
		SecondaryZoneOn:      c.Thermometers.UseSecondary,
		PrimaryUploadOn:      c.Primary.Enabled,
		PrimaryIntervalMin:   c.Primary.IntervalMinutes,
		SecondaryUploadOn:    c.Secondary.Enabled,
		SecondaryIntervalMin: c.Secondary.IntervalMinutes,
	}
}
