package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/spf13/viper"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	Port            string        `mapstructure:"port" validate:"required"`
	DatabasePath    string        `mapstructure:"database_path"`
	SessionSecret   string        `mapstructure:"session_secret" validate:"required"`
	GinMode         string        `mapstructure:"gin_mode" validate:"required|in:debug,release,test"`
	StorageDriver   string        `mapstructure:"storage_driver" validate:"required|in:sqlite,file,memory"`
	StorageDir      string        `mapstructure:"storage_dir"`
	StorageCompress bool          `mapstructure:"storage_compress"`
	LogLevel        string        `mapstructure:"log_level" validate:"required|in:trace,debug,info,warn,error"`
	LogPretty       bool          `mapstructure:"log_pretty"`
	CacheSizeMB     int           `mapstructure:"cache_size_mb" validate:"min:0"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	MetricsEnabled  bool          `mapstructure:"metrics_enabled"`
	WeekStartName   string        `mapstructure:"calendar_week_start" validate:"required|in:sunday,monday,tuesday,wednesday,thursday,friday,saturday"`
}

var envBindings = map[string]string{
	"listen_addr":         "LISTEN_ADDR",
	"port":                "PORT",
	"database_path":       "DATABASE_PATH",
	"session_secret":      "SESSION_SECRET",
	"gin_mode":            "GIN_MODE",
	"storage_driver":      "STORAGE_DRIVER",
	"storage_dir":         "STORAGE_DIR",
	"storage_compress":    "STORAGE_COMPRESS",
	"log_level":           "LOG_LEVEL",
	"log_pretty":          "LOG_PRETTY",
	"cache_size_mb":       "CACHE_SIZE_MB",
	"cache_ttl":           "CACHE_TTL",
	"metrics_enabled":     "METRICS_ENABLED",
	"calendar_week_start": "CALENDAR_WEEK_START",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("database_path", "streamlog.db")
	v.SetDefault("session_secret", "streamlog-dev-secret")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("storage_driver", "sqlite")
	v.SetDefault("storage_dir", "data")
	v.SetDefault("storage_compress", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("cache_size_mb", 4)
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("calendar_week_start", "sunday")
}

// Load 从环境变量（以及可选的 CONFIG_FILE 配置文件）读取应用配置，
// 并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (AppConfig, error) {
	var conf AppConfig

	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return conf, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if err := v.BindEnv("config_file", "CONFIG_FILE"); err != nil {
		return conf, fmt.Errorf("bind env CONFIG_FILE: %w", err)
	}
	if path := strings.TrimSpace(v.GetString("config_file")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return conf, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := v.Unmarshal(&conf); err != nil {
		return conf, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	normalize(&conf)

	if err := Validate(conf); err != nil {
		return conf, err
	}

	return conf, nil
}

func normalize(conf *AppConfig) {
	conf.Port = strings.TrimSpace(conf.Port)
	conf.ListenAddr = strings.TrimSpace(conf.ListenAddr)
	if conf.ListenAddr == "" && conf.Port != "" {
		conf.ListenAddr = fmt.Sprintf(":%s", conf.Port)
	}
	conf.GinMode = strings.ToLower(strings.TrimSpace(conf.GinMode))
	conf.StorageDriver = strings.ToLower(strings.TrimSpace(conf.StorageDriver))
	conf.LogLevel = strings.ToLower(strings.TrimSpace(conf.LogLevel))
	conf.WeekStartName = strings.ToLower(strings.TrimSpace(conf.WeekStartName))
}

// Validate 校验配置取值。
func Validate(conf AppConfig) error {
	v := validate.Struct(&conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.One())
	}
	if conf.StorageDriver == "file" && strings.TrimSpace(conf.StorageDir) == "" {
		return fmt.Errorf("invalid config: storage_dir is required for the file driver")
	}
	return nil
}

// WeekStart 返回日历每周的第一天，默认周日。
func (c AppConfig) WeekStart() time.Weekday {
	for day := time.Sunday; day <= time.Saturday; day++ {
		if strings.EqualFold(day.String(), c.WeekStartName) {
			return day
		}
	}
	return time.Sunday
}
