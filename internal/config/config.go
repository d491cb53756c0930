package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`

	// Scheduling policy knobs.
	DailyJobCapacity  int     `mapstructure:"DAILY_JOB_CAPACITY"`
	LookaheadDays     int     `mapstructure:"SCHEDULE_LOOKAHEAD_DAYS"`
	DefaultAssetLat   float64 `mapstructure:"DEFAULT_ASSET_LAT"`
	DefaultAssetLng   float64 `mapstructure:"DEFAULT_ASSET_LNG"`
	SkillKeywordsFile string  `mapstructure:"SKILL_KEYWORDS_FILE"`

	// Assignment notification hook.
	NotifyWebhookURL string `mapstructure:"NOTIFY_WEBHOOK_URL"`
	NotifyQueueSize  int    `mapstructure:"NOTIFY_QUEUE_SIZE"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DAILY_JOB_CAPACITY", 3)
	v.SetDefault("SCHEDULE_LOOKAHEAD_DAYS", 30)
	// Fallback asset coordinate when a container has no GPS fix (Mumbai).
	v.SetDefault("DEFAULT_ASSET_LAT", 19.0760)
	v.SetDefault("DEFAULT_ASSET_LNG", 72.8777)
	v.SetDefault("NOTIFY_QUEUE_SIZE", 64)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
