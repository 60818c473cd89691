package config

import (
	"doodleparty/logger"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	ListenAddr     string `mapstructure:"LISTEN_ADDR"`
	FrontendOrigin string `mapstructure:"FRONTEND_ORIGIN"`
	GinMode        string `mapstructure:"GIN_MODE"`
	JudgeURL       string `mapstructure:"JUDGE_URL"`
	JudgeAPIKey    string `mapstructure:"JUDGE_API_KEY"`
	NameCachePath  string `mapstructure:"NAME_CACHE_PATH"`
}

// Load reads configuration from a .env file and environment variables.
func Load() (*Config, error) {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.SetDefault("LISTEN_ADDR", ":5000")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("NAME_CACHE_PATH", ".displayname")

	viper.AutomaticEnv()
	for _, key := range []string{
		"LISTEN_ADDR", "FRONTEND_ORIGIN", "GIN_MODE",
		"JUDGE_URL", "JUDGE_API_KEY", "NAME_CACHE_PATH",
	} {
		viper.MustBindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		logger.Warning("no .env file found, loading from environment variables")
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
