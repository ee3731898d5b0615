package providers

import (
	"fmt"
	"path/filepath"
	"qrtrack/internal/structures"
	"strings"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "QRT_LOG_LEVEL")
	viper.BindEnv("redis.addr", "QRT_REDIS_ADDR")
	viper.BindEnv("redis.password", "QRT_REDIS_PASSWORD")
	viper.BindEnv("redis.enabled", "QRT_REDIS_ENABLED")
	viper.BindEnv("migrate.key", "QRT_MIGRATE_KEY")
	viper.BindEnv("cache.enabled", "QRT_CACHE_ENABLED")
	viper.BindEnv("cache.size", "QRT_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "QRTrack"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
