package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type RedisConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db" validate:"uint"`
	OpTimeout time.Duration `yaml:"opTimeout"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type StatsConfig struct {
	DefaultDays int `yaml:"defaultDays" validate:"required|min:1"`
	TopLinks    int `yaml:"topLinks" validate:"required|min:1"`
	CacheTTL    int `yaml:"cacheTTL"`
}

type QRConfig struct {
	Size   int `yaml:"size" validate:"required|min:64"`
	Border int `yaml:"border" validate:"uint"`
}

type MigrateConfig struct {
	Key string `yaml:"key"`
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
	WebServer Server        `yaml:"webServer"`
	Redis     RedisConfig   `yaml:"redis"`
	Stats     StatsConfig   `yaml:"stats"`
	QR        QRConfig      `yaml:"qr"`
	Migrate   MigrateConfig `yaml:"migrate"`
	Logger    LoggerConfig  `yaml:"logger"`
	Cache     CacheConfig   `yaml:"cache"`
	Metrics   MetricsConfig `yaml:"metrics"`
}
