package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Backup  BackupConfig  `mapstructure:"backup"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// StorageConfig 定义了账本文件的位置
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// BackupConfig 定义了SQLite镜像备份
type BackupConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	SqlitePath string        `mapstructure:"sqlitePath"`
	Interval   time.Duration `mapstructure:"interval"`
}

// RedisConfig 定义了Redis的配置，Redis只用于广播账本事件
type RedisConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Address        string        `mapstructure:"address"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	Instance       string        `mapstructure:"instance"`
	HealthInterval time.Duration `mapstructure:"healthInterval"`
}

// LogConfig 定义了日志输出
type LogConfig struct {
	Mode  string `mapstructure:"mode"`
	Debug bool   `mapstructure:"debug"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.address", "127.0.0.1:8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})

	v.SetDefault("storage.path", "./guoql.db")

	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.sqlitePath", "./guoql-backup.sqlite")
	v.SetDefault("backup.interval", 10*time.Minute)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.instance", "default")
	v.SetDefault("redis.healthInterval", 5*time.Second)

	v.SetDefault("log.mode", "dev")
	v.SetDefault("log.debug", false)
}

// LoadConfig 负责查找、加载和解析配置文件
// path 为空时在 ./config 和 . 中查找 config.yaml，找不到文件时使用默认值
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 允许通过环境变量覆盖配置，例如 SERVER_ADDRESS=0.0.0.0:8080
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// 显式指定的文件必须存在
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
