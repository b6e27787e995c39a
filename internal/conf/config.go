package conf

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Media      MediaConfig      `mapstructure:"media"`
	Views      ViewsConfig      `mapstructure:"views"`
	Moderation ModerationConfig `mapstructure:"moderation"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin 模式: debug/release/test
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DatabaseConfig 支持 mysql / postgres / sqlite
type DatabaseConfig struct {
	Driver        string        `mapstructure:"driver"`
	DSN           string        `mapstructure:"dsn"` // 非空时忽略 host/port 等字段
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	DbName        string        `mapstructure:"dbname"`
	LogLevel      string        `mapstructure:"logLevel"`
	SlowThreshold time.Duration `mapstructure:"slowThreshold"`
	MaxOpenConns  int           `mapstructure:"maxOpenConns"`
	MaxIdleConns  int           `mapstructure:"maxIdleConns"`
	AutoMigrate   bool          `mapstructure:"autoMigrate"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type UploadConfig struct {
	Driver   string   `mapstructure:"driver"`   // local / s3
	BasePath string   `mapstructure:"basePath"` // 本地存储路径，如 ./storage/public
	BaseURL  string   `mapstructure:"baseURL"`  // 访问URL前缀，如 /storage
	S3       S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket       string `mapstructure:"bucket"`
	Region       string `mapstructure:"region"`
	Profile      string `mapstructure:"profile"`
	UsePathStyle bool   `mapstructure:"usePathStyle"`
	BaseURL      string `mapstructure:"baseURL"` // 公网访问前缀（CDN 或 bucket 域名）
}

type MediaConfig struct {
	DefaultImage  string `mapstructure:"defaultImage"`
	ImageMaxBytes int64  `mapstructure:"imageMaxBytes"`
	VideoMaxBytes int64  `mapstructure:"videoMaxBytes"`
}

// ViewsConfig 阅读量计数方式: direct 直接写库, buffered 先写 redis 再定时落库
type ViewsConfig struct {
	Mode      string `mapstructure:"mode"`
	FlushCron string `mapstructure:"flushCron"`
	RedisKey  string `mapstructure:"redisKey"`
}

type ModerationConfig struct {
	WordDict string   `mapstructure:"wordDict"`
	Words    []string `mapstructure:"words"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.logLevel", "warning")
	v.SetDefault("database.slowThreshold", 500*time.Millisecond)
	v.SetDefault("database.maxOpenConns", 30)
	v.SetDefault("database.maxIdleConns", 15)
	v.SetDefault("database.autoMigrate", true)
	v.SetDefault("redis.port", 6379)
	v.SetDefault("upload.driver", "local")
	v.SetDefault("upload.basePath", "./storage/public")
	v.SetDefault("upload.baseURL", "/storage")
	v.SetDefault("media.defaultImage", "/UdD-Logo.png")
	v.SetDefault("media.imageMaxBytes", 2<<20)
	v.SetDefault("media.videoMaxBytes", 50<<20)
	v.SetDefault("views.mode", "direct")
	v.SetDefault("views.flushCron", "@every 1m")
	v.SetDefault("views.redisKey", "press:views")
}

// LoadConfig 加载配置
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("PRESS")
	v.AutomaticEnv() // 自动读取环境变量, 如 PRESS_DATABASE_HOST

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	// 显式展开 YAML 中的 ${VAR}
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.Contains(val, "${") {
			v.Set(key, os.ExpandEnv(val))
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
