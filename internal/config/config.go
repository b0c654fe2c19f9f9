package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig `mapstructure:"database"` // 数据库配置
	Ingest   IngestConfig   `mapstructure:"ingest"`   // 文件入库配置
	Log      LogConfig      `mapstructure:"log"`      // 日志配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig PostgreSQL数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// IngestConfig 文件入库配置
type IngestConfig struct {
	WatchFolder   string        `mapstructure:"watch_folder"`   // 监听目录（新表格文件落在这里）
	ArchiveFolder string        `mapstructure:"archive_folder"` // 归档目录（处理完的文件移到这里）
	BatchSize     int           `mapstructure:"batch_size"`     // 每批行数
	CommitEvery   int           `mapstructure:"commit_every"`   // 每N条快照做一次中间提交
	MaxWorkers    int           `mapstructure:"max_workers"`    // 并发批次上限
	RetryCount    int           `mapstructure:"retry_count"`    // 最终提交重试次数
	RetryDelay    time.Duration `mapstructure:"retry_delay"`    // 重试间隔
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"` // 日志级别：debug/info/warn/error
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感/易变字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("EXCEL_WATCH_FOLDER"); v != "" {
		cfg.Ingest.WatchFolder = v
	}
	if v := os.Getenv("EXCEL_ARCHIVE_FOLDER"); v != "" {
		cfg.Ingest.ArchiveFolder = v
	}
}
