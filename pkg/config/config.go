package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	Database        DatabaseConfig        `mapstructure:"database"`
	Redis           RedisConfig           `mapstructure:"redis"`
	Kafka           KafkaConfig           `mapstructure:"kafka"`
	Minio           MinioConfig           `mapstructure:"minio"`
	JWT             JWTConfig             `mapstructure:"jwt"`
	Log             LogConfig             `mapstructure:"log"`
	Transcode       TranscodeConfig       `mapstructure:"transcode"`
	Pipeline        PipelineConfig        `mapstructure:"pipeline"`
	ServiceRegistry ServiceRegistryConfig `mapstructure:"service_registry"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	Charset         string        `mapstructure:"charset"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	EnableTLS    bool          `mapstructure:"enable_tls"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Enabled          bool              `mapstructure:"enabled"`
	BootstrapServers []string          `mapstructure:"bootstrap_servers"`
	ClientID         string            `mapstructure:"client_id"`
	Topics           KafkaTopicsConfig `mapstructure:"topics"`
}

type KafkaTopicsConfig struct {
	VideoProcessed string `mapstructure:"video_processed"`
}

// MinioConfig MinIO配置
type MinioConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKey       string `mapstructure:"access_key"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SecretKey       string `mapstructure:"secret_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Issuer     string        `mapstructure:"issuer"`
	ExpireTime time.Duration `mapstructure:"expire_time"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// TranscodeConfig 转码配置
type TranscodeConfig struct {
	FFmpeg FFmpegConfig `mapstructure:"ffmpeg"`
}

// FFmpegConfig FFmpeg相关配置
type FFmpegConfig struct {
	BinaryPath      string        `mapstructure:"binary_path"`
	ProbeBinaryPath string        `mapstructure:"probe_binary_path"`
	TempDir         string        `mapstructure:"temp_dir"`
	TierTimeout     time.Duration `mapstructure:"tier_timeout"`
	Threads         int           `mapstructure:"threads"`
}

// PipelineConfig 处理管线配置
type PipelineConfig struct {
	MaxConcurrentTiers  int           `mapstructure:"max_concurrent_tiers"`
	QueueCapacity       int           `mapstructure:"queue_capacity"`
	MaxUploadBytes      int64         `mapstructure:"max_upload_bytes"`
	StatusTTL           time.Duration `mapstructure:"status_ttl"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
}

// ServiceRegistryConfig registration configuration.
type ServiceRegistryConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoints       []string      `mapstructure:"endpoints"`
	ServiceName     string        `mapstructure:"service_name"`
	ServiceID       string        `mapstructure:"service_id"`
	RegisterHost    string        `mapstructure:"register_host"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
	TTL             time.Duration `mapstructure:"ttl"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("service_registry.enabled", false)
	viper.SetDefault("kafka.enabled", true)
	viper.SetDefault("kafka.client_id", "streamforge")
	viper.SetDefault("kafka.bootstrap_servers", []string{"localhost:29092"})
	viper.SetDefault("kafka.topics.video_processed", "video.processed")

	// 设置环境变量前缀
	viper.SetEnvPrefix("STREAMFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.normalize()

	return &config, nil
}

// normalize 补全配置的默认值
func (c *Config) normalize() {
	// 兼容不同的密钥字段
	if c.Minio.AccessKeyID == "" {
		c.Minio.AccessKeyID = c.Minio.AccessKey
	}
	if c.Minio.SecretAccessKey == "" {
		c.Minio.SecretAccessKey = c.Minio.SecretKey
	}

	if c.Transcode.FFmpeg.BinaryPath == "" {
		c.Transcode.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.Transcode.FFmpeg.ProbeBinaryPath == "" {
		c.Transcode.FFmpeg.ProbeBinaryPath = "ffprobe"
	}
	if c.Transcode.FFmpeg.TempDir == "" {
		c.Transcode.FFmpeg.TempDir = "/tmp/streamforge"
	}
	if c.Transcode.FFmpeg.TierTimeout == 0 {
		// 单个清晰度档位的硬超时；超时档位记失败，不影响其他档位
		c.Transcode.FFmpeg.TierTimeout = 5 * time.Minute
	}
	if c.Transcode.FFmpeg.Threads < 0 {
		c.Transcode.FFmpeg.Threads = 0
	}

	if c.Pipeline.MaxConcurrentTiers <= 0 {
		c.Pipeline.MaxConcurrentTiers = 2
	}
	if c.Pipeline.QueueCapacity <= 0 {
		c.Pipeline.QueueCapacity = 32
	}
	if c.Pipeline.MaxUploadBytes <= 0 {
		c.Pipeline.MaxUploadBytes = 1 << 30 // 1GiB
	}
	if c.Pipeline.StatusTTL <= 0 {
		c.Pipeline.StatusTTL = 24 * time.Hour
	}
	if c.Pipeline.ShutdownGracePeriod == 0 {
		c.Pipeline.ShutdownGracePeriod = 10 * time.Second
	}

	if len(c.Kafka.BootstrapServers) == 0 {
		c.Kafka.BootstrapServers = []string{"localhost:29092"}
	}
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "streamforge"
	}
	if c.Kafka.Topics.VideoProcessed == "" {
		c.Kafka.Topics.VideoProcessed = "video.processed"
	}

	if c.ServiceRegistry.ServiceName == "" {
		c.ServiceRegistry.ServiceName = "streamforge"
	}
	if c.ServiceRegistry.DialTimeout == 0 {
		c.ServiceRegistry.DialTimeout = 5 * time.Second
	}
	if c.ServiceRegistry.TTL == 0 {
		c.ServiceRegistry.TTL = 30 * time.Second
	}
	if c.ServiceRegistry.RefreshInterval == 0 {
		c.ServiceRegistry.RefreshInterval = 10 * time.Second
	}
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	charset := c.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, charset)
}

// GetRedisAddr 获取Redis地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
