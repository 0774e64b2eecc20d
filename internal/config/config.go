package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper" // 导入 Viper
)

// Config 结构体包含所有应用的配置
type Config struct {
	Server     ServerConfig     `mapstructure:"server"` // `mapstructure` 标签用于Viper绑定结构体
	MySQL      MySQLConfig      `mapstructure:"mysql"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	AliyunOSS  AliyunOSSConfig  `mapstructure:"aliyun_oss"`
	Paystack   PaystackConfig   `mapstructure:"paystack"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Quota      QuotaConfig      `mapstructure:"quota"`
	Users      UsersConfig      `mapstructure:"users"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"` // gin 运行模式: debug / release / test
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadMB    int64    `mapstructure:"max_upload_mb"`
}

// MySQLConfig 数据库配置
type MySQLConfig struct {
	DSN            string        `mapstructure:"dsn"`
	MaxIdleConns   int           `mapstructure:"max_idle_conns"`
	MaxOpenConns   int           `mapstructure:"max_open_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"` // 启动阶段重试的总时长
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig 对象存储选择
type StorageConfig struct {
	Type       string `mapstructure:"type"`        // cloudinary / minio / aliyun_oss
	RootFolder string `mapstructure:"root_folder"` // 所有空间目录的公共前缀
}

// CloudinaryConfig Cloudinary 凭证
type CloudinaryConfig struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	PublicURL       string `mapstructure:"public_url"` // 为空时使用 endpoint 拼接
}

type AliyunOSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"` // 例如: oss-cn-hangzhou.aliyuncs.com
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// PaystackConfig 支付处理方配置
type PaystackConfig struct {
	SecretKey   string        `mapstructure:"secret_key"`
	BaseURL     string        `mapstructure:"base_url"`
	CallbackURL string        `mapstructure:"callback_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Breaker     BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig 熔断器参数
type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"max_failures"`
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// JWTConfig 身份提供方签发的 token 校验参数
type JWTConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	Issuer    string `mapstructure:"issuer"`
}

// QuotaConfig 配额并发控制
type QuotaConfig struct {
	Lock    string        `mapstructure:"lock"` // redis / local
	LockTTL time.Duration `mapstructure:"lock_ttl"`
	// LockWait 上传等待空间锁的最长时间，超时返回 429
	LockWait time.Duration `mapstructure:"lock_wait"`
	// Currency 和 Prices 为付费套餐的最低售价，金额为主货币单位
	Currency string             `mapstructure:"currency"`
	Prices   map[string]float64 `mapstructure:"prices"`
}

// UsersConfig 用户相关策略开关
type UsersConfig struct {
	// 完成注册时允许把已被其他账号占用的邮箱转移到当前账号
	AllowEmailReassignment bool `mapstructure:"allow_email_reassignment"`
}

// RateLimitConfig 上传接口按 IP 限流
type RateLimitConfig struct {
	UploadsPerMinute int `mapstructure:"uploads_per_minute"`
	Burst            int `mapstructure:"burst"`
}

// zap日志配置
type LogConfig struct {
	OutputPath string `mapstructure:"output_path"`
	ErrorPath  string `mapstructure:"error_path"`
	Level      string `mapstructure:"level"`
}

// SetDefaults 注册所有默认值，配置文件和环境变量都缺失时生效
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_upload_mb", 100)
	v.SetDefault("mysql.dsn", "root:root@tcp(mysql:3306)/memoryshare?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("mysql.max_idle_conns", 10)
	v.SetDefault("mysql.max_open_conns", 100)
	v.SetDefault("mysql.connect_timeout", 30*time.Second)
	v.SetDefault("redis.addr", "redis:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("storage.type", "cloudinary")
	v.SetDefault("storage.root_folder", "memoryshare")
	v.SetDefault("minio.bucket_name", "memoryshare")
	v.SetDefault("aliyun_oss.bucket_name", "memoryshare")
	v.SetDefault("paystack.base_url", "https://api.paystack.co")
	v.SetDefault("paystack.timeout", 15*time.Second)
	v.SetDefault("paystack.breaker.max_failures", 5)
	v.SetDefault("paystack.breaker.interval", time.Minute)
	v.SetDefault("paystack.breaker.timeout", 30*time.Second)
	// 凭证类的键也要注册，否则 Unmarshal 时 AutomaticEnv 读不到
	for _, key := range []string{
		"redis.password",
		"cloudinary.cloud_name", "cloudinary.api_key", "cloudinary.api_secret",
		"minio.endpoint", "minio.access_key_id", "minio.secret_access_key", "minio.public_url",
		"aliyun_oss.endpoint", "aliyun_oss.access_key_id", "aliyun_oss.secret_access_key",
		"paystack.secret_key", "paystack.callback_url",
		"jwt.secret_key", "jwt.issuer",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("quota.lock", "redis")
	v.SetDefault("quota.lock_ttl", 2*time.Minute)
	v.SetDefault("quota.lock_wait", 30*time.Second)
	v.SetDefault("quota.currency", "GHS")
	v.SetDefault("quota.prices", map[string]float64{"premium": 150, "forever": 450})
	v.SetDefault("users.allow_email_reassignment", false)
	v.SetDefault("rate_limit.uploads_per_minute", 120)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("log.output_path", "logs/app.log")
	v.SetDefault("log.error_path", "logs/error.log")
	v.SetDefault("log.level", "info")
}

// LoadConfig 加载配置
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")              // 配置文件名 (不带扩展名)
	v.SetConfigType("yaml")                // 配置文件类型
	v.AddConfigPath(".")                   // 在当前目录查找配置文件
	v.AddConfigPath("./configs")           // 也可以添加其他路径，例如 ./configs/
	v.AddConfigPath("/etc/memoryshare/")   // 生产环境常见路径

	// 例如：MEMORYSHARE_PAYSTACK_SECRET_KEY 对应 paystack.secret_key
	v.SetEnvPrefix("MEMORYSHARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		// 配置文件未找到不是致命错误，完全依赖环境变量和默认值
		log.Println("Warning: config file not found, using environment variables or default values.")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	log.Println("Configuration loaded successfully with Viper.")
	return cfg, nil
}
