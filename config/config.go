package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Log        LogConfig        `mapstructure:"log"`
	Assignment AssignmentConfig `mapstructure:"assignment"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Invitation InvitationConfig `mapstructure:"invitation"`
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
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 分钟
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 分钟
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

// AuthConfig JWT 配置。Token 由外部会话服务签发，本服务只负责校验
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AssignmentConfig Head TA 分配规则与推荐打分参数
type AssignmentConfig struct {
	MaxHoursPerWeek       int `mapstructure:"max_hours_per_week"`
	MaxCoursesPerSemester int `mapstructure:"max_courses_per_semester"`
	DefaultHoursPerWeek   int `mapstructure:"default_hours_per_week"`

	// 建议工时：课程编号前缀命中 HeavyCoursePrefixes 时给 HeavyCourseHours，否则 LightCourseHours
	HeavyCoursePrefixes []string `mapstructure:"heavy_course_prefixes"`
	HeavyCourseHours    int      `mapstructure:"heavy_course_hours"`
	LightCourseHours    int      `mapstructure:"light_course_hours"`

	SuggestionLimit            int `mapstructure:"suggestion_limit"`
	SuggestionWorkers          int `mapstructure:"suggestion_workers"`
	AvailabilityThresholdHours int `mapstructure:"availability_threshold_hours"`
	ExperienceYears            int `mapstructure:"experience_years"`

	WeightExperience   int `mapstructure:"weight_experience"`
	WeightAvailability int `mapstructure:"weight_availability"`
	WeightSeniority    int `mapstructure:"weight_seniority"`
}

// DefaultAssignmentConfig 与 Load 中默认值一致，供测试及未加载配置文件的调用方使用
func DefaultAssignmentConfig() AssignmentConfig {
	return AssignmentConfig{
		MaxHoursPerWeek:            20,
		MaxCoursesPerSemester:      3,
		DefaultHoursPerWeek:        10,
		HeavyCoursePrefixes:        []string{"CS"},
		HeavyCourseHours:           15,
		LightCourseHours:           10,
		SuggestionLimit:            5,
		SuggestionWorkers:          4,
		AvailabilityThresholdHours: 10,
		ExperienceYears:            2,
		WeightExperience:           50,
		WeightAvailability:         30,
		WeightSeniority:            20,
	}
}

// CacheConfig 缓存配置
type CacheConfig struct {
	SuggestionTTL time.Duration `mapstructure:"suggestion_ttl"`
}

// InvitationConfig 邀请配置
type InvitationConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
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
	v.SetDefault("db.name", "headta")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "America/New_York")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.issuer", "headta")
	v.SetDefault("auth.access_token_ttl", "15m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	d := DefaultAssignmentConfig()
	v.SetDefault("assignment.max_hours_per_week", d.MaxHoursPerWeek)
	v.SetDefault("assignment.max_courses_per_semester", d.MaxCoursesPerSemester)
	v.SetDefault("assignment.default_hours_per_week", d.DefaultHoursPerWeek)
	v.SetDefault("assignment.heavy_course_prefixes", d.HeavyCoursePrefixes)
	v.SetDefault("assignment.heavy_course_hours", d.HeavyCourseHours)
	v.SetDefault("assignment.light_course_hours", d.LightCourseHours)
	v.SetDefault("assignment.suggestion_limit", d.SuggestionLimit)
	v.SetDefault("assignment.suggestion_workers", d.SuggestionWorkers)
	v.SetDefault("assignment.availability_threshold_hours", d.AvailabilityThresholdHours)
	v.SetDefault("assignment.experience_years", d.ExperienceYears)
	v.SetDefault("assignment.weight_experience", d.WeightExperience)
	v.SetDefault("assignment.weight_availability", d.WeightAvailability)
	v.SetDefault("assignment.weight_seniority", d.WeightSeniority)

	v.SetDefault("cache.suggestion_ttl", "5m")
	v.SetDefault("invitation.ttl", "168h")

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
	v.SetEnvPrefix("HEADTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("invalid config: auth.jwt_secret must not be empty")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("invalid config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be between 1 and 65535")
	}
	return c.Assignment.Validate()
}

// Validate 校验分配规则参数
func (a *AssignmentConfig) Validate() error {
	if a.MaxHoursPerWeek <= 0 {
		return fmt.Errorf("invalid config: assignment.max_hours_per_week must be positive")
	}
	if a.MaxCoursesPerSemester <= 0 {
		return fmt.Errorf("invalid config: assignment.max_courses_per_semester must be positive")
	}
	if a.DefaultHoursPerWeek <= 0 || a.DefaultHoursPerWeek > a.MaxHoursPerWeek {
		return fmt.Errorf("invalid config: assignment.default_hours_per_week must be in (0, %d]", a.MaxHoursPerWeek)
	}
	for name, h := range map[string]int{
		"heavy_course_hours": a.HeavyCourseHours,
		"light_course_hours": a.LightCourseHours,
	} {
		if h <= 0 || h > a.MaxHoursPerWeek {
			return fmt.Errorf("invalid config: assignment.%s must be in (0, %d]", name, a.MaxHoursPerWeek)
		}
	}
	if a.SuggestionLimit < 1 {
		return fmt.Errorf("invalid config: assignment.suggestion_limit must be at least 1")
	}
	if a.SuggestionWorkers < 1 {
		return fmt.Errorf("invalid config: assignment.suggestion_workers must be at least 1")
	}
	return nil
}
