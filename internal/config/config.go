package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
	Mail     MailConfig     `yaml:"mail"`
	Project  ProjectConfig  `yaml:"project"`
	Admin    AdminConfig    `yaml:"admin"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        string   `yaml:"port"`
	Mode        string   `yaml:"mode"` // debug, release, test
	CORSOrigins []string `yaml:"cors_origins"`
	RateLimit   float64  `yaml:"rate_limit"` // requests per second per IP, 0 disables
	RateBurst   int      `yaml:"rate_burst"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres, memory
	DSN    string `yaml:"dsn"`
}

// AuthConfig controls how request identities are established.
// DevHeaders accepts X-User-Sub / X-User-Email when no bearer token is sent
// and must stay off in production.
type AuthConfig struct {
	JWTSecret  string `yaml:"jwt_secret"`
	Issuer     string `yaml:"issuer"`
	ExpireHour int    `yaml:"expire_hour"`
	DevHeaders bool   `yaml:"dev_headers"`
}

// RedisConfig for optional async task queue
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MailConfig selects the outbound mail provider: smtp, sendgrid or log.
type MailConfig struct {
	Provider       string `yaml:"provider"`
	From           string `yaml:"from"`
	FromName       string `yaml:"from_name"`
	AppURL         string `yaml:"app_url"`
	SMTPHost       string `yaml:"smtp_host"`
	SMTPPort       int    `yaml:"smtp_port"`
	SMTPUsername   string `yaml:"smtp_username"`
	SMTPPassword   string `yaml:"smtp_password"`
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
}

type ProjectConfig struct {
	MaxProjectsPerUser int    `yaml:"max_projects_per_user"`
	StatsSchedule      string `yaml:"stats_schedule"` // cron spec for gauge refresh
}

// AdminConfig seeds an approved admin account on startup when Email and Sub are set.
type AdminConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Sub   string `yaml:"sub"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	Environment string `yaml:"environment"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

var GlobalConfig *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.overrideFromEnv()
	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        "8080",
			Mode:        "debug",
			CORSOrigins: []string{"*"},
			RateLimit:   20,
			RateBurst:   40,
		},
		Log: LogConfig{
			Level: "info",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "integra.db",
		},
		Auth: AuthConfig{
			JWTSecret:  "integra-secret-key-change-in-production",
			Issuer:     "integra",
			ExpireHour: 24,
			DevHeaders: false,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
		},
		Mail: MailConfig{
			Provider: "log",
			From:     "no-reply@integra.dev",
			FromName: "Integra",
			AppURL:   "http://localhost:3000",
			SMTPPort: 587,
		},
		Project: ProjectConfig{
			MaxProjectsPerUser: 3,
			StatsSchedule:      "@every 1m",
		},
		Admin: AdminConfig{
			Name: "Integra Admin",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Endpoint:    "localhost:4318",
			Environment: "development",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = splitList(origins)
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if dev := os.Getenv("AUTH_DEV_HEADERS"); dev != "" {
		c.Auth.DevHeaders, _ = strconv.ParseBool(dev)
	}
	// Redis URL override (format: redis://:password@host:port/db)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.Enabled = true
		c.parseRedisURL(redisURL)
	}
	if provider := os.Getenv("MAIL_PROVIDER"); provider != "" {
		c.Mail.Provider = provider
	}
	if from := os.Getenv("MAIL_FROM"); from != "" {
		c.Mail.From = from
	}
	if appURL := os.Getenv("APP_URL"); appURL != "" {
		c.Mail.AppURL = appURL
	}
	if host := os.Getenv("SMTP_HOST"); host != "" {
		c.Mail.SMTPHost = host
	}
	if port, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil {
		c.Mail.SMTPPort = port
	}
	if user := os.Getenv("SMTP_USERNAME"); user != "" {
		c.Mail.SMTPUsername = user
	}
	if pass := os.Getenv("SMTP_PASSWORD"); pass != "" {
		c.Mail.SMTPPassword = pass
	}
	if key := os.Getenv("SENDGRID_API_KEY"); key != "" {
		c.Mail.SendGridAPIKey = key
	}
	if limit, err := strconv.Atoi(os.Getenv("MAX_PROJECTS_PER_USER")); err == nil && limit > 0 {
		c.Project.MaxProjectsPerUser = limit
	}
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		c.Admin.Email = email
	}
	if sub := os.Getenv("ADMIN_SUB"); sub != "" {
		c.Admin.Sub = sub
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		c.Tracing.Enabled = true
		c.Tracing.Endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "http://"), "https://")
	}
}

// parseRedisURL parses a Redis URL and sets config values
// Format: redis://:password@host:port/db
func (c *Config) parseRedisURL(redisURL string) {
	url := strings.TrimPrefix(redisURL, "redis://")

	if atIdx := strings.Index(url, "@"); atIdx != -1 {
		authPart := url[:atIdx]
		url = url[atIdx+1:]
		// Password format: :password or user:password
		if colonIdx := strings.Index(authPart, ":"); colonIdx != -1 {
			c.Redis.Password = authPart[colonIdx+1:]
		}
	}

	if slashIdx := strings.LastIndex(url, "/"); slashIdx != -1 {
		dbStr := url[slashIdx+1:]
		url = url[:slashIdx]
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = db
		}
	}

	c.Redis.Addr = url
}

// IsProduction reports whether the server runs in gin release mode.
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "release"
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
