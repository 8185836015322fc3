package config

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env     string `yaml:"env"`
		Key     string `yaml:"key"` // APP_KEY: raw, "hex:..." o "base64:..."
		Version string `yaml:"version"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		TrustProxyHeaders  bool     `yaml:"trust_proxy_headers"`
		ReadTimeout        string   `yaml:"read_timeout"`
		WriteTimeout       string   `yaml:"write_timeout"`
		IdleTimeout        string   `yaml:"idle_timeout"`
		ShutdownTimeout    string   `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		Driver   string `yaml:"driver"` // postgres | memory
		DSN      string `yaml:"dsn"`
		Migrate  bool   `yaml:"migrate"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`

	Session struct {
		Store       string `yaml:"store"` // memory | redis
		CookieName  string `yaml:"cookie_name"`
		Domain      string `yaml:"domain"`
		SameSite    string `yaml:"samesite"`
		Secure      bool   `yaml:"secure"`
		Lifetime    string `yaml:"lifetime"`
		RotateEvery string `yaml:"rotate_every"`
	} `yaml:"session"`

	Rate struct {
		// Backend del límite compartido: memory | redis
		Backend     string `yaml:"backend"`
		Enabled     bool   `yaml:"enabled"` // límite global por IP sobre /api
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`

		Login struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
			Shared bool   `yaml:"shared"` // además del bucket de sesión, uno por IP
		} `yaml:"login"`
	} `yaml:"rate"`

	Auth struct {
		PartialTTL    string `yaml:"partial_ttl"`
		TOTPIssuer    string `yaml:"totp_issuer"`
		TOTPWindow    int    `yaml:"totp_window"`
		AllowHTTPSeed bool   `yaml:"allow_http_seed"`
	} `yaml:"auth"`

	Security struct {
		PasswordHash   string `yaml:"password_hash"` // argon2id | bcrypt
		PasswordPolicy struct {
			MinLength     int  `yaml:"min_length"`
			RequireUpper  bool `yaml:"require_upper"`
			RequireLower  bool `yaml:"require_lower"`
			RequireDigit  bool `yaml:"require_digit"`
			RequireSymbol bool `yaml:"require_symbol"`
		} `yaml:"password_policy"`
		PasswordBlacklistPath string `yaml:"password_blacklist_path"`
	} `yaml:"security"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

// Default devuelve la configuración sin archivo: memoria para todo, dev.
func Default() *Config {
	c := &Config{}
	c.App.Env = "dev"
	c.Server.TrustProxyHeaders = true
	c.Metrics.Enabled = true
	c.setDefaults()
	return c
}

// Load lee path (si no es vacío), completa defaults y aplica overrides de env.
func Load(path string) (*Config, error) {
	c := Default()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		c.setDefaults()

		// blacklist relativa al directorio del YAML
		if p := strings.TrimSpace(c.Security.PasswordBlacklistPath); p != "" && !filepath.IsAbs(p) {
			c.Security.PasswordBlacklistPath = filepath.Clean(filepath.Join(filepath.Dir(path), p))
		}
	}

	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) setDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "15s"
	}
	if c.Server.IdleTimeout == "" {
		c.Server.IdleTimeout = "60s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Postgres.MaxOpenConns == 0 {
		c.Storage.Postgres.MaxOpenConns = 10
	}
	if c.Storage.Postgres.MaxIdleConns == 0 {
		c.Storage.Postgres.MaxIdleConns = 2
	}
	if c.Storage.Postgres.ConnMaxLifetime == "" {
		c.Storage.Postgres.ConnMaxLifetime = "30m"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "efed:"
	}
	if c.Session.Store == "" {
		c.Session.Store = "memory"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "efed_session"
	}
	if c.Session.SameSite == "" {
		c.Session.SameSite = "strict"
	}
	if c.Session.Lifetime == "" {
		c.Session.Lifetime = "1h"
	}
	if c.Session.RotateEvery == "" {
		c.Session.RotateEvery = "5m"
	}
	if c.Rate.Backend == "" {
		c.Rate.Backend = "memory"
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 120
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 5
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "300s"
	}
	if c.Auth.PartialTTL == "" {
		c.Auth.PartialTTL = "5m"
	}
	if c.Auth.TOTPIssuer == "" {
		c.Auth.TOTPIssuer = "Efed CMS"
	}
	if c.Auth.TOTPWindow == 0 {
		c.Auth.TOTPWindow = 1
	}
	if c.Security.PasswordHash == "" {
		c.Security.PasswordHash = "argon2id"
	}
	if c.Security.PasswordPolicy.MinLength == 0 {
		c.Security.PasswordPolicy.MinLength = 8
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := getEnvStr("APP_KEY"); ok {
		c.App.Key = v
	}
	if v, ok := getEnvStr("APP_VERSION"); ok {
		c.App.Version = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvBool("SERVER_TRUST_PROXY_HEADERS"); ok {
		c.Server.TrustProxyHeaders = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvBool("STORAGE_MIGRATE"); ok {
		c.Storage.Migrate = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}
	if v, ok := getEnvStr("POSTGRES_CONN_MAX_LIFETIME"); ok {
		c.Storage.Postgres.ConnMaxLifetime = v
	}

	// REDIS
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Redis.Prefix = v
	}

	// SESSION
	if v, ok := getEnvStr("SESSION_STORE"); ok {
		c.Session.Store = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SESSION_COOKIE_NAME"); ok {
		c.Session.CookieName = v
	}
	if v, ok := getEnvStr("SESSION_DOMAIN"); ok {
		c.Session.Domain = v
	}
	if v, ok := getEnvStr("SESSION_SAMESITE"); ok {
		c.Session.SameSite = v
	}
	if v, ok := getEnvBool("SESSION_SECURE"); ok {
		c.Session.Secure = v
	}
	if v, ok := getEnvStr("SESSION_LIFETIME"); ok {
		c.Session.Lifetime = v
	}
	if v, ok := getEnvStr("SESSION_ROTATE_EVERY"); ok {
		c.Session.RotateEvery = v
	}

	// RATE
	if v, ok := getEnvStr("RATE_BACKEND"); ok {
		c.Rate.Backend = strings.ToLower(v)
	}
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}
	if v, ok := getEnvInt("RATE_LOGIN_LIMIT"); ok {
		c.Rate.Login.Limit = v
	}
	if v, ok := getEnvStr("RATE_LOGIN_WINDOW"); ok {
		c.Rate.Login.Window = v
	}
	if v, ok := getEnvBool("RATE_LOGIN_SHARED"); ok {
		c.Rate.Login.Shared = v
	}

	// AUTH
	if v, ok := getEnvStr("AUTH_PARTIAL_TTL"); ok {
		c.Auth.PartialTTL = v
	}
	if v, ok := getEnvStr("AUTH_TOTP_ISSUER"); ok {
		c.Auth.TOTPIssuer = v
	}
	if v, ok := getEnvInt("AUTH_TOTP_WINDOW"); ok {
		c.Auth.TOTPWindow = v
	}
	if v, ok := getEnvBool("AUTH_ALLOW_HTTP_SEED"); ok {
		c.Auth.AllowHTTPSeed = v
	}

	// SECURITY
	if v, ok := getEnvStr("SECURITY_PASSWORD_HASH"); ok {
		c.Security.PasswordHash = strings.ToLower(v)
	}
	if v, ok := getEnvInt("SECURITY_PASSWORD_MIN_LENGTH"); ok {
		c.Security.PasswordPolicy.MinLength = v
	}
	if v, ok := getEnvStr("SECURITY_PASSWORD_BLACKLIST_PATH"); ok {
		c.Security.PasswordBlacklistPath = v
	}

	if v, ok := getEnvBool("METRICS_ENABLED"); ok {
		c.Metrics.Enabled = v
	}

	// Guardia dura: en prod la cookie siempre es Secure y no hay seed por HTTP.
	if c.IsProd() {
		c.Session.Secure = true
		c.Auth.AllowHTTPSeed = false
	}
}

func (c *Config) IsProd() bool { return strings.EqualFold(c.App.Env, "prod") }

// Validate revisa valores críticos. Se llama desde Load.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case "memory", "postgres", "pg", "postgresql":
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unsupported %q", c.Storage.Driver))
	}
	if c.Storage.Driver != "memory" && strings.TrimSpace(c.Storage.DSN) == "" {
		errs = append(errs, errors.New("storage.dsn: required for postgres"))
	}
	if c.Session.Store != "memory" && c.Session.Store != "redis" {
		errs = append(errs, fmt.Errorf("session.store: unsupported %q", c.Session.Store))
	}
	if c.Rate.Backend != "memory" && c.Rate.Backend != "redis" {
		errs = append(errs, fmt.Errorf("rate.backend: unsupported %q", c.Rate.Backend))
	}
	if c.Security.PasswordHash != "argon2id" && c.Security.PasswordHash != "bcrypt" {
		errs = append(errs, fmt.Errorf("security.password_hash: unsupported %q", c.Security.PasswordHash))
	}
	if c.Rate.Login.Limit <= 0 || c.Rate.MaxRequests <= 0 {
		errs = append(errs, errors.New("rate: limits must be positive"))
	}

	for name, v := range map[string]string{
		"server.read_timeout":                c.Server.ReadTimeout,
		"server.write_timeout":               c.Server.WriteTimeout,
		"server.idle_timeout":                c.Server.IdleTimeout,
		"server.shutdown_timeout":            c.Server.ShutdownTimeout,
		"storage.postgres.conn_max_lifetime": c.Storage.Postgres.ConnMaxLifetime,
		"session.lifetime":                   c.Session.Lifetime,
		"session.rotate_every":               c.Session.RotateEvery,
		"rate.window":                        c.Rate.Window,
		"rate.login.window":                  c.Rate.Login.Window,
		"auth.partial_ttl":                   c.Auth.PartialTTL,
	} {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", name, v))
		}
	}

	key, err := c.AppKey()
	if err != nil {
		errs = append(errs, err)
	} else if c.IsProd() && len(key) < 32 {
		errs = append(errs, errors.New("app.key: APP_KEY must have at least 32 bytes in prod"))
	}

	return errors.Join(errs...)
}

// AppKey decodifica APP_KEY. Vacío devuelve nil (el caller genera una efímera en dev).
func (c *Config) AppKey() ([]byte, error) {
	k := strings.TrimSpace(c.App.Key)
	switch {
	case k == "":
		return nil, nil
	case strings.HasPrefix(k, "base64:"):
		b, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(k, "base64:"))
		if err != nil {
			return nil, fmt.Errorf("app.key: invalid base64: %w", err)
		}
		return b, nil
	case strings.HasPrefix(k, "hex:"):
		b, err := hex.DecodeString(strings.TrimPrefix(k, "hex:"))
		if err != nil {
			return nil, fmt.Errorf("app.key: invalid hex: %w", err)
		}
		return b, nil
	}
	return []byte(k), nil
}

// Duration parsea v; ante error devuelve def. Load ya validó los valores.
func Duration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
