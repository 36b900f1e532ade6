package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultJWTSecret es el secreto de desarrollo; prod lo rechaza.
const DefaultJWTSecret = "ChangeMeSuperSecretKey"

type Config struct {
	App struct {
		// dev | prod
		Env      string `yaml:"env" env:"APP_ENV"`
		LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
		Version  string `yaml:"version" env:"SERVICE_VERSION"`
	} `yaml:"app"`

	Server struct {
		Port            int           `yaml:"port" env:"AUTH_SERVICE_PORT"`
		CORSOrigins     []string      `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
		FrontendURL     string        `yaml:"frontend_url" env:"FRONTEND_URL"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
		// CIDRs o IPs de reverse proxies cuyo X-Forwarded-For se acepta.
		TrustedProxies []string `yaml:"trusted_proxies" env:"TRUSTED_PROXIES" envSeparator:","`
	} `yaml:"server"`

	Storage struct {
		// sqlite://path | postgres://... | memory://
		DSN      string `yaml:"dsn" env:"DATABASE_URL"`
		MaxConns int32  `yaml:"max_conns" env:"DATABASE_MAX_CONNS"`
	} `yaml:"storage"`

	Cache struct {
		RedisAddr string        `yaml:"redis_addr" env:"REDIS_ADDR"`
		RedisDB   int           `yaml:"redis_db" env:"REDIS_DB"`
		Prefix    string        `yaml:"prefix" env:"CACHE_PREFIX"`
		ClientTTL time.Duration `yaml:"client_ttl" env:"CACHE_CLIENT_TTL"`
	} `yaml:"cache"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenTTLMinutes int    `yaml:"access_ttl_minutes" env:"TOKEN_EXPIRATION_MINUTES"`
	} `yaml:"jwt"`

	OAuth struct {
		Issuer         string `yaml:"issuer" env:"ISSUER_URL"`
		CodeTTLMinutes int    `yaml:"code_ttl_minutes" env:"AUTH_CODE_TTL_MINUTES"`
	} `yaml:"oauth"`

	DID struct {
		WebDomain string `yaml:"web_domain" env:"DID_WEB_DOMAIN"`
	} `yaml:"did"`

	Rate struct {
		LoginMax    int           `yaml:"login_max" env:"LOGIN_RATE_MAX"`
		LoginWindow time.Duration `yaml:"login_window" env:"LOGIN_RATE_WINDOW"`
	} `yaml:"rate"`
}

// Default retorna la configuración base, equivalente a correr sin env ni YAML.
func Default() *Config {
	var c Config
	c.App.Env = "dev"
	c.App.Version = "0.1.0"
	c.Server.Port = 8000
	c.Server.CORSOrigins = []string{"http://localhost:3000"}
	c.Server.FrontendURL = "http://localhost:3000"
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Storage.DSN = "sqlite://./data/idryos.db"
	c.Storage.MaxConns = 10
	c.Cache.Prefix = "idryos:"
	c.Cache.ClientTTL = time.Minute
	c.JWT.Secret = DefaultJWTSecret
	c.JWT.AccessTokenTTLMinutes = 15
	c.OAuth.Issuer = "http://localhost:8000"
	c.OAuth.CodeTTLMinutes = 5
	c.DID.WebDomain = "localhost:8000"
	c.Rate.LoginMax = 10
	c.Rate.LoginWindow = time.Minute
	return &c
}

// Load aplica defaults, luego el YAML opcional en path y por último las
// variables de entorno. Un path vacío o inexistente no es error.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("config: env: %w", err)
	}
	c.OAuth.Issuer = strings.TrimRight(c.OAuth.Issuer, "/")

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate rechaza valores que dejarían el servicio inseguro o inutilizable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.IsProd() {
		if c.JWT.Secret == DefaultJWTSecret || len(c.JWT.Secret) < 32 {
			return errors.New("config: JWT_SECRET must be set to at least 32 bytes in prod")
		}
	}
	if c.JWT.AccessTokenTTLMinutes <= 0 {
		return errors.New("config: TOKEN_EXPIRATION_MINUTES must be positive")
	}
	if c.OAuth.CodeTTLMinutes <= 0 {
		return errors.New("config: AUTH_CODE_TTL_MINUTES must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Server.Port)
	}
	if c.Storage.DSN == "" {
		return errors.New("config: DATABASE_URL is required")
	}
	if c.Rate.LoginMax < 0 || (c.Rate.LoginMax > 0 && c.Rate.LoginWindow <= 0) {
		return errors.New("config: invalid login rate limit")
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}
	return nil
}

// TrustedProxyPrefixes parsea TRUSTED_PROXIES. Una IP suelta vale como /32
// (o /128).
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, raw := range c.Server.TrustedProxies {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if strings.Contains(s, "/") {
			p, err := netip.ParsePrefix(s)
			if err != nil {
				return nil, fmt.Errorf("config: TRUSTED_PROXIES: %w", err)
			}
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(s)
		if err != nil {
			return nil, fmt.Errorf("config: TRUSTED_PROXIES: %w", err)
		}
		a = a.Unmap()
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}

func (c *Config) IsProd() bool { return strings.EqualFold(c.App.Env, "prod") }

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Server.Port) }

func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenTTLMinutes) * time.Minute
}

func (c *Config) CodeTTL() time.Duration {
	return time.Duration(c.OAuth.CodeTTLMinutes) * time.Minute
}

// AllowedOrigins une CORS_ORIGINS con FRONTEND_URL, sin duplicados.
func (c *Config) AllowedOrigins() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(c.Server.CORSOrigins)+1)
	add := func(o string) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			return
		}
		if _, ok := seen[o]; ok {
			return
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	for _, o := range c.Server.CORSOrigins {
		add(o)
	}
	add(c.Server.FrontendURL)
	return out
}
