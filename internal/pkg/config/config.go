package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

type Config struct {
	Port         string `env:"PORT,          default=8080"`
	Env          string `env:"ENV,           default=development" validate:"oneof=development staging production test"`
	LogLevel     string `env:"LOG_LEVEL,     default=info"`
	StoreBackend string `env:"STORE_BACKEND, default=mongo"       validate:"oneof=mongo memory"`
	AuditWorkers int    `env:"AUDIT_WORKERS, default=4"           validate:"min=1,max=64"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Session SessionConfig
	Proxy   ProxyConfig
	Create  CreatePersonConfig
	JWT     JWTConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=proxy_auth"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

type SessionConfig struct {
	Name    string `env:"SESSION_NAME,    default=proxyauth"`
	Secret  string `env:"SESSION_SECRET"`
	Backend string `env:"SESSION_BACKEND, default=cookie" validate:"oneof=cookie redis"`
	MaxAge  int    `env:"SESSION_MAX_AGE, default=86400"  validate:"min=60"`
	Secure  bool   `env:"SESSION_SECURE,  default=false"`
}

type ProxyConfig struct {
	Header      string         `env:"PROXY_HEADER,    default=X-Remote-User" validate:"required"`
	Admin       string         `env:"PROXY_ADMIN"`
	AfterLogin  string         `env:"AFTER_LOGIN,     default=/"`
	AfterLogout string         `env:"AFTER_LOGOUT"`
	Hardcoded   HardcodedUsers `env:"HARDCODED_USERS"                        validate:"dive"`
}

type CreatePersonConfig struct {
	Enabled          bool     `env:"CREATE_PERSON, default=false"`
	Group            string   `env:"CREATE_PERSON_GROUP"`
	GroupPermissions []string `env:"CREATE_PERSON_GROUP_PERMISSIONS"`
	FirstNameHeader  string   `env:"CREATE_PERSON_FIRST_NAME_HEADER"`
	LastNameHeader   string   `env:"CREATE_PERSON_LAST_NAME_HEADER"`
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET"`
	Issuer string        `env:"JWT_ISSUER, default=proxy-auth"`
	TTL    time.Duration `env:"JWT_TTL,    default=15m"`
}

// HardcodedUsers decodes the HARDCODED_USERS JSON array.
type HardcodedUsers []domain.HardcodedUser

func (h *HardcodedUsers) EnvDecode(val string) error {
	val = strings.TrimSpace(val)
	if val == "" {
		*h = nil
		return nil
	}
	var users []domain.HardcodedUser
	if err := json.Unmarshal([]byte(val), &users); err != nil {
		return fmt.Errorf("HARDCODED_USERS: %w", err)
	}
	*h = users
	return nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// GroupSpec returns the group new persons join, or nil when none is configured.
func (c *CreatePersonConfig) GroupSpec() *domain.GroupSpec {
	if c.Group == "" {
		return nil
	}
	perms := make([]string, 0, len(c.GroupPermissions))
	for _, p := range c.GroupPermissions {
		if p = strings.TrimSpace(p); p != "" {
			perms = append(perms, p)
		}
	}
	return &domain.GroupSpec{Name: c.Group, Permissions: perms}
}

// Validate checks struct rules and the cross-field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.IsProduction() && c.Session.Secret == "" {
		return errors.New("SESSION_SECRET is required in production")
	}
	if c.Session.Secret != "" && len(c.Session.Secret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 bytes")
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return &cfg, nil
}
