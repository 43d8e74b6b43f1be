package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "ROCKETSHOES"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageDriverMemory   = "memory"
	StorageDriverRedis    = "redis"
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"

	DefaultStorageKey = "@RocketShoes:cart"

	EnvAppEnv         = "ROCKETSHOES_APP_ENV"
	EnvPort           = "ROCKETSHOES_APP_PORT"
	EnvCatalogBaseURL = "ROCKETSHOES_CATALOG_BASE_URL"
	EnvStorageDriver  = "ROCKETSHOES_STORAGE_DRIVER"
	EnvDBDSN          = "ROCKETSHOES_DB_DSN"
	EnvDBHost         = "ROCKETSHOES_DB_HOST"
	EnvDBUser         = "ROCKETSHOES_DB_USER"
	EnvDBName         = "ROCKETSHOES_DB_NAME"
	EnvRedisURL       = "ROCKETSHOES_REDIS_URL"
	EnvRedisAddr      = "ROCKETSHOES_REDIS_ADDR"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App     AppConfig
	Catalog CatalogConfig
	Storage StorageConfig
	DB      DBConfig
	Redis   RedisConfig
	PubSub  PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverMemory:
	case StorageDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("%s or %s is required for the redis storage driver", EnvRedisURL, EnvRedisAddr)
		}
	case StorageDriverPostgres:
		if err := c.DB.ensureDSN(); err != nil {
			return err
		}
	case StorageDriverSQLite:
		if strings.TrimSpace(c.DB.SQLitePath) == "" {
			return fmt.Errorf("sqlite path is required for the sqlite storage driver")
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvStorageDriver, c.Storage.Driver)
	}
	if _, err := url.ParseRequestURI(c.Catalog.BaseURL); err != nil {
		return fmt.Errorf("invalid %s: %w", EnvCatalogBaseURL, err)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"ROCKETSHOES_APP_ENV" required:"true"`
	Port         string `envconfig:"ROCKETSHOES_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ROCKETSHOES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ROCKETSHOES_LOG_WARN_STACK" default:"false"`

	// CORSOrigins is comma separated; the storefront dev server by default.
	CORSOrigins []string `envconfig:"ROCKETSHOES_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CatalogConfig points at the storefront API serving products and stock.
type CatalogConfig struct {
	BaseURL string        `envconfig:"ROCKETSHOES_CATALOG_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"ROCKETSHOES_CATALOG_TIMEOUT" default:"5s"`
}

type StorageConfig struct {
	Driver      string `envconfig:"ROCKETSHOES_STORAGE_DRIVER" default:"memory"`
	Key         string `envconfig:"ROCKETSHOES_STORAGE_KEY" default:"@RocketShoes:cart"`
	AutoMigrate bool   `envconfig:"ROCKETSHOES_AUTO_MIGRATE" default:"false"`
}

// UsesSQL reports whether the configured driver persists through gorm.
func (s StorageConfig) UsesSQL() bool {
	return s.Driver == StorageDriverPostgres || s.Driver == StorageDriverSQLite
}

type DBConfig struct {
	DSN        string `envconfig:"ROCKETSHOES_DB_DSN"`
	SQLitePath string `envconfig:"ROCKETSHOES_SQLITE_PATH" default:"rocketshoes.db"`

	LegacyHost     string `envconfig:"ROCKETSHOES_DB_HOST"`
	LegacyPort     int    `envconfig:"ROCKETSHOES_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ROCKETSHOES_DB_USER"`
	LegacyPassword string `envconfig:"ROCKETSHOES_DB_PASSWORD"`
	LegacyName     string `envconfig:"ROCKETSHOES_DB_NAME"`
	LegacySSLMode  string `envconfig:"ROCKETSHOES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ROCKETSHOES_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"ROCKETSHOES_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"ROCKETSHOES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ROCKETSHOES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// PubSubConfig enables cart.updated events when both fields are set.
type PubSubConfig struct {
	ProjectID      string        `envconfig:"ROCKETSHOES_GCP_PROJECT_ID"`
	CartTopic      string        `envconfig:"ROCKETSHOES_PUBSUB_CART_TOPIC"`
	PublishTimeout time.Duration `envconfig:"ROCKETSHOES_PUBSUB_PUBLISH_TIMEOUT" default:"15s"`
}

func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.ProjectID) != "" && strings.TrimSpace(p.CartTopic) != ""
}

type RedisConfig struct {
	URL          string        `envconfig:"ROCKETSHOES_REDIS_URL"`
	Address      string        `envconfig:"ROCKETSHOES_REDIS_ADDR"`
	Password     string        `envconfig:"ROCKETSHOES_REDIS_PASSWORD"`
	DB           int           `envconfig:"ROCKETSHOES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ROCKETSHOES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ROCKETSHOES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ROCKETSHOES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ROCKETSHOES_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ROCKETSHOES_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
