package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable consumed by the service.
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Invites       InviteConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COUPLESHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"COUPLESHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COUPLESHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COUPLESHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"COUPLESHUB_DB_DSN"`
	Driver string `envconfig:"COUPLESHUB_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"COUPLESHUB_DB_HOST"`
	Port     int    `envconfig:"COUPLESHUB_DB_PORT" default:"5432"`
	User     string `envconfig:"COUPLESHUB_DB_USER"`
	Password string `envconfig:"COUPLESHUB_DB_PASSWORD"`
	Name     string `envconfig:"COUPLESHUB_DB_NAME"`
	SSLMode  string `envconfig:"COUPLESHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COUPLESHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COUPLESHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COUPLESHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COUPLESHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a DSN from the discrete settings when one was not given.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("db dsn or host/user/name settings are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"COUPLESHUB_REDIS_URL"`
	Address      string        `envconfig:"COUPLESHUB_REDIS_ADDR"`
	Password     string        `envconfig:"COUPLESHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"COUPLESHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COUPLESHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COUPLESHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COUPLESHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COUPLESHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COUPLESHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"COUPLESHUB_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"COUPLESHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"COUPLESHUB_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"COUPLESHUB_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	MinLength        int `envconfig:"COUPLESHUB_PASSWORD_MIN_LENGTH" default:"8"`
	ArgonMemoryKB    int `envconfig:"COUPLESHUB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"COUPLESHUB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"COUPLESHUB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"COUPLESHUB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"COUPLESHUB_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"COUPLESHUB_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"COUPLESHUB_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"COUPLESHUB_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"COUPLESHUB_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"COUPLESHUB_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"COUPLESHUB_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// InviteConfig controls how shareable invitation links are rendered.
type InviteConfig struct {
	PublicOrigin string `envconfig:"COUPLESHUB_INVITE_PUBLIC_ORIGIN" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"COUPLESHUB_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"COUPLESHUB_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"COUPLESHUB_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"COUPLESHUB_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"COUPLESHUB_PUBSUB_DOMAIN_TOPIC" default:"ch-domain-events"`
	DomainSubscription string `envconfig:"COUPLESHUB_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	PollInterval time.Duration `envconfig:"COUPLESHUB_OUTBOX_POLL_INTERVAL" default:"2s"`
	BatchSize    int           `envconfig:"COUPLESHUB_OUTBOX_BATCH_SIZE" default:"100"`
	MaxAttempts  int           `envconfig:"COUPLESHUB_OUTBOX_MAX_ATTEMPTS" default:"10"`
}
