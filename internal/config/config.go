package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	Strava   StravaConfig   `env:",prefix=STRAVA_"`
	Session  SessionConfig  `env:",prefix=SESSION_"`
	Sync     SyncConfig     `env:",prefix=SYNC_"`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host           string `env:"HOST,default=localhost"`
	Port           string `env:"PORT,default=5432"`
	User           string `env:"USER,default=talaria"`
	Password       string `env:"PASSWORD,default=talaria_password"`
	DBName         string `env:"DB,default=talaria_db"`
	SSLMode        string `env:"SSLMODE,default=disable"`
	MigrationsPath string `env:"MIGRATIONS_PATH,default=migrations"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

type StravaConfig struct {
	ClientID          string   `env:"CLIENT_ID,required"`
	ClientSecret      string   `env:"CLIENT_SECRET,required"`
	RedirectURI       string   `env:"REDIRECT_URI,default=http://localhost:5173/exchange_token"`
	BaseURL           string   `env:"BASE_URL,default=https://www.strava.com/api/v3"`
	TokenURL          string   `env:"TOKEN_URL,default=https://www.strava.com/oauth/token"`
	AuthorizeURL      string   `env:"AUTHORIZE_URL,default=https://www.strava.com/oauth/authorize"`
	RequestTimeout    Duration `env:"REQUEST_TIMEOUT,default=30s"`
	MaxRetries        int      `env:"MAX_RETRIES,default=3"`
	RetryInitialDelay Duration `env:"RETRY_INITIAL_DELAY,default=1s"`
	RetryFactor       float64  `env:"RETRY_FACTOR,default=2.0"`
	RateLimitCooldown Duration `env:"RATE_LIMIT_COOLDOWN,default=60s"`
}

type SessionConfig struct {
	Secret      string   `env:"SECRET,required"`
	TokenExpiry Duration `env:"TOKEN_EXPIRY,default=7d"`
}

type SyncConfig struct {
	LockTTL           Duration `env:"LOCK_TTL,default=2m"`
	BootstrapWindow   Duration `env:"BOOTSTRAP_WINDOW,default=30d"`
	PageSize          int      `env:"PAGE_SIZE,default=100"`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=5"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:5173"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns the PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// URL returns the PostgreSQL connection URL used by the migration runner
func (p PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

// Address returns the Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(config.Session.Secret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 characters long")
	}

	return &config, nil
}
