package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Session      SessionConfig
	Cart         CartConfig
	Cron         CronConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
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
	Env           string `envconfig:"SALLATI_APP_ENV" required:"true"`
	Port          string `envconfig:"SALLATI_APP_PORT" required:"true"`
	LogLevel      string `envconfig:"SALLATI_LOG_LEVEL" default:"info"`
	LogWarnStack  bool   `envconfig:"SALLATI_LOG_WARN_STACK" default:"false"`
	DefaultLocale string `envconfig:"SALLATI_DEFAULT_LOCALE" default:"en"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SALLATI_DB_DSN"`
	Driver string `envconfig:"SALLATI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SALLATI_DB_HOST"`
	LegacyPort     int    `envconfig:"SALLATI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SALLATI_DB_USER"`
	LegacyPassword string `envconfig:"SALLATI_DB_PASSWORD"`
	LegacyName     string `envconfig:"SALLATI_DB_NAME"`
	LegacySSLMode  string `envconfig:"SALLATI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SALLATI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SALLATI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SALLATI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SALLATI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SALLATI_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SALLATI_REDIS_ADDR"`
	Password     string        `envconfig:"SALLATI_REDIS_PASSWORD"`
	DB           int           `envconfig:"SALLATI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SALLATI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SALLATI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SALLATI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SALLATI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SALLATI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SALLATI_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SALLATI_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SALLATI_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SALLATI_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SALLATI_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SALLATI_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SALLATI_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SALLATI_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SALLATI_ARGON_KEY_LEN" default:"32"`
}

// SessionConfig tunes the storefront session tracker.
type SessionConfig struct {
	// FallbackUnit is one "time unit" of the loading fallback; the tracker
	// forces loading=false after five units without a completed transition.
	FallbackUnit time.Duration `envconfig:"SALLATI_SESSION_FALLBACK_UNIT" default:"1s"`
}

// FallbackTimeout is the full fallback delay (five units).
func (s SessionConfig) FallbackTimeout() time.Duration {
	if s.FallbackUnit <= 0 {
		return 5 * time.Second
	}
	return 5 * s.FallbackUnit
}

type CartConfig struct {
	SnapshotTTL time.Duration `envconfig:"SALLATI_CART_SNAPSHOT_TTL" default:"72h"`
}

// CronConfig tunes the scheduled maintenance worker.
type CronConfig struct {
	Interval             time.Duration `envconfig:"SALLATI_CRON_INTERVAL" default:"1h"`
	LockTTL              time.Duration `envconfig:"SALLATI_CRON_LOCK_TTL" default:"2h"`
	InboxRetentionDays   int           `envconfig:"SALLATI_CRON_INBOX_RETENTION_DAYS" default:"30"`
	SupplierReminderDays int           `envconfig:"SALLATI_CRON_SUPPLIER_REMINDER_DAYS" default:"3"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SALLATI_CORS_ALLOWED_ORIGINS"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SALLATI_AUTO_MIGRATE" default:"false"`
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
