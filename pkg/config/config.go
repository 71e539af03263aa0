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
	QR           QRConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"FOODCOURT_APP_ENV" required:"true"`
	Port         string `envconfig:"FOODCOURT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FOODCOURT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FOODCOURT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FOODCOURT_DB_DSN"`
	Driver string `envconfig:"FOODCOURT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FOODCOURT_DB_HOST"`
	LegacyPort     int    `envconfig:"FOODCOURT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FOODCOURT_DB_USER"`
	LegacyPassword string `envconfig:"FOODCOURT_DB_PASSWORD"`
	LegacyName     string `envconfig:"FOODCOURT_DB_NAME"`
	LegacySSLMode  string `envconfig:"FOODCOURT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FOODCOURT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FOODCOURT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FOODCOURT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FOODCOURT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FOODCOURT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FOODCOURT_REDIS_ADDR"`
	Password     string        `envconfig:"FOODCOURT_REDIS_PASSWORD"`
	DB           int           `envconfig:"FOODCOURT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FOODCOURT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FOODCOURT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FOODCOURT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FOODCOURT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FOODCOURT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FOODCOURT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FOODCOURT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FOODCOURT_JWT_EXPIRATION_MINUTES" default:"480"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FOODCOURT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FOODCOURT_ARGON_TIME" default:"1"`
	ArgonParallelism int `envconfig:"FOODCOURT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FOODCOURT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FOODCOURT_ARGON_KEY_LEN" default:"32"`
}

type QRConfig struct {
	BaseURL string `envconfig:"FOODCOURT_QR_BASE_URL" default:"https://order.foodcourt.local"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FOODCOURT_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FOODCOURT_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"FOODCOURT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"FOODCOURT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"FOODCOURT_PUBSUB_NOTIFICATION_TOPIC" default:"fc-notification-events"`
	NotificationSubscription string `envconfig:"FOODCOURT_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"FOODCOURT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"FOODCOURT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"FOODCOURT_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
