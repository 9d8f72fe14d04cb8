package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Fees         FeesConfig
	Dispatch     DispatchConfig
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
	if err := cfg.Fees.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SWIFTBASKET_APP_ENV" required:"true"`
	Port         string `envconfig:"SWIFTBASKET_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SWIFTBASKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SWIFTBASKET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SWIFTBASKET_DB_DSN"`
	Driver string `envconfig:"SWIFTBASKET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SWIFTBASKET_DB_HOST"`
	LegacyPort     int    `envconfig:"SWIFTBASKET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SWIFTBASKET_DB_USER"`
	LegacyPassword string `envconfig:"SWIFTBASKET_DB_PASSWORD"`
	LegacyName     string `envconfig:"SWIFTBASKET_DB_NAME"`
	LegacySSLMode  string `envconfig:"SWIFTBASKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SWIFTBASKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SWIFTBASKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SWIFTBASKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SWIFTBASKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SWIFTBASKET_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SWIFTBASKET_REDIS_ADDR"`
	Password     string        `envconfig:"SWIFTBASKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"SWIFTBASKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SWIFTBASKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SWIFTBASKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SWIFTBASKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SWIFTBASKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SWIFTBASKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// FeesConfig carries the flat fees applied to every placement. Values are
// decimal strings so money never passes through binary floats.
type FeesConfig struct {
	PlatformFee string `envconfig:"SWIFTBASKET_FEES_PLATFORM" default:"2.00"`
	DeliveryFee string `envconfig:"SWIFTBASKET_FEES_DELIVERY" default:"18.00"`
}

func (f FeesConfig) validate() error {
	for name, raw := range map[string]string{"platform": f.PlatformFee, "delivery": f.DeliveryFee} {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid %s fee %q: %w", name, raw, err)
		}
		if d.IsNegative() {
			return fmt.Errorf("%s fee must not be negative", name)
		}
	}
	return nil
}

// Platform returns the platform fee as a decimal.
func (f FeesConfig) Platform() decimal.Decimal {
	d, _ := decimal.NewFromString(f.PlatformFee)
	return d
}

// Delivery returns the delivery fee as a decimal.
func (f FeesConfig) Delivery() decimal.Decimal {
	d, _ := decimal.NewFromString(f.DeliveryFee)
	return d
}

type DispatchConfig struct {
	BroadcastChannel  string `envconfig:"SWIFTBASKET_DISPATCH_BROADCAST_CHANNEL" default:"dispatch:broadcast"`
	CourierChannelFmt string `envconfig:"SWIFTBASKET_DISPATCH_COURIER_CHANNEL_FMT" default:"dispatch:courier:%s"`
}

// CourierChannel resolves the private channel name for a courier.
func (d DispatchConfig) CourierChannel(courierID string) string {
	return fmt.Sprintf(d.CourierChannelFmt, courierID)
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SWIFTBASKET_AUTO_MIGRATE" default:"false"`
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
