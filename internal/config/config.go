package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	minSecretLen = 32
)

type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"development"`
	Port   string `envconfig:"PORT" default:"5000"`

	DBDriver     string        `envconfig:"DB_DRIVER" default:"sqlite"`
	DBHost       string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort       int           `envconfig:"DB_PORT" default:"5432"`
	DBUser       string        `envconfig:"DB_USER" default:"autosalon"`
	DBPassword   string        `envconfig:"DB_PASSWORD"`
	DBName       string        `envconfig:"DB_NAME" default:"autosalon"`
	DBSSLMode    string        `envconfig:"DB_SSLMODE" default:"disable"`
	DBDSN        string        `envconfig:"DB_DSN"`
	DBMaxConns   int           `envconfig:"DB_MAX_CONNS" default:"10"`
	StoreTimeout time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`

	JWTSecret  string        `envconfig:"JWT_SECRET"`
	JWTIssuer  string        `envconfig:"JWT_ISSUER" default:"autosalon"`
	TokenTTL   time.Duration `envconfig:"TOKEN_TTL" default:"1h"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"10"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@autosalon.local"`
	AdminUsername string `envconfig:"ADMIN_USERNAME" default:"Admin"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	SeedDemo bool `envconfig:"SEED_DEMO" default:"false"`

	LoginRateMax    int           `envconfig:"LOGIN_RATE_MAX" default:"5"`
	LoginRateWindow time.Duration `envconfig:"LOGIN_RATE_WINDOW" default:"10m"`
	CORSOrigins     string        `envconfig:"CORS_ORIGINS" default:"*"`
	BodyLimit       int           `envconfig:"BODY_LIMIT" default:"1048576"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	LogFile   string `envconfig:"LOG_FILE"`

	// Set when Load filled a development-only random value.
	SecretGenerated        bool `ignored:"true"`
	AdminPasswordGenerated bool `ignored:"true"`
}

// Load reads the environment, optionally from a .env file, and validates it.
func Load() (Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool { return c.AppEnv == EnvDevelopment }

func (c *Config) finalize() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	if c.DBDriver != DriverSQLite && c.DBDriver != DriverPostgres {
		return fmt.Errorf("config: DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DBDriver)
	}
	if c.DBMaxConns < 1 {
		return errors.New("config: DB_MAX_CONNS must be at least 1")
	}
	if c.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}

	switch {
	case c.JWTSecret != "" && len(c.JWTSecret) < minSecretLen:
		return fmt.Errorf("config: JWT_SECRET must be at least %d bytes, got %d", minSecretLen, len(c.JWTSecret))
	case c.JWTSecret == "":
		if !c.IsDevelopment() {
			return fmt.Errorf("config: JWT_SECRET must be set to at least %d bytes outside development", minSecretLen)
		}
		c.JWTSecret = randomHex(minSecretLen)
		c.SecretGenerated = true
	}
	if c.AdminPassword == "" {
		if !c.IsDevelopment() {
			return errors.New("config: ADMIN_PASSWORD must be set outside development")
		}
		c.AdminPassword = randomHex(12)
		c.AdminPasswordGenerated = true
	}
	return nil
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	if c.DBDriver == DriverSQLite {
		return c.DBName + ".db"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}

// RedactedDSN is DSN with any password masked, for logs.
func (c *Config) RedactedDSN() string {
	dsn := c.DSN()
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("config: read random: %v", err))
	}
	return hex.EncodeToString(b)
}
