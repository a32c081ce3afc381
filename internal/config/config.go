package config

import (
	"fmt"
	"time"

	"bizflow_backend/pkg/utils"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	Auth     AuthConfig
	CORS     CORSConfig
	SMTP     SMTPConfig
}

type ServerConfig struct {
	AppEnv string
	Port   string
}

type LoggerConfig struct {
	Level  string
	Pretty bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ApplySchema     bool
}

// DSN renders the lib/pq keyword/value connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// DevJWTSecret signs tokens only when JWT_DEV_SECRET=true and no
// JWT_SECRET is set. It is public and never accepted in production.
const DevJWTSecret = "change-me-bizflow-dev-secret"

type JWTConfig struct {
	Secret         string
	TTL            time.Duration
	AllowDevSecret bool
}

type AuthConfig struct {
	BcryptCost int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// SMTPConfig is optional; with no user/password set, notifications are only logged.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether enough is configured to deliver mail.
func (s SMTPConfig) Enabled() bool {
	return s.User != "" && s.Password != ""
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	appEnv := utils.Getenv("APP_ENV", "development")
	jwtCfg := JWTConfig{
		Secret:         utils.Getenv("JWT_SECRET", ""),
		TTL:            utils.GetenvDuration("JWT_TTL", utils.DefaultTokenTTL),
		AllowDevSecret: utils.GetenvBool("JWT_DEV_SECRET", false),
	}
	if jwtCfg.Secret == "" && jwtCfg.AllowDevSecret {
		jwtCfg.Secret = DevJWTSecret
	}

	return &Config{
		Server: ServerConfig{
			AppEnv: appEnv,
			Port:   utils.Getenv("PORT", "5000"),
		},
		Logger: LoggerConfig{
			Level:  utils.Getenv("LOG_LEVEL", "info"),
			Pretty: utils.GetenvBool("LOG_PRETTY", appEnv != "production"),
		},
		Postgres: PostgresConfig{
			Host:            utils.Getenv("DB_HOST", "localhost"),
			Port:            utils.Getenv("DB_PORT", "5432"),
			User:            utils.Getenv("DB_USER", "bizflow"),
			Password:        utils.Getenv("DB_PASSWORD", "bizflow"),
			DBName:          utils.Getenv("DB_NAME", "bizflow"),
			SSLMode:         utils.Getenv("DB_SSLMODE", "disable"),
			MaxOpenConns:    utils.GetenvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    utils.GetenvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: utils.GetenvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ApplySchema:     utils.GetenvBool("DB_APPLY_SCHEMA", true),
		},
		JWT: jwtCfg,
		Auth: AuthConfig{
			BcryptCost: utils.GetenvInt("BCRYPT_COST", 10),
		},
		CORS: CORSConfig{
			AllowedOrigins: utils.GetenvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		},
		SMTP: SMTPConfig{
			Host:     utils.Getenv("EMAIL_HOST", "smtp.gmail.com"),
			Port:     utils.GetenvInt("EMAIL_PORT", 587),
			User:     utils.Getenv("EMAIL_USER", ""),
			Password: utils.Getenv("EMAIL_PASS", ""),
			From:     utils.Getenv("EMAIL_FROM", ""),
		},
	}
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.JWT.Secret == "":
		return fmt.Errorf("JWT_SECRET must be set (or JWT_DEV_SECRET=true for local development)")
	case c.JWT.Secret == DevJWTSecret && !c.JWT.AllowDevSecret:
		return fmt.Errorf("JWT_SECRET must not be the development placeholder")
	case c.JWT.Secret == DevJWTSecret && c.Server.AppEnv == "production":
		return fmt.Errorf("the development JWT secret cannot be used in production")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	return nil
}
