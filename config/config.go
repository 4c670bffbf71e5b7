package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// IdentityMode selects which field identifies an account. It is resolved once at
// startup; request handling never switches on raw field names.
type IdentityMode string

const (
	IdentityEmail  IdentityMode = "email"
	IdentityMobile IdentityMode = "mobile"
)

// Column returns the database column holding the identity value.
func (m IdentityMode) Column() string {
	if m == IdentityMobile {
		return "mobile_no"
	}
	return "email"
}

// VerifiedColumn returns the column flipped to true after code verification.
func (m IdentityMode) VerifiedColumn() string {
	if m == IdentityMobile {
		return "mobile_no_verified"
	}
	return "email_verified"
}

// DefaultCodeLength is 4 digits for email codes and 6 for mobile codes.
func (m IdentityMode) DefaultCodeLength() int {
	if m == IdentityMobile {
		return 6
	}
	return 4
}

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Bcrypt       BcryptConfig
	Crypto       CryptoConfig
	Verification VerificationConfig
	Storage      StorageConfig
	RateLimit    RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Port        string
	Timeout     time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	Database     int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type JWTConfig struct {
	Secret         string
	ExpirationTime time.Duration
}

type BcryptConfig struct {
	Cost int
}

// CryptoConfig carries the AES key material used to wrap bearer tokens for
// non-documentation clients. Secret must be 16, 24 or 32 bytes; IV must be 16.
type CryptoConfig struct {
	Secret string
	IV     string
}

type VerificationConfig struct {
	Mode       IdentityMode
	CodeLength int
}

type StorageConfig struct {
	Mode      string // "local" or "s3"
	LocalDir  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

type RateLimitConfig struct {
	Request  int
	Duration int
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env is optional; environment variables may be set directly
	}

	mode := IdentityMode(getEnv("VERIFICATION_MODE", string(IdentityEmail)))
	if mode != IdentityEmail && mode != IdentityMobile {
		return nil, fmt.Errorf("invalid VERIFICATION_MODE %q", mode)
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "glowday-api"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
			Timeout:     getEnvAsDuration("APP_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "glowday"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:      getEnvAsBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			Database:     getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
			DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		JWT: JWTConfig{
			Secret:         getEnv("JWT_SECRET", "default_secret_key_change_in_production"),
			ExpirationTime: getEnvAsDuration("JWT_EXPIRATION", 240*time.Hour),
		},
		Bcrypt: BcryptConfig{
			Cost: getEnvAsInt("BCRYPT_COST", 10),
		},
		Crypto: CryptoConfig{
			Secret: getEnv("AES_SECRET", ""),
			IV:     getEnv("AES_IV", ""),
		},
		Verification: VerificationConfig{
			Mode:       mode,
			CodeLength: getEnvAsInt("VERIFICATION_CODE_LENGTH", mode.DefaultCodeLength()),
		},
		Storage: StorageConfig{
			Mode:      getEnv("STORAGE_MODE", "local"),
			LocalDir:  getEnv("STORAGE_LOCAL_DIR", "./uploads"),
			Bucket:    getEnv("STORAGE_BUCKET", ""),
			Region:    getEnv("STORAGE_REGION", "us-east-1"),
			AccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey: getEnv("STORAGE_SECRET_KEY", ""),
		},
		RateLimit: RateLimitConfig{
			Request:  getEnvAsInt("RATE_LIMIT_MAX_REQUEST", 60),
			Duration: getEnvAsInt("RATE_LIMIT_DURATION", 60),
		},
	}

	return config, nil
}

func (c *Config) DatabaseConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
