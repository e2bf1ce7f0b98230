package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"LittleLemon/models"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	Mode           string   `yaml:"mode"`
	TrustedProxies []string `yaml:"trustedProxies"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
	LogLevel string `yaml:"logLevel"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	Database int           `yaml:"database"`
	TTL      time.Duration `yaml:"ttl"`
}

type JWTConfig struct {
	PrivateKeyPath string        `yaml:"privateKeyPath"`
	PublicKeyPath  string        `yaml:"publicKeyPath"`
	TokenTTL       time.Duration `yaml:"tokenTTL"`
}

type SeedConfig struct {
	AdminUsername string `yaml:"adminUsername"`
	AdminEmail    string `yaml:"adminEmail"`
	AdminPassword string `yaml:"adminPassword"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Seed     SeedConfig     `yaml:"seed"`
}

func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: ":3000", Mode: "release"},
		Database: DatabaseConfig{Driver: "mysql", Host: "127.0.0.1", Port: "3306", Database: "littlelemon", LogLevel: "warn"},
		Redis:    RedisConfig{TTL: time.Hour},
		JWT: JWTConfig{
			PrivateKeyPath: "config/private.pem",
			PublicKeyPath:  "config/public.pem",
			TokenTTL:       24 * time.Hour,
		},
	}
}

// LoadConfig reads filename on top of the defaults, then loads .env if present
// and applies environment overrides. A missing file is not an error.
func LoadConfig(filename string) (Config, error) {
	config := Default()
	file, err := os.Open(filename)
	switch {
	case err == nil:
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(&config); err != nil {
			return config, err
		}
	case errors.Is(err, os.ErrNotExist):
		log.Printf("config file %s not found, using defaults", filename)
	default:
		return config, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, err
	}
	if err := applyEnv(&config); err != nil {
		return config, err
	}
	return config, nil
}

func applyEnv(config *Config) error {
	setString(&config.Server.Addr, "SERVER_ADDR")
	setString(&config.Server.Mode, "GIN_MODE")
	if v, ok := os.LookupEnv("SERVER_TRUSTED_PROXIES"); ok {
		config.Server.TrustedProxies = splitList(v)
	}
	setString(&config.Database.Driver, "DB_DRIVER")
	setString(&config.Database.DSN, "DB_DSN")
	setString(&config.Database.Username, "DB_USERNAME")
	setString(&config.Database.Password, "DB_PASSWORD")
	setString(&config.Database.Host, "DB_HOST")
	setString(&config.Database.Port, "DB_PORT")
	setString(&config.Database.Database, "DB_DATABASE")
	setString(&config.Database.LogLevel, "DB_LOG_LEVEL")
	setString(&config.Redis.Addr, "REDIS_ADDR")
	setString(&config.Redis.Password, "REDIS_PASSWORD")
	setString(&config.JWT.PrivateKeyPath, "JWT_PRIVATE_KEY")
	setString(&config.JWT.PublicKeyPath, "JWT_PUBLIC_KEY")
	setString(&config.Seed.AdminUsername, "ADMIN_USERNAME")
	setString(&config.Seed.AdminEmail, "ADMIN_EMAIL")
	setString(&config.Seed.AdminPassword, "ADMIN_PASSWORD")

	if v, ok := os.LookupEnv("REDIS_DATABASE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DATABASE: %w", err)
		}
		config.Redis.Database = n
	}
	if err := setDuration(&config.Redis.TTL, "REDIS_TTL"); err != nil {
		return err
	}
	return setDuration(&config.JWT.TokenTTL, "JWT_TOKEN_TTL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

// splitList parses a comma separated list, dropping blanks.
func splitList(v string) []string {
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// Dialector picks the gorm driver for the configured database.
func (c DatabaseConfig) Dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case "", "mysql":
		dsn := c.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				c.Username,
				c.Password,
				c.Host,
				c.Port,
				c.Database,
			)
		}
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := c.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
				c.Host, c.Port, c.Username, c.Password, c.Database)
		}
		return postgres.Open(dsn), nil
	case "sqlite":
		dsn := c.DSN
		if dsn == "" {
			dsn = "littlelemon.db?_foreign_keys=on"
		}
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
}

func (c DatabaseConfig) logMode() logger.LogLevel {
	switch c.LogLevel {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// OpenDatabase connects and migrates every model.
func OpenDatabase(c DatabaseConfig) (*gorm.DB, error) {
	dialector, err := c.Dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(c.logMode()),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, err
	}
	return db, nil
}

// SetupRedisConnection returns nil when no address is configured; the menu is
// then served straight from the database.
func SetupRedisConnection(c RedisConfig) *redis.Client {
	if c.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.Database,
	})
}
