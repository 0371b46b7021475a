package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverRedis    = "redis"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	HttpPort           int           `yaml:"http_port"`
	ThreadsPerPage     int           `yaml:"threads_per_page"`
	RepliesPreview     int           `yaml:"replies_preview"` // number of last replies shown in board listing
	StorageDriver      string        `yaml:"storage_driver"`
	CorsAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	IsHTTPS            bool          `yaml:"is_https"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	LogLevel           string        `yaml:"log_level"`
	LogJSON            bool          `yaml:"log_json"`
}

type Private struct {
	Pg    Pg    `yaml:"pg"`
	Mongo Mongo `yaml:"mongo"`
	Redis Redis `yaml:"redis"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
	// DSN overrides the fields above when set (env DB).
	DSN string `yaml:"dsn"`
}

type Mongo struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type Redis struct {
	URL string `yaml:"url"`
}

func (p *Pg) ConnString() string {
	if p.DSN != "" {
		return p.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Dbname)
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Public.HttpPort)
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err := yaml.UnmarshalStrict(configFile, output); err != nil {
		panic(fmt.Sprintf("can't unmarshal config file %s: %v", configPath, err))
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder, applies
// environment overrides (PORT, DB) and defaults, and panics on invalid input.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{Public: public, Private: private}
	cfg.applyEnv()
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		panic(err.Error())
	}
	return cfg
}

func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Public.HttpPort = p
		}
	}
	if db := os.Getenv("DB"); db != "" {
		switch c.Public.StorageDriver {
		case DriverPostgres:
			c.Private.Pg.DSN = db
		case DriverMongo:
			c.Private.Mongo.URI = db
		case DriverRedis:
			c.Private.Redis.URL = db
		}
	}
}

func (c *Config) setDefaults() {
	p := &c.Public
	if p.HttpPort == 0 {
		p.HttpPort = 3000
	}
	if p.ThreadsPerPage == 0 {
		p.ThreadsPerPage = 10
	}
	if p.RepliesPreview == 0 {
		p.RepliesPreview = 3
	}
	if len(p.CorsAllowedOrigins) == 0 {
		p.CorsAllowedOrigins = []string{"*"}
	}
	if p.ReadTimeout == 0 {
		p.ReadTimeout = 5 * time.Second
	}
	if p.WriteTimeout == 0 {
		p.WriteTimeout = 10 * time.Second
	}
	if p.ShutdownTimeout == 0 {
		p.ShutdownTimeout = 10 * time.Second
	}
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if c.Private.Mongo.Database == "" {
		c.Private.Mongo.Database = "boardstore"
	}
}

func (c *Config) validate() error {
	if c.Public.ThreadsPerPage < 0 || c.Public.RepliesPreview < 0 {
		return fmt.Errorf("threads_per_page and replies_preview must be positive")
	}
	switch c.Public.StorageDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.Private.Pg.DSN == "" && c.Private.Pg.Host == "" {
			return fmt.Errorf("pg section is required for storage driver %q", DriverPostgres)
		}
	case DriverMongo:
		if c.Private.Mongo.URI == "" {
			return fmt.Errorf("mongo.uri is required for storage driver %q", DriverMongo)
		}
	case DriverRedis:
		if c.Private.Redis.URL == "" {
			return fmt.Errorf("redis.url is required for storage driver %q", DriverRedis)
		}
	case "":
		return fmt.Errorf("storage_driver is required")
	default:
		return fmt.Errorf("unknown storage_driver %q", c.Public.StorageDriver)
	}
	return nil
}
