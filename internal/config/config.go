package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Sweep    *SweepConfig    `mapstructure:"sweep"`
	Batch    *BatchConfig    `mapstructure:"batch"`

	v  *viper.Viper
	mu sync.Mutex
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string   `mapstructure:"jwt_signing_key"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host        string        `mapstructure:"host"`
	Port        string        `mapstructure:"port"`
	User        string        `mapstructure:"user"`
	Password    string        `mapstructure:"password"`
	DB          string        `mapstructure:"db"`
	SSLMode     string        `mapstructure:"sslmode"`
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode)
}

// SweepConfig drives the periodic automatic phase transitions.
type SweepConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Schedule    string `mapstructure:"schedule"`
	Concurrency int    `mapstructure:"concurrency"`
}

type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

var errMissingSigningKey = errors.New("api.jwt_signing_key is required")

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:3000"})
	v.SetDefault("api.jwt_signing_key", "")
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db", "songcontest")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.call_timeout", "5s")
	v.SetDefault("sweep.enabled", true)
	v.SetDefault("sweep.schedule", "@every 15m")
	v.SetDefault("sweep.concurrency", 4)
	v.SetDefault("batch.concurrency", 8)
}

// Load reads the YAML file at path. Every key can be overridden from the
// environment, e.g. POSTGRES_HOST or API_JWT_SIGNING_KEY.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf, err := decode(v)
	if err != nil {
		return nil, err
	}
	conf.v = v

	return conf, nil
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if conf.API.JWTSigningKey == "" {
		return nil, errMissingSigningKey
	}
	if conf.Postgres.CallTimeout <= 0 {
		conf.Postgres.CallTimeout = 5 * time.Second
	}

	return conf, nil
}

// Watch re-reads the config file whenever it changes and hands the fresh
// values to onChange. Invalid edits are reported through onErr and ignored.
func (c *AppConfig) Watch(onChange func(*AppConfig), onErr func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.v == nil {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		fresh, err := decode(c.v)
		if err != nil {
			if onErr != nil {
				onErr(fmt.Errorf("reload %s -> %w", e.Name, err))
			}
			return
		}
		onChange(fresh)
	})
	c.v.WatchConfig()
}
