package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName      string
		Env          string // DEV (local; default), TEST, PROD
		Debug        bool
		TestMode     bool
		Build        string
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		Redis    RedisConfig
	}

	ServerConfig struct {
		Host            string
		Port            int
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	DatabaseConfig struct {
		Engine         string // postgres | memory
		Host           string
		Port           int
		Name           string
		User           string
		Password       string
		AdminUser      string
		AdminPassword  string
		DisableTLS     bool
		MaxOpenConns   int
		MaxIdleTime    time.Duration
		ConnectTimeout time.Duration
	}

	RedisConfig struct {
		URL        string
		RankingTTL time.Duration
	}
)

const (
	EnginePostgres = "postgres"
	EngineMemory   = "memory"
)

func (sc ServerConfig) Address() string {
	return net.JoinHostPort(sc.Host, strconv.Itoa(sc.Port))
}

func (dc DatabaseConfig) Address() string {
	return net.JoinHostPort(dc.Host, strconv.Itoa(dc.Port))
}

// envKeys binds config keys to the env vars the deployment already uses.
var envKeys = map[string]string{
	"appName":                 "APP_NAME",
	"debug":                   "DEBUG",
	"build":                   "BUILD",
	"rollbarToken":            "ROLLBAR_TOKEN",
	"server.host":             "HOST",
	"server.port":             "PORT",
	"server.debugHost":        "DEBUG_HOST",
	"server.readTimeout":      "READ_TIMEOUT",
	"server.writeTimeout":     "WRITE_TIMEOUT",
	"server.shutdownTimeout":  "SHUTDOWN_TIMEOUT",
	"server.disableReqLogs":   "DISABLE_REQUEST_LOGS",
	"database.engine":         "DB_ENGINE",
	"database.host":           "DB_HOST",
	"database.port":           "DB_PORT",
	"database.name":           "DB_NAME",
	"database.user":           "DB_USER",
	"database.password":       "DB_PASSWORD",
	"database.adminUser":      "DB_ADMIN_USER",
	"database.adminPassword":  "DB_ADMIN_PASSWORD",
	"database.disableTLS":     "DB_DISABLE_TLS",
	"database.maxOpenConns":   "DB_MAX_OPEN_CONNS",
	"database.maxIdleTime":    "DB_MAX_IDLE_TIME",
	"database.connectTimeout": "DB_CONNECT_TIMEOUT",
	"redis.url":               "REDIS_URL",
	"redis.rankingTTL":        "RANKING_CACHE_TTL",
}

// NewConfig reads the configuration from defaults, the optional `config/.env.<env>` file and the environment.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Mundo dos Mangues")
	v.SetDefault("debug", env == "DEV")
	v.SetDefault("build", "develop")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.debugHost", "localhost:4001")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("database.engine", EnginePostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "mangues")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.maxOpenConns", 20)
	v.SetDefault("database.maxIdleTime", 30*time.Second)
	v.SetDefault("database.connectTimeout", 5*time.Second)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.rankingTTL", 30*time.Second)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	for key, envVar := range envKeys {
		_ = v.BindEnv(key, envVar)
	}

	return &Config{
		AppName:      v.GetString("appName"),
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     env == "TEST",
		Build:        v.GetString("build"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			DebugHost:       v.GetString("server.debugHost"),
			ReadTimeout:     v.GetDuration("server.readTimeout"),
			WriteTimeout:    v.GetDuration("server.writeTimeout"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:         strings.ToLower(v.GetString("database.engine")),
			Host:           v.GetString("database.host"),
			Port:           v.GetInt("database.port"),
			Name:           v.GetString("database.name"),
			User:           v.GetString("database.user"),
			Password:       v.GetString("database.password"),
			AdminUser:      v.GetString("database.adminUser"),
			AdminPassword:  v.GetString("database.adminPassword"),
			DisableTLS:     v.GetBool("database.disableTLS"),
			MaxOpenConns:   v.GetInt("database.maxOpenConns"),
			MaxIdleTime:    v.GetDuration("database.maxIdleTime"),
			ConnectTimeout: v.GetDuration("database.connectTimeout"),
		},
		Redis: RedisConfig{
			URL:        v.GetString("redis.url"),
			RankingTTL: v.GetDuration("redis.rankingTTL"),
		},
	}
}
