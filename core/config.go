package core

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageBackendDisk = "disk"
	StorageBackendGCS  = "gcs"
)

type (
	Config struct {
		AppName         string
		Env             string // DEV (local; default), TEST, QA, PROD
		Build           string
		Debug           bool
		TestMode        bool
		WorkDir         string
		SecretKey       string
		RollbarToken    string
		FrontendBaseURL string

		Server   ServerConfig
		Database DatabaseConfig
		Storage  StorageConfig
	}

	ServerConfig struct {
		Host                      string
		Address                   string
		DebugAddress              string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		DisableReqLogs            bool
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	StorageConfig struct {
		Backend       string // disk | gcs
		Dir           string // disk only
		Bucket        string // gcs only
		Credentials   string // gcs only: service account file, application default credentials when empty
		PublicBaseURL string
		MaxUploadSize int64
	}
)

func (dbConf DatabaseConfig) Address() string {
	return net.JoinHostPort(dbConf.Host, dbConf.Port)
}

// NewConfig loads the app configuration from the environment,
// after loading `config/.env.<env>` if it exists.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}

	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	setDefaults(v)
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{
		AppName:         v.GetString("appName"),
		Env:             env,
		Build:           v.GetString("build"),
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		WorkDir:         wd,
		SecretKey:       v.GetString("secretKey"),
		RollbarToken:    v.GetString("rollbarToken"),
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Address:                   v.GetString("server.address"),
			DebugAddress:              v.GetString("server.debugAddress"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			DisableReqLogs:            v.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Storage: StorageConfig{
			Backend:       v.GetString("storage.backend"),
			Dir:           v.GetString("storage.dir"),
			Bucket:        v.GetString("storage.bucket"),
			Credentials:   v.GetString("storage.credentials"),
			PublicBaseURL: v.GetString("storage.publicBaseURL"),
			MaxUploadSize: v.GetInt64("storage.maxUploadSize"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)

	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "LessonHub")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "k3u!7=qv0f(pe4b@&z$1n_x9w+5gm#2s^c8hyd)l6ta*r-oj")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "lessonhub")
	v.SetDefault("database.user", "lessonhub")
	v.SetDefault("database.password", "lessonhub")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("storage.backend", StorageBackendDisk)
	v.SetDefault("storage.dir", "uploads")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.credentials", "")
	v.SetDefault("storage.publicBaseURL", "http://localhost:8000/files")
	v.SetDefault("storage.maxUploadSize", int64(200*1024*1024))
}

// NewTestConfig returns the configuration used by package tests.
func NewTestConfig() *Config {
	return &Config{
		AppName:   "LessonHub",
		Env:       "TEST",
		Build:     "test",
		Debug:     false,
		TestMode:  true,
		SecretKey: "test-secret",
		Server: ServerConfig{
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			DisableReqLogs:            true,
		},
		Storage: StorageConfig{
			Backend:       StorageBackendDisk,
			PublicBaseURL: "http://files.test",
			MaxUploadSize: 200 * 1024 * 1024,
		},
	}
}

func (conf *Config) String() string {
	return fmt.Sprintf("%s (env=%s build=%s debug=%t)", conf.AppName, conf.Env, conf.Build, conf.Debug)
}
