package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/mediakit/offload/internal/logger"
	"github.com/mediakit/offload/internal/service/lifecycle"
)

const (
	defaultListenAddr   = "localhost:8080"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultOffloadMode  = string(lifecycle.ModeImages)
	defaultPresets      = "thumbnail=150x150:crop,medium=300x300,large=1024x1024"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Environment
	Environment string

	// Address on which the gateway API will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key used to sign and validate service tokens for the gateway API
	SecretKey string

	// Media service coordinates
	APIBaseURL   string
	MediaBaseURL string
	ClientID     string
	ClientSecret string

	// Base URL the host serves not-yet-migrated uploads from
	LocalBaseURL string

	// Absolute path of the host upload directory
	UploadRoot string

	// Which assets to offload: images or all
	OffloadMode string

	// Host size presets, e.g. "thumbnail=150x150:crop,medium=300x300"
	Presets string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		Environment: defaultEnvironment,
		ListenAddr:  defaultListenAddr,
		OffloadMode: defaultOffloadMode,
		Presets:     defaultPresets,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":         setString(&c.ListenAddr),
		"DATABASE_URI":        setString(&c.DatabaseDSN),
		"SECRET_KEY":          setString(&c.SecretKey),
		"LOG_LEVEL":           setString(&c.LogLevel),
		"ENVIRONMENT":         setString(&c.Environment),
		"MEDIA_API_URL":       setString(&c.APIBaseURL),
		"MEDIA_URL":           setString(&c.MediaBaseURL),
		"MEDIA_CLIENT_ID":     setString(&c.ClientID),
		"MEDIA_CLIENT_SECRET": setString(&c.ClientSecret),
		"LOCAL_BASE_URL":      setString(&c.LocalBaseURL),
		"UPLOAD_ROOT":         setString(&c.UploadRoot),
		"OFFLOAD_MODE":        setString(&c.OffloadMode),
		"SIZE_PRESETS":        setString(&c.Presets),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("offloadd", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Gateway API listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key for service token signing")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.APIBaseURL, "api-url", c.APIBaseURL, "Media service API base URL")
	fs.StringVar(&c.MediaBaseURL, "media-url", c.MediaBaseURL, "Public media base URL")
	fs.StringVar(&c.ClientID, "client-id", c.ClientID, "Media service client id")
	fs.StringVar(&c.ClientSecret, "client-secret", c.ClientSecret, "Media service client secret")
	fs.StringVar(&c.LocalBaseURL, "local-url", c.LocalBaseURL, "Base URL of locally served uploads")
	fs.StringVar(&c.UploadRoot, "upload-root", c.UploadRoot, "Host upload directory")
	fs.StringVar(&c.OffloadMode, "offload-mode", c.OffloadMode, "Which assets to offload (images, all)")
	fs.StringVar(&c.Presets, "presets", c.Presets, "Named size presets, name=WxH[:crop] comma separated")

	return fs.Parse(args)
}

// Validate reports the first missing required option
func (c *Config) Validate() error {
	required := []struct {
		value string
		name  string
	}{
		{c.DatabaseDSN, "database DSN"},
		{c.SecretKey, "secret key"},
		{c.APIBaseURL, "media API base URL"},
		{c.MediaBaseURL, "media base URL"},
		{c.LocalBaseURL, "local base URL"},
		{c.ClientID, "client id"},
		{c.ClientSecret, "client secret"},
		{c.UploadRoot, "upload root"},
	}

	for _, opt := range required {
		if opt.value == "" {
			return fmt.Errorf("%s must be set", opt.name)
		}
	}

	return nil
}
