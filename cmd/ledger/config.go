package main

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/ledger/internal/logger"
)

const (
	defaultListenAddr      = "localhost:8000"
	defaultLoggingLevel    = logger.LevelInfo
	defaultEnvironment     = logger.EnvProduction
	defaultLockTimeout     = 5 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the ledger service will be run
	ListenAddr string

	// Database to connect to
	// If empty ledger is kept in memory and lost on restart
	DatabaseDSN string

	// Environment
	Environment string

	// Allowed CORS origin, "*" allows any
	CORSOrigin string

	// How long a transfer waits for concurrent transfer on the same account to finish
	LockTimeout time.Duration

	// How long to wait for in-flight requests on shutdown
	ShutdownTimeout time.Duration
}

func NewConfig() *Config {
	return &Config{
		LogLevel:        defaultLoggingLevel,
		ListenAddr:      defaultListenAddr,
		Environment:     defaultEnvironment,
		LockTimeout:     defaultLockTimeout,
		ShutdownTimeout: defaultShutdownTimeout,
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
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}

	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":      setString(&c.ListenAddr),
		"DATABASE_URI":     setString(&c.DatabaseDSN),
		"LOG_LEVEL":        setString(&c.LogLevel),
		"ENVIRONMENT":      setString(&c.Environment),
		"CORS_ORIGIN":      setString(&c.CORSOrigin),
		"LOCK_TIMEOUT":     setDuration(&c.LockTimeout),
		"SHUTDOWN_TIMEOUT": setDuration(&c.ShutdownTimeout),
	}

	var errs []error
	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			errs = append(errs, errors.New(key+": "+err.Error()))
		}
	}

	return errors.Join(errs...)
}

// BindFlags registers flags with current config values as defaults
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string, empty keeps ledger in memory")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.CORSOrigin, "cors-origin", c.CORSOrigin, "Allowed CORS origin, '*' for any")
	fs.DurationVar(&c.LockTimeout, "lock-timeout", c.LockTimeout, "Max wait for account lock, 0 waits forever")
	fs.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", c.ShutdownTimeout, "Graceful shutdown timeout")
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("ledger", pflag.ContinueOnError)
	c.BindFlags(fs)

	return fs.Parse(args)
}
