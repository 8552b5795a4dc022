// Package config resolves runtime settings from .coachd.yaml, COACHD_*
// environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "COACHD"
	ConfigPathEnv  = "COACHD_CONFIG_PATH"
	configFileName = ".coachd"
)

type Config struct {
	DataDir          string
	DisplayName      string
	FetchTimeout     time.Duration
	ReloadDelay      time.Duration
	SchedulerBuffer  int
	CompletionBuffer int
	LogLevel         string
	LogFile          string
	ConfigFile       string
}

func Default() Config {
	return Config{
		DataDir:          "~/.coachd",
		FetchTimeout:     10 * time.Second,
		ReloadDelay:      500 * time.Millisecond,
		SchedulerBuffer:  64,
		CompletionBuffer: 8,
		LogLevel:         "info",
	}
}

// Load reads the config file from dir, $COACHD_CONFIG_PATH, or ./ in that
// order. A missing file is not an error.
func Load(dir string) (Config, error) {
	def := Default()
	v := viper.New()
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("display_name", def.DisplayName)
	v.SetDefault("fetch_timeout", def.FetchTimeout)
	v.SetDefault("reload_delay", def.ReloadDelay)
	v.SetDefault("scheduler_buffer", def.SchedulerBuffer)
	v.SetDefault("completion_buffer", def.CompletionBuffer)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", def.LogFile)
	v.SetConfigName(configFileName)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if dir != "" {
		v.AddConfigPath(dir)
	}
	if override := os.Getenv(ConfigPathEnv); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		DataDir:          v.GetString("data_dir"),
		DisplayName:      v.GetString("display_name"),
		FetchTimeout:     v.GetDuration("fetch_timeout"),
		ReloadDelay:      v.GetDuration("reload_delay"),
		SchedulerBuffer:  v.GetInt("scheduler_buffer"),
		CompletionBuffer: v.GetInt("completion_buffer"),
		LogLevel:         v.GetString("log_level"),
		LogFile:          v.GetString("log_file"),
		ConfigFile:       v.ConfigFileUsed(),
	}
	cfg = FromEnv(cfg)

	expanded, err := homedir.Expand(cfg.DataDir)
	if err != nil {
		return Config{}, fmt.Errorf("expand data dir: %w", err)
	}
	cfg.DataDir = expanded
	return cfg.normalize(def), nil
}

// FromEnv applies millisecond and size overrides on top of base.
func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvInt("COACHD_FETCH_TIMEOUT_MS"); ok && v > 0 {
		cfg.FetchTimeout = time.Duration(v) * time.Millisecond
	}
	if v, ok := getEnvInt("COACHD_RELOAD_DELAY_MS"); ok && v >= 0 {
		cfg.ReloadDelay = time.Duration(v) * time.Millisecond
	}
	if v, ok := getEnvInt("COACHD_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvBool("COACHD_DEBUG"); ok && v {
		cfg.LogLevel = "debug"
	}
	return cfg
}

func (c Config) normalize(def Config) Config {
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = def.FetchTimeout
	}
	if c.ReloadDelay < 0 {
		c.ReloadDelay = def.ReloadDelay
	}
	if c.SchedulerBuffer <= 0 {
		c.SchedulerBuffer = def.SchedulerBuffer
	}
	if c.CompletionBuffer <= 0 {
		c.CompletionBuffer = def.CompletionBuffer
	}
	c.DisplayName = strings.TrimSpace(c.DisplayName)
	return c
}

func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "coachd.db")
}

func (c Config) KVPath() string {
	return filepath.Join(c.DataDir, "kv")
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
