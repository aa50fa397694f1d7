// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pdiddy/notion-math/internal/notion"
	"github.com/pdiddy/notion-math/internal/secrets"
	"github.com/pdiddy/notion-math/pkg/types"
)

// setDefaults registers every config key with its default so that
// AutomaticEnv and Unmarshal see keys absent from the config file.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("max_retries", d.MaxRetries)
	v.SetDefault("token", "")
	v.SetDefault("page_id", "")
	v.SetDefault("notion_version", d.Version)
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("dry_run", d.DryRun)
	v.SetDefault("recursive", d.Recursive)
	v.SetDefault("normalize_unicode", d.NormalizeUnicode)
	v.SetDefault("block_delay", d.BlockDelay)
	v.SetDefault("journal", d.JournalPath)
	v.SetDefault("log_level", d.Level)
	v.SetDefault("log_format", d.Format)
	v.SetDefault("log_file", d.File)
}

func bindFlag(key string, f *pflag.Flag) {
	if err := viper.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", f.Name, err))
	}
}

// loadConfig builds the run configuration from viper, falling back to
// .secrets/ and the dotenv file for the credential and page id. A page
// argument overrides every other source.
func loadConfig(v *viper.Viper, args []string) (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("reading config: %w", err)
	}

	creds := secrets.Resolve(loadedSecrets, loadedEnv)
	if cfg.Token == "" {
		cfg.Token = creds.Token
	}
	if cfg.PageID == "" {
		cfg.PageID = creds.PageID
	}
	if len(args) > 0 {
		cfg.PageID = args[0]
	}

	if cfg.PageID != "" {
		id, err := notion.NormalizeID(cfg.PageID)
		if err != nil {
			return types.Config{}, err
		}
		cfg.PageID = id
	}

	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// setupLogging configures the standard logrus logger. The returned closer
// releases the rotating log file, if any.
func setupLogging(cfg types.LogConfig) (io.Closer, error) {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		l, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = l
	}
	logrus.SetLevel(level)

	switch cfg.Format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.File == "" {
		logrus.SetOutput(os.Stderr)
		return io.NopCloser(nil), nil
	}
	rotating := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	logrus.SetOutput(io.MultiWriter(os.Stderr, rotating))
	return rotating, nil
}
