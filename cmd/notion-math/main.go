// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the notion-math CLI.
// See README § Usage for the command surface.
package main

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/notion-math/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds values from .secrets/ loaded at startup.
var loadedSecrets map[string]string

// loadedEnv holds values from the dotenv file loaded at startup.
var loadedEnv map[string]string

// rootCmd is the base command for the notion-math CLI.
var rootCmd = &cobra.Command{
	Use:   "notion-math",
	Short: "Convert inline $...$ LaTeX in Notion pages into equations",
	Long: `notion-math scans the blocks of a Notion page, finds inline $...$ LaTeX in
paragraphs, headings, list items, toggles, quotes and callouts, and replaces
each span with a native Notion inline equation.

The integration token and page id come from flags, NOTION_MATH_* or
NOTION_TOKEN / NOTION_PAGE_ID environment variables, a notion-math.yaml
config file, .secrets/notion-token and .secrets/notion-page-id, or a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(secretsDir)
		if err != nil {
			return err
		}
		loadedSecrets = s

		envFile, _ := cmd.Flags().GetString("env-file")
		env, err := secrets.LoadEnvFile(envFile)
		if err != nil {
			return err
		}
		loadedEnv = env

		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logrus.WithField("keys", keys).Debug("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./notion-math.yaml or ~/.config/notion-math/config.yaml)")
	pf.String("secrets-dir", ".secrets/", "directory of secret files (notion-token, notion-page-id)")
	pf.String("env-file", ".env", "dotenv file with NOTION_TOKEN and NOTION_PAGE_ID")
	pf.String("journal", "", "SQLite journal path (default .notion-math/journal.db, empty string disables)")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")
	pf.String("log-file", "", "also write logs to this file, rotated")

	bindFlag("journal", pf.Lookup("journal"))
	bindFlag("log_level", pf.Lookup("log-level"))
	bindFlag("log_format", pf.Lookup("log-format"))
	bindFlag("log_file", pf.Lookup("log-file"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("notion-math")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "notion-math"))
		}
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("NOTION_MATH")
	viper.AutomaticEnv()
	viper.BindEnv("token", "NOTION_MATH_TOKEN", "NOTION_TOKEN")
	viper.BindEnv("page_id", "NOTION_MATH_PAGE_ID", "NOTION_PAGE_ID")

	if err := viper.ReadInConfig(); err == nil {
		logrus.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
