// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the trial-analyzer CLI.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/trial-analyzer/internal/logger"
	"github.com/pdiddy/trial-analyzer/internal/registry"
	"github.com/pdiddy/trial-analyzer/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfg       types.Config
	log       *logrus.Logger
	logCloser io.Closer
)

// rootCmd is the base command for the trial-analyzer CLI.
var rootCmd = &cobra.Command{
	Use:   "trial-analyzer",
	Short: "Analyze an organization's clinical trial portfolio",
	Long: `trial-analyzer queries the ClinicalTrials.gov registry for the trials an
organization sponsors or collaborates on, follows the drug codes it finds to
related trials, and summarizes the portfolio by phase, status, therapeutic
area, and enrollment.

Analyses are stored in a local SQLite database for later reporting and export.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		l, closer, err := logger.New(cfg.Log)
		if err != nil {
			return err
		}
		log, logCloser = l, closer
		if f := viper.ConfigFileUsed(); f != "" {
			log.WithField("file", f).Debug("using config file")
		}
		return registry.ValidateModules(cfg.Registry.Modules)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./trial-analyzer.yaml or ~/.config/trial-analyzer/trial-analyzer.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("trial-analyzer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "trial-analyzer"))
		}
	}

	viper.SetEnvPrefix("TRIAL_ANALYZER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	_ = viper.ReadInConfig()
}

func setDefaults() {
	d := types.DefaultConfig()
	viper.SetDefault("registry.endpoint", d.Registry.Endpoint)
	viper.SetDefault("registry.modules", d.Registry.Modules)
	viper.SetDefault("registry.page_size", d.Registry.PageSize)
	viper.SetDefault("registry.max_attempts", d.Registry.MaxAttempts)
	viper.SetDefault("registry.base_delay", d.Registry.BaseDelay)
	viper.SetDefault("registry.timeout", d.Registry.Timeout)
	viper.SetDefault("registry.user_agent", d.Registry.UserAgent)
	viper.SetDefault("analyzer.filter_primary", d.Analyzer.FilterPrimary)
	viper.SetDefault("analyzer.drug_query_interval", d.Analyzer.DrugQueryInterval)
	viper.SetDefault("store.path", d.Store.Path)
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.file", d.Log.File)
}

// loadConfig decodes viper's merged view into cfg.
func loadConfig() error {
	cfg = types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}

// execute runs the CLI with args and releases the log file whether or not
// the command succeeded.
func execute(args []string) error {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if logCloser != nil {
		if cerr := logCloser.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func main() {
	if err := execute(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
