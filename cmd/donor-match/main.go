// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the donor-match CLI: it compiles
// versioned matching dictionaries, looks typings up in them, and scores
// patient and donor typings against each other.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultUserAgent = "donor-match/0.1"

var rootCmd = &cobra.Command{
	Use:   "donor-match",
	Short: "Compile HLA matching dictionaries and score donor typings",
	Long: `donor-match compiles one nomenclature version of the HLA reference dataset
into a matching dictionary, stores it, and answers lookups and match
classifications against it.

Datasets are read from <dataset-dir>/<version>.yaml or fetched from
<dataset-url>/<version>.yaml. Compiled dictionaries are kept in a SQLite
store under <store-dir> and reused on later runs.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./donor-match.yaml or ~/.config/donor-match/donor-match.yaml)")
	flags.String("dataset-dir", "datasets", "directory holding <version>.yaml reference datasets")
	flags.String("dataset-url", "", "base URL serving <version>.yaml reference datasets (overrides --dataset-dir)")
	flags.Duration("timeout", 0, "HTTP request timeout for dataset downloads (default 60s)")
	flags.Int("max-retries", 0, "retries on HTTP 429 and gateway errors (default 5)")
	flags.String("store-dir", "store", "base directory for the dictionary store (contains index/, export/)")
	flags.Bool("no-store", false, "do not read or write the dictionary store")
	flags.Int("workers", 0, "compilation worker pool size (default: number of CPUs)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.Bool("log-pretty", false, "human-readable console logs")
	flags.String("metrics-file", "", "write Prometheus metrics to this file on exit")

	for key, flag := range map[string]string{
		"dataset.dir":         "dataset-dir",
		"dataset.base_url":    "dataset-url",
		"dataset.timeout":     "timeout",
		"dataset.max_retries": "max-retries",
		"store.dir":           "store-dir",
		"store.disabled":      "no-store",
		"compile.workers":     "workers",
		"log.level":           "log-level",
		"log.pretty":          "log-pretty",
		"metrics_file":        "metrics-file",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
	viper.SetDefault("dataset.user_agent", defaultUserAgent)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("donor-match")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "donor-match"))
		}
	}

	viper.SetEnvPrefix("DONOR_MATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
