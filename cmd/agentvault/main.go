// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the agentvault CLI.
package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/agentvault/internal/logger"
	"github.com/pdiddy/agentvault/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Built-in defaults, overridable via config file, environment, or flags.
const (
	defaultVaultRoot = "vault"
	defaultStorePath = "data/agentvault.sqlite"
)

// rootCmd is the base command for the agentvault CLI.
var rootCmd = &cobra.Command{
	Use:   "agentvault",
	Short: "Build and query a full-text index over archived chat exports",
	Long: `agentvault maintains a local search index over a vault of archived chat
exports (HTML, conversations JSON, Markdown threads), organized in
per-source subfolders.

build-index ingests the vault into a SQLite full-text index; query runs
ranked searches against it. Scheduling and any automation around these
commands are external concerns: both are plain synchronous invocations.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger.SetVerbose(verbose)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./agentvault.yaml or ~/.config/agentvault/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose logging to stderr")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("agentvault")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "agentvault"))
		}
	}

	viper.SetEnvPrefix("AGENTVAULT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Info("using config file: %s", viper.ConfigFileUsed())
	}
}

// indexConfig resolves the index store settings: flag, then config
// file/env, then built-in default.
func indexConfig(cmd *cobra.Command) types.IndexConfig {
	storePath, _ := cmd.Flags().GetString("store")
	if storePath == "" {
		storePath = viper.GetString("index.store_path")
	}
	if storePath == "" {
		storePath = defaultStorePath
	}

	return types.IndexConfig{
		StorePath:     storePath,
		MaxResults:    viper.GetInt("index.max_results"),
		RecencyWindow: viper.GetDuration("index.recency_window"),
	}
}

// vaultRoot resolves the vault root: flag, then config file/env, then
// built-in default.
func vaultRoot(cmd *cobra.Command) string {
	root, _ := cmd.Flags().GetString("root")
	if root == "" {
		root = viper.GetString("vault.root")
	}
	if root == "" {
		root = defaultVaultRoot
	}
	return root
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
