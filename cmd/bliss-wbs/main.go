// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bliss-wbs CLI.
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

// rootCmd is the base command for the bliss-wbs CLI.
var rootCmd = &cobra.Command{
	Use:   "bliss-wbs",
	Short: "Decode WBS Blissymbol definition files",
	Long: `bliss-wbs decodes WBS symbol-definition files, the line-oriented format
legacy Blissymbolics tooling uses to describe glyphs, into structured
records.

Use convert to turn .wbs files into JSON, JSONL or YAML, and index to build
a searchable SQLite index of glyphs by gloss, country and shape code.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bliss-wbs.yaml or ~/.config/bliss-wbs/config.yaml)")

	// Decoder flags are shared by every command that reads .wbs files.
	rootCmd.PersistentFlags().String("policy", "pattern", "shape decoding policy: pattern (extract x/y/letter) or raw (keep grid)")
	rootCmd.PersistentFlags().String("encoding", "latin1", "input encoding: latin1, windows-1252, or utf-8")
	rootCmd.PersistentFlags().Int("workers", 1, "goroutines used to decode lines")
	rootCmd.PersistentFlags().Bool("skip-blank", false, "skip whitespace-only lines (default depends on policy)")

	bindFlags(rootCmd.PersistentFlags(), map[string]string{
		"decode.policy":     "policy",
		"decode.encoding":   "encoding",
		"decode.workers":    "workers",
		"decode.skip_blank": "skip-blank",
	})
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bliss-wbs")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bliss-wbs"))
		}
	}

	viper.SetEnvPrefix("BLISS_WBS")
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
