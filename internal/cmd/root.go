// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

// Package cmd provides the CLI commands for compose.
package cmd

import (
	"fmt"
	"os"

	charm "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/go-compose/compose"
	"github.com/go-compose/compose/log"
)

var (
	cfgFile string
	verbose bool
	debug   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "compose",
	Short: "Render e-mail messages from templates",
	Long: `compose renders e-mail messages from templates. Stylesheets are
inlined and images are attached or embedded as data URIs.

Example:
  compose render -t mail/welcome -m model.jsonc   # Render both variants
  compose render -t mail/welcome.md -o out.eml    # Write to a file
  compose config                                  # Print the effective config`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func initLogging() {
	charm.SetOutput(os.Stderr)
	if debug {
		charm.SetLevel(charm.DebugLevel)
	} else if verbose {
		charm.SetLevel(charm.InfoLevel)
	} else {
		charm.SetLevel(charm.WarnLevel)
	}
}

// pipelineLogger returns the logger handed to the composer
func pipelineLogger() log.Logger {
	level := log.LevelWarn
	if debug {
		level = log.LevelDebug
	} else if verbose {
		level = log.LevelInfo
	}
	return log.FromCharm(charm.Default(), level)
}

// loadConfig loads the config file given by flag, or the defaults
func loadConfig() (compose.Config, error) {
	if cfgFile == "" {
		return compose.DefaultConfig(), nil
	}
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		return compose.Config{}, fmt.Errorf("config file not found: %s", cfgFile)
	}
	charm.Debug("loading config", "file", cfgFile)
	return compose.LoadConfig(cfgFile)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "compose v%s\n", compose.VERSION)
	},
}
