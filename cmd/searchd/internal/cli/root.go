// Package cli wires the searchd commands. Configuration flows through
// cobra flags bound to viper keys, SEARCHD_-prefixed environment variables,
// and an optional YAML config file, in that order of precedence.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "searchd",
	Short: "Exact-match line search over TCP",
	Long: `searchd serves exact-match line search queries over TCP.

Clients send one line of text per query and receive STRING EXISTS or
STRING NOT FOUND depending on whether that exact line is present in the
configured reference file. The file is either re-read from disk on every
query or cached in memory at startup, and queries can be gated behind a
pre-shared key.

Quick start:
  searchd serve --file /data/lines.txt --port 44445
  searchd query --port 44445 "some exact line"`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./searchd.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}
