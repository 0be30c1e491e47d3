// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/tagger/internal/config"
	"firestige.xyz/tagger/internal/log"

	// Built-in reporters register themselves.
	_ "firestige.xyz/tagger/plugins"
)

var (
	// Global flags
	configFile string

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tagger",
	Short: "Tag SMTP, HTTP and FTP protocol lines in packet captures",
	Long: `tagger classifies the TCP segments of a capture file as SMTP commands,
HTTP request or status lines, or FTP server replies.

A segment is tagged when it travels to or from a well-known port
(21 ftp, 25 smtp, 80 http, plus configured bindings) and its payload
starts with a complete line in that protocol's grammar. Everything else
is left untagged.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (defaults only when empty)")

	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(validateCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := log.Init(c.Log); err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}
	cfg = c
	return nil
}
