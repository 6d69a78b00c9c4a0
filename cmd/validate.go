// Package cmd holds the camlink subcommands added to the CLI root.
package cmd

import (
	"fmt"
	"os"

	"github.com/smazurov/camlink/internal/config"
	"github.com/spf13/cobra"
)

// CreateValidateCmd creates the validate command. It loads and checks the
// configuration file without touching cameras or devices.
func CreateValidateCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long:  `Loads the configuration file, checks every camera entry, and prints any errors or warnings without connecting to cameras or opening devices.`,
		Run: func(_ *cobra.Command, _ []string) {
			cfg, err := config.Load(configFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			for _, w := range cfg.Warnings() {
				fmt.Printf("warning: %s\n", w)
			}

			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(os.Stderr, "invalid configuration:\n%v\n", err)
				os.Exit(1)
			}

			fmt.Printf("%s: %d camera(s) configured, configuration is valid\n",
				configFile, len(cfg.Cameras))
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "camlink.toml", "Configuration file to validate")
	return cmd
}
