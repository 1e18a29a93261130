package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/buildsync"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of buildsync",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "buildsync version %s (data %s)\n", strings.TrimSpace(buildsync.Version), cfg.DataVersion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
