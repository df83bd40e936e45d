package main

import (
	"fmt"

	"github.com/aretw0/silt"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of silt",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("silt version %s\n", silt.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
