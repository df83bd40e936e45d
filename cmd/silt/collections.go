package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List the collections of the database",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		db, err := openDB()
		if err != nil {
			fatal("Error opening database", err)
		}

		names, err := db.Store.Collections()
		if err != nil {
			fatal("Error listing collections", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(collectionsCmd)
}
