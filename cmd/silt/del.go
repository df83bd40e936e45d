package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var delFilter string

var delCmd = &cobra.Command{
	Use:   "del <collection>",
	Short: "Delete the first record matching a filter",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db, err := openDB()
		if err != nil {
			fatal("Error opening database", err)
		}

		col, err := db.Collection(args[0])
		if err != nil {
			fatal("Error opening collection", err)
		}

		filter, err := parseMap(delFilter)
		if err != nil {
			fatal("Error parsing filter", err)
		}

		deleted, err := col.DeleteOne(context.Background(), filter)
		if err != nil {
			fatal("Error deleting record", err)
		}
		if !deleted {
			fmt.Fprintln(os.Stderr, "no match")
			os.Exit(1)
		}
		fmt.Println("deleted")
	},
}

func init() {
	rootCmd.AddCommand(delCmd)
	delCmd.Flags().StringVar(&delFilter, "filter", "", "Filter as a JSON object")
	delCmd.MarkFlagRequired("filter")
}
