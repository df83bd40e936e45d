package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [pattern]",
	Short: "Stream change events for collections matching a glob pattern",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pattern := "*"
		if len(args) == 1 {
			pattern = args[0]
		}

		db, err := openDB()
		if err != nil {
			fatal("Error opening database", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		events, err := db.Watch(ctx, pattern)
		if err != nil {
			fatal("Error starting watcher", err)
		}

		for e := range events {
			fmt.Printf("%s %s %s\n", time.Unix(e.Timestamp, 0).Format(time.RFC3339), e.Type, e.Collection)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
