package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/silt/pkg/core"
	"github.com/spf13/cobra"
)

var (
	getFilter string
	getOne    bool
)

var getCmd = &cobra.Command{
	Use:   "get <collection>",
	Short: "Query records from a collection",
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

		filter, err := parseMap(getFilter)
		if err != nil {
			fatal("Error parsing filter", err)
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		if getOne {
			rec, err := col.FindOne(context.Background(), filter)
			if errors.Is(err, core.ErrNotFound) {
				fmt.Fprintln(os.Stderr, "no match")
				os.Exit(1)
			}
			if err != nil {
				fatal("Error querying collection", err)
			}
			if err := encoder.Encode(rec); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		recs, err := col.Find(context.Background(), filter)
		if err != nil {
			fatal("Error querying collection", err)
		}
		if err := encoder.Encode(recs); err != nil {
			fatal("Error encoding JSON", err)
		}
	},
}

// parseMap decodes a JSON object argument; empty input yields an empty map.
func parseMap(arg string) (core.Map, error) {
	if arg == "" {
		return core.Map{}, nil
	}
	var m core.Map
	if err := json.Unmarshal([]byte(arg), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringVar(&getFilter, "filter", "", "Filter as a JSON object")
	getCmd.Flags().BoolVar(&getOne, "one", false, "Return only the first match")
}
