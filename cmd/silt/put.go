package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	putData   string
	putFilter string
	putUpdate string
	putUpsert bool
)

var putCmd = &cobra.Command{
	Use:   "put <collection>",
	Short: "Insert a record, or update one matching a filter",
	Long: `With --data, inserts the given JSON object as a new record.
With --filter and --update, applies the update specification ($set/$inc)
to the first matching record; --upsert inserts when nothing matches.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if (putData == "") == (putFilter == "" && putUpdate == "") {
			fatal("Invalid arguments", fmt.Errorf("use either --data or --filter with --update"))
		}

		db, err := openDB()
		if err != nil {
			fatal("Error opening database", err)
		}

		col, err := db.Collection(args[0])
		if err != nil {
			fatal("Error opening collection", err)
		}

		if putData != "" {
			rec, err := parseMap(putData)
			if err != nil {
				fatal("Error parsing data", err)
			}
			id, err := col.InsertOne(context.Background(), rec)
			if err != nil {
				fatal("Error inserting record", err)
			}
			fmt.Println(id)
			return
		}

		filter, err := parseMap(putFilter)
		if err != nil {
			fatal("Error parsing filter", err)
		}
		update, err := parseMap(putUpdate)
		if err != nil {
			fatal("Error parsing update", err)
		}

		res, err := col.UpdateOne(context.Background(), filter, update, putUpsert)
		if err != nil {
			fatal("Error updating record", err)
		}
		switch {
		case res.Matched:
			fmt.Println("updated")
		case res.UpsertedID != "":
			fmt.Println(res.UpsertedID)
		default:
			fmt.Println("no match")
		}
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
	putCmd.Flags().StringVar(&putData, "data", "", "Record to insert as a JSON object")
	putCmd.Flags().StringVar(&putFilter, "filter", "", "Filter as a JSON object")
	putCmd.Flags().StringVar(&putUpdate, "update", "", "Update specification as a JSON object")
	putCmd.Flags().BoolVar(&putUpsert, "upsert", false, "Insert when nothing matches")
}
