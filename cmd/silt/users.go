package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var usersJSON bool

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List registered accounts",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		db, err := openDB()
		if err != nil {
			fatal("Error opening database", err)
		}

		users := db.Accounts.List()

		if usersJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(users); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		for _, u := range users {
			admin := ""
			if u.IsAdmin {
				admin = " (admin)"
			}
			fmt.Printf("%s  %s <%s>%s\n", u.ID, u.Username, u.Email, admin)
		}
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.Flags().BoolVar(&usersJSON, "json", false, "Output in JSON format")
}
