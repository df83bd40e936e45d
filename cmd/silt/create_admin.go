package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/silt/pkg/accounts"
	"github.com/aretw0/silt/pkg/core"
	"github.com/spf13/cobra"
)

var (
	adminEmail    string
	adminUsername string
	adminPassword string
	adminFullName string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account if none exists",
	Long: `Creates an administrator account with the given credentials. If any
admin already exists this is a no-op; if the email or username belongs to
an existing non-admin account, that account is promoted instead.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		db, err := openDB()
		if err != nil {
			fatal("Error opening database", err)
		}

		for _, u := range db.Accounts.List() {
			if u.IsAdmin {
				fmt.Printf("Admin account already exists: %s\n", u.Username)
				return
			}
		}

		created, err := db.Accounts.Create(accounts.CreateAccount{
			Email:    adminEmail,
			Username: adminUsername,
			Password: adminPassword,
			FullName: adminFullName,
			IsAdmin:  true,
		})
		if err == nil {
			fmt.Printf("Admin account created: %s <%s>\n", created.Username, created.Email)
			return
		}
		if !errors.Is(err, core.ErrUniqueness) {
			fatal("Error creating admin account", err)
		}

		// The credentials belong to an existing account: promote it.
		existing, lookupErr := db.Accounts.GetByUsername(adminUsername)
		if lookupErr != nil {
			existing, lookupErr = db.Accounts.GetByEmail(adminEmail)
		}
		if lookupErr != nil {
			fatal("Error creating admin account", err)
		}

		isAdmin := true
		if _, err := db.Accounts.Update(existing.ID, accounts.Patch{IsAdmin: &isAdmin}); err != nil {
			fatal("Error promoting account", err)
		}
		fmt.Printf("Promoted existing account to admin: %s\n", existing.Username)
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd)
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email address")
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "Admin username")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password")
	createAdminCmd.Flags().StringVar(&adminFullName, "full-name", "", "Admin display name")
	createAdminCmd.MarkFlagRequired("email")
	createAdminCmd.MarkFlagRequired("username")
	createAdminCmd.MarkFlagRequired("password")
}
