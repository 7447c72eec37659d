package main

import (
	"fmt"
	"log"
	"os"

	"github.com/codecrafts/backend/internal/database"
	"github.com/codecrafts/backend/internal/models"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "promote-admin",
	Short: "Manage platform administrator accounts",
	Long:  "Grants or revokes the admin flag that controls platform-wide dashboard visibility.",
}

var grantCmd = &cobra.Command{
	Use:   "grant <email>",
	Short: "Grant admin privileges to a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAdmin(args[0], true)
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <email>",
	Short: "Revoke admin privileges from a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAdmin(args[0], false)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List current admin accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		var admins []models.User
		if err := database.DB.Where("is_admin = ?", true).Find(&admins).Error; err != nil {
			return err
		}
		if len(admins) == 0 {
			fmt.Println("No admin accounts")
			return nil
		}
		for _, admin := range admins {
			fmt.Printf("%s\t%s\t%s\n", admin.ID, admin.Username, admin.Email)
		}
		return nil
	},
}

func setAdmin(email string, grant bool) error {
	var user models.User
	if err := database.DB.Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return fmt.Errorf("user not found: %s", email)
	}

	if user.IsAdmin == grant {
		if grant {
			fmt.Printf("%s is already an admin\n", user.Username)
		} else {
			fmt.Printf("%s is not an admin\n", user.Username)
		}
		return nil
	}

	user.IsAdmin = grant
	if err := database.DB.Save(&user).Error; err != nil {
		return err
	}

	if grant {
		fmt.Printf("Admin privileges granted to %s (%s)\n", user.Username, user.Email)
		fmt.Println("The user must sign out and back in for the change to take effect")
	} else {
		fmt.Printf("Admin privileges revoked for %s (%s)\n", user.Username, user.Email)
	}
	return nil
}

func main() {
	_ = godotenv.Load()

	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	rootCmd.AddCommand(grantCmd, revokeCmd, listCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
