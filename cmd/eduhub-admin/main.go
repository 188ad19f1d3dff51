package main

import (
	"eduhub/config"
	"eduhub/database"
	"eduhub/utils"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "eduhub-admin",
		Short:   "Maintenance tasks for an EduHub deployment",
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadConfig()
			utils.InitErrorReporting(config.AppConfig.RollbarToken, config.AppConfig.AppEnv, Version)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			utils.WaitForEmails()
			utils.FlushErrorReporting()
		},
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(expireSubscriptionsCmd())
	rootCmd.AddCommand(meetingRemindersCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDB connects to the configured database. Connecting also migrates it.
func openDB() (*gorm.DB, error) {
	dialector, err := database.Dialector(config.AppConfig)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(dialector, logger.Warn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	database.Database = database.DbInstance{Db: db}
	return db, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := openDB(); err != nil {
				return err
			}
			fmt.Println("Migrations applied")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account or promote an existing user",
		Example: `  eduhub-admin create-admin --email ops@example.com --name "Ops" --password 's3cret-pass'
  eduhub-admin create-admin --email ops@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.ToLower(strings.TrimSpace(email))
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if password != "" && len(password) < 8 {
				return fmt.Errorf("--password must be at least 8 characters")
			}

			db, err := openDB()
			if err != nil {
				return err
			}

			var hashed string
			if password != "" {
				b, err := bcrypt.GenerateFromPassword([]byte(password), config.AppConfig.SaltRound)
				if err != nil {
					return fmt.Errorf("failed to hash password: %w", err)
				}
				hashed = string(b)
			}

			user, created, err := database.EnsureAdmin(db, strings.TrimSpace(name), email, hashed)
			if err != nil {
				return fmt.Errorf("failed to save admin: %w", err)
			}
			if created {
				if password == "" {
					fmt.Println("Warning: admin created without a password, set one with --password")
				}
				fmt.Printf("Created admin %s (id %d)\n", user.Email, user.ID)
			} else {
				fmt.Printf("Promoted %s (id %d) to admin\n", user.Email, user.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&password, "password", "", "new password (keeps the current one when empty)")
	return cmd
}

func expireSubscriptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire-subscriptions",
		Short: "Send renewal reminders and close subscriptions past their period end",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			reminded, canceled, err := utils.ProcessSubscriptionSweep(db, time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("%d reminders sent, %d subscriptions canceled\n", reminded, canceled)
			return nil
		},
	}
}

func meetingRemindersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send-meeting-reminders",
		Short: "Remind students of meetings starting within the hour and close finished meetings",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			reminded, completed, err := utils.ProcessMeetingSweep(db, time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("%d meetings reminded, %d meetings completed\n", reminded, completed)
			return nil
		},
	}
}
