package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample accounts for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			fmt.Println("Clearing existing data...")
			for _, table := range []string{"leaves", "reimbursements", "users"} {
				if err := gormDB.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
		}

		password := "password123"
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		accounts := []struct {
			Email      string
			Name       string
			Role       string
			Department string
		}{
			{"admin@leavesync.dev", "System Admin", "admin", "Operations"},
			{"manager@leavesync.dev", "Team Manager", "manager", "Engineering"},
			{"alice@leavesync.dev", "Alice Employee", "employee", "Engineering"},
			{"bob@leavesync.dev", "Bob Employee", "employee", "Sales"},
		}

		for _, acc := range accounts {
			var exists int
			row := gormDB.Raw("SELECT 1 FROM users WHERE email = ?", acc.Email).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("user %s already exists, skipping\n", acc.Email)
				continue
			}

			err := gormDB.Exec(
				"INSERT INTO users (email, name, password_hash, role, department, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, true, now(), now())",
				acc.Email, acc.Name, string(hash), acc.Role, acc.Department,
			).Error
			if err != nil {
				log.Fatalf("failed to insert user %s: %v", acc.Email, err)
			}
			fmt.Printf("Seeded %s user: %s\n", acc.Role, acc.Email)
		}

		fmt.Println("Seeding complete. All accounts use password:", password)
	},
}
