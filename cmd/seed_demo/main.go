package main

import (
	"fmt"
	"log"

	"github.com/imf-ops/gadgetry/internal/config"
	"github.com/imf-ops/gadgetry/internal/database"
	"github.com/imf-ops/gadgetry/internal/models"
	"github.com/imf-ops/gadgetry/internal/utils"
)

func main() {
	fmt.Println("🌱 IMF Gadget API Demo Data Seeder")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")

	fmt.Println("🔨 Running database migrations...")
	if err := db.AutoMigrate(&models.User{}, &models.Gadget{}); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")

	// Check if data already exists
	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	if userCount > 0 {
		fmt.Printf("⚠️  Database already has %d users. Clear it first? (y/N): ", userCount)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Database not modified.")
			return
		}

		fmt.Println("🗑️  Clearing existing data...")
		db.Exec("TRUNCATE TABLE gadgets CASCADE")
		db.Exec("TRUNCATE TABLE users CASCADE")
		fmt.Println("✅ Data cleared")
	}

	fmt.Println("👤 Creating demo users...")
	users := []struct {
		username string
		password string
		role     string
	}{
		{"imfadmin", "secretadmin123", models.RoleAdmin},
		{"agent007", "agent007", models.RoleAgent},
	}
	for _, u := range users {
		hash, err := utils.HashPassword(u.password)
		if err != nil {
			log.Fatalf("❌ Failed to hash password for %s: %v", u.username, err)
		}
		user := models.User{Username: u.username, Password: hash, Role: u.role}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("❌ Failed to create user %s: %v", u.username, err)
		}
		fmt.Printf("   - %s (%s)\n", u.username, u.role)
	}

	fmt.Println("🛰  Creating demo gadgets...")
	gadgets := []models.Gadget{
		{Name: "Explosive Pen", Codename: "The Midnight Scribe", Status: models.StatusAvailable},
		{Name: "Facial Recognition Glasses", Codename: "The Phantom Watcher", Status: models.StatusAvailable},
		{Name: "Grappling Watch", Codename: "The Silver Ascender", Status: models.StatusDeployed},
	}
	for i := range gadgets {
		if err := db.Create(&gadgets[i]).Error; err != nil {
			log.Fatalf("❌ Failed to create gadget %s: %v", gadgets[i].Name, err)
		}
		fmt.Printf("   - %s (%s)\n", gadgets[i].Name, gadgets[i].Codename)
	}

	fmt.Println("✅ Database seeded successfully")
}
