// Command seed populates the database with demo users, friendships, and
// goals. Refuses to run in production.
package main

import (
	"flag"
	"log"

	"strive/internal/config"
	"strive/internal/database"
	"strive/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "number of users to create")
	goalsPerUser := flag.Int("goals", 2, "goals per user")
	clean := flag.Bool("clean", false, "delete existing data first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		NumUsers:     *numUsers,
		GoalsPerUser: *goalsPerUser,
		ShouldClean:  *clean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
