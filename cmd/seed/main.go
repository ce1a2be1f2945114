// Command main runs the database seeder for Amplify.
package main

import (
	"flag"
	"log"

	"amplify/internal/config"
	"amplify/internal/database"
	"amplify/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 8, "Number of staff users to create")
	numDrafts := flag.Int("drafts", 40, "Number of drafts to create")
	numArchived := flag.Int("archived", 60, "Number of archived posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d users, %d drafts, %d archived, clean=%v\n",
		*numUsers, *numDrafts, *numArchived, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := s.SeedAll(seed.Options{
		NumUsers:    *numUsers,
		NumDrafts:   *numDrafts,
		NumArchived: *numArchived,
		Domain:      cfg.AllowedDomain,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Done")
}
