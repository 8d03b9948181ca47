package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/meur/dtwiki/internal/catalog"
	"github.com/meur/dtwiki/internal/storage"
)

func main() {
	dbPath := flag.String("db", "./dtwiki.db", "SQLite database path")
	dataDir := flag.String("data", "./data", "Directory holding characters.json and wyrmspells.json")
	flag.Parse()

	store, err := storage.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(*dataDir, "characters.json")); err != nil {
		log.Fatalf("No characters.json in %s: %v", *dataDir, err)
	}

	cat, err := catalog.Load(*dataDir)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	if err := store.BulkUpsertCharacters(cat.Characters()); err != nil {
		log.Fatalf("Failed to seed characters: %v", err)
	}
	log.Printf("✓ Seeded %d characters", cat.Len())

	spells := cat.Wyrmspells("")
	if err := store.BulkUpsertWyrmspells(spells); err != nil {
		log.Printf("Warning: failed to seed wyrmspells: %v", err)
	} else {
		log.Printf("✓ Seeded %d wyrmspells", len(spells))
	}

	log.Println("🌱 Seeding complete!")
}
