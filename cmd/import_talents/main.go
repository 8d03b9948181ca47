package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/meur/dtwiki/internal/catalog"
	"github.com/meur/dtwiki/internal/models"
	"github.com/meur/dtwiki/internal/storage"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// talentEntry is one record of a talents export, keyed by character name
type talentEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func main() {
	dbPath := flag.String("db", "./dtwiki.db", "SQLite database path")
	talentsPath := flag.String("talents-json", "data/talents.json", "Path to a talents export keyed by character name")
	dryRun := flag.Bool("dry-run", false, "Print summary without writing to the database")
	flag.Parse()

	raw, err := os.ReadFile(*talentsPath)
	if err != nil {
		log.Fatalf("%s✗ Failed to read talents JSON: %v%s", colorRed, err, colorReset)
	}

	talents := map[string]talentEntry{}
	if err := json.Unmarshal(raw, &talents); err != nil {
		log.Fatalf("%s✗ Failed to parse talents JSON: %v%s", colorRed, err, colorReset)
	}
	if len(talents) == 0 {
		log.Fatalf("%s✗ Talents JSON is empty%s", colorRed, colorReset)
	}

	store, err := storage.New(*dbPath)
	if err != nil {
		log.Fatalf("%s✗ Failed to connect to database: %v%s", colorRed, err, colorReset)
	}
	defer store.Close()

	existing, err := store.GetCharacters()
	if err != nil {
		log.Fatalf("%s✗ Failed to read existing characters: %v%s", colorRed, err, colorReset)
	}

	// Export keys are matched loosely: accents, case and spacing are ignored.
	byKey := make(map[string]models.Character, len(existing))
	for _, ch := range existing {
		byKey[catalog.Fold(ch.Name)] = ch
	}

	keys := make([]string, 0, len(talents))
	for key := range talents {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	characters := make([]models.Character, 0, len(talents))
	added := 0
	updated := 0
	var unknown []string

	for _, key := range keys {
		entry := talents[key]
		ch, ok := byKey[catalog.Fold(key)]
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			unknown = append(unknown, key)
			continue
		}

		if ch.Talent == nil {
			added++
		} else {
			updated++
		}
		ch.Talent = &models.Skill{Name: name, Description: strings.TrimSpace(entry.Description)}
		characters = append(characters, ch)
	}

	if len(unknown) > 0 {
		log.Printf("%s⚠ Warning: skipped %d entries with no matching character or talent name: %s%s",
			colorYellow, len(unknown), strings.Join(unknown, ", "), colorReset)
	}

	fmt.Printf("%s📦 Loaded %d talents from JSON%s\n", colorCyan, len(talents), colorReset)

	if *dryRun {
		log.Printf(
			"Dry run: would update %d characters (added %d, replaced %d, skipped %d). Existing characters: %d",
			len(characters),
			added,
			updated,
			len(unknown),
			len(existing),
		)
		return
	}

	if err := store.BulkUpsertCharacters(characters); err != nil {
		log.Fatalf("%s✗ Failed to import talents: %v%s", colorRed, err, colorReset)
	}

	fmt.Printf("%s✓ Imported %d talents (added %d, replaced %d)%s\n", colorGreen, len(characters), added, updated, colorReset)
}
