package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/models"
)

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs database migrations
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS characters (
			name TEXT PRIMARY KEY,
			character_class TEXT NOT NULL,
			quality TEXT,
			data TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_characters_class ON characters(character_class)`,
		`CREATE TABLE IF NOT EXISTS wyrmspells (
			name TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			effect TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			author TEXT,
			body TEXT NOT NULL,
			share_code TEXT UNIQUE NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_share ON documents(share_code)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents(kind)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// --- Characters ---

// GetCharacters returns every stored character ordered by name
func (s *Store) GetCharacters() ([]models.Character, error) {
	rows, err := s.db.Query(`SELECT data FROM characters ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query characters")
	}
	defer rows.Close()

	var characters []models.Character
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(err, "failed to scan character")
		}
		var ch models.Character
		if err := json.Unmarshal([]byte(data), &ch); err != nil {
			return nil, errors.Wrap(err, "failed to decode character")
		}
		characters = append(characters, ch)
	}
	return characters, rows.Err()
}

// BulkUpsertCharacters replaces characters by name in a transaction
func (s *Store) BulkUpsertCharacters(characters []models.Character) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO characters (name, character_class, quality, data)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ch := range characters {
		if strings.TrimSpace(ch.Name) == "" {
			return errors.InvalidArgument("character name cannot be empty")
		}
		data, err := json.Marshal(ch)
		if err != nil {
			return errors.Wrapf(err, "failed to encode %s", ch.Name)
		}
		if _, err := stmt.Exec(ch.Name, ch.CharacterClass, ch.Quality, data); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// --- Wyrmspells ---

// GetWyrmspells returns every stored wyrmspell ordered by name
func (s *Store) GetWyrmspells() ([]models.Wyrmspell, error) {
	rows, err := s.db.Query(`SELECT name, type, effect FROM wyrmspells ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query wyrmspells")
	}
	defer rows.Close()

	var spells []models.Wyrmspell
	for rows.Next() {
		var w models.Wyrmspell
		var effect sql.NullString
		if err := rows.Scan(&w.Name, &w.Type, &effect); err != nil {
			return nil, errors.Wrap(err, "failed to scan wyrmspell")
		}
		w.Effect = effect.String
		spells = append(spells, w)
	}
	return spells, rows.Err()
}

// BulkUpsertWyrmspells replaces wyrmspells by name in a transaction
func (s *Store) BulkUpsertWyrmspells(spells []models.Wyrmspell) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO wyrmspells (name, type, effect) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, w := range spells {
		if _, err := stmt.Exec(w.Name, w.Type, w.Effect); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// --- Documents ---

// generateShareCode creates a short unique share code
func generateShareCode() string {
	u := uuid.New()
	return u.String()[:8]
}

// CreateDocument publishes a team or tier list under a fresh share code
func (s *Store) CreateDocument(in *models.DocumentCreate) (*models.PublishedDocument, error) {
	if !in.Kind.Valid() {
		return nil, errors.InvalidArgumentf("unknown document kind %q", in.Kind)
	}
	if !json.Valid(in.Body) {
		return nil, errors.InvalidArgument("document body must be valid JSON")
	}

	id := uuid.New().String()
	shareCode := generateShareCode()
	now := time.Now().UTC()

	_, err := s.db.Exec(`
		INSERT INTO documents (id, kind, name, author, body, share_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, in.Kind, in.Name, in.Author, string(in.Body), shareCode, now, now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert document")
	}

	return &models.PublishedDocument{
		ID:        id,
		Kind:      in.Kind,
		Name:      in.Name,
		Author:    in.Author,
		ShareCode: shareCode,
		Body:      in.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

const documentColumns = `id, kind, name, author, body, share_code, created_at, updated_at`

func scanDocument(row *sql.Row) (*models.PublishedDocument, error) {
	var doc models.PublishedDocument
	var author sql.NullString
	var body string
	err := row.Scan(&doc.ID, &doc.Kind, &doc.Name, &author, &body, &doc.ShareCode, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	doc.Author = author.String
	doc.Body = json.RawMessage(body)
	return &doc, nil
}

// GetDocument returns a published document by ID
func (s *Store) GetDocument(id string) (*models.PublishedDocument, error) {
	doc, err := scanDocument(s.db.QueryRow(`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("document %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get document")
	}
	return doc, nil
}

// GetDocumentByShareCode returns a published document by share code
func (s *Store) GetDocumentByShareCode(code string) (*models.PublishedDocument, error) {
	doc, err := scanDocument(s.db.QueryRow(`SELECT `+documentColumns+` FROM documents WHERE share_code = ?`, code))
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("no document with share code %s", code)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get document")
	}
	return doc, nil
}

// ListDocuments returns summaries, newest first, optionally filtered by kind
func (s *Store) ListDocuments(kind models.DocumentKind) ([]models.DocumentSummary, error) {
	query := `SELECT id, kind, name, author, share_code, updated_at FROM documents`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY updated_at DESC, name`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list documents")
	}
	defer rows.Close()

	summaries := []models.DocumentSummary{}
	for rows.Next() {
		var sum models.DocumentSummary
		var author sql.NullString
		if err := rows.Scan(&sum.ID, &sum.Kind, &sum.Name, &author, &sum.ShareCode, &sum.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan document")
		}
		sum.Author = author.String
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// UpdateDocument updates an existing document
func (s *Store) UpdateDocument(id string, update *models.DocumentUpdate) error {
	// Build dynamic update query
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if update.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Author != nil {
		sets = append(sets, "author = ?")
		args = append(args, *update.Author)
	}
	if update.Body != nil {
		if !json.Valid(update.Body) {
			return errors.InvalidArgument("document body must be valid JSON")
		}
		sets = append(sets, "body = ?")
		args = append(args, string(update.Body))
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE documents SET %s WHERE id = ?", strings.Join(sets, ", "))

	res, err := s.db.Exec(query, args...)
	if err != nil {
		return errors.Wrap(err, "failed to update document")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFoundf("document %s not found", id)
	}
	return nil
}

// DeleteDocument removes a published document
func (s *Store) DeleteDocument(id string) error {
	res, err := s.db.Exec(`DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete document")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFoundf("document %s not found", id)
	}
	return nil
}
