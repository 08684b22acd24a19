package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage handles all database operations
type Storage struct {
	db *sql.DB
}

// NewStorage creates a new Storage instance, opening/creating the DB and initializing schema
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storage := &Storage{db: db}

	// Initialize schema
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates tables and indices if they don't exist
func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed_url TEXT NOT NULL,
		processed INTEGER DEFAULT 0,
		skipped INTEGER DEFAULT 0,
		empty_content INTEGER DEFAULT 0,
		visited INTEGER DEFAULT 0,
		finished_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS pages (
		page_id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		record_id TEXT NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(run_id),
		UNIQUE(run_id, record_id)
	);

	CREATE TABLE IF NOT EXISTS sections (
		section_id INTEGER PRIMARY KEY AUTOINCREMENT,
		page_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		header TEXT,
		text TEXT NOT NULL,
		FOREIGN KEY (page_id) REFERENCES pages(page_id),
		UNIQUE(page_id, position)
	);

	CREATE TABLE IF NOT EXISTS links (
		link_id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		from_url TEXT NOT NULL,
		to_url TEXT NOT NULL,
		weight INTEGER DEFAULT 1,
		FOREIGN KEY (run_id) REFERENCES runs(run_id),
		UNIQUE(run_id, from_url, to_url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_sections_page ON sections(page_id);
	CREATE INDEX IF NOT EXISTS idx_links_from ON links(run_id, from_url);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Write persists a finished crawl run, satisfying Sink
func (s *Storage) Write(result *Result) error {
	_, err := s.SaveResult(result)
	return err
}

// SaveResult stores the run, its records with their sections and its link graph
// in a single transaction. Returns the new run_id.
func (s *Storage) SaveResult(result *Result) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	finished := result.Finished
	if finished.IsZero() {
		finished = time.Now()
	}

	res, err := tx.Exec(`
		INSERT INTO runs (seed_url, processed, skipped, empty_content, visited, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, result.SeedURL, result.Stats.Processed, result.Stats.Skipped, result.Stats.EmptyContent, result.Visited, finished)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve run_id: %w", err)
	}

	for _, record := range result.Records {
		if err := insertRecord(tx, runID, record); err != nil {
			return 0, err
		}
	}

	for _, link := range result.Links {
		_, err := tx.Exec(`
			INSERT INTO links (run_id, from_url, to_url, weight)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(run_id, from_url, to_url) DO UPDATE SET
				weight = weight + EXCLUDED.weight
		`, runID, link.From, link.To, link.Weight)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert link %s -> %s: %w", link.From, link.To, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

func insertRecord(tx *sql.Tx, runID int64, record ContentRecord) error {
	res, err := tx.Exec(`
		INSERT INTO pages (run_id, record_id, title, url)
		VALUES (?, ?, ?, ?)
	`, runID, record.ID, record.Title, record.URL)
	if err != nil {
		return fmt.Errorf("failed to insert page %s: %w", record.URL, err)
	}

	pageID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to retrieve page_id: %w", err)
	}

	for i, section := range record.Sections {
		var header sql.NullString
		if section.Header != "" {
			header = sql.NullString{String: section.Header, Valid: true}
		}
		_, err := tx.Exec(`
			INSERT INTO sections (page_id, position, header, text)
			VALUES (?, ?, ?, ?)
		`, pageID, i, header, section.Text)
		if err != nil {
			return fmt.Errorf("failed to insert section %d of %s: %w", i, record.URL, err)
		}
	}

	return nil
}

// LatestRunID returns the most recent run_id, or 0 if no run was stored
func (s *Storage) LatestRunID() (int64, error) {
	var runID sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(run_id) FROM runs").Scan(&runID); err != nil {
		return 0, fmt.Errorf("failed to get latest run: %w", err)
	}
	return runID.Int64, nil
}

// LoadRecords rebuilds the ordered records of a run
func (s *Storage) LoadRecords(runID int64) ([]ContentRecord, error) {
	rows, err := s.db.Query(`
		SELECT p.page_id, p.record_id, p.title, p.url, s.header, s.text
		FROM pages p
		LEFT JOIN sections s ON s.page_id = p.page_id
		WHERE p.run_id = ?
		ORDER BY p.page_id ASC, s.position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	defer rows.Close()

	var records []ContentRecord
	lastPage := int64(-1)
	for rows.Next() {
		var (
			pageID       int64
			record       ContentRecord
			header, text sql.NullString
		)
		if err := rows.Scan(&pageID, &record.ID, &record.Title, &record.URL, &header, &text); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		if pageID != lastPage {
			record.Sections = []Section{}
			records = append(records, record)
			lastPage = pageID
		}

		if text.Valid {
			current := &records[len(records)-1]
			current.Sections = append(current.Sections, Section{Header: header.String, Text: text.String})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// LoadStats returns the counters stored for a run, nil if the run does not exist
func (s *Storage) LoadStats(runID int64) (*CrawlStats, error) {
	var stats CrawlStats
	err := s.db.QueryRow(`
		SELECT processed, skipped, empty_content
		FROM runs
		WHERE run_id = ?
	`, runID).Scan(&stats.Processed, &stats.Skipped, &stats.EmptyContent)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run stats: %w", err)
	}

	return &stats, nil
}

// LoadLinks returns the link graph of a run ordered by source then target
func (s *Storage) LoadLinks(runID int64) ([]Link, error) {
	rows, err := s.db.Query(`
		SELECT from_url, to_url, weight
		FROM links
		WHERE run_id = ?
		ORDER BY from_url ASC, to_url ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var link Link
		if err := rows.Scan(&link.From, &link.To, &link.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}
