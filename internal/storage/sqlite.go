// Package storage provides the SQLite implementation of the Storage
// interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/osusume/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not
// exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		raw_text TEXT NOT NULL,
		url TEXT,
		quality_score INTEGER NOT NULL DEFAULT 0,
		embedding BLOB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_items_owner_id ON items(owner_id);

	CREATE TABLE IF NOT EXISTS annotations (
		item_id TEXT PRIMARY KEY,
		content_type TEXT,
		difficulty TEXT,
		technology_tags TEXT,
		key_concepts TEXT,
		relevance_score INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS feedback_events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		content_id TEXT NOT NULL,
		session_id TEXT,
		type TEXT NOT NULL,
		context TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_feedback_user_time ON feedback_events(user_id, created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// UpsertItem inserts or replaces an item and its annotation.
func (s *SQLiteStorage) UpsertItem(ctx context.Context, item *models.CandidateItem) error {
	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO items (id, owner_id, title, raw_text, url, quality_score, embedding, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			title = excluded.title,
			raw_text = excluded.raw_text,
			url = excluded.url,
			quality_score = excluded.quality_score,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at`,
		item.ID, item.OwnerID, item.Title, item.RawText, item.URL,
		item.QualityScore, encodeEmbedding(item.Embedding), item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert item %s: %w", item.ID, err)
	}

	if item.Annotation != nil {
		tagsJSON, err := json.Marshal(item.Annotation.TechnologyTags)
		if err != nil {
			return fmt.Errorf("failed to marshal technology tags: %w", err)
		}
		conceptsJSON, err := json.Marshal(item.Annotation.KeyConcepts)
		if err != nil {
			return fmt.Errorf("failed to marshal key concepts: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO annotations (item_id, content_type, difficulty, technology_tags, key_concepts, relevance_score)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(item_id) DO UPDATE SET
				content_type = excluded.content_type,
				difficulty = excluded.difficulty,
				technology_tags = excluded.technology_tags,
				key_concepts = excluded.key_concepts,
				relevance_score = excluded.relevance_score`,
			item.ID, item.Annotation.ContentType, item.Annotation.Difficulty,
			string(tagsJSON), string(conceptsJSON), item.Annotation.RelevanceScore,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert annotation for %s: %w", item.ID, err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, `DELETE FROM annotations WHERE item_id = ?`, item.ID); err != nil {
			return fmt.Errorf("failed to clear annotation for %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

const itemColumns = `i.id, i.owner_id, i.title, i.raw_text, i.url, i.quality_score, i.embedding,
	i.created_at, i.updated_at,
	a.content_type, a.difficulty, a.technology_tags, a.key_concepts, a.relevance_score`

const itemJoin = `FROM items i LEFT JOIN annotations a ON a.item_id = i.id`

// GetItem returns an item by ID, with its annotation when present.
func (s *SQLiteStorage) GetItem(ctx context.Context, id string) (*models.CandidateItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` `+itemJoin+` WHERE i.id = ?`, id)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetItems returns the subset of ids that exist, keyed by ID.
func (s *SQLiteStorage) GetItems(ctx context.Context, ids []string) (map[string]*models.CandidateItem, error) {
	found := make(map[string]*models.CandidateItem, len(ids))
	for _, id := range ids {
		item, err := s.GetItem(ctx, id)
		if err == ErrItemNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		found[id] = item
	}
	return found, nil
}

// DeleteItem removes an item; the annotation cascades.
func (s *SQLiteStorage) DeleteItem(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	return err
}

// ListItems returns items with offset and limit, newest first.
func (s *SQLiteStorage) ListItems(ctx context.Context, offset, limit int) ([]*models.CandidateItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` `+itemJoin+` ORDER BY i.created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

// ListItemsByOwner returns all items owned by ownerID.
func (s *SQLiteStorage) ListItemsByOwner(ctx context.Context, ownerID string) ([]*models.CandidateItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` `+itemJoin+` WHERE i.owner_id = ? ORDER BY i.created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

// CountItems returns the total number of items.
func (s *SQLiteStorage) CountItems(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count)
	return count, err
}

// AppendFeedback inserts a feedback event. Events are never updated.
func (s *SQLiteStorage) AppendFeedback(ctx context.Context, event *models.FeedbackEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback_events (id, user_id, content_id, session_id, type, context, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.UserID, event.ContentID, event.SessionID,
		string(event.Type), event.Context, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append feedback: %w", err)
	}
	return nil
}

// ListByUserSince returns a user's feedback events newer than since,
// oldest first.
func (s *SQLiteStorage) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]*models.FeedbackEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, content_id, session_id, type, context, created_at
		 FROM feedback_events WHERE user_id = ? AND created_at >= ?
		 ORDER BY created_at ASC`,
		userID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.FeedbackEvent
	for rows.Next() {
		var ev models.FeedbackEvent
		var typ string
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.ContentID, &ev.SessionID, &typ, &ev.Context, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Type = models.FeedbackType(typ)
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// CountFeedback returns the total number of feedback events.
func (s *SQLiteStorage) CountFeedback(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback_events`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*models.CandidateItem, error) {
	var item models.CandidateItem
	var url sql.NullString
	var embedding []byte
	var contentType, difficulty, tagsJSON, conceptsJSON sql.NullString
	var relevance sql.NullInt64

	err := row.Scan(
		&item.ID, &item.OwnerID, &item.Title, &item.RawText, &url,
		&item.QualityScore, &embedding, &item.CreatedAt, &item.UpdatedAt,
		&contentType, &difficulty, &tagsJSON, &conceptsJSON, &relevance,
	)
	if err != nil {
		return nil, err
	}

	item.URL = url.String
	item.Embedding = decodeEmbedding(embedding)

	// A row in annotations always carries a content type; its absence
	// means the LEFT JOIN found nothing.
	if contentType.Valid {
		ann := &models.Annotation{
			ContentType:    contentType.String,
			Difficulty:     difficulty.String,
			RelevanceScore: int(relevance.Int64),
		}
		if tagsJSON.String != "" {
			_ = json.Unmarshal([]byte(tagsJSON.String), &ann.TechnologyTags)
		}
		if conceptsJSON.String != "" {
			_ = json.Unmarshal([]byte(conceptsJSON.String), &ann.KeyConcepts)
		}
		item.Annotation = ann
	}

	return &item, nil
}

func scanItems(rows *sql.Rows) ([]*models.CandidateItem, error) {
	defer rows.Close()

	var items []*models.CandidateItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// encodeEmbedding packs a float32 vector as little-endian bytes. A nil
// vector stores as NULL.
func encodeEmbedding(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeEmbedding(buf []byte) []float32 {
	if len(buf) == 0 || len(buf)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
