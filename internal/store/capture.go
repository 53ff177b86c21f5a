package store

import (
	"database/sql"
	"errors"
	"time"
)

// Capture records a saved photo and the sticker that was active when it
// was taken. StickerID is null when the sticker was later deleted or the
// overlay was hidden at capture time.
type Capture struct {
	ID        string
	StickerID sql.NullString
	FilePath  string
	Width     int
	Height    int
	CreatedAt time.Time
}

// CaptureRepository provides CRUD operations for captures.
type CaptureRepository struct {
	db *sql.DB
}

// Captures returns the capture repository for this store.
func (s *Store) Captures() *CaptureRepository {
	return &CaptureRepository{db: s.db}
}

// Create inserts a new capture record into the database.
func (r *CaptureRepository) Create(c *Capture) error {
	c.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO captures (id, sticker_id, file_path, width, height, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.StickerID, c.FilePath, c.Width, c.Height, c.CreatedAt,
	)
	return err
}

// GetByID retrieves a capture by its ID.
func (r *CaptureRepository) GetByID(id string) (*Capture, error) {
	c := &Capture{}

	err := r.db.QueryRow(
		`SELECT id, sticker_id, file_path, width, height, created_at
		 FROM captures WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.StickerID, &c.FilePath, &c.Width, &c.Height, &c.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return c, nil
}

// List retrieves captures ordered newest first, up to limit. A limit of
// zero or less returns all captures.
func (r *CaptureRepository) List(limit int) ([]*Capture, error) {
	query := `SELECT id, sticker_id, file_path, width, height, created_at
	          FROM captures ORDER BY created_at DESC`

	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = r.db.Query(query+` LIMIT ?`, limit)
	} else {
		rows, err = r.db.Query(query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var captures []*Capture
	for rows.Next() {
		c := &Capture{}

		err := rows.Scan(&c.ID, &c.StickerID, &c.FilePath, &c.Width, &c.Height, &c.CreatedAt)
		if err != nil {
			return nil, err
		}

		captures = append(captures, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return captures, nil
}

// Delete removes a capture record from the database by its ID.
func (r *CaptureRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM captures WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
