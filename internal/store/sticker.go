package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Sticker represents a registered sticker asset and its placement tuning.
type Sticker struct {
	ID        string
	Name      string
	Path      string
	BaseSize  float64
	MinScale  float64
	MaxScale  float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StickerRepository provides CRUD operations for stickers.
type StickerRepository struct {
	db *sql.DB
}

// Stickers returns the sticker repository for this store.
func (s *Store) Stickers() *StickerRepository {
	return &StickerRepository{db: s.db}
}

// Create inserts a new sticker into the database.
func (r *StickerRepository) Create(st *Sticker) error {
	now := time.Now()
	st.CreatedAt = now
	st.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO stickers (id, name, path, base_size, min_scale, max_scale, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.Name, st.Path, st.BaseSize, st.MinScale, st.MaxScale, st.CreatedAt, st.UpdatedAt,
	)
	return err
}

// GetByID retrieves a sticker by its ID.
func (r *StickerRepository) GetByID(id string) (*Sticker, error) {
	st := &Sticker{}

	err := r.db.QueryRow(
		`SELECT id, name, path, base_size, min_scale, max_scale, created_at, updated_at
		 FROM stickers WHERE id = ?`,
		id,
	).Scan(&st.ID, &st.Name, &st.Path, &st.BaseSize, &st.MinScale, &st.MaxScale, &st.CreatedAt, &st.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return st, nil
}

// GetByName retrieves a sticker by its name.
func (r *StickerRepository) GetByName(name string) (*Sticker, error) {
	st := &Sticker{}

	err := r.db.QueryRow(
		`SELECT id, name, path, base_size, min_scale, max_scale, created_at, updated_at
		 FROM stickers WHERE name = ?`,
		name,
	).Scan(&st.ID, &st.Name, &st.Path, &st.BaseSize, &st.MinScale, &st.MaxScale, &st.CreatedAt, &st.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return st, nil
}

// List retrieves all stickers from the database.
func (r *StickerRepository) List() ([]*Sticker, error) {
	rows, err := r.db.Query(
		`SELECT id, name, path, base_size, min_scale, max_scale, created_at, updated_at
		 FROM stickers ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stickers []*Sticker
	for rows.Next() {
		st := &Sticker{}

		err := rows.Scan(&st.ID, &st.Name, &st.Path, &st.BaseSize, &st.MinScale, &st.MaxScale, &st.CreatedAt, &st.UpdatedAt)
		if err != nil {
			return nil, err
		}

		stickers = append(stickers, st)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stickers, nil
}

// Update updates an existing sticker in the database.
func (r *StickerRepository) Update(st *Sticker) error {
	st.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE stickers SET name = ?, path = ?, base_size = ?, min_scale = ?, max_scale = ?, updated_at = ?
		 WHERE id = ?`,
		st.Name, st.Path, st.BaseSize, st.MinScale, st.MaxScale, st.UpdatedAt, st.ID,
	)
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

// Delete removes a sticker from the database by its ID.
func (r *StickerRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM stickers WHERE id = ?`, id)
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
