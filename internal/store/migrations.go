package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Stickers table - registered sticker assets and their placement tuning
		`CREATE TABLE IF NOT EXISTS stickers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			path TEXT NOT NULL,
			base_size REAL NOT NULL DEFAULT 150,
			min_scale REAL NOT NULL DEFAULT 0.8,
			max_scale REAL NOT NULL DEFAULT 2.0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Captures table - composited stills saved from the live session
		`CREATE TABLE IF NOT EXISTS captures (
			id TEXT PRIMARY KEY,
			sticker_id TEXT REFERENCES stickers(id) ON DELETE SET NULL,
			file_path TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_captures_sticker_id ON captures(sticker_id)`,
		`CREATE INDEX IF NOT EXISTS idx_captures_created_at ON captures(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
