package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func TestStoreNew(t *testing.T) {
	s := newTestStore(t)

	// Migrations should have created all tables.
	for _, table := range []string{"stickers", "captures", "settings"} {
		var name string
		err := s.DB().QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("expected table %q to exist: %v", table, err)
		}
	}
}

func TestStickerCRUD(t *testing.T) {
	s := newTestStore(t)
	repo := s.Stickers()

	st := &Sticker{
		ID:       uuid.New().String(),
		Name:     "red-dot",
		Path:     "/stickers/red-dot.png",
		BaseSize: 150,
		MinScale: 0.8,
		MaxScale: 2.0,
	}

	if err := repo.Create(st); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if st.CreatedAt.IsZero() || st.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set on create")
	}

	got, err := repo.GetByID(st.ID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if got.Name != "red-dot" || got.BaseSize != 150 {
		t.Errorf("got %+v, want name red-dot base size 150", got)
	}

	got, err = repo.GetByName("red-dot")
	if err != nil {
		t.Fatalf("get by name failed: %v", err)
	}
	if got.ID != st.ID {
		t.Errorf("get by name returned id %q, want %q", got.ID, st.ID)
	}

	st.MaxScale = 3.0
	if err := repo.Update(st); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got, _ = repo.GetByID(st.ID)
	if got.MaxScale != 3.0 {
		t.Errorf("max scale = %v after update, want 3.0", got.MaxScale)
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list returned %d stickers, want 1", len(list))
	}

	if err := repo.Delete(st.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.GetByID(st.ID); err != ErrNotFound {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
}

func TestStickerNotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Stickers()

	if _, err := repo.GetByID("missing"); err != ErrNotFound {
		t.Errorf("GetByID = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByName("missing"); err != ErrNotFound {
		t.Errorf("GetByName = %v, want ErrNotFound", err)
	}
	if err := repo.Update(&Sticker{ID: "missing"}); err != ErrNotFound {
		t.Errorf("Update = %v, want ErrNotFound", err)
	}
	if err := repo.Delete("missing"); err != ErrNotFound {
		t.Errorf("Delete = %v, want ErrNotFound", err)
	}
}

func TestStickerNameUnique(t *testing.T) {
	s := newTestStore(t)
	repo := s.Stickers()

	a := &Sticker{ID: uuid.New().String(), Name: "dot", Path: "/a.png", BaseSize: 150, MinScale: 0.8, MaxScale: 2.0}
	b := &Sticker{ID: uuid.New().String(), Name: "dot", Path: "/b.png", BaseSize: 150, MinScale: 0.8, MaxScale: 2.0}

	if err := repo.Create(a); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := repo.Create(b); err == nil {
		t.Error("expected duplicate name to fail")
	}
}

func TestCaptureCRUD(t *testing.T) {
	s := newTestStore(t)

	st := &Sticker{ID: uuid.New().String(), Name: "dot", Path: "/dot.png", BaseSize: 150, MinScale: 0.8, MaxScale: 2.0}
	if err := s.Stickers().Create(st); err != nil {
		t.Fatalf("create sticker failed: %v", err)
	}

	repo := s.Captures()
	c := &Capture{
		ID:        uuid.New().String(),
		StickerID: sql.NullString{String: st.ID, Valid: true},
		FilePath:  "/captures/one.jpg",
		Width:     1280,
		Height:    720,
	}
	if err := repo.Create(c); err != nil {
		t.Fatalf("create capture failed: %v", err)
	}

	got, err := repo.GetByID(c.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Width != 1280 || got.Height != 720 {
		t.Errorf("got %dx%d, want 1280x720", got.Width, got.Height)
	}
	if !got.StickerID.Valid || got.StickerID.String != st.ID {
		t.Errorf("sticker id = %+v, want %q", got.StickerID, st.ID)
	}

	list, err := repo.List(0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list returned %d captures, want 1", len(list))
	}

	if err := repo.Delete(c.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.GetByID(c.ID); err != ErrNotFound {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
}

func TestCaptureListLimit(t *testing.T) {
	s := newTestStore(t)
	repo := s.Captures()

	for i := 0; i < 5; i++ {
		c := &Capture{ID: uuid.New().String(), FilePath: "/captures/x.jpg", Width: 640, Height: 480}
		if err := repo.Create(c); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	list, err := repo.List(3)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("list returned %d captures, want 3", len(list))
	}
}

func TestCaptureStickerDeleteSetsNull(t *testing.T) {
	s := newTestStore(t)

	st := &Sticker{ID: uuid.New().String(), Name: "dot", Path: "/dot.png", BaseSize: 150, MinScale: 0.8, MaxScale: 2.0}
	if err := s.Stickers().Create(st); err != nil {
		t.Fatalf("create sticker failed: %v", err)
	}

	c := &Capture{
		ID:        uuid.New().String(),
		StickerID: sql.NullString{String: st.ID, Valid: true},
		FilePath:  "/captures/one.jpg",
		Width:     1280,
		Height:    720,
	}
	if err := s.Captures().Create(c); err != nil {
		t.Fatalf("create capture failed: %v", err)
	}

	if err := s.Stickers().Delete(st.ID); err != nil {
		t.Fatalf("delete sticker failed: %v", err)
	}

	got, err := s.Captures().GetByID(c.ID)
	if err != nil {
		t.Fatalf("get capture failed: %v", err)
	}
	if got.StickerID.Valid {
		t.Errorf("sticker id still set after sticker delete: %+v", got.StickerID)
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if _, err := repo.Get("active_sticker"); err != ErrNotFound {
		t.Errorf("Get on empty = %v, want ErrNotFound", err)
	}

	if err := repo.Set("active_sticker", "red-dot"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	v, err := repo.Get("active_sticker")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if v != "red-dot" {
		t.Errorf("got %q, want red-dot", v)
	}

	// Upsert replaces the existing value.
	if err := repo.Set("active_sticker", "blue-dot"); err != nil {
		t.Fatalf("second set failed: %v", err)
	}
	v, _ = repo.Get("active_sticker")
	if v != "blue-dot" {
		t.Errorf("got %q after upsert, want blue-dot", v)
	}

	if err := repo.Delete("active_sticker"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.Get("active_sticker"); err != ErrNotFound {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}
