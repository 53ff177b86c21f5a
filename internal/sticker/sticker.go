// Package sticker loads and caches sticker image assets. Assets are decoded
// once at load time so capture and per-frame compositing never wait on image
// decoding.
package sticker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoAsset is returned when a requested sticker is not in the library.
var ErrNoAsset = errors.New("sticker not found")

// Asset is a decoded sticker image. The pixel data is held as a BGRA mat so
// the compositor can alpha-blend without per-frame conversion.
type Asset struct {
	Name string
	Path string
	mat  gocv.Mat
}

// Load decodes a sticker image from disk. PNG alpha is preserved; images
// without an alpha channel get an opaque one added.
func Load(path string) (*Asset, error) {
	mat := gocv.IMRead(path, gocv.IMReadUnchanged)
	if mat.Empty() {
		return nil, fmt.Errorf("decode sticker %s: unreadable or empty image", path)
	}

	if mat.Channels() == 3 {
		bgra := gocv.NewMat()
		gocv.CvtColor(mat, &bgra, gocv.ColorBGRToBGRA)
		mat.Close()
		mat = bgra
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return &Asset{
		Name: name,
		Path: path,
		mat:  mat,
	}, nil
}

// Mat returns the decoded BGRA pixel data. The asset retains ownership.
func (a *Asset) Mat() *gocv.Mat {
	return &a.mat
}

// Size returns the decoded width and height in pixels.
func (a *Asset) Size() (int, int) {
	return a.mat.Cols(), a.mat.Rows()
}

// Close releases the decoded pixel data.
func (a *Asset) Close() {
	a.mat.Close()
}

// Library holds every decoded sticker and tracks which one is active.
type Library struct {
	mu     sync.RWMutex
	assets map[string]*Asset
	active string
}

// NewLibrary creates an empty sticker library.
func NewLibrary() *Library {
	return &Library{
		assets: make(map[string]*Asset),
	}
}

// LoadDir decodes every .png in a directory into the library. The first
// asset loaded becomes active if none is set. Returns the number loaded.
func (l *Library) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read sticker dir: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".png") {
			continue
		}

		asset, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return loaded, err
		}

		l.Add(asset)
		loaded++
	}

	return loaded, nil
}

// Add registers a decoded asset, replacing any existing asset with the same
// name. The first asset added becomes active.
func (l *Library) Add(asset *Asset) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if old, ok := l.assets[asset.Name]; ok {
		old.Close()
	}
	l.assets[asset.Name] = asset

	if l.active == "" {
		l.active = asset.Name
	}
}

// Get returns the named asset.
func (l *Library) Get(name string) (*Asset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	asset, ok := l.assets[name]
	if !ok {
		return nil, ErrNoAsset
	}
	return asset, nil
}

// Active returns the currently selected asset, or nil if the library is empty.
func (l *Library) Active() *Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.assets[l.active]
}

// SetActive selects the named asset for compositing.
func (l *Library) SetActive(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.assets[name]; !ok {
		return ErrNoAsset
	}
	l.active = name
	return nil
}

// Names returns the registered asset names.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.assets))
	for name := range l.assets {
		names = append(names, name)
	}
	return names
}

// Close releases every decoded asset.
func (l *Library) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, asset := range l.assets {
		asset.Close()
	}
	l.assets = make(map[string]*Asset)
	l.active = ""
}
