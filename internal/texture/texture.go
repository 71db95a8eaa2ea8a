// Package texture decodes image files and keeps their GPU handles by key.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cubecraft/internal/render"

	"go.uber.org/zap"
	"golang.org/x/image/bmp"
)

var (
	// ErrUnknownFormat is returned for file extensions with no decoder.
	ErrUnknownFormat = errors.New("texture: unknown image format")
	// ErrNotFound is returned by Get for keys never loaded.
	ErrNotFound = errors.New("texture: not loaded")
)

// Uploader is the part of a render backend that owns textures.
type Uploader interface {
	CreateTexture(img *image.RGBA, nearest bool) (render.TextureHandle, error)
	DeleteTexture(h render.TextureHandle)
}

// Decode reads a BMP or PNG file into RGBA, choosing the decoder by extension.
func Decode(path string) (*image.RGBA, error) {
	var decode func(f *os.File) (image.Image, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		decode = func(f *os.File) (image.Image, error) { return bmp.Decode(f) }
	case ".png":
		decode = func(f *os.File) (image.Image, error) { return png.Decode(f) }
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file: %w", err)
	}
	defer file.Close()

	img, err := decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba, nil
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba, nil
}

// Manager maps texture keys to uploaded handles.
type Manager struct {
	up  Uploader
	log *zap.Logger

	mu       sync.RWMutex
	textures map[string]render.TextureHandle
}

func NewManager(up Uploader, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{up: up, log: log, textures: make(map[string]render.TextureHandle)}
}

// Load decodes path and registers it under key. Loading a key twice returns
// the existing handle.
func (m *Manager) Load(key, path string, nearest bool) (render.TextureHandle, error) {
	m.mu.RLock()
	if h, ok := m.textures[key]; ok {
		m.mu.RUnlock()
		return h, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double check locking
	if h, ok := m.textures[key]; ok {
		return h, nil
	}

	img, err := Decode(path)
	if err != nil {
		return 0, err
	}
	h, err := m.up.CreateTexture(img, nearest)
	if err != nil {
		return 0, fmt.Errorf("upload texture %q: %w", key, err)
	}
	m.textures[key] = h
	m.log.Info("texture loaded", zap.String("key", key), zap.String("path", path),
		zap.Int("width", img.Rect.Dx()), zap.Int("height", img.Rect.Dy()))
	return h, nil
}

// LoadAll loads keys[i] from paths[i], stopping at the first failure.
func (m *Manager) LoadAll(keys, paths []string, nearest bool) error {
	if len(keys) != len(paths) {
		return fmt.Errorf("texture: %d keys for %d paths", len(keys), len(paths))
	}
	for i, key := range keys {
		if _, err := m.Load(key, paths[i], nearest); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) Get(key string) (render.TextureHandle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.textures[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return h, nil
}

// Shutdown deletes every registered texture.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, h := range m.textures {
		m.up.DeleteTexture(h)
		delete(m.textures, key)
	}
}
