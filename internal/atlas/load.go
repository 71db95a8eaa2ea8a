package atlas

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"

	"cubecraft/internal/voxel"

	_ "golang.org/x/image/bmp"
	"gopkg.in/yaml.v3"
)

// File is the YAML layout description of an atlas.
type File struct {
	TileSize   int                  `yaml:"tile_size"`
	AtlasSize  int                  `yaml:"atlas_size"`
	AtlasImage string               `yaml:"atlas_image"`
	Types      map[string]TypeTiles `yaml:"types"`
}

// TypeTiles lists the tiles of one type; unset groups fall back to All.
type TypeTiles struct {
	All    *[2]uint8  `yaml:"all"`
	Top    *[2]uint8  `yaml:"top"`
	Side   *[2]uint8  `yaml:"side"`
	Bottom *[2]uint8  `yaml:"bottom"`
	Front  *[2]uint8  `yaml:"front"`
	Planes [][2]uint8 `yaml:"planes"`
}

// LoadFile reads a YAML layout. When atlas_image is set the sheet size is
// taken from the image header, relative to the YAML file's directory.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading atlas layout: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing atlas layout %s: %w", path, err)
	}
	if f.AtlasImage != "" {
		img := f.AtlasImage
		if !filepath.IsAbs(img) {
			img = filepath.Join(filepath.Dir(path), img)
		}
		w, err := imageWidth(img)
		if err != nil {
			return nil, err
		}
		f.AtlasSize = w
	}
	return f.Build()
}

// Build converts a parsed layout into a table. Type names are resolved in a
// sorted order so errors are reported deterministically.
func (f *File) Build() (*Table, error) {
	t, err := New(f.TileSize, f.AtlasSize)
	if err != nil {
		return nil, err
	}
	for _, name := range sortedKeys(f.Types) {
		typ, err := voxel.ParseType(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
		}
		if err := f.Types[name].apply(t, typ); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (tt TypeTiles) apply(t *Table, typ voxel.Type) error {
	if typ.Shape() == voxel.ShapeCross {
		switch len(tt.Planes) {
		case 0:
			if tt.All == nil {
				return fmt.Errorf("%w: %s needs planes or all", ErrInvalidLayout, typ)
			}
			return t.SetCross(typ, tile(*tt.All), tile(*tt.All))
		case 1:
			return t.SetCross(typ, tile(tt.Planes[0]), tile(tt.Planes[0]))
		default:
			return t.SetCross(typ, tile(tt.Planes[0]), tile(tt.Planes[1]))
		}
	}

	pick := func(p *[2]uint8) (Tile, bool) {
		if p != nil {
			return tile(*p), true
		}
		if tt.All != nil {
			return tile(*tt.All), true
		}
		return Tile{}, false
	}
	top, ok1 := pick(tt.Top)
	side, ok2 := pick(tt.Side)
	bottom, ok3 := pick(tt.Bottom)
	if !ok1 || !ok2 || !ok3 {
		return fmt.Errorf("%w: %s needs top/side/bottom or all", ErrInvalidLayout, typ)
	}
	var front *Tile
	if tt.Front != nil {
		ft := tile(*tt.Front)
		front = &ft
	}
	return t.SetCube(typ, top, side, bottom, front)
}

func tile(p [2]uint8) Tile { return Tile{Col: p[0], Row: p[1]} }

func imageWidth(path string) (int, error) {
	fh, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening atlas image: %w", err)
	}
	defer fh.Close()

	cfg, _, err := image.DecodeConfig(fh)
	if err != nil {
		return 0, fmt.Errorf("decoding atlas image %s: %w", path, err)
	}
	if cfg.Width != cfg.Height {
		return 0, fmt.Errorf("%w: sheet %s is %dx%d, want square", ErrInvalidLayout, path, cfg.Width, cfg.Height)
	}
	return cfg.Width, nil
}

func sortedKeys(m map[string]TypeTiles) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
