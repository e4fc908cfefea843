// Package registry scans directories for source images.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"shufflerd/internal/common/fsutil"
)

// Image describes one image file found by a scan.
type Image struct {
	// ID is the file name including extension.
	ID      string
	Path    string
	Size    int64
	ModTime time.Time
}

// Scanner lists image files in a directory.
type Scanner interface {
	Scan(dir string) ([]Image, error)
}

type imageScanner struct{}

// NewImageScanner returns a Scanner that matches decodable image extensions.
func NewImageScanner() Scanner { return imageScanner{} }

// Scan lists image files directly inside dir, sorted by name. Subdirectories
// are not descended into.
func (imageScanner) Scan(dir string) ([]Image, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var images []Image
	for _, e := range entries {
		if e.IsDir() || !fsutil.IsImageFile(e.Name()) {
			continue
		}
		img := Image{ID: e.Name(), Path: filepath.Join(abs, e.Name())}
		if info, err := e.Info(); err == nil {
			img.Size = info.Size()
			img.ModTime = info.ModTime()
		}
		images = append(images, img)
	}
	sort.Slice(images, func(i, j int) bool { return images[i].ID < images[j].ID })
	return images, nil
}

// LoadDir scans dir with the default image scanner.
func LoadDir(dir string) ([]Image, error) {
	return NewImageScanner().Scan(dir)
}
