package source

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"shufflerd/internal/registry"
)

// ErrNoImages is returned when a directory holds nothing decodable.
var ErrNoImages = errors.New("no decodable images")

// Slideshow cycles through the images of a directory, showing each one for
// a fixed hold duration. Images are decoded once at construction.
type Slideshow struct {
	frames []image.Image
	names  []string
	hold   time.Duration
	start  time.Time
	now    func() time.Time
}

// NewSlideshow decodes every image in dir. Files that fail to decode are
// skipped with a warning.
func NewSlideshow(dir string, hold time.Duration, log zerolog.Logger) (*Slideshow, error) {
	if hold <= 0 {
		hold = 2 * time.Second
	}
	entries, err := registry.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("slideshow: %w", err)
	}
	s := &Slideshow{hold: hold, now: time.Now}
	for _, e := range entries {
		img, format, err := decodeFile(e.Path)
		if err != nil {
			log.Warn().Err(err).Str("file", e.ID).Msg("skipping image")
			continue
		}
		log.Debug().Str("file", e.ID).Str("format", format).Msg("slideshow image loaded")
		s.frames = append(s.frames, img)
		s.names = append(s.names, e.ID)
	}
	if len(s.frames) == 0 {
		return nil, fmt.Errorf("slideshow %s: %w", dir, ErrNoImages)
	}
	s.start = s.now()
	return s, nil
}

func decodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	return image.Decode(f)
}

// Len returns the number of loaded images.
func (s *Slideshow) Len() int { return len(s.frames) }

// Names returns the loaded file names in display order.
func (s *Slideshow) Names() []string { return append([]string(nil), s.names...) }

func (s *Slideshow) index() int {
	return int(s.now().Sub(s.start)/s.hold) % len(s.frames)
}

// CurrentImage returns the image for the current hold window.
func (s *Slideshow) CurrentImage() image.Image {
	return s.frames[s.index()]
}
