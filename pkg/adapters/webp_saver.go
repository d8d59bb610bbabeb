package adapters

import (
	"image"
	"io"

	"github.com/deepteams/webp"
)

// WebPSaver implements ImageSaver by encoding to WebP.
type WebPSaver struct {
	// Quality is the compression quality in [0,100]; 0 leaves the
	// underlying encoder's default (75) in place.
	Quality float32
	// Lossless selects VP8L encoding instead of lossy VP8.
	Lossless bool
}

func (s WebPSaver) Save(w io.Writer, img image.Image) error {
	opts := webp.DefaultOptions()
	opts.Lossless = s.Lossless
	if s.Quality > 0 {
		opts.Quality = s.Quality
	}
	return webp.Encode(w, img, opts)
}
