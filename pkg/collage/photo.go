package collage

import (
	"fmt"

	"github.com/matzehuels/photocollage/pkg/errors"
)

// Photo is an immutable reference to an image source and its natural size.
type Photo struct {
	Source string // file path or other locator understood by the decoder
	W, H   int    // natural pixel dimensions
}

// NewPhoto validates the dimensions and returns a Photo.
func NewPhoto(source string, w, h int) (*Photo, error) {
	if err := errors.ValidateDimensions(source, w, h); err != nil {
		return nil, err
	}
	return &Photo{Source: source, W: w, H: h}, nil
}

// Ratio returns the height/width aspect ratio.
func (p *Photo) Ratio() float64 { return float64(p.H) / float64(p.W) }

func (p *Photo) String() string {
	return fmt.Sprintf("%s (%dx%d)", p.Source, p.W, p.H)
}
