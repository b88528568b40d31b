package collage

import (
	"math"
	"slices"

	"github.com/matzehuels/photocollage/pkg/errors"
)

// Columns returns the column count for laying out photos on a page whose
// height/width ratio is ratio.
//
// The count grows with the square root of the photo count and of the
// average photo ratio relative to the page ratio, like packing n unit
// squares into a rectangle. Since about one photo in three ends up in a
// quad that takes the space of four, the photo count is doubled
// (1/3*4 + 2/3*1 = 2). The result is clamped to [1, 2n]: a photo spans at
// most two columns, so a wider page could not be filled.
func Columns(photos []*Photo, ratio float64) (int, error) {
	if err := validate(photos, ratio); err != nil {
		return 0, err
	}

	var sum float64
	for _, p := range photos {
		sum += p.Ratio()
	}
	avg := sum / float64(len(photos))
	virtual := 2 * float64(len(photos))

	cols := int(math.Round(math.Sqrt(avg / ratio * virtual)))
	return max(1, min(cols, 2*len(photos))), nil
}

func validate(photos []*Photo, ratio float64) error {
	if len(photos) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no photos to lay out")
	}
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "page ratio must be positive, got %g", ratio)
	}
	for _, p := range photos {
		if p == nil {
			return errors.New(errors.ErrCodeInvalidInput, "nil photo")
		}
		if err := errors.ValidateDimensions(p.Source, p.W, p.H); err != nil {
			return err
		}
	}
	return nil
}

// UserCollage is a set of photos together with the page laying them out.
type UserCollage struct {
	Photos []*Photo
	Page   *Page
}

// NewUserCollage validates the photos and returns a collage without a page.
// The collage keeps its own copy of the slice, so MakePage never reorders
// the caller's photos.
func NewUserCollage(photos []*Photo) (*UserCollage, error) {
	if err := validate(photos, 1); err != nil {
		return nil, err
	}
	return &UserCollage{Photos: slices.Clone(photos)}, nil
}

// MakePage builds a fresh page for the given height/width ratio. The photo
// order is shuffled with the page's random source before insertion, so
// every call yields a new arrangement; the previous page is discarded.
func (uc *UserCollage) MakePage(ratio float64, opts ...Option) (*Page, error) {
	cols, err := Columns(uc.Photos, ratio)
	if err != nil {
		return nil, err
	}

	page := NewPage(1.0, ratio, cols, opts...)
	page.rng.Shuffle(len(uc.Photos), func(i, j int) {
		uc.Photos[i], uc.Photos[j] = uc.Photos[j], uc.Photos[i]
	})
	for _, photo := range uc.Photos {
		page.AddCell(photo)
	}
	if err := page.Adjust(); err != nil {
		return nil, err
	}

	uc.Page = page
	return page, nil
}
