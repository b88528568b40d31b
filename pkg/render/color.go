package render

import (
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	"github.com/matzehuels/photocollage/pkg/errors"
)

// ParseColor accepts a CSS color name ("black", "whitesmoke") or a hex value
// in #rgb or #rrggbb form.
func ParseColor(s string) (color.Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(name, "#") {
		if len(name) != 4 && len(name) != 7 {
			return nil, errors.New(errors.ErrCodeInvalidColor, "hex color %q must be #rgb or #rrggbb", s)
		}
		c, err := colorful.Hex(name)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidColor, err, "invalid hex color %q", s)
		}
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
	}
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidColor, "unknown color %q", s)
}
