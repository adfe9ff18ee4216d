// Package palette resolves the colors and radii used to draw atoms, bonds,
// ribbons and cells. Hex values are converted once and cached.
package palette

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadColor is returned for color strings that are not #RRGGBB or 0xRRGGBB.
var ErrBadColor = errors.New("palette: invalid color")

// Color is a linear RGB triple with components in [0, 1].
type Color struct {
	R, G, B float32
}

// Array returns the color as a 3-element array, the layout of a per-vertex
// color slot.
func (c Color) Array() [3]float32 {
	return [3]float32{c.R, c.G, c.B}
}

// FromHex converts a packed 0xRRGGBB value.
func FromHex(hex uint32) Color {
	return Color{
		R: float32(hex>>16&0xff) / 255,
		G: float32(hex>>8&0xff) / 255,
		B: float32(hex&0xff) / 255,
	}
}

// ParseHex parses "#RRGGBB", "0xRRGGBB" or bare "RRGGBB".
func ParseHex(s string) (uint32, error) {
	t := strings.TrimSpace(s)
	t = strings.TrimPrefix(t, "#")
	t = strings.TrimPrefix(strings.TrimPrefix(t, "0x"), "0X")
	if len(t) != 6 {
		return 0, fmt.Errorf("%w %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(t, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrBadColor, s)
	}
	return uint32(v), nil
}

// Cache memoizes hex string → Color conversions. The zero value is ready to
// use. It is not safe for concurrent use.
type Cache struct {
	colors map[string]Color
}

// Color returns the color for a hex string, converting it on first use.
func (c *Cache) Color(s string) (Color, error) {
	if col, ok := c.colors[s]; ok {
		return col, nil
	}
	hex, err := ParseHex(s)
	if err != nil {
		return Color{}, err
	}
	if c.colors == nil {
		c.colors = make(map[string]Color)
	}
	col := FromHex(hex)
	c.colors[s] = col
	return col, nil
}

// Len returns the number of cached colors.
func (c *Cache) Len() int {
	return len(c.colors)
}
