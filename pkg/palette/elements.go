package palette

import "strings"

// Element is the default drawing style of a chemical element.
type Element struct {
	Color  uint32  // packed 0xRRGGBB
	Radius float64 // van der Waals radius in Å
}

// DefaultElement is used for symbols missing from the table.
var DefaultElement = Element{Color: 0xff1493, Radius: 1.5}

// elements uses Jmol CPK colors and Bondi radii.
var elements = map[string]Element{
	"H":  {0xffffff, 1.20},
	"HE": {0xd9ffff, 1.40},
	"LI": {0xcc80ff, 1.82},
	"B":  {0xffb5b5, 1.92},
	"C":  {0x909090, 1.70},
	"N":  {0x3050f8, 1.55},
	"O":  {0xff0d0d, 1.52},
	"F":  {0x90e050, 1.47},
	"NA": {0xab5cf2, 2.27},
	"MG": {0x8aff00, 1.73},
	"P":  {0xff8000, 1.80},
	"S":  {0xffff30, 1.80},
	"CL": {0x1ff01f, 1.75},
	"K":  {0x8f40d4, 2.75},
	"CA": {0x3dff00, 2.31},
	"FE": {0xe06633, 2.04},
	"ZN": {0x7d80b0, 1.39},
	"BR": {0xa62929, 1.85},
	"I":  {0x940094, 1.98},
}

// LookupElement returns the style for an element symbol, case-insensitive.
// The boolean is false when the default style was returned.
func LookupElement(symbol string) (Element, bool) {
	e, ok := elements[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return DefaultElement, false
	}
	return e, true
}

// chainColors cycles through distinguishable backbone colors.
var chainColors = []uint32{
	0x4a90d9, 0xe67e22, 0x2ecc71, 0x9b59b6,
	0xe74c3c, 0x1abc9c, 0xf39c12, 0x3498db,
}

// ChainColor returns the default color of the i-th backbone chain.
func ChainColor(i int) Color {
	return FromHex(chainColors[i%len(chainColors)])
}
