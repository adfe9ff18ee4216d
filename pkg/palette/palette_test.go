package palette

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromHex(t *testing.T) {
	c := FromHex(0xff8000)
	assert.InDelta(t, 1.0, c.R, 1e-6)
	assert.InDelta(t, 128.0/255, c.G, 1e-6)
	assert.InDelta(t, 0.0, c.B, 1e-6)
	assert.Equal(t, [3]float32{c.R, c.G, c.B}, c.Array())
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"#FF0000", 0xff0000, false},
		{"0x00ff00", 0x00ff00, false},
		{"0000ff", 0x0000ff, false},
		{" #909090 ", 0x909090, false},
		{"#fff", 0, true},
		{"red", 0, true},
		{"#GG0000", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrBadColor), "err = %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCacheMemoizes(t *testing.T) {
	var c Cache
	a, err := c.Color("#3050F8")
	require.NoError(t, err)
	b, err := c.Color("#3050F8")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 1, c.Len())

	_, err = c.Color("nope")
	assert.Error(t, err)
	assert.Equal(t, 1, c.Len(), "failed conversions are not cached")
}

func TestLookupElement(t *testing.T) {
	c, ok := LookupElement("c")
	assert.True(t, ok)
	assert.Equal(t, uint32(0x909090), c.Color)

	fe, ok := LookupElement("Fe")
	assert.True(t, ok)
	assert.InDelta(t, 2.04, fe.Radius, 1e-9)

	x, ok := LookupElement("Xx")
	assert.False(t, ok)
	assert.Equal(t, DefaultElement, x)
}
