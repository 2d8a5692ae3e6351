package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	h, err := ParseHex("#FF8800")
	require.NoError(t, err)
	assert.Equal(t, Hex("#ff8800"), h)

	h, err = ParseHex("0a0b0c")
	require.NoError(t, err)
	assert.Equal(t, Hex("#0a0b0c"), h)

	h, err = ParseHex("#fff")
	require.NoError(t, err)
	assert.Equal(t, Hex("#ffffff"), h)

	_, err = ParseHex("#zzzzzz")
	assert.Error(t, err)
}

func TestHexRGBA(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 255, G: 136, B: 0, A: 255}, Hex("#ff8800").RGBA())
	assert.Equal(t, Black, Hex("nope").RGBA())
	assert.Equal(t, Hex("#ffffff"), FromColor(White))
	assert.True(t, DefaultDrawing.Valid())
	assert.False(t, Hex("").Valid())
}
