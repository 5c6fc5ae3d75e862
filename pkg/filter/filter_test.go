package filter

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func rgba8(c color.Color) (r, g, b uint8) {
	r32, g32, b32, _ := c.RGBA()
	return uint8(r32 >> 8), uint8(g32 >> 8), uint8(b32 >> 8)
}

func TestMode_Expression(t *testing.T) {
	tests := map[Mode]string{
		Normal:       "none",
		Grayscale:    "grayscale(100%)",
		Sepia:        "sepia(70%) brightness(1.1)",
		Pixar:        "saturate(1.3) contrast(1.15) brightness(1.1)",
		VinPixar:     "sepia(0.1) saturate(1.2) contrast(1.05) brightness(1.05)",
		GreenHarmony: "saturate(1.2) contrast(1.05) brightness(1.05) hue-rotate(15deg)",
	}
	for mode, want := range tests {
		assert.Equal(t, want, mode.Expression(), "mode %s", mode)
	}
	assert.Equal(t, "none", Mode("bogus").Expression())
}

func TestParse(t *testing.T) {
	t.Run("既知のモードは大文字小文字を問わないこと", func(t *testing.T) {
		m, err := Parse(" Sepia ")
		require.NoError(t, err)
		assert.Equal(t, Sepia, m)
	})

	t.Run("空文字は normal", func(t *testing.T) {
		m, err := Parse("")
		require.NoError(t, err)
		assert.Equal(t, Normal, m)
	})

	t.Run("未知のモードはエラー", func(t *testing.T) {
		_, err := Parse("vaporwave")
		assert.Error(t, err)
	})

	t.Run("UnmarshalText", func(t *testing.T) {
		var m Mode
		require.NoError(t, m.UnmarshalText([]byte("pixar")))
		assert.Equal(t, Pixar, m)
		assert.Error(t, m.UnmarshalText([]byte("nope")))
	})

	t.Run("Modes はすべて有効であること", func(t *testing.T) {
		for _, m := range Modes() {
			assert.True(t, m.IsValid(), m)
		}
		assert.Len(t, Modes(), len(definitions))
	})
}

func TestMode_Apply(t *testing.T) {
	src := solid(color.RGBA{R: 200, G: 40, B: 40, A: 255})

	t.Run("normal は同じ画像を返すこと", func(t *testing.T) {
		assert.Same(t, src, Normal.Apply(src).(*image.RGBA))
	})

	t.Run("grayscale は彩度をなくすこと", func(t *testing.T) {
		r, g, b := rgba8(Grayscale.Apply(src).At(1, 1))
		assert.Equal(t, r, g)
		assert.Equal(t, g, b)
	})

	t.Run("sepia は元画像と異なる暖色になること", func(t *testing.T) {
		out := Sepia.Apply(src)
		assert.Equal(t, src.Bounds(), out.Bounds())
		r, g, b := rgba8(out.At(0, 0))
		assert.NotEqual(t, [3]uint8{200, 40, 40}, [3]uint8{r, g, b})
		assert.GreaterOrEqual(t, r, g)
		assert.GreaterOrEqual(t, g, b)
	})

	t.Run("すべてのモードで画像サイズが保たれること", func(t *testing.T) {
		for _, m := range Modes() {
			assert.Equal(t, src.Bounds(), m.Apply(src).Bounds(), "mode %s", m)
		}
	})

	t.Run("元画像は変更されないこと", func(t *testing.T) {
		for _, m := range Modes() {
			_ = m.Apply(src)
		}
		r, g, b := rgba8(src.At(2, 2))
		assert.Equal(t, [3]uint8{200, 40, 40}, [3]uint8{r, g, b})
	})
}
