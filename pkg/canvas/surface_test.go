package canvas

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/shouni/go-photobooth-kit/pkg/domain"
	"github.com/shouni/go-photobooth-kit/pkg/filter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestNew(t *testing.T) {
	_, err := New(domain.Size{Width: 0, Height: 10})
	assert.Error(t, err)

	s, err := New(domain.Size{Width: 30, Height: 20})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 30, 20), s.Image().Bounds())
	assert.Equal(t, filter.Normal, s.Filter())
}

func TestSurface_DrawImage(t *testing.T) {
	s, err := New(domain.Size{Width: 40, Height: 40})
	require.NoError(t, err)

	red := solid(4, 4, color.RGBA{R: 255, A: 255})
	s.DrawImage(red, domain.Point{X: 10, Y: 10}, domain.Size{Width: 20, Height: 20})

	t.Run("指定位置に拡大して描かれること", func(t *testing.T) {
		_, _, _, a := s.Image().At(5, 5).RGBA()
		assert.Zero(t, a, "スロット外は透明のまま")
		r, _, _, a := s.Image().At(20, 20).RGBA()
		assert.Equal(t, uint32(0xffff), a)
		assert.Equal(t, uint32(0xffff), r)
	})

	t.Run("はみ出した部分は切り取られること", func(t *testing.T) {
		s.DrawImage(red, domain.Point{X: 30, Y: -10}, domain.Size{Width: 20, Height: 20})
		_, _, _, a := s.Image().At(35, 0).RGBA()
		assert.Equal(t, uint32(0xffff), a)
	})

	t.Run("フィルター設定中はフィルター後の色で描かれること", func(t *testing.T) {
		g, err := New(domain.Size{Width: 10, Height: 10})
		require.NoError(t, err)
		g.SetFilter(filter.Grayscale)
		g.Fill(solid(2, 2, color.RGBA{R: 255, A: 255}))

		r, gg, b, _ := g.Image().At(5, 5).RGBA()
		assert.Equal(t, r, gg)
		assert.Equal(t, gg, b)
	})
}

func TestSurface_EncodeJPEG(t *testing.T) {
	s, err := New(domain.Size{Width: 64, Height: 48})
	require.NoError(t, err)
	s.Fill(solid(8, 8, color.RGBA{G: 200, A: 255}))

	var buf bytes.Buffer
	require.NoError(t, s.EncodeJPEG(&buf, 0))

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 48, cfg.Height)
}
