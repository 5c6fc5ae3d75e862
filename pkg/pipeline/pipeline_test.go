package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shouni/go-photobooth-kit/pkg/asset"
	"github.com/shouni/go-photobooth-kit/pkg/domain"
	"github.com/shouni/go-photobooth-kit/pkg/filter"
	"github.com/shouni/go-photobooth-kit/pkg/layout"
	"github.com/shouni/go-photobooth-kit/pkg/loader"
	"github.com/shouni/go-photobooth-kit/pkg/renderer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type diskReader struct{}

func (diskReader) Open(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (diskReader) List(context.Context, string, func(string) error) error {
	return nil
}

func newPipeline(t *testing.T, dir string) *Pipeline {
	t.Helper()
	dec := loader.NewImageDecoder(asset.NewResolver(dir, time.Minute, diskReader{}))
	return New(loader.New(dec), renderer.New(), nil)
}

func TestPipeline_Compose(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "templates"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "templates", "templates-1.png"),
		pngBytes(t, 60, 90, color.Transparent), 0o644))

	l, err := layout.DefaultCatalog().Layout("3-vertikal")
	require.NoError(t, err)
	tmpl := l.Templates[1]

	photo := domain.Source{Data: pngBytes(t, 32, 18, color.RGBA{R: 255, A: 255})}
	p := newPipeline(t, dir)

	t.Run("Default テンプレートで 1200x1800 の JPEG になること", func(t *testing.T) {
		data, err := p.Compose(context.Background(), Request{
			Photos:     []domain.Source{photo, photo, photo},
			Template:   tmpl,
			CanvasSize: l.CanvasSize,
			Filter:     filter.Sepia,
		})
		require.NoError(t, err)

		cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 1200, cfg.Width)
		assert.Equal(t, 1800, cfg.Height)
	})

	t.Run("壊れた写真があれば ErrLoad で合成しないこと", func(t *testing.T) {
		broken := domain.Source{Data: []byte("garbage")}
		_, err := p.Compose(context.Background(), Request{
			Photos:     []domain.Source{photo, broken, photo},
			Template:   tmpl,
			CanvasSize: l.CanvasSize,
		})
		assert.ErrorIs(t, err, domain.ErrLoad)
		assert.ErrorIs(t, err, domain.ErrDecode)
	})

	t.Run("テンプレート画像がなければ ErrLoad", func(t *testing.T) {
		_, err := p.Compose(context.Background(), Request{
			Photos:     []domain.Source{photo, photo, photo},
			Template:   l.Templates[0],
			CanvasSize: l.CanvasSize,
		})
		assert.ErrorIs(t, err, domain.ErrLoad)
	})

	t.Run("写真の数が合わなければ ErrRenderInputMismatch", func(t *testing.T) {
		_, err := p.Compose(context.Background(), Request{
			Photos:     []domain.Source{photo},
			Template:   tmpl,
			CanvasSize: l.CanvasSize,
		})
		assert.ErrorIs(t, err, domain.ErrRenderInputMismatch)
	})
}
