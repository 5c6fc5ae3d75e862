package loader

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"testing"
	"time"

	"github.com/shouni/go-photobooth-kit/pkg/asset"
	"github.com/shouni/go-photobooth-kit/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// missingReader はどのパスも存在しないものとして扱う InputReader なのだ。
type missingReader struct{}

func (missingReader) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, os.ErrNotExist
}

func (missingReader) List(context.Context, string, func(string) error) error {
	return nil
}

func TestImageDecoder_Decode(t *testing.T) {
	dec := NewImageDecoder(asset.NewResolver(t.TempDir(), time.Minute, missingReader{}))
	ctx := context.Background()

	t.Run("PNG をデコードできること", func(t *testing.T) {
		img, err := dec.Decode(ctx, domain.Source{Data: encodePNG(t, 7, 5)})
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 7, 5), img.Bounds())
	})

	t.Run("画像でないデータは ErrDecode", func(t *testing.T) {
		_, err := dec.Decode(ctx, domain.Source{Data: []byte("definitely not an image")})
		assert.ErrorIs(t, err, domain.ErrDecode)
	})

	t.Run("壊れた PNG は ErrDecode", func(t *testing.T) {
		data := encodePNG(t, 4, 4)
		_, err := dec.Decode(ctx, domain.Source{Data: data[:len(data)/2]})
		assert.ErrorIs(t, err, domain.ErrDecode)
	})

	t.Run("存在しないファイルは ErrLoad", func(t *testing.T) {
		_, err := dec.Decode(ctx, domain.Source{URI: "templates/missing.png"})
		assert.ErrorIs(t, err, domain.ErrLoad)
	})
}
