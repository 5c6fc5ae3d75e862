package loader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/shouni/go-photobooth-kit/pkg/asset"
	"github.com/shouni/go-photobooth-kit/pkg/domain"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/webp"
)

// Decoder は Source をデコード済みの画像に変換します。
type Decoder interface {
	Decode(ctx context.Context, src domain.Source) (image.Image, error)
}

// ImageDecoder は Fetcher で取得したバイト列を標準の画像形式（PNG/JPEG/GIF/WebP）としてデコードします。
type ImageDecoder struct {
	fetcher asset.Fetcher
}

// NewImageDecoder は ImageDecoder を生成します。
func NewImageDecoder(fetcher asset.Fetcher) *ImageDecoder {
	return &ImageDecoder{fetcher: fetcher}
}

// Decode は src を取得してデコードします。
// 取得の失敗は domain.ErrLoad、画像として解釈できない場合は domain.ErrDecode を返します。
func (d *ImageDecoder) Decode(ctx context.Context, src domain.Source) (image.Image, error) {
	data, err := d.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !filetype.IsImage(data) {
		return nil, fmt.Errorf("%w: %s is not an image", domain.ErrDecode, src)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrDecode, src, err)
	}
	return img, nil
}
