package canvas

import (
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/shouni/go-photobooth-kit/pkg/domain"
	"github.com/shouni/go-photobooth-kit/pkg/filter"

	"golang.org/x/image/draw"
)

// DefaultJPEGQuality はエンコード時の既定品質です。
const DefaultJPEGQuality = 92

// Surface は合成用のラスタ面です。描画ごとに現在のフィルターを適用します。
// 1回のレンダリングの間だけ使い、使い回しません。
type Surface struct {
	img    *image.RGBA
	size   domain.Size
	filter filter.Mode
	scaler draw.Scaler
}

// New は size ちょうどの透明なラスタ面を確保します。
func New(size domain.Size) (*Surface, error) {
	if !size.IsValid() {
		return nil, fmt.Errorf("canvas: invalid size %s", size)
	}
	return &Surface{
		img:    image.NewRGBA(image.Rect(0, 0, size.Width, size.Height)),
		size:   size,
		filter: filter.Normal,
		scaler: draw.BiLinear,
	}, nil
}

// SetScaler は拡大縮小の補間方法を変更します。
func (s *Surface) SetScaler(sc draw.Scaler) {
	if sc != nil {
		s.scaler = sc
	}
}

// SetFilter は以降の DrawImage に適用するフィルターを設定します。filter.Normal で解除します。
func (s *Surface) SetFilter(m filter.Mode) {
	s.filter = m
}

// Filter は現在のフィルターを返します。
func (s *Surface) Filter() filter.Mode {
	return s.filter
}

// DrawImage は src を at の位置に size へ拡縮して重ねます。面の外にはみ出した部分は切り取られます。
func (s *Surface) DrawImage(src image.Image, at domain.Point, size domain.Size) {
	dr := size.Rect(at)
	if s.filter == filter.Normal || !s.filter.IsValid() {
		s.scaler.Scale(s.img, dr, src, src.Bounds(), draw.Over, nil)
		return
	}

	scaled := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	s.scaler.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Src, nil)
	filtered := s.filter.Apply(scaled)
	draw.Draw(s.img, dr, filtered, filtered.Bounds().Min, draw.Over)
}

// Fill は src を面全体に拡縮して重ねます。
func (s *Surface) Fill(src image.Image) {
	s.DrawImage(src, domain.Point{}, s.size)
}

// Size は面の大きさを返します。
func (s *Surface) Size() domain.Size {
	return s.size
}

// Image は描画結果を返します。
func (s *Surface) Image() image.Image {
	return s.img
}

// EncodeJPEG は面を JPEG として w に書き出します。
func (s *Surface) EncodeJPEG(w io.Writer, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	if err := jpeg.Encode(w, s.img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("canvas: jpeg encode failed: %w", err)
	}
	return nil
}
