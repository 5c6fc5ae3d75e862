package renderer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/shouni/go-photobooth-kit/pkg/canvas"
	"github.com/shouni/go-photobooth-kit/pkg/domain"
	"github.com/shouni/go-photobooth-kit/pkg/filter"
	"github.com/shouni/go-photobooth-kit/pkg/layout"
)

// Input は1回の合成に必要なデコード済みの入力です。
type Input struct {
	Photos     []image.Image
	Overlay    image.Image
	Template   layout.Template
	CanvasSize domain.Size
	Filter     filter.Mode
}

// Renderer は写真とテンプレート画像を1枚のキャンバスに合成し、JPEG にエンコードします。
type Renderer struct {
	quality int
	logger  *slog.Logger
}

// Option は Renderer の設定を変更します。
type Option func(*Renderer)

// WithQuality は JPEG 品質（1-100）を指定します。
func WithQuality(q int) Option {
	return func(r *Renderer) { r.quality = q }
}

// WithLogger はログ出力先を指定します。
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// New は Renderer を生成します。
func New(opts ...Option) *Renderer {
	r := &Renderer{
		quality: canvas.DefaultJPEGQuality,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render は in を合成したエンコード済みの画像を返します。
//
// 写真はテンプレートの各 Position に PhotoSize で描かれ、フィルターは全写真に一律で適用されます。
// テンプレート画像はフィルターなしでキャンバス全体に拡縮され、常に最前面に重なります。
// 写真の数と Position の数が一致しない場合は domain.ErrRenderInputMismatch を返します。
// これは呼び出し側のバグです。
func (r *Renderer) Render(ctx context.Context, in Input) ([]byte, error) {
	if len(in.Photos) != len(in.Template.Positions) {
		r.logger.Error("render input mismatch",
			"photos", len(in.Photos), "positions", len(in.Template.Positions), "template", in.Template.Name)
		return nil, fmt.Errorf("%w: %d photos for %d positions in template %q",
			domain.ErrRenderInputMismatch, len(in.Photos), len(in.Template.Positions), in.Template.Name)
	}
	if in.Overlay == nil {
		return nil, fmt.Errorf("%w: template %q has no decoded overlay", domain.ErrRenderInputMismatch, in.Template.Name)
	}
	mode := in.Filter
	if !mode.IsValid() {
		mode = filter.Normal
	}

	// 1. キャンバスを確保
	surface, err := canvas.New(in.CanvasSize)
	if err != nil {
		return nil, err
	}

	// 2. 写真をスロットへ描画
	for i, photo := range in.Photos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		surface.SetFilter(mode)
		surface.DrawImage(photo, in.Template.Positions[i], in.Template.PhotoSize)
	}

	// 3. フィルターを解除
	surface.SetFilter(filter.Normal)

	// 4. テンプレートを最前面に
	surface.Fill(in.Overlay)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 5. エンコード
	var buf bytes.Buffer
	if err := surface.EncodeJPEG(&buf, r.quality); err != nil {
		return nil, err
	}

	r.logger.Debug("composite rendered",
		"template", in.Template.Name, "filter", mode.String(), "canvas", in.CanvasSize.String(), "bytes", buf.Len())
	return buf.Bytes(), nil
}
