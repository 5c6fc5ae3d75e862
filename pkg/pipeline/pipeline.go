package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-photobooth-kit/pkg/domain"
	"github.com/shouni/go-photobooth-kit/pkg/filter"
	"github.com/shouni/go-photobooth-kit/pkg/layout"
	"github.com/shouni/go-photobooth-kit/pkg/renderer"
)

// Request は1枚の合成画像を作るための入力です。
type Request struct {
	Photos     []domain.Source
	Template   layout.Template
	CanvasSize domain.Size
	Filter     filter.Mode
}

// Pipeline は読み込みと合成をまとめて実行します。
// 写真とテンプレート画像は1つのバッチとして並行に読み込まれ、どれかが失敗すれば合成は行いません。
type Pipeline struct {
	loader   ImageLoader
	renderer ImageRenderer
	logger   *slog.Logger
}

// New は各コンポーネントのインターフェースを受け取り、Pipeline インスタンスを生成します。
func New(loader ImageLoader, renderer ImageRenderer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		loader:   loader,
		renderer: renderer,
		logger:   logger,
	}
}

// Compose は req の写真を読み込み、テンプレートと合成したエンコード済み画像を返します。
func (p *Pipeline) Compose(ctx context.Context, req Request) ([]byte, error) {
	start := time.Now()

	// 末尾にテンプレート画像を加えて1バッチで読み込む
	sources := make([]domain.Source, 0, len(req.Photos)+1)
	sources = append(sources, req.Photos...)
	sources = append(sources, req.Template.Source())

	images, err := p.loader.LoadAll(ctx, sources)
	if err != nil {
		return nil, fmt.Errorf("画像の読み込みに失敗しました: %w", err)
	}
	if len(images) != len(sources) {
		return nil, fmt.Errorf("%w: loader returned %d images for %d sources",
			domain.ErrRenderInputMismatch, len(images), len(sources))
	}

	data, err := p.renderer.Render(ctx, renderer.Input{
		Photos:     images[:len(req.Photos)],
		Overlay:    images[len(req.Photos)],
		Template:   req.Template,
		CanvasSize: req.CanvasSize,
		Filter:     req.Filter,
	})
	if err != nil {
		return nil, fmt.Errorf("合成に失敗しました: %w", err)
	}

	p.logger.Debug("composite pipeline finished",
		"photos", len(req.Photos), "template", req.Template.Name, "filter", req.Filter.String(),
		"elapsed", time.Since(start))
	return data, nil
}
