package pipeline

import (
	"context"
	"image"

	"github.com/shouni/go-photobooth-kit/pkg/domain"
	"github.com/shouni/go-photobooth-kit/pkg/renderer"
)

// ImageLoader は Source の並びを同じ順序の画像に変換するインターフェースです。
type ImageLoader interface {
	LoadAll(ctx context.Context, sources []domain.Source) ([]image.Image, error)
}

// ImageRenderer はデコード済みの入力を1枚の画像に合成するインターフェースです。
type ImageRenderer interface {
	Render(ctx context.Context, in renderer.Input) ([]byte, error)
}
