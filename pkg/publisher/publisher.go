package publisher

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-photobooth-kit/pkg/domain"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// Options は保存動作を制御する設定項目です。
type Options struct {
	OutputFile string
	KeepFrames bool // 撮影したフレームも連番で保存する
}

// PublishResult は保存されたファイルの情報を保持します。
type PublishResult struct {
	CompositePath string
	FramePaths    []string
}

// Publisher は合成画像と撮影フレームの永続化を担います。
type Publisher struct {
	writer remoteio.OutputWriter
	logger *slog.Logger
}

// New は writer に保存する Publisher を生成します。
// writer はローカルパスと gs:// などのリモートストレージの両方を扱えます。
func New(writer remoteio.OutputWriter, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{writer: writer, logger: logger}
}

// Publish は合成画像を保存し、必要であれば撮影フレームも保存します。
func (p *Publisher) Publish(ctx context.Context, composite []byte, frames []domain.CapturedPhoto, opts Options) (PublishResult, error) {
	result := PublishResult{}
	if len(composite) == 0 {
		return result, fmt.Errorf("保存する合成画像がありません")
	}

	output := opts.OutputFile
	if output == "" {
		output = DefaultOutputFile
	}
	if err := p.writer.Write(ctx, output, bytes.NewReader(composite), compositeContentType); err != nil {
		return result, fmt.Errorf("合成画像の保存に失敗しました: %w", err)
	}
	result.CompositePath = output

	if opts.KeepFrames {
		for _, f := range frames {
			path, contentType, err := framePath(output, f.CaptureIndex+1, f.SourceData)
			if err != nil {
				return result, err
			}
			if err := p.writer.Write(ctx, path, bytes.NewReader(f.SourceData), contentType); err != nil {
				return result, fmt.Errorf("フレーム %d の保存に失敗しました: %w", f.CaptureIndex+1, err)
			}
			result.FramePaths = append(result.FramePaths, path)
		}
	}

	p.logger.Debug("published", "composite", result.CompositePath, "frames", len(result.FramePaths))
	return result, nil
}
