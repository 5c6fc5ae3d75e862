package device

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/shouni/go-photobooth-kit/pkg/domain"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// Camera は1フレームを撮影してエンコード済みのバイト列を返します。
// デバイスの確保や権限、ストリームの後始末は実装側の責務です。
type Camera interface {
	CaptureFrame(ctx context.Context) ([]byte, error)
}

// CameraFunc は関数を Camera として扱うためのアダプターです。
type CameraFunc func(ctx context.Context) ([]byte, error)

// CaptureFrame は f を呼び出します。
func (f CameraFunc) CaptureFrame(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

// FileCamera は画像ファイルを順番に1枚ずつ返すカメラです。
// CLI での動作確認や、実機のない環境での撮影に使います。
type FileCamera struct {
	mu     sync.Mutex
	reader remoteio.InputReader
	paths  []string
	next   int
}

// NewFileCamera は reader から paths を撮影順に返す FileCamera を生成します。
func NewFileCamera(reader remoteio.InputReader, paths ...string) *FileCamera {
	return &FileCamera{reader: reader, paths: append([]string(nil), paths...)}
}

// CaptureFrame は次のファイルを読み込みます。
// ファイルが尽きた場合や読み込めない場合は domain.ErrDeviceUnavailable を返します。
func (c *FileCamera) CaptureFrame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.next >= len(c.paths) {
		return nil, fmt.Errorf("%w: no more frames (%d captured)", domain.ErrDeviceUnavailable, c.next)
	}
	path := c.paths[c.next]
	data, err := c.read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrDeviceUnavailable, path, err)
	}
	c.next++
	return data, nil
}

func (c *FileCamera) read(ctx context.Context, path string) ([]byte, error) {
	rc, err := c.reader.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Remaining はまだ返していないフレーム数です。
func (c *FileCamera) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.paths) - c.next
}
