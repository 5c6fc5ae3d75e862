package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shouni/go-photobooth-kit/internal/builder"
	"github.com/shouni/go-photobooth-kit/internal/config"

	"github.com/shouni/go-http-kit/httpkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diskIO はローカルディスクだけを読み書きする InputReader / OutputWriter なのだ。
type diskIO struct{}

func (diskIO) Open(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (diskIO) List(context.Context, string, func(string) error) error {
	return nil
}

func (diskIO) Write(_ context.Context, path string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func newAppContext(t *testing.T, cfg *config.Config) *builder.AppContext {
	t.Helper()
	appCtx, err := builder.BuildAppContext(cfg, httpkit.New(time.Second), diskIO{}, diskIO{}, slog.Default())
	require.NoError(t, err)
	return appCtx
}

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func setup(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "assets", "templates", "templates-1.png"), 60, 90, color.Transparent)

	photos := make([]string, 3)
	for i := range photos {
		photos[i] = filepath.Join(dir, "photo"+string(rune('1'+i))+".png")
		writePNG(t, photos[i], 32, 18, color.RGBA{R: uint8(80 * i), G: 120, B: 200, A: 255})
	}

	cfg := config.LoadConfig()
	cfg.AssetDir = filepath.Join(dir, "assets")
	cfg.TickInterval = time.Millisecond
	cfg.Options = config.ComposeOptions{
		Layout:     "3-vertikal",
		Template:   1,
		Filter:     "sepia",
		OutputFile: filepath.Join(dir, "out.jpg"),
		Photos:     photos,
	}
	return cfg, dir
}

func assertJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, w, cfg.Width)
	assert.Equal(t, h, cfg.Height)
}

func TestRunCompose(t *testing.T) {
	t.Run("3枚から 1200x1800 の合成画像が保存されるのだ", func(t *testing.T) {
		cfg, _ := setup(t)
		require.NoError(t, runCompose(context.Background(), newAppContext(t, cfg)))
		assertJPEG(t, cfg.Options.OutputFile, 1200, 1800)
	})

	t.Run("写真が足りなければエラーなのだ", func(t *testing.T) {
		cfg, _ := setup(t)
		cfg.Options.Photos = cfg.Options.Photos[:2]
		assert.Error(t, runCompose(context.Background(), newAppContext(t, cfg)))
	})

	t.Run("テンプレート画像が無ければ合成失敗として返るのだ", func(t *testing.T) {
		cfg, _ := setup(t)
		cfg.Options.Template = 0
		assert.Error(t, runCompose(context.Background(), newAppContext(t, cfg)))
	})

	t.Run("フレームも個別に保存できるのだ", func(t *testing.T) {
		cfg, dir := setup(t)
		cfg.Options.KeepFrames = true
		require.NoError(t, runCompose(context.Background(), newAppContext(t, cfg)))
		for _, name := range []string{"out_1.png", "out_2.png", "out_3.png"} {
			_, err := os.Stat(filepath.Join(dir, name))
			assert.NoError(t, err, name)
		}
	})
}

func TestRunShoot(t *testing.T) {
	cfg, _ := setup(t)
	cfg.Options.Countdown = 2

	var out bytes.Buffer
	require.NoError(t, runShoot(context.Background(), newAppContext(t, cfg), &out))

	assert.Equal(t, strings.Repeat("2...\n1...\n0...\n", 3), out.String())
	assertJPEG(t, cfg.Options.OutputFile, 1200, 1800)
}

func TestListLayouts(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, ListLayouts(config.LoadConfig(), &out))
	assert.Contains(t, out.String(), "3-vertikal\t3 photos\t1200x1800")
	assert.Contains(t, out.String(), "[1] Default\ttemplates/templates-1.png")
	assert.Contains(t, out.String(), "4-vertikal\t4 photos\t1200x2400")
}
