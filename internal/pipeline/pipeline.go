package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/shouni/go-photobooth-kit/internal/builder"
	"github.com/shouni/go-photobooth-kit/internal/config"
	"github.com/shouni/go-photobooth-kit/pkg/device"
	"github.com/shouni/go-photobooth-kit/pkg/publisher"
	"github.com/shouni/go-photobooth-kit/pkg/session"

	"github.com/shouni/go-http-kit/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
)

// ExecuteCompose は、指定された写真ファイルを撮影順に取り込み、
// 合成画像を1枚保存するのだ。カウントダウンは行わないのだ。
func ExecuteCompose(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}
	return runCompose(ctx, appCtx)
}

// ExecuteShoot は、写真ファイルをカメラ代わりにして、
// 1枚ごとにカウントダウンしてから撮影し、合成画像を保存するのだ。
func ExecuteShoot(ctx context.Context, cfg *config.Config, out io.Writer) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}
	return runShoot(ctx, appCtx, out)
}

// setupAppContext は、HTTP クライアントとストレージの入出力を用意して AppContext を組み立てるのだ。
// 写真・テンプレート・出力先にはローカルパスも gs:// も指定できるのだ。
func setupAppContext(ctx context.Context, cfg *config.Config) (*builder.AppContext, error) {
	httpClient := httpkit.New(config.DefaultHTTPTimeout)

	gcsFactory, err := gcsfactory.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}
	reader, err := gcsFactory.InputReader()
	if err != nil {
		return nil, err
	}
	writer, err := gcsFactory.OutputWriter()
	if err != nil {
		return nil, err
	}

	return builder.BuildAppContext(cfg, httpClient, reader, writer, slog.Default())
}

func runCompose(ctx context.Context, appCtx *builder.AppContext) error {
	s, err := builder.BuildSession(appCtx, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	for i, path := range appCtx.Options.Photos {
		data, err := readPhoto(ctx, appCtx, path)
		if err != nil {
			return fmt.Errorf("写真 %d (%s) の読み込みに失敗したのだ: %w", i+1, path, err)
		}
		if err := s.Capture(data); err != nil {
			return err
		}
	}

	return saveComposite(ctx, appCtx, s)
}

func readPhoto(ctx context.Context, appCtx *builder.AppContext, path string) ([]byte, error) {
	rc, err := appCtx.Reader.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func runShoot(ctx context.Context, appCtx *builder.AppContext, out io.Writer) error {
	obs := session.Hooks{
		OnCountdownTick: func(remaining int) {
			fmt.Fprintf(out, "%d...\n", remaining)
		},
	}
	s, err := builder.BuildSession(appCtx, obs)
	if err != nil {
		return err
	}
	defer s.Close()

	cam := device.NewFileCamera(appCtx.Reader, appCtx.Options.Photos...)
	for s.State() != session.Full {
		if err := s.CaptureWithCountdown(ctx, cam); err != nil {
			return fmt.Errorf("撮影に失敗したのだ: %w", err)
		}
		snap := s.Snapshot()
		slog.Info("撮影したのだ！", "count", len(snap.Photos), "max", snap.MaxPhotos)
	}

	return saveComposite(ctx, appCtx, s)
}

// ListLayouts は、選択可能なレイアウトとテンプレートを一覧表示するのだ。
func ListLayouts(cfg *config.Config, out io.Writer) error {
	catalog, err := builder.BuildCatalog(cfg)
	if err != nil {
		return err
	}
	for _, id := range catalog.IDs() {
		l, err := catalog.Layout(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%d photos\t%s\n", l.ID, l.MaxPhotos, l.CanvasSize)
		for i, t := range l.Templates {
			fmt.Fprintf(out, "  [%d] %s\t%s\n", i, t.Name, t.ImageSource)
		}
	}
	return nil
}

func saveComposite(ctx context.Context, appCtx *builder.AppContext, s *session.Session) error {
	opts := appCtx.Options
	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	snap := s.Snapshot()
	if snap.State != session.Full {
		return fmt.Errorf("写真が足りないのだ: %d/%d 枚", len(snap.Photos), snap.MaxPhotos)
	}
	if snap.Composite == nil {
		if snap.LastError != nil {
			return fmt.Errorf("合成に失敗したのだ: %w", snap.LastError)
		}
		return fmt.Errorf("合成画像がないのだ")
	}

	pub := publisher.New(appCtx.Writer, appCtx.Logger)
	res, err := pub.Publish(ctx, snap.Composite.Data, snap.Photos, publisher.Options{
		OutputFile: opts.OutputFile,
		KeepFrames: opts.KeepFrames,
	})
	if err != nil {
		return err
	}

	slog.Info("合成画像を保存したのだ！",
		"output", res.CompositePath,
		"frames", len(res.FramePaths),
		"layout", snap.LayoutID,
		"template", snap.Composite.TemplateName,
		"filter", snap.Composite.Filter.String(),
		"bytes", len(snap.Composite.Data))
	return nil
}
