package builder

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-photobooth-kit/internal/config"
	"github.com/shouni/go-photobooth-kit/pkg/asset"
	"github.com/shouni/go-photobooth-kit/pkg/filter"
	"github.com/shouni/go-photobooth-kit/pkg/layout"
	"github.com/shouni/go-photobooth-kit/pkg/loader"
	"github.com/shouni/go-photobooth-kit/pkg/pipeline"
	"github.com/shouni/go-photobooth-kit/pkg/renderer"
	"github.com/shouni/go-photobooth-kit/pkg/session"

	"github.com/shouni/go-http-kit/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// BuildAppContext は設定と入出力から全コンポーネントを組み立てます。
func BuildAppContext(
	cfg *config.Config,
	httpClient httpkit.Requester,
	reader remoteio.InputReader,
	writer remoteio.OutputWriter,
	logger *slog.Logger,
) (*AppContext, error) {
	if logger == nil {
		logger = slog.Default()
	}

	catalog, err := BuildCatalog(cfg)
	if err != nil {
		return nil, err
	}

	resolver := asset.NewResolver(cfg.AssetDir, cfg.CacheTTL, reader,
		asset.WithHTTPClient(httpClient),
		asset.WithLogger(logger),
	)
	ld := loader.New(
		loader.NewImageDecoder(resolver),
		loader.WithConcurrency(cfg.DecodeConcurrency),
		loader.WithInterval(cfg.DecodeInterval),
		loader.WithLogger(logger),
	)
	rd := renderer.New(renderer.WithQuality(cfg.JPEGQuality), renderer.WithLogger(logger))

	appCtx := NewAppContext(cfg, httpClient, reader, writer, catalog, pipeline.New(ld, rd, logger), logger)
	return &appCtx, nil
}

// BuildCatalog は設定されたレイアウトファイル、なければ同梱のレイアウト表を読み込みます。
func BuildCatalog(cfg *config.Config) (*layout.Catalog, error) {
	if cfg.LayoutFile == "" {
		return layout.DefaultCatalog(), nil
	}
	catalog, err := layout.LoadFile(cfg.LayoutFile)
	if err != nil {
		return nil, fmt.Errorf("レイアウト表の読み込みに失敗したのだ: %w", err)
	}
	return catalog, nil
}

// BuildSession は CLI オプションに従って撮影セッションを構築します。
func BuildSession(appCtx *AppContext, obs session.Observer) (*session.Session, error) {
	opts := appCtx.Options

	mode, err := filter.Parse(opts.Filter)
	if err != nil {
		return nil, err
	}

	seconds := appCtx.Config.CountdownSeconds
	if opts.Countdown > 0 {
		seconds = opts.Countdown
	}

	sessOpts := []session.Option{
		session.WithFilter(mode),
		session.WithLogger(appCtx.Logger),
		session.WithCountdown(seconds, appCtx.Config.TickInterval),
	}
	if opts.Layout != "" {
		sessOpts = append(sessOpts, session.WithLayout(opts.Layout))
	}
	if obs != nil {
		sessOpts = append(sessOpts, session.WithObserver(obs))
	}

	s, err := session.New(appCtx.Catalog, appCtx.Pipeline, sessOpts...)
	if err != nil {
		return nil, fmt.Errorf("セッションの初期化に失敗したのだ: %w", err)
	}
	if opts.Template != 0 {
		if err := s.ChangeTemplate(opts.Template); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}
