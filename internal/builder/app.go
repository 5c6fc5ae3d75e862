package builder

import (
	"log/slog"

	"github.com/shouni/go-photobooth-kit/internal/config"
	"github.com/shouni/go-photobooth-kit/pkg/layout"
	"github.com/shouni/go-photobooth-kit/pkg/pipeline"

	"github.com/shouni/go-http-kit/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各Build関数に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config     *config.Config        // Configは、環境変数から読み込まれた設定です。
	Options    config.ComposeOptions // Optionsは、コマンドラインから渡された実行時の設定です。
	Reader     remoteio.InputReader  // Readerは、写真やテンプレート画像の読み込みに使用する入力元です。
	Writer     remoteio.OutputWriter // Writerは、合成画像を保存するための出力先です。
	HTTPClient httpkit.Requester     // HTTPClient はリモートのテンプレート画像を取得する共通クライアント
	Catalog    *layout.Catalog       // Catalogは、選択可能なレイアウトの一覧です。
	Pipeline   *pipeline.Pipeline    // Pipelineは、読み込みと合成をまとめたものです。
	Logger     *slog.Logger
}

// NewAppContext は AppContext の新しいインスタンスを生成する
func NewAppContext(
	cfg *config.Config,
	httpClient httpkit.Requester,
	reader remoteio.InputReader,
	writer remoteio.OutputWriter,
	catalog *layout.Catalog,
	p *pipeline.Pipeline,
	logger *slog.Logger,
) AppContext {
	return AppContext{
		Config:     cfg,
		Options:    cfg.Options,
		Reader:     reader,
		Writer:     writer,
		HTTPClient: httpClient,
		Catalog:    catalog,
		Pipeline:   p,
		Logger:     logger,
	}
}
