package cmd

import (
	"log/slog"

	"github.com/shouni/go-photobooth-kit/internal/config"
	"github.com/shouni/go-photobooth-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// composeCmd は、既存の写真ファイルをそのまま撮影順に取り込んで合成するサブコマンドなのだ。
var composeCmd = &cobra.Command{
	Use:   "compose [photo...]",
	Short: "写真ファイルからすぐに合成画像を作るのだ。",
	Long: `指定した写真ファイルを撮影順に取り込み、選んだレイアウト・テンプレート・フィルターで
1枚の JPEG に合成して保存するのだ。写真の枚数はレイアウトの枚数と同じにしてほしいのだ。`,
	Args: cobra.MinimumNArgs(1),
	RunE: composeCommand,
}

// composeCommand は、compose サブコマンドの実行ロジック本体なのだ。
func composeCommand(cmd *cobra.Command, args []string) error {
	cfg := config.LoadConfig()
	opts.Photos = args
	cfg.Options = opts

	slog.Info("合成モードを起動するのだ！",
		"layout", opts.Layout,
		"template", opts.Template,
		"filter", opts.Filter,
		"photos", len(args))

	return pipeline.ExecuteCompose(cmd.Context(), cfg)
}
