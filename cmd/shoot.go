package cmd

import (
	"log/slog"

	"github.com/shouni/go-photobooth-kit/internal/config"
	"github.com/shouni/go-photobooth-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// shootCmd は、写真ファイルをカメラ代わりにしてカウントダウン付きで撮影するサブコマンドなのだ。
var shootCmd = &cobra.Command{
	Use:   "shoot [frame...]",
	Short: "カウントダウンしながら1枚ずつ撮影して合成するのだ。",
	Args:  cobra.MinimumNArgs(1),
	RunE:  shootCommand,
}

// shootCommand は、shoot サブコマンドの実行ロジック本体なのだ。
func shootCommand(cmd *cobra.Command, args []string) error {
	cfg := config.LoadConfig()
	opts.Photos = args
	cfg.Options = opts

	slog.Info("撮影モードを起動するのだ！", "layout", opts.Layout, "frames", len(args))
	return pipeline.ExecuteShoot(cmd.Context(), cfg, cmd.OutOrStdout())
}
