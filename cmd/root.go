package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/shouni/go-photobooth-kit/internal/config"

	"github.com/spf13/cobra"
)

// opts は全サブコマンドで共有する CLI オプションなのだ。
var opts config.ComposeOptions

var verbose bool

var rootCmd = &cobra.Command{
	Use:               "photobooth",
	Short:             "撮影した写真をフレームと合成して1枚の画像にするのだ。",
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "デバッグログを出力するのだ。")

	// --- 合成設定 ---
	for _, c := range []*cobra.Command{composeCmd, shootCmd} {
		c.Flags().StringVarP(&opts.Layout, "layout", "l", config.DefaultLayout, "レイアウトIDなのだ（layouts コマンドで一覧できるのだ）。")
		c.Flags().IntVarP(&opts.Template, "template", "t", 0, "レイアウト内のテンプレート番号なのだ。")
		c.Flags().StringVarP(&opts.Filter, "filter", "f", "normal", "フィルターなのだ（normal, grayscale, sepia, pixar, vinpixar, greenharmony）。")
		c.Flags().StringVarP(&opts.OutputFile, "output-file", "o", config.DefaultOutputFile, "合成画像の保存パスなのだ。")
		c.Flags().BoolVar(&opts.KeepFrames, "keep-frames", false, "撮影したフレームも連番で保存するのだ。")
	}
	shootCmd.Flags().IntVar(&opts.Countdown, "countdown", 0, "撮影前のカウントダウン秒数なのだ（0なら環境設定のまま）。")
}

// preRunAppE は、コマンド実行前にログレベルなどを整えるのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(composeCmd, shootCmd, layoutsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
