package cmd

import (
	"github.com/shouni/go-photobooth-kit/internal/config"
	"github.com/shouni/go-photobooth-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// layoutsCmd は、選べるレイアウトとテンプレートを一覧表示するのだ。
var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "レイアウトとテンプレートの一覧を表示するのだ。",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return pipeline.ListLayouts(config.LoadConfig(), cmd.OutOrStdout())
	},
}
