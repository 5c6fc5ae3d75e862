package config

import (
	"time"

	"github.com/shouni/go-photobooth-kit/pkg/asset"
	"github.com/shouni/go-photobooth-kit/pkg/canvas"
	"github.com/shouni/go-photobooth-kit/pkg/countdown"
	"github.com/shouni/go-photobooth-kit/pkg/loader"
	"github.com/shouni/go-photobooth-kit/pkg/session"
)

// デフォルト値の定義
const (
	DefaultAssetDir = "assets"
)

// Config は Go Photobooth Kit の各コンポーネントを動作させるための基本設定です。
type Config struct {
	// --- Assets ---
	AssetDir   string        // テンプレート画像など相対パスの基準ディレクトリ
	LayoutFile string        // 空なら同梱のレイアウト表を使う
	CacheTTL   time.Duration // 取得済みバイト列のキャッシュ期間

	// --- Loading ---
	DecodeConcurrency int
	DecodeInterval    time.Duration

	// --- Rendering ---
	JPEGQuality int

	// --- Capture ---
	CountdownSeconds int
	TickInterval     time.Duration
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		AssetDir:          DefaultAssetDir,
		CacheTTL:          asset.DefaultCacheTTL,
		DecodeConcurrency: loader.DefaultConcurrency,
		JPEGQuality:       canvas.DefaultJPEGQuality,
		CountdownSeconds:  session.DefaultCountdownSeconds,
		TickInterval:      countdown.DefaultInterval,
	}
}
