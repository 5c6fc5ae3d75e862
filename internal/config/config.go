package config

import (
	"log/slog"
	"strconv"
	"time"

	pkgconfig "github.com/shouni/go-photobooth-kit/pkg/config"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultOutputFile = "photobooth.jpg" // 合成画像のデフォルト保存先なのだ
	DefaultLayout     = "3-vertikal"

	DefaultHTTPTimeout = 30 * time.Second // リモートのテンプレート画像取得のタイムアウトなのだ
)

// Config はアプリケーション全体の設定を保持する構造体なのだ。
type Config struct {
	pkgconfig.Config

	Options ComposeOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	base := pkgconfig.DefaultConfig()
	cfg := &Config{
		Config: pkgconfig.Config{
			AssetDir:          envutil.GetEnv("PHOTOBOOTH_ASSET_DIR", base.AssetDir),
			LayoutFile:        envutil.GetEnv("PHOTOBOOTH_LAYOUT_FILE", base.LayoutFile),
			CacheTTL:          envDuration("PHOTOBOOTH_CACHE_TTL", base.CacheTTL),
			DecodeConcurrency: envInt("PHOTOBOOTH_DECODE_CONCURRENCY", base.DecodeConcurrency),
			DecodeInterval:    envDuration("PHOTOBOOTH_DECODE_INTERVAL", base.DecodeInterval),
			JPEGQuality:       envInt("PHOTOBOOTH_JPEG_QUALITY", base.JPEGQuality),
			CountdownSeconds:  envInt("PHOTOBOOTH_COUNTDOWN", base.CountdownSeconds),
			TickInterval:      envDuration("PHOTOBOOTH_TICK_INTERVAL", base.TickInterval),
		},
	}
	return cfg
}

// ComposeOptions は CLI フラグから渡される実行時のパラメータなのだ。
type ComposeOptions struct {
	Layout     string   // --layout
	Template   int      // --template
	Filter     string   // --filter
	OutputFile string   // --output-file
	Photos     []string // 引数の写真ファイル
	KeepFrames bool     // --keep-frames: 撮影フレームも個別に保存する
	Countdown  int      // --countdown
}

func envInt(key string, def int) int {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("環境変数が整数じゃないのでデフォルトを使うのだ", "key", key, "value", raw)
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("環境変数が時間の形式じゃないのでデフォルトを使うのだ", "key", key, "value", raw)
		return def
	}
	return v
}
