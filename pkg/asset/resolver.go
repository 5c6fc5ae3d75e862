package asset

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/shouni/go-photobooth-kit/pkg/domain"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-http-kit/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultCacheTTL は URI から取得したバイト列を保持する期間です。
	DefaultCacheTTL = 30 * time.Minute
	// DefaultFetchTimeout は共有される取得1回あたりのタイムアウトです。
	DefaultFetchTimeout = 30 * time.Second
)

// Fetcher は Source をエンコード済みのバイト列に解決します。
type Fetcher interface {
	Fetch(ctx context.Context, src domain.Source) ([]byte, error)
}

// Resolver はインラインデータ・data URI・ストレージ上のファイル・HTTP(S) の各 Source を解決します。
// URI から取得したバイト列はキャッシュされ、同じ URI への同時取得は1回にまとめられます。
// キャッシュするのはエンコード済みのバイト列のみで、デコード済みのラスタは保持しません。
type Resolver struct {
	baseDir      string
	reader       remoteio.InputReader
	httpClient   httpkit.Requester
	fetchTimeout time.Duration
	cache        *cache.Cache
	fetchGroup   singleflight.Group
	logger       *slog.Logger
}

// Option は Resolver の設定を変更します。
type Option func(*Resolver)

// WithHTTPClient はリモート取得に使う HTTP クライアントを指定します。
func WithHTTPClient(c httpkit.Requester) Option {
	return func(r *Resolver) { r.httpClient = c }
}

// WithFetchTimeout は共有される取得のタイムアウトを指定します。
func WithFetchTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.fetchTimeout = d }
}

// WithLogger はログ出力先を指定します。
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver は baseDir を相対パスの基準とし、reader でファイルを読む Resolver を生成します。
// reader はローカルパスと gs:// などのリモートストレージの両方を扱えるものを渡します。
func NewResolver(baseDir string, ttl time.Duration, reader remoteio.InputReader, opts ...Option) *Resolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	r := &Resolver{
		baseDir:      baseDir,
		reader:       reader,
		fetchTimeout: DefaultFetchTimeout,
		cache:        cache.New(ttl, 2*ttl),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.httpClient == nil {
		r.httpClient = httpkit.New(httpkit.DefaultHTTPTimeout)
	}
	return r
}

// Fetch は src のバイト列を返します。
//
// 同じ URI の取得は呼び出し元をまたいで共有されます。共有された取得は個々の ctx では取り消されず、
// 呼び出し元は自分の ctx が終わった時点で待つのをやめるだけです。
func (r *Resolver) Fetch(ctx context.Context, src domain.Source) ([]byte, error) {
	if len(src.Data) > 0 {
		return src.Data, nil
	}
	if src.URI == "" {
		return nil, fmt.Errorf("%w: 空の Source です", domain.ErrLoad)
	}
	if strings.HasPrefix(src.URI, "data:") {
		return decodeDataURI(src.URI)
	}

	if v, ok := r.cache.Get(src.URI); ok {
		if data, ok := v.([]byte); ok {
			return data, nil
		}
	}

	ch := r.fetchGroup.DoChan(src.URI, func() (interface{}, error) {
		// 待機中に別のゴルーチンが取得を終えている可能性があるため、再度キャッシュを確認します。
		if v, ok := r.cache.Get(src.URI); ok {
			return v, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.fetchTimeout)
		defer cancel()

		data, err := r.fetchURI(fetchCtx, src.URI)
		if err != nil {
			return nil, err
		}
		r.cache.Set(src.URI, data, cache.DefaultExpiration)
		return data, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrLoad, src.URI, ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	r.logger.Debug("asset resolved", "uri", src.URI, "shared", res.Shared)

	data, ok := res.Val.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected return type from singleflight: %T", res.Val)
	}
	return data, nil
}

// Forget は uri のキャッシュを破棄します。テンプレート画像を差し替えたときに使います。
func (r *Resolver) Forget(uri string) {
	r.cache.Delete(uri)
}

func (r *Resolver) fetchURI(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		data, err := r.httpClient.FetchBytes(ctx, uri)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrLoad, uri, err)
		}
		return data, nil
	}

	path := uri
	switch {
	case err == nil && u.Scheme == "file":
		path = u.Path
	case err == nil && u.Scheme != "":
		// gs:// などはそのまま reader に渡します
		return r.read(ctx, uri)
	}
	if !filepath.IsAbs(path) && r.baseDir != "" {
		path = filepath.Join(r.baseDir, path)
	}
	return r.read(ctx, path)
}

func (r *Resolver) read(ctx context.Context, path string) ([]byte, error) {
	if r.reader == nil {
		return nil, fmt.Errorf("%w: %s: reader が設定されていません", domain.ErrLoad, path)
	}
	rc, err := r.reader.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrLoad, path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrLoad, path, err)
	}
	return data, nil
}

// decodeDataURI は "data:image/jpeg;base64,..." 形式を解釈します。
// ブラウザのスクリーンショットはこの形式で渡されます。
func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: data URI にカンマがありません", domain.ErrLoad)
	}
	if strings.HasSuffix(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: data URI の base64 が不正です: %w", domain.ErrLoad, err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: data URI のエスケープが不正です: %w", domain.ErrLoad, err)
	}
	return []byte(s), nil
}
