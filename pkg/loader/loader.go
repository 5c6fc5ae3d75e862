package loader

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/shouni/go-photobooth-kit/pkg/domain"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultConcurrency は同時にデコードする最大数です。
const DefaultConcurrency = 4

// Loader は複数の Source を並行して読み込み、入力と同じ順序で返します。
type Loader struct {
	decoder     Decoder
	concurrency int
	interval    time.Duration
	logger      *slog.Logger
}

// Option は Loader の設定を変更します。
type Option func(*Loader)

// WithConcurrency は同時デコード数を指定します。0 以下なら無制限です。
func WithConcurrency(n int) Option {
	return func(l *Loader) { l.concurrency = n }
}

// WithInterval はデコード開始の最小間隔を指定します。0 なら間隔を空けません。
func WithInterval(d time.Duration) Option {
	return func(l *Loader) { l.interval = d }
}

// WithLogger はログ出力先を指定します。
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// New は Loader を生成します。
func New(decoder Decoder, opts ...Option) *Loader {
	l := &Loader{
		decoder:     decoder,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadAll は sources を並行してデコードし、各画像を元の Source と同じ添字に格納して返します。
// 完了順には依存しません。どれか1つでも失敗した時点で domain.ErrLoad を包んだエラーを返し、
// 同じバッチの残りのデコードはキャンセルされます。失敗時に部分的な結果は返しません。
func (l *Loader) LoadAll(ctx context.Context, sources []domain.Source) ([]image.Image, error) {
	if len(sources) == 0 {
		return []image.Image{}, nil
	}

	images := make([]image.Image, len(sources))
	eg, egCtx := errgroup.WithContext(ctx)
	if l.concurrency > 0 {
		eg.SetLimit(l.concurrency)
	}

	var limiter *rate.Limiter
	if l.interval > 0 {
		limiter = rate.NewLimiter(rate.Every(l.interval), 1)
	}

	var (
		failOnce sync.Once
		firstErr error
		failed   = make(chan struct{})
	)
	fail := func(err error) error {
		failOnce.Do(func() {
			firstErr = err
			close(failed)
		})
		return err
	}

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		for i, src := range sources {
			i, src := i, src
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				if limiter != nil {
					if err := limiter.Wait(egCtx); err != nil {
						return fail(fmt.Errorf("%w: source %d: %w", domain.ErrLoad, i, err))
					}
				}

				img, err := l.decoder.Decode(egCtx, src)
				if err != nil {
					return fail(fmt.Errorf("%w: source %d (%s): %w", domain.ErrLoad, i, src, err))
				}

				// 完了順ではなく、元の添字に書き込みます。
				images[i] = img
				l.logger.Debug("source decoded", "index", i, "source", src.String())
				return nil
			})
		}
		done <- eg.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			if !errors.Is(err, domain.ErrLoad) {
				err = fmt.Errorf("%w: %w", domain.ErrLoad, err)
			}
			return nil, err
		}
	case <-failed:
		return nil, firstErr
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", domain.ErrLoad, ctx.Err())
	}

	l.logger.Debug("batch loaded", "count", len(images), "elapsed", time.Since(start))
	return images, nil
}
