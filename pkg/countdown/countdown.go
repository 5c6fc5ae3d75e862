package countdown

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shouni/go-photobooth-kit/pkg/domain"
)

// DefaultInterval は1カウントあたりの間隔です。
const DefaultInterval = time.Second

// TickFunc は残りカウントが変わるたびに呼ばれます。seconds から 0 まで順に渡されます。
type TickFunc func(remaining int)

// Countdown はキャンセル可能なカウントダウンです。
// 0 に到達したときだけ成功として完了し、キャンセルされた場合は決して成功しません。
type Countdown struct {
	cancel    context.CancelFunc
	done      chan struct{}
	remaining atomic.Int64

	mu  sync.Mutex
	err error
}

// Start は seconds からのカウントダウンを開始します。
// 最初の通知（seconds）は即座に行われ、以降 interval ごとに1ずつ減ります。
func Start(ctx context.Context, seconds int, interval time.Duration, onTick TickFunc) (*Countdown, error) {
	if seconds <= 0 {
		return nil, fmt.Errorf("countdown: seconds は正の整数である必要があります (got %d)", seconds)
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if onTick == nil {
		onTick = func(int) {}
	}

	runCtx, cancel := context.WithCancel(ctx)
	c := &Countdown{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.remaining.Store(int64(seconds))

	go c.run(runCtx, seconds, interval, onTick)
	return c, nil
}

func (c *Countdown) run(ctx context.Context, seconds int, interval time.Duration, onTick TickFunc) {
	defer close(c.done)
	defer c.cancel()

	if ctx.Err() != nil {
		c.setErr(ctx)
		return
	}
	onTick(seconds)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for remaining := seconds; remaining > 0; {
		select {
		case <-ctx.Done():
			c.setErr(ctx)
			return
		case <-ticker.C:
		}
		// ティックとキャンセルが同時に成立した場合はキャンセルを優先します。
		if ctx.Err() != nil {
			c.setErr(ctx)
			return
		}
		remaining--
		c.remaining.Store(int64(remaining))
		onTick(remaining)
	}
}

func (c *Countdown) setErr(ctx context.Context) {
	c.mu.Lock()
	c.err = fmt.Errorf("%w: %w", domain.ErrCountdownCancelled, context.Cause(ctx))
	c.mu.Unlock()
}

// Cancel はカウントダウンを中止します。完了後に呼んでも何もしません。
func (c *Countdown) Cancel() {
	c.cancel()
}

// Done はカウントダウンが終了（完了またはキャンセル）したときに閉じられます。
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

// Remaining は直近に通知した残りカウントです。
func (c *Countdown) Remaining() int {
	return int(c.remaining.Load())
}

// Err は終了後の結果を返します。0 到達なら nil、キャンセルなら domain.ErrCountdownCancelled を包んだエラーです。
// 終了前は nil を返すため、Done を待ってから呼び出してください。
func (c *Countdown) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Wait はカウントダウンの終了を待ちます。
// ctx が先に終わった場合は ctx のエラーを返し、カウントダウン自体は継続します。
func (c *Countdown) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
