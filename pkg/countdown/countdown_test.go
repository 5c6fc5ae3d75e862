package countdown

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shouni/go-photobooth-kit/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	ticks []int
}

func (r *recorder) tick(n int) {
	r.mu.Lock()
	r.ticks = append(r.ticks, n)
	r.mu.Unlock()
}

func (r *recorder) values() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.ticks...)
}

func TestStart_EmitsAndResolves(t *testing.T) {
	rec := &recorder{}
	c, err := Start(context.Background(), 3, time.Millisecond, rec.tick)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, c.Wait(ctx))
	assert.Equal(t, []int{3, 2, 1, 0}, rec.values())
	assert.Equal(t, 0, c.Remaining())
}

func TestStart_CancelAfterTwo(t *testing.T) {
	rec := &recorder{}
	var c *Countdown
	ready := make(chan struct{})

	c, err := Start(context.Background(), 3, time.Millisecond, func(n int) {
		<-ready
		rec.tick(n)
		if n == 2 {
			c.Cancel()
		}
	})
	require.NoError(t, err)
	close(ready)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = c.Wait(ctx)
	assert.True(t, errors.Is(err, domain.ErrCountdownCancelled), "キャンセルされたら決して成功しないこと: %v", err)
	assert.Equal(t, []int{3, 2}, rec.values())

	// 遅れてティックが来ても通知されないこと
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, []int{3, 2}, rec.values())
}

func TestStart_ParentContextCancelled(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	c, err := Start(parent, 5, time.Hour, nil)
	require.NoError(t, err)

	cancelParent()
	<-c.Done()
	assert.ErrorIs(t, c.Err(), domain.ErrCountdownCancelled)
}

func TestStart_InvalidSeconds(t *testing.T) {
	for _, s := range []int{0, -1} {
		_, err := Start(context.Background(), s, time.Millisecond, nil)
		assert.Error(t, err)
	}
}

func TestWait_ContextExpires(t *testing.T) {
	c, err := Start(context.Background(), 2, time.Hour, nil)
	require.NoError(t, err)
	defer c.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, c.Wait(ctx), context.DeadlineExceeded)
	select {
	case <-c.Done():
		t.Fatal("Wait の ctx 切れでカウントダウンが終わってはいけないのだ")
	default:
	}
}
