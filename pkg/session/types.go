package session

import (
	"context"

	"github.com/shouni/go-photobooth-kit/pkg/domain"
	"github.com/shouni/go-photobooth-kit/pkg/filter"
	"github.com/shouni/go-photobooth-kit/pkg/pipeline"
)

// State は撮影済み枚数から決まるセッションの状態です。
type State int

const (
	// Empty は写真が1枚もない状態です。
	Empty State = iota
	// Partial は 0 < 枚数 < MaxPhotos の状態です。
	Partial
	// Full は MaxPhotos 枚そろった状態で、合成の対象になります。
	Full
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Partial:
		return "partial"
	case Full:
		return "full"
	default:
		return "unknown"
	}
}

func stateOf(count, maxPhotos int) State {
	switch {
	case count == 0:
		return Empty
	case count < maxPhotos:
		return Partial
	default:
		return Full
	}
}

// Composer は写真とテンプレートから合成画像を作ります。pipeline.Pipeline が実装します。
type Composer interface {
	Compose(ctx context.Context, req pipeline.Request) ([]byte, error)
}

// Composite は確定した合成画像と、それを作った入力の情報です。
type Composite struct {
	Data          []byte
	Generation    uint64
	LayoutID      string
	TemplateIndex int
	TemplateName  string
	Filter        filter.Mode
}

// clone は Data も含めたコピーを返します。
func (c *Composite) clone() *Composite {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Data = append([]byte(nil), c.Data...)
	return &cp
}

// Snapshot はある時点のセッション状態のコピーです。
type Snapshot struct {
	State              State
	Photos             []domain.CapturedPhoto
	MaxPhotos          int
	LayoutID           string
	TemplateIndex      int
	Filter             filter.Mode
	Composite          *Composite
	CountdownRemaining *int
	Generation         uint64
	LastError          error
}

// Observer はセッションの非同期な変化を受け取ります。
// コールバックはロックの外から、任意のゴルーチンで呼ばれます。
// CompositeChanged は同時には呼ばれず、最後に届く値は常にセッションの現在の合成画像です。
// 短い間に続いた変化は最新の1回にまとめられることがあります。
type Observer interface {
	// CountdownTick はカウントダウンの残りが変わるたびに呼ばれます。
	CountdownTick(remaining int)
	// CompositeChanged は合成画像が確定またはクリアされたときに呼ばれます。クリア時は nil です。
	CompositeChanged(c *Composite)
	// RecomputeFailed は再合成の失敗を吸収したときに呼ばれます。
	RecomputeFailed(err error)
}

// Hooks は必要なコールバックだけを設定できる Observer です。
type Hooks struct {
	OnCountdownTick    func(remaining int)
	OnCompositeChanged func(c *Composite)
	OnRecomputeFailed  func(err error)
}

func (h Hooks) CountdownTick(remaining int) {
	if h.OnCountdownTick != nil {
		h.OnCountdownTick(remaining)
	}
}

func (h Hooks) CompositeChanged(c *Composite) {
	if h.OnCompositeChanged != nil {
		h.OnCompositeChanged(c)
	}
}

func (h Hooks) RecomputeFailed(err error) {
	if h.OnRecomputeFailed != nil {
		h.OnRecomputeFailed(err)
	}
}
