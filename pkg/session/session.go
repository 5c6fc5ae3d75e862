package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shouni/go-photobooth-kit/pkg/countdown"
	"github.com/shouni/go-photobooth-kit/pkg/device"
	"github.com/shouni/go-photobooth-kit/pkg/domain"
	"github.com/shouni/go-photobooth-kit/pkg/filter"
	"github.com/shouni/go-photobooth-kit/pkg/layout"
	"github.com/shouni/go-photobooth-kit/pkg/pipeline"
)

// DefaultCountdownSeconds は撮影前カウントダウンの既定秒数です。
const DefaultCountdownSeconds = 3

// Session は1人分の撮影セッションです。
//
// 撮影済みの写真、レイアウト・テンプレート・フィルターの選択状態を持ち、
// 写真がそろっているときに合成画像を再計算します。再計算は世代番号で管理され、
// 最後に要求された再計算の結果だけが確定します（完了順ではありません）。
type Session struct {
	catalog  *layout.Catalog
	composer Composer
	logger   *slog.Logger
	observer Observer

	countdownSeconds int
	tickInterval     time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu                 sync.Mutex
	closed             bool
	layout             layout.Layout
	templateIndex      int
	filter             filter.Mode
	photos             []domain.CapturedPhoto
	composite          *Composite
	lastErr            error
	generation         uint64
	renderCancel       context.CancelFunc
	countdown          *countdown.Countdown
	countdownRemaining *int
	// epoch はリセット・レイアウト変更・終了のたびに進み、保留中の撮影を無効にします。
	epoch uint64
	// compositeSeq は composite が確定またはクリアされるたびに進みます。
	compositeSeq uint64

	// 以下は CompositeChanged の配信状態です。s.mu ではなく notifyMu で守られます。
	notifyMu     sync.Mutex
	delivering   bool
	pending      bool
	deliveredSeq uint64
}

// Option は Session の設定を変更します。
type Option func(*sessionOptions)

type sessionOptions struct {
	layoutID         string
	filter           filter.Mode
	logger           *slog.Logger
	observer         Observer
	countdownSeconds int
	tickInterval     time.Duration
}

// WithLayout は初期レイアウトを指定します。既定はカタログの先頭です。
func WithLayout(id string) Option {
	return func(o *sessionOptions) { o.layoutID = id }
}

// WithFilter は初期フィルターを指定します。
func WithFilter(m filter.Mode) Option {
	return func(o *sessionOptions) { o.filter = m }
}

// WithLogger はログ出力先を指定します。
func WithLogger(l *slog.Logger) Option {
	return func(o *sessionOptions) { o.logger = l }
}

// WithObserver は非同期な変化の通知先を指定します。
func WithObserver(obs Observer) Option {
	return func(o *sessionOptions) { o.observer = obs }
}

// WithCountdown は CaptureWithCountdown のカウント数と間隔を指定します。
func WithCountdown(seconds int, interval time.Duration) Option {
	return func(o *sessionOptions) {
		o.countdownSeconds = seconds
		o.tickInterval = interval
	}
}

// New は空の状態のセッションを生成します。
func New(catalog *layout.Catalog, composer Composer, opts ...Option) (*Session, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog は必須です")
	}
	if composer == nil {
		return nil, fmt.Errorf("composer は必須です")
	}

	o := sessionOptions{
		filter:           filter.Normal,
		logger:           slog.Default(),
		observer:         Hooks{},
		countdownSeconds: DefaultCountdownSeconds,
		tickInterval:     countdown.DefaultInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.layoutID == "" {
		ids := catalog.IDs()
		if len(ids) == 0 {
			return nil, fmt.Errorf("%w: catalog is empty", domain.ErrUnknownLayout)
		}
		o.layoutID = ids[0]
	}
	l, err := catalog.Layout(o.layoutID)
	if err != nil {
		return nil, err
	}
	if !o.filter.IsValid() {
		return nil, fmt.Errorf("unknown filter mode %q", o.filter)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		catalog:          catalog,
		composer:         composer,
		logger:           o.logger,
		observer:         o.observer,
		countdownSeconds: o.countdownSeconds,
		tickInterval:     o.tickInterval,
		ctx:              ctx,
		cancel:           cancel,
		layout:           l,
		filter:           o.filter,
	}, nil
}

// Capture は写真を1枚追加します。
// すでに MaxPhotos 枚ある場合は domain.ErrCaptureLimitExceeded を返し、状態は変わりません。
func (s *Session) Capture(photo []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	notify, err := s.captureLocked(photo)
	s.mu.Unlock()
	notify()
	return err
}

// CaptureWithCountdown はカウントダウンの後に cam から1フレーム撮影して追加します。
//
// カウントダウン中の重複要求は domain.ErrCountdownActive で拒否します。
// 待機中に Reset・ChangeLayout・Close が呼ばれた場合は撮影せずに domain.ErrCountdownCancelled を返します。
func (s *Session) CaptureWithCountdown(ctx context.Context, cam device.Camera) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if s.countdown != nil {
		s.mu.Unlock()
		return domain.ErrCountdownActive
	}
	if len(s.photos) >= s.layout.MaxPhotos {
		s.mu.Unlock()
		return s.limitError()
	}

	epoch := s.epoch
	cd, err := countdown.Start(s.ctx, s.countdownSeconds, s.tickInterval, func(remaining int) {
		s.mu.Lock()
		current := s.epoch == epoch
		if current {
			r := remaining
			s.countdownRemaining = &r
		}
		s.mu.Unlock()
		if current {
			s.observer.CountdownTick(remaining)
		}
	})
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.countdown = cd
	s.mu.Unlock()

	waitErr := cd.Wait(ctx)
	if waitErr != nil && !errors.Is(waitErr, domain.ErrCountdownCancelled) {
		// 呼び出し側の ctx が先に終わった
		cd.Cancel()
	}

	s.mu.Lock()
	if s.countdown == cd {
		s.countdown = nil
		s.countdownRemaining = nil
	}
	stale := s.epoch != epoch
	s.mu.Unlock()

	if waitErr != nil {
		return waitErr
	}
	if stale {
		return domain.ErrCountdownCancelled
	}

	frame, err := cam.CaptureFrame(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrDeviceUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrDeviceUnavailable, err)
		}
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if s.epoch != epoch {
		s.mu.Unlock()
		return domain.ErrCountdownCancelled
	}
	notify, err := s.captureLocked(frame)
	s.mu.Unlock()
	notify()
	return err
}

// Delete は index 番目の写真を削除し、残りの撮影順を振り直します。範囲外の index は何もしません。
func (s *Session) Delete(index int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if index < 0 || index >= len(s.photos) {
		s.mu.Unlock()
		return nil
	}

	remaining := make([]domain.CapturedPhoto, 0, len(s.photos)-1)
	remaining = append(remaining, s.photos[:index]...)
	remaining = append(remaining, s.photos[index+1:]...)
	s.photos = domain.Reindex(remaining)
	s.logger.Debug("photo deleted", "index", index, "count", len(s.photos), "state", s.stateLocked().String())

	notify := s.recomputeLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// ChangeLayout はレイアウトを切り替えます。写真と合成画像は常に破棄され、テンプレートは 0 番に戻ります。
func (s *Session) ChangeLayout(id string) error {
	l, err := s.catalog.Layout(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	s.epoch++
	s.cancelCountdownLocked()
	s.invalidateLocked()
	s.photos = nil
	s.layout = l
	s.templateIndex = 0
	s.lastErr = nil
	notify := s.clearCompositeLocked()
	s.logger.Debug("layout changed", "layout", id, "maxPhotos", l.MaxPhotos)
	s.mu.Unlock()
	notify()
	return nil
}

// ChangeTemplate は現在のレイアウト内のテンプレートを切り替えます。写真がそろっていれば再合成します。
func (s *Session) ChangeTemplate(index int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if _, err := s.catalog.Template(s.layout.ID, index); err != nil {
		s.mu.Unlock()
		return err
	}
	s.templateIndex = index
	s.logger.Debug("template changed", "layout", s.layout.ID, "template", index)

	notify := func() {}
	if s.stateLocked() == Full {
		notify = s.recomputeLocked()
	}
	s.mu.Unlock()
	notify()
	return nil
}

// ChangeFilter はフィルターを切り替えます。写真がそろっていれば再合成します。
func (s *Session) ChangeFilter(m filter.Mode) error {
	if !m.IsValid() {
		return fmt.Errorf("unknown filter mode %q", m)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	s.filter = m
	s.logger.Debug("filter changed", "filter", m.String())

	notify := func() {}
	if s.stateLocked() == Full {
		notify = s.recomputeLocked()
	}
	s.mu.Unlock()
	notify()
	return nil
}

// Reset は写真と合成画像を破棄し、保留中のカウントダウンと再合成を取り消します。
func (s *Session) Reset() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	s.epoch++
	s.cancelCountdownLocked()
	s.invalidateLocked()
	s.photos = nil
	s.lastErr = nil
	notify := s.clearCompositeLocked()
	s.logger.Debug("session reset", "layout", s.layout.ID)
	s.mu.Unlock()
	notify()
	return nil
}

// Recompute は現在の入力で合成画像を再計算します。
// 写真がそろっていなければ合成画像をクリアするだけで、非同期処理は開始しません。
func (s *Session) Recompute() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	notify := s.recomputeLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// Wait は実行中の再合成がすべて終わるまで待ちます。
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close はカウントダウンと再合成を取り消し、バックグラウンド処理の終了を待ちます。
// 以降の操作は domain.ErrSessionClosed を返します。
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.epoch++
	s.cancelCountdownLocked()
	s.invalidateLocked()
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.logger.Debug("session closed")
	return nil
}

// State は現在の状態を返します。
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Composite は確定済みの合成画像のコピーを返します。なければ nil です。
func (s *Session) Composite() *Composite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composite.clone()
}

// Snapshot は現在の状態のコピーを返します。
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:         s.stateLocked(),
		Photos:        append([]domain.CapturedPhoto(nil), s.photos...),
		MaxPhotos:     s.layout.MaxPhotos,
		LayoutID:      s.layout.ID,
		TemplateIndex: s.templateIndex,
		Filter:        s.filter,
		Composite:     s.composite.clone(),
		Generation:    s.generation,
		LastError:     s.lastErr,
	}
	if s.countdownRemaining != nil {
		r := *s.countdownRemaining
		snap.CountdownRemaining = &r
	}
	return snap
}

func (s *Session) stateLocked() State {
	return stateOf(len(s.photos), s.layout.MaxPhotos)
}

func (s *Session) limitError() error {
	return fmt.Errorf("%w: 最大 %d 枚です。削除してから撮影してください", domain.ErrCaptureLimitExceeded, s.layout.MaxPhotos)
}

func (s *Session) captureLocked(photo []byte) (func(), error) {
	if len(s.photos) >= s.layout.MaxPhotos {
		return func() {}, s.limitError()
	}
	s.photos = append(s.photos, domain.CapturedPhoto{
		SourceData:   append([]byte(nil), photo...),
		CaptureIndex: len(s.photos),
	})
	s.logger.Debug("photo captured", "index", len(s.photos)-1, "state", s.stateLocked().String())
	return s.recomputeLocked(), nil
}

// recomputeLocked は再合成を開始し、ロック解放後に呼ぶべき通知を返します。
func (s *Session) recomputeLocked() func() {
	if s.stateLocked() != Full {
		s.invalidateLocked()
		return s.clearCompositeLocked()
	}

	if s.renderCancel != nil {
		s.renderCancel()
	}
	s.generation++
	g := s.generation
	ctx, cancel := context.WithCancel(s.ctx)
	s.renderCancel = cancel

	tmpl := s.layout.Templates[s.templateIndex]
	photos := make([]domain.Source, len(s.photos))
	for i, p := range s.photos {
		photos[i] = p.Source()
	}
	req := pipeline.Request{
		Photos:     photos,
		Template:   tmpl,
		CanvasSize: s.layout.CanvasSize,
		Filter:     s.filter,
	}
	meta := Composite{
		Generation:    g,
		LayoutID:      s.layout.ID,
		TemplateIndex: s.templateIndex,
		TemplateName:  tmpl.Name,
		Filter:        s.filter,
	}

	s.logger.Debug("recompute started", "generation", g, "template", tmpl.Name, "filter", s.filter.String())
	s.wg.Add(1)
	go s.render(ctx, req, meta)
	return func() {}
}

func (s *Session) render(ctx context.Context, req pipeline.Request, meta Composite) {
	defer s.wg.Done()

	data, err := s.composer.Compose(ctx, req)

	s.mu.Lock()
	if s.closed || meta.Generation != s.generation {
		latest := s.generation
		s.mu.Unlock()
		s.logger.Debug("stale composite discarded", "generation", meta.Generation, "latest", latest)
		return
	}
	s.renderCancel()
	s.renderCancel = nil

	if err != nil {
		// 古い合成画像を残さない
		s.lastErr = err
		notify := s.clearCompositeLocked()
		s.mu.Unlock()

		s.logger.Warn("recompute failed", "generation", meta.Generation, "error", err)
		s.observer.RecomputeFailed(err)
		notify()
		return
	}

	c := meta
	c.Data = data
	s.composite = &c
	s.compositeSeq++
	s.lastErr = nil
	s.mu.Unlock()

	s.logger.Info("composite committed",
		"generation", c.Generation, "template", c.TemplateName, "filter", c.Filter.String(), "bytes", len(data))
	s.notifyComposite()
}

// invalidateLocked は実行中の再合成を取り消し、その結果が確定しないようにします。
func (s *Session) invalidateLocked() {
	if s.renderCancel == nil {
		return
	}
	s.renderCancel()
	s.renderCancel = nil
	s.generation++
}

func (s *Session) clearCompositeLocked() func() {
	if s.composite == nil {
		return func() {}
	}
	s.composite = nil
	s.compositeSeq++
	return s.notifyComposite
}

// notifyComposite は配信時点の composite を observer に渡します。
//
// 配信は同時に1つのゴルーチンだけが行い、配信中に起きた変化はそのゴルーチンが続けて配信します。
// 渡すのは常に最新の composite なので、確定の通知がその後のクリアの通知を追い越して
// 古い合成画像が observer に残ることはありません。observer からセッションを操作しても構いません。
func (s *Session) notifyComposite() {
	s.notifyMu.Lock()
	if s.delivering {
		s.pending = true
		s.notifyMu.Unlock()
		return
	}
	s.delivering = true
	s.notifyMu.Unlock()

	for {
		s.mu.Lock()
		seq := s.compositeSeq
		c := s.composite.clone()
		s.mu.Unlock()

		if seq != s.deliveredSeq {
			s.deliveredSeq = seq
			s.observer.CompositeChanged(c)
		}

		s.notifyMu.Lock()
		if !s.pending {
			s.delivering = false
			s.notifyMu.Unlock()
			return
		}
		s.pending = false
		s.notifyMu.Unlock()
	}
}

func (s *Session) cancelCountdownLocked() {
	if s.countdown == nil {
		return
	}
	s.countdown.Cancel()
	s.countdown = nil
	s.countdownRemaining = nil
}
