// Package draw coordinates a drawing session: it gates draws against the
// ledger, runs selection, commits state and replicates draws to the server.
package draw

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/dailydeck/internal/catalog"
	"github.com/and161185/dailydeck/internal/identity"
	"github.com/and161185/dailydeck/internal/ledger"
	"github.com/and161185/dailydeck/internal/mirror"
	"github.com/and161185/dailydeck/internal/model"
	"github.com/and161185/dailydeck/internal/pick"
)

// Snapshot is the session state exposed to callers. It is consistent with
// the ledger immediately after every successful draw or settings change.
type Snapshot struct {
	CurrentCard             *model.Card
	LifelinesRemaining      int
	LifelineUniqueRemaining int
	HasDrawnToday           bool
	Settings                model.Settings
	CardsLoading            bool
}

// Orchestrator owns one session's draw state. All public methods are
// serialized; draws commit locally before the mirror call is even started.
type Orchestrator struct {
	mu       sync.Mutex
	led      *ledger.Ledger
	picker   *pick.Picker
	rec      mirror.Recorder
	log      *zap.Logger
	strat    pick.LifelineStrategy
	inFlight sync.WaitGroup

	daily    []model.Card
	lifeline []model.Card
	loaded   bool
	current  *model.Card
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder injects the remote mirror (default: discard).
func WithRecorder(rec mirror.Recorder) Option {
	return func(o *Orchestrator) { o.rec = rec }
}

// WithLogger injects the logger for mirror failures.
func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithLifelineStrategy selects the lifeline selection strategy.
func WithLifelineStrategy(s pick.LifelineStrategy) Option {
	return func(o *Orchestrator) { o.strat = s }
}

// WithPicker injects the picker (tests use a seeded one).
func WithPicker(p *pick.Picker) Option {
	return func(o *Orchestrator) { o.picker = p }
}

// New constructs an Orchestrator over the given ledger.
func New(led *ledger.Ledger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		led:    led,
		picker: pick.New(),
		rec:    mirror.Nop{},
		log:    zap.NewNop(),
		strat:  pick.LifelineStrict,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// LoadCatalogs fetches both pools and unblocks drawing. Until it has run,
// every draw is a silent no-op (the CardsLoading gate).
func (o *Orchestrator) LoadCatalogs(ctx context.Context, loader *catalog.Loader) {
	daily := loader.DailyCards(ctx)
	lifeline := loader.LifelineCards(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.daily = daily
	o.lifeline = lifeline
	o.loaded = true
	if card, ok := o.led.TodaysDraw(); ok {
		o.current = &card
	}
}

// SetCatalogs installs pools directly (tests and offline bundles).
func (o *Orchestrator) SetCatalogs(daily, lifeline []model.Card) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.daily = daily
	o.lifeline = lifeline
	o.loaded = true
	if card, ok := o.led.TodaysDraw(); ok {
		o.current = &card
	}
}

// Snapshot returns the current session state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	_, drawn := o.led.TodaysDraw()
	return Snapshot{
		CurrentCard:             o.current,
		LifelinesRemaining:      o.led.LifelinesRemaining(),
		LifelineUniqueRemaining: o.led.UniqueLifelinesRemaining(o.lifeline),
		HasDrawnToday:           drawn,
		Settings:                o.led.Settings(),
		CardsLoading:            !o.loaded,
	}
}

// DrawDaily draws today's card. It returns (nil, false) without side effects
// when today's card was already drawn or the catalog is not ready; otherwise
// it commits the draw and reports whether the deck was reset to serve it.
func (o *Orchestrator) DrawDaily() (*model.Card, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.loaded || len(o.daily) == 0 {
		return nil, false
	}
	if _, ok := o.led.TodaysDraw(); ok {
		return nil, false
	}

	res := o.picker.Smart(o.led, o.daily)
	o.led.SetTodaysDraw(res.Card)
	o.led.MarkCardDrawn(res.Card)
	o.led.SetLastDrawnCategory(res.Card.Category)
	card := res.Card
	o.current = &card

	o.replicate(model.CardTypeDaily, card)
	return &card, res.DeckReset
}

// UseLifeline draws a bonus card, consuming one unit of this month's quota.
// It returns nil when the quota or the unique pool is exhausted, or when the
// catalog is not ready.
func (o *Orchestrator) UseLifeline() *model.Card {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.loaded || len(o.lifeline) == 0 {
		return nil
	}
	if o.led.LifelinesRemaining() <= 0 {
		return nil
	}

	card, ok := o.picker.Lifeline(o.led, o.lifeline, o.strat)
	if !ok {
		return nil
	}
	o.led.ConsumeLifeline()
	o.led.MarkLifelineDrawn(card)
	o.current = &card

	o.replicate(model.CardTypeLifeline, card)
	return &card
}

// ClearCurrentCard resets the visible card without touching ledger history.
func (o *Orchestrator) ClearCurrentCard() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = nil
}

// UpdateSetting flips one toggle and returns the full updated map.
func (o *Orchestrator) UpdateSetting(key string, value bool) model.Settings {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.led.UpdateSetting(key, value)
}

// replicate fires the mirror call on a detached goroutine. The draw has
// already committed locally; a failed or slow mirror is logged and dropped.
func (o *Orchestrator) replicate(cardType model.CardType, card model.Card) {
	o.inFlight.Add(1)
	go func() {
		defer o.inFlight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := o.rec.Record(ctx, cardType, identity.Of(card), card); err != nil {
			o.log.Warn("mirror draw", zap.String("type", string(cardType)), zap.Error(err))
		}
	}()
}

// Flush waits for in-flight mirror replication; called before process exit.
func (o *Orchestrator) Flush() {
	o.inFlight.Wait()
}
