// Package ledger is the durable client-side record of draw state: today's
// draw, the monthly lifeline quota, drawn-card history and preference flags.
//
// All date and month scoping happens at read time by comparing against the
// injected clock; nothing is ever cleaned up in the background. Any value
// that fails to decode is treated as absent and replaced by defaults, so no
// ledger operation returns an error to the caller.
package ledger

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/dailydeck/internal/identity"
	"github.com/and161185/dailydeck/internal/model"
)

// Storage keys. The layout of each value is documented in internal/model.
const (
	keyDailyDraw     = "daily_draw"
	keyLifelines     = "lifelines"
	keySettings      = "settings"
	keyDrawnCards    = "drawn_cards"
	keyLastCategory  = "last_drawn_category"
	keyLifelineDrawn = "lifeline_drawn"
)

// Ledger exposes typed accessors over the KV port.
// A single session owns its ledger; methods are not safe for concurrent use
// (the orchestrator serializes access).
type Ledger struct {
	kv  KV
	log *zap.Logger
	now func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock injects the time source (tests use a fixed clock).
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger injects the logger used for persist failures.
func WithLogger(log *zap.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// New constructs a Ledger over the given KV store.
func New(kv KV, opts ...Option) *Ledger {
	l := &Ledger{kv: kv, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) today() string { return l.now().Format("2006-01-02") }
func (l *Ledger) month() string { return l.now().Format("2006-01") }

// get decodes the value under key into out, reporting false when the key is
// absent or the stored value is corrupt.
func (l *Ledger) get(key string, out any) bool {
	raw, ok := l.kv.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		l.log.Warn("ledger: corrupt value, treating as absent", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// set persists v under key, best-effort.
func (l *Ledger) set(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		l.log.Warn("ledger: marshal", zap.String("key", key), zap.Error(err))
		return
	}
	if err := l.kv.Set(key, string(raw)); err != nil {
		l.log.Warn("ledger: persist", zap.String("key", key), zap.Error(err))
	}
}

// --- daily draw ---

// TodaysDraw returns the stored daily card iff it was drawn today.
func (l *Ledger) TodaysDraw() (model.Card, bool) {
	var d model.DailyDraw
	if !l.get(keyDailyDraw, &d) || d.Date != l.today() {
		return model.Card{}, false
	}
	return d.Card, true
}

// SetTodaysDraw overwrites the daily-draw record with today's date.
func (l *Ledger) SetTodaysDraw(card model.Card) {
	l.set(keyDailyDraw, model.DailyDraw{Date: l.today(), Card: card})
}

// --- lifeline quota ---

// LifelinesRemaining returns the remaining quota for the current month.
// A record from an earlier month reads as the full allowance; storage is not
// rewritten until the first ConsumeLifeline that month.
func (l *Ledger) LifelinesRemaining() int {
	var q model.LifelineQuota
	if !l.get(keyLifelines, &q) || q.Month != l.month() {
		return model.LifelineAllowance
	}
	if q.Count < 0 {
		return 0
	}
	return q.Count
}

// ConsumeLifeline decrements the quota and returns the new remaining count.
// At zero it is a no-op returning zero.
func (l *Ledger) ConsumeLifeline() int {
	remaining := l.LifelinesRemaining()
	if remaining <= 0 {
		return 0
	}
	remaining--
	l.set(keyLifelines, model.LifelineQuota{Count: remaining, Month: l.month()})
	return remaining
}

// --- daily drawn history ---

func (l *Ledger) drawnSet() map[string]bool {
	var h model.DrawnHistory
	l.get(keyDrawnCards, &h)
	set := make(map[string]bool, len(h.Cards))
	for _, fp := range h.Cards {
		set[fp] = true
	}
	return set
}

// IsCardDrawn reports whether the card's fingerprint is in the drawn history.
func (l *Ledger) IsCardDrawn(card model.Card) bool {
	return l.drawnSet()[identity.Of(card)]
}

// MarkCardDrawn inserts the card's fingerprint; re-adding is a no-op.
func (l *Ledger) MarkCardDrawn(card model.Card) {
	fp := identity.Of(card)
	var h model.DrawnHistory
	l.get(keyDrawnCards, &h)
	for _, existing := range h.Cards {
		if existing == fp {
			return
		}
	}
	h.Cards = append(h.Cards, fp)
	l.set(keyDrawnCards, h)
}

// DrawnCount returns the size of the drawn history.
func (l *Ledger) DrawnCount() int {
	var h model.DrawnHistory
	l.get(keyDrawnCards, &h)
	return len(h.Cards)
}

// ResetDrawnHistory clears the drawn history entirely (deck reset).
func (l *Ledger) ResetDrawnHistory() {
	if err := l.kv.Remove(keyDrawnCards); err != nil {
		l.log.Warn("ledger: reset history", zap.Error(err))
	}
}

// --- last drawn category ---

// LastDrawnCategory returns the category of the most recent draw, if any.
func (l *Ledger) LastDrawnCategory() (string, bool) {
	var m model.CategoryMark
	if !l.get(keyLastCategory, &m) || m.Category == "" {
		return "", false
	}
	return m.Category, true
}

// SetLastDrawnCategory records the category of the draw that just happened.
func (l *Ledger) SetLastDrawnCategory(category string) {
	l.set(keyLastCategory, model.CategoryMark{Category: category, TS: l.now().UnixMilli()})
}

// --- lifeline drawn history (month-scoped) ---

func (l *Ledger) lifelineDrawn() model.LifelineDrawn {
	var d model.LifelineDrawn
	if !l.get(keyLifelineDrawn, &d) || d.Month != l.month() {
		// A record from an earlier month is ignored, mirroring the quota.
		return model.LifelineDrawn{Month: l.month()}
	}
	return d
}

// IsLifelineDrawn reports whether the card was drawn as a lifeline this month.
func (l *Ledger) IsLifelineDrawn(card model.Card) bool {
	fp := identity.Of(card)
	for _, existing := range l.lifelineDrawn().Cards {
		if existing == fp {
			return true
		}
	}
	return false
}

// MarkLifelineDrawn inserts the card into this month's lifeline set.
func (l *Ledger) MarkLifelineDrawn(card model.Card) {
	d := l.lifelineDrawn()
	fp := identity.Of(card)
	for _, existing := range d.Cards {
		if existing == fp {
			return
		}
	}
	d.Cards = append(d.Cards, fp)
	l.set(keyLifelineDrawn, d)
}

// ResetLifelineDrawn clears this month's lifeline set (cascade strategy reset).
func (l *Ledger) ResetLifelineDrawn() {
	if err := l.kv.Remove(keyLifelineDrawn); err != nil {
		l.log.Warn("ledger: reset lifeline history", zap.Error(err))
	}
}

// UndrawnLifelines returns the catalog cards not yet drawn as lifelines this month.
func (l *Ledger) UndrawnLifelines(catalog []model.Card) []model.Card {
	drawn := l.lifelineDrawn()
	set := make(map[string]bool, len(drawn.Cards))
	for _, fp := range drawn.Cards {
		set[fp] = true
	}
	var out []model.Card
	for _, card := range catalog {
		if !set[identity.Of(card)] {
			out = append(out, card)
		}
	}
	return out
}

// UniqueLifelinesRemaining returns how many distinct lifeline cards are still
// available this month.
func (l *Ledger) UniqueLifelinesRemaining(catalog []model.Card) int {
	return len(l.UndrawnLifelines(catalog))
}

// --- settings ---

// Settings returns the stored toggles merged over the defaults, so toggles
// added in later releases pick up their default without a migration.
func (l *Ledger) Settings() model.Settings {
	defaults := model.DefaultSettings()
	var stored model.Settings
	if !l.get(keySettings, &stored) {
		return defaults
	}
	for k, v := range stored {
		defaults[k] = v
	}
	return defaults
}

// UpdateSetting sets one toggle and returns the full updated map.
func (l *Ledger) UpdateSetting(key string, value bool) model.Settings {
	s := l.Settings()
	s[key] = value
	l.set(keySettings, s)
	return s
}
