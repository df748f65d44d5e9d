// Package pick implements card selection: a tiered fallback cascade that
// favors variety for daily draws, and two alternative strategies for the
// rationed lifeline pool.
package pick

import (
	"math/rand/v2"
	"time"

	"github.com/and161185/dailydeck/internal/model"
)

// DailyState is the slice of ledger state the daily cascade consults.
type DailyState interface {
	// IsCardDrawn reports whether the card is in the drawn history.
	IsCardDrawn(card model.Card) bool
	// ResetDrawnHistory clears the drawn history (deck reset).
	ResetDrawnHistory()
	// LastDrawnCategory returns the category of the most recent draw.
	LastDrawnCategory() (string, bool)
}

// LifelineState is the month-scoped lifeline slice of the ledger.
type LifelineState interface {
	// IsLifelineDrawn reports whether the card was drawn as a lifeline this month.
	IsLifelineDrawn(card model.Card) bool
	// ResetLifelineDrawn clears this month's lifeline set.
	ResetLifelineDrawn()
}

// LifelineStrategy selects between the two observed lifeline behaviors.
// They encode different product intents and are never mixed.
type LifelineStrategy string

const (
	// LifelineStrict draws only from the undrawn-this-month pool and stops
	// hard when it is empty: lifelines are a rationed resource.
	LifelineStrict LifelineStrategy = "strict"
	// LifelineCascade applies the daily-style cascade to the month set,
	// resetting it on exhaustion: infinite variety over rationing.
	LifelineCascade LifelineStrategy = "cascade"
)

// Result is one daily selection outcome.
type Result struct {
	Card model.Card
	// DeckReset is true when the full catalog had been drawn and the
	// history was cleared to make this pick possible.
	DeckReset bool
}

// Picker selects cards pseudo-randomly. The randomness is for variety, not
// security; picks are uniform over the candidate list.
type Picker struct {
	rng *rand.Rand
}

// Option configures a Picker.
type Option func(*Picker)

// WithRand injects a deterministic random source for tests.
func WithRand(rng *rand.Rand) Option {
	return func(p *Picker) { p.rng = rng }
}

// New constructs a Picker seeded from the wall clock.
func New(opts ...Option) *Picker {
	now := uint64(time.Now().UnixNano())
	p := &Picker{rng: rand.New(rand.NewPCG(now, now>>1))}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Picker) oneOf(cards []model.Card) model.Card {
	return cards[p.rng.IntN(len(cards))]
}

// Smart picks one daily card via the fallback cascade. The catalog must be
// non-empty; callers gate on that before drawing.
//
// Tier 1: undrawn cards outside the last drawn category.
// Tier 2: undrawn cards, category constraint relaxed.
// Tier 3: everything has been drawn; clear the history, then re-apply the
// category constraint against the full catalog (or the whole catalog when
// only one category exists).
func (p *Picker) Smart(state DailyState, catalog []model.Card) Result {
	lastCat, hasCat := state.LastDrawnCategory()

	var tier1, tier2 []model.Card
	for _, card := range catalog {
		if state.IsCardDrawn(card) {
			continue
		}
		tier2 = append(tier2, card)
		if !hasCat || card.Category != lastCat {
			tier1 = append(tier1, card)
		}
	}

	if len(tier1) > 0 {
		return Result{Card: p.oneOf(tier1)}
	}
	if len(tier2) > 0 {
		return Result{Card: p.oneOf(tier2)}
	}

	// Deck exhausted: reshuffle instead of failing.
	state.ResetDrawnHistory()
	var fresh []model.Card
	if hasCat {
		for _, card := range catalog {
			if card.Category != lastCat {
				fresh = append(fresh, card)
			}
		}
	}
	if len(fresh) == 0 {
		// single-category catalog: category exclusion would exclude everything
		fresh = catalog
	}
	return Result{Card: p.oneOf(fresh), DeckReset: true}
}

// Lifeline picks one lifeline card under the given strategy.
// Under LifelineStrict an exhausted month pool returns ok=false and the
// caller surfaces the exhausted state; under LifelineCascade the month set
// resets and a card is always returned for a non-empty catalog.
func (p *Picker) Lifeline(state LifelineState, catalog []model.Card, strategy LifelineStrategy) (model.Card, bool) {
	if len(catalog) == 0 {
		return model.Card{}, false
	}

	var undrawn []model.Card
	for _, card := range catalog {
		if !state.IsLifelineDrawn(card) {
			undrawn = append(undrawn, card)
		}
	}

	if len(undrawn) > 0 {
		return p.oneOf(undrawn), true
	}

	if strategy != LifelineCascade {
		return model.Card{}, false
	}
	state.ResetLifelineDrawn()
	return p.oneOf(catalog), true
}
