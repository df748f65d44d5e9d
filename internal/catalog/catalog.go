// Package catalog fetches the daily and lifeline card pools from the API.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/dailydeck/internal/model"
)

// cardsResponse is the wire shape of both catalog endpoints.
type cardsResponse struct {
	Cards []model.Card `json:"cards"`
}

// Loader fetches card pools over HTTP. Every failure mode yields an empty
// pool: the draw core treats an empty catalog as "not ready to draw", so the
// loader never returns an error.
type Loader struct {
	base string
	hc   *http.Client
	log  *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient overrides the HTTP client (tests use httptest servers).
func WithHTTPClient(hc *http.Client) Option {
	return func(l *Loader) { l.hc = hc }
}

// WithLogger injects the logger for fetch failures.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// New constructs a Loader for the given server base URL (no trailing slash).
func New(base string, opts ...Option) *Loader {
	l := &Loader{
		base: base,
		hc:   &http.Client{Timeout: 15 * time.Second},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DailyCards returns the daily pool, or an empty slice on any failure.
func (l *Loader) DailyCards(ctx context.Context) []model.Card {
	return l.fetch(ctx, "/api/cards")
}

// LifelineCards returns the lifeline pool, or an empty slice on any failure.
func (l *Loader) LifelineCards(ctx context.Context) []model.Card {
	return l.fetch(ctx, "/api/cards/lifelines")
}

func (l *Loader) fetch(ctx context.Context, path string) []model.Card {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.base+path, nil)
	if err != nil {
		l.log.Warn("catalog: build request", zap.String("path", path), zap.Error(err))
		return nil
	}
	resp, err := l.hc.Do(req)
	if err != nil {
		l.log.Warn("catalog: fetch", zap.String("path", path), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		l.log.Warn("catalog: fetch", zap.String("path", path),
			zap.Error(fmt.Errorf("unexpected status %d", resp.StatusCode)))
		return nil
	}

	var out cardsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		l.log.Warn("catalog: decode", zap.String("path", path), zap.Error(err))
		return nil
	}
	return out.Cards
}
