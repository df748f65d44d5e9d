// Package mirror replicates successful local draws to the server-side history.
//
// Mirroring is best-effort by contract: the local ledger stays the source of
// truth for gating, and a mirror failure never rolls back or delays a draw.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/and161185/dailydeck/internal/model"
)

// Recorder accepts one draw record. Implementations must be safe to call
// from a detached goroutine after the draw has already been returned.
type Recorder interface {
	Record(ctx context.Context, cardType model.CardType, cardID string, card model.Card) error
}

// Nop discards records; used for anonymous sessions.
type Nop struct{}

func (Nop) Record(context.Context, model.CardType, string, model.Card) error { return nil }

// recordRequest is the wire shape of POST /api/drawn-cards.
type recordRequest struct {
	CardType model.CardType `json:"cardType"`
	CardID   string         `json:"cardId"`
	CardData model.Card     `json:"cardData"`
}

// HTTP posts draw records to the server with a bearer token.
type HTTP struct {
	base  string
	token string
	hc    *http.Client
}

// NewHTTP constructs an HTTP recorder for an authenticated session.
func NewHTTP(base, token string) *HTTP {
	return &HTTP{
		base:  base,
		token: token,
		hc:    &http.Client{Timeout: 10 * time.Second},
	}
}

// WithClient overrides the HTTP client (tests).
func (m *HTTP) WithClient(hc *http.Client) *HTTP {
	m.hc = hc
	return m
}

// Record posts one draw to /api/drawn-cards.
func (m *HTTP) Record(ctx context.Context, cardType model.CardType, cardID string, card model.Card) error {
	body, err := json.Marshal(recordRequest{CardType: cardType, CardID: cardID, CardData: card})
	if err != nil {
		return fmt.Errorf("mirror: marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.base+"/api/drawn-cards", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mirror: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.token)

	resp, err := m.hc.Do(req)
	if err != nil {
		return fmt.Errorf("mirror: post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mirror: unexpected status %d", resp.StatusCode)
	}
	return nil
}
