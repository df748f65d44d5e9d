// Package assets embeds the built-in card catalogs served by the API.
package assets

import (
	_ "embed"
	"encoding/json"

	"github.com/and161185/dailydeck/internal/model"
)

//go:embed cards.json
var DailyJSON []byte

//go:embed lifelines.json
var LifelineJSON []byte

type catalog struct {
	Cards []model.Card `json:"cards"`
}

// DailyCards decodes the embedded daily pool.
func DailyCards() ([]model.Card, error) {
	var c catalog
	if err := json.Unmarshal(DailyJSON, &c); err != nil {
		return nil, err
	}
	return c.Cards, nil
}

// LifelineCards decodes the embedded lifeline pool.
func LifelineCards() ([]model.Card, error) {
	var c catalog
	if err := json.Unmarshal(LifelineJSON, &c); err != nil {
		return nil, err
	}
	return c.Cards, nil
}
