// Package identity derives stable fingerprints for catalog cards.
//
// The catalog provides no unique card ID, so the ledger keys "already drawn"
// state on a hash of the card's content. Near-duplicate cards with identical
// category, title and message collide on purpose: they are the same experience.
package identity

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/and161185/dailydeck/internal/model"
)

// Normalize concatenates the card's identifying fields after cleaning each part.
// It lowercases, trims whitespace and normalizes line endings so cosmetic
// catalog edits do not produce a "new" card.
func Normalize(card model.Card) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	c := normalizePart(card.Category)
	t := normalizePart(card.Title)
	m := normalizePart(card.Message)

	// Join with a newline so fields cannot run into each other
	// ("wisdomtrust" vs "wisdom"+"trust").
	return strings.Join([]string{c, t, m}, "\n")
}

// Of returns the card's fingerprint: SHA-256 of the normalized content, hex-encoded.
func Of(card model.Card) string {
	sum := sha256.Sum256([]byte(Normalize(card)))
	return fmt.Sprintf("%x", sum)
}
