// Package model defines domain entities shared by the client core and the server.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Card is a single inspiration card as served by the catalog.
// The catalog provides no unique ID; identity is derived (see internal/identity).
type Card struct {
	Category string `json:"category"`
	Image    string `json:"image"`
	Message  string `json:"message"`
	Title    string `json:"title,omitempty"`
}

// CardType distinguishes the two draw pools.
type CardType string

const (
	CardTypeDaily    CardType = "daily"
	CardTypeLifeline CardType = "lifeline"
)

// LifelineAllowance is the number of bonus draws granted per calendar month.
const LifelineAllowance = 5

// DailyDraw is the single active daily-draw record.
// A stored record whose Date differs from "today" is treated as absent on read.
type DailyDraw struct {
	Date string `json:"date"` // YYYY-MM-DD
	Card Card   `json:"card"`
}

// LifelineQuota tracks remaining bonus draws for a month.
// A record whose Month differs from the current month reads as the full
// allowance without being rewritten until the first use that month.
type LifelineQuota struct {
	Count int    `json:"count"`
	Month string `json:"month"` // YYYY-MM
}

// DrawnHistory is the append-only set of drawn daily-card fingerprints.
type DrawnHistory struct {
	Cards []string `json:"cards"`
}

// LifelineDrawn is the month-scoped set of lifeline-card fingerprints.
type LifelineDrawn struct {
	Month string   `json:"month"` // YYYY-MM
	Cards []string `json:"cards"`
}

// CategoryMark records the category of the most recent draw. It is a soft
// exclusion signal for the next selection, not history.
type CategoryMark struct {
	Category string `json:"category"`
	TS       int64  `json:"ts"` // epoch millis
}

// Settings is a flat map of named boolean toggles.
type Settings map[string]bool

// DefaultSettings returns the documented defaults for all known toggles.
func DefaultSettings() Settings {
	return Settings{
		"dailyReminder":       true,
		"inspirationAlerts":   false,
		"weeklyRotation":      true,
		"streakNotifications": false,
		"specialEvents":       true,
	}
}

// Tokens collects an issued access token (refresh not used in MVP).
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time
}

// User represents a server-side account. Passwords are stored as Argon2id hashes.
type User struct {
	ID        uuid.UUID
	Email     string // unique
	PwdHash   []byte // Argon2id(password, SaltAuth)
	SaltAuth  []byte // per-user auth salt
	FirstName string
	LastName  string
	CreatedAt time.Time
}

// DrawnCard is one server-side history record mirrored from a client draw.
type DrawnCard struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	CardID   string // client-derived fingerprint
	CardData Card
	CardType CardType
	DrawnAt  time.Time
}

// JournalEntry holds the user's note attached to a drawn card.
// Content is plaintext at the service boundary; repositories store ciphertext.
type JournalEntry struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	DrawnCardID uuid.UUID
	Content     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
