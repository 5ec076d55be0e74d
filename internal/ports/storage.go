// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import (
	"errors"
	"time"

	"github.com/corey/adsaver/internal/domain/combo"
)

// ErrNotFound is returned when a requested keyword list does not exist.
var ErrNotFound = errors.New("not found")

// KeywordStore persists generated keyword lists, organized the way the ad
// platform organizes them: campaign -> ad group -> list.
// Concurrent reads are safe; writes are serialized by the adapter.
//
// Crash safety: SaveList and the delete operations must be transactional.
// A crash mid-write must not corrupt previously committed lists.
type KeywordStore interface {
	// SaveList persists a list. An empty ID is assigned a fresh one and a
	// zero CreatedAt is stamped with the current time; both are written
	// back into list. Saving an existing ID overwrites it.
	SaveList(list *KeywordList) error

	// LoadList retrieves one list. Returns ErrNotFound if it does not exist.
	LoadList(campaign, adGroup, id string) (*KeywordList, error)

	// ListLists summarizes the lists in an ad group, or in every ad group of
	// the campaign when adGroup is empty. Ordered by CreatedAt, then ID.
	ListLists(campaign, adGroup string) ([]ListSummary, error)

	// DeleteList removes one list. Idempotent.
	DeleteList(campaign, adGroup, id string) error

	// DeleteCampaign removes a campaign and everything under it. Idempotent.
	DeleteCampaign(campaign string) error

	// Campaigns returns campaign names in lexical order.
	Campaigns() ([]string, error)
}

// KeywordList is one saved generation: the inputs that produced it and the
// resulting keywords.
type KeywordList struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Campaign  string       `json:"campaign"`
	AdGroup   string       `json:"ad_group"`
	Columns   [3]string    `json:"columns"` // raw column text as entered
	Config    combo.Config `json:"config"`
	Sort      string       `json:"sort,omitempty"`
	Keywords  []string     `json:"keywords"`
	CreatedAt time.Time    `json:"created_at"`
}

// ListSummary describes a saved list without its keywords.
type ListSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Campaign  string    `json:"campaign"`
	AdGroup   string    `json:"ad_group"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary returns the list's summary.
func (l *KeywordList) Summary() ListSummary {
	return ListSummary{
		ID:        l.ID,
		Name:      l.Name,
		Campaign:  l.Campaign,
		AdGroup:   l.AdGroup,
		Count:     len(l.Keywords),
		CreatedAt: l.CreatedAt,
	}
}
