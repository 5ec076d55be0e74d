// Package bbolt implements the ports.KeywordStore interface using bbolt (embedded B+ tree).
// Each campaign gets its own top-level bucket holding one nested bucket per ad
// group. Within an ad group, each saved list is one key (its ID) whose value
// is the record encoding in encoding.go. Writes are transactional; a crash
// mid-write cannot corrupt previously committed data.
package bbolt

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/corey/adsaver/internal/ports"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// Store implements ports.KeywordStore backed by bbolt.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveList persists a list, assigning an ID and CreatedAt when missing.
func (s *Store) SaveList(list *ports.KeywordList) error {
	if list == nil {
		return fmt.Errorf("nil keyword list")
	}
	if list.Campaign == "" || list.AdGroup == "" {
		return fmt.Errorf("%w: campaign and ad group are required", ports.ErrInvalid)
	}
	if list.ID == "" {
		list.ID = uuid.NewString()
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = s.now().UTC()
	}

	data, err := encodeList(list)
	if err != nil {
		return fmt.Errorf("encode list: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		cb, err := tx.CreateBucketIfNotExists([]byte(list.Campaign))
		if err != nil {
			return err
		}
		gb, err := cb.CreateBucketIfNotExists([]byte(list.AdGroup))
		if err != nil {
			return err
		}
		return gb.Put([]byte(list.ID), data)
	})
}

// LoadList retrieves one list. Returns ports.ErrNotFound if absent.
func (s *Store) LoadList(campaign, adGroup, id string) (*ports.KeywordList, error) {
	var data []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		gb := groupBucket(tx, campaign, adGroup)
		if gb == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := gb.Get([]byte(id)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("list %s/%s/%s: %w", campaign, adGroup, id, ports.ErrNotFound)
	}

	list, err := decodeList(data)
	if err != nil {
		return nil, fmt.Errorf("decode list %s: %w", id, err)
	}
	return list, nil
}

// ListLists summarizes saved lists without decoding their keywords.
// An empty adGroup covers every ad group in the campaign.
func (s *Store) ListLists(campaign, adGroup string) ([]ports.ListSummary, error) {
	var out []ports.ListSummary

	err := s.db.View(func(tx *bolt.Tx) error {
		cb := tx.Bucket([]byte(campaign))
		if cb == nil {
			return nil
		}
		collect := func(gb *bolt.Bucket) error {
			return gb.ForEach(func(k, v []byte) error {
				sum, err := decodeSummary(v)
				if err != nil {
					return fmt.Errorf("decode summary %s: %w", k, err)
				}
				out = append(out, sum)
				return nil
			})
		}
		if adGroup != "" {
			gb := cb.Bucket([]byte(adGroup))
			if gb == nil {
				return nil
			}
			return collect(gb)
		}
		return cb.ForEach(func(k, v []byte) error {
			// Nested buckets have nil values.
			if v != nil {
				return nil
			}
			return collect(cb.Bucket(k))
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteList removes one list. Idempotent.
func (s *Store) DeleteList(campaign, adGroup, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		gb := groupBucket(tx, campaign, adGroup)
		if gb == nil {
			return nil // idempotent
		}
		return gb.Delete([]byte(id))
	})
}

// DeleteCampaign removes a campaign and all its ad groups. Idempotent.
func (s *Store) DeleteCampaign(campaign string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(campaign))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil // idempotent
		}
		return err
	})
}

// Campaigns returns campaign names in lexical (bbolt key) order.
func (s *Store) Campaigns() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	return names, err
}

func groupBucket(tx *bolt.Tx, campaign, adGroup string) *bolt.Bucket {
	if campaign == "" || adGroup == "" {
		return nil
	}
	cb := tx.Bucket([]byte(campaign))
	if cb == nil {
		return nil
	}
	return cb.Bucket([]byte(adGroup))
}
