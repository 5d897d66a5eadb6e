// Package collection exposes the persisted tag list, settings, and recycle
// bin as typed stores over the document storage layer. Each store applies
// its documented fallback when nothing has been persisted yet, and each
// write replaces the whole document.
package collection

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lotas/tabclue/internal/storage"
	"github.com/lotas/tabclue/internal/types"
)

// FallbackCollection returns the fallback tag list: the single system
// staging-area tag with no groups.
func FallbackCollection() types.Collection {
	return types.Collection{
		{
			ID:        types.StagingAreaID,
			Name:      "Staging Area",
			CreatedAt: time.Now().Format(time.RFC3339),
			Groups:    []types.Group{},
			IsSystem:  true,
		},
	}
}

// CollectionStore reads and writes the tag list document.
type CollectionStore struct {
	store *storage.Store
}

func NewCollectionStore(s *storage.Store) *CollectionStore {
	return &CollectionStore{store: s}
}

// Get returns the persisted collection, or the fallback staging-area
// collection when nothing has been saved yet.
func (c *CollectionStore) Get() (types.Collection, error) {
	raw, ok, err := c.store.Get(storage.KeyTagList)
	if err != nil {
		return nil, err
	}
	if !ok {
		return FallbackCollection(), nil
	}
	var tags types.Collection
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("decode tag list: %w", err)
	}
	return tags, nil
}

// Set replaces the persisted collection.
func (c *CollectionStore) Set(tags types.Collection) error {
	raw, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode tag list: %w", err)
	}
	return c.store.Set(storage.KeyTagList, raw)
}

// Subscribe delivers the decoded collection after every write. Values that
// fail to decode are skipped.
func (c *CollectionStore) Subscribe() (<-chan types.Collection, func()) {
	raw := c.store.Subscribe(storage.KeyTagList)
	out := make(chan types.Collection, 1)
	go func() {
		defer close(out)
		for v := range raw {
			var tags types.Collection
			if err := json.Unmarshal(v, &tags); err != nil {
				continue
			}
			select {
			case <-out:
			default:
			}
			out <- tags
		}
	}()
	cancel := func() { c.store.Unsubscribe(storage.KeyTagList, raw) }
	return out, cancel
}

// SettingsStore reads and writes the settings document.
type SettingsStore struct {
	store *storage.Store
}

func NewSettingsStore(s *storage.Store) *SettingsStore {
	return &SettingsStore{store: s}
}

// Get returns the persisted settings, or the documented defaults when
// nothing has been saved yet. A DefaultTagID no longer present in the
// collection is the caller's concern; SaveSnapshot falls back to the
// staging area on a missing target.
func (c *SettingsStore) Get() (types.Settings, error) {
	raw, ok, err := c.store.Get(storage.KeySettings)
	if err != nil {
		return types.Settings{}, err
	}
	if !ok {
		return types.DefaultSettings(), nil
	}
	var s types.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return types.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	s.DisplayLimit = types.ClampDisplayLimit(s.DisplayLimit)
	return s, nil
}

// Set replaces the persisted settings.
func (c *SettingsStore) Set(s types.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return c.store.Set(storage.KeySettings, raw)
}

// RecycleBinStore reads and writes the recycle bin document. The bin is
// reserved for a future soft-delete flow; current mutations never fill it.
type RecycleBinStore struct {
	store *storage.Store
}

func NewRecycleBinStore(s *storage.Store) *RecycleBinStore {
	return &RecycleBinStore{store: s}
}

// Get returns the persisted recycle bin, or an empty list.
func (c *RecycleBinStore) Get() ([]types.Tag, error) {
	raw, ok, err := c.store.Get(storage.KeyRecycleBin)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []types.Tag{}, nil
	}
	var tags []types.Tag
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("decode recycle bin: %w", err)
	}
	return tags, nil
}

// Set replaces the persisted recycle bin.
func (c *RecycleBinStore) Set(tags []types.Tag) error {
	raw, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode recycle bin: %w", err)
	}
	return c.store.Set(storage.KeyRecycleBin, raw)
}
