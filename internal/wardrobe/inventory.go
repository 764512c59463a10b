package wardrobe

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/diogo/vestry/internal/api"
)

// Inventory is the in-memory wardrobe. It is never written to disk.
type Inventory struct {
	mu    sync.RWMutex
	items []Item
}

// NewInventory creates an inventory holding copies of items
func NewInventory(items []Item) *Inventory {
	inv := &Inventory{}
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		inv.items = append(inv.items, cloneItem(item))
	}
	return inv
}

// Add validates item, assigns an ID if missing and puts it first
func (inv *Inventory) Add(item Item) (Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return Item{}, fmt.Errorf("item name cannot be empty")
	}
	if item.Category == "" || item.Category == CategoryAll {
		return Item{}, fmt.Errorf("item %q needs a category", item.Name)
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.indexLocked(item.ID) >= 0 {
		return Item{}, fmt.Errorf("item %s already exists", item.ID)
	}
	inv.items = append([]Item{cloneItem(item)}, inv.items...)
	return cloneItem(item), nil
}

// Remove deletes the item with id
func (inv *Inventory) Remove(id string) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	idx := inv.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("item not found: %s", id)
	}
	inv.items = append(inv.items[:idx], inv.items[idx+1:]...)
	return nil
}

// ToggleFavorite flips the favourite flag and returns the new value
func (inv *Inventory) ToggleFavorite(id string) (bool, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	idx := inv.indexLocked(id)
	if idx < 0 {
		return false, fmt.Errorf("item not found: %s", id)
	}
	inv.items[idx].Favorite = !inv.items[idx].Favorite
	return inv.items[idx].Favorite, nil
}

// Wear increments the wear counter and returns the new count
func (inv *Inventory) Wear(id string) (int, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	idx := inv.indexLocked(id)
	if idx < 0 {
		return 0, fmt.Errorf("item not found: %s", id)
	}
	inv.items[idx].TimesWorn++
	return inv.items[idx].TimesWorn, nil
}

// Get returns the item with id
func (inv *Inventory) Get(id string) (Item, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	idx := inv.indexLocked(id)
	if idx < 0 {
		return Item{}, false
	}
	return cloneItem(inv.items[idx]), true
}

// Items returns a copy of every item in order
func (inv *Inventory) Items() []Item {
	return inv.Filter(Filter{})
}

// Filter returns copies of the items matching f, in order
func (inv *Inventory) Filter(f Filter) []Item {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	out := make([]Item, 0, len(inv.items))
	for _, item := range inv.items {
		if f.Match(item) {
			out = append(out, cloneItem(item))
		}
	}
	return out
}

// Len returns the number of items
func (inv *Inventory) Len() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.items)
}

// Wire returns the inventory in the shape the relay expects
func (inv *Inventory) Wire() []api.WardrobeItem {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	out := make([]api.WardrobeItem, 0, len(inv.items))
	for _, item := range inv.items {
		out = append(out, item.Wire())
	}
	return out
}

func (inv *Inventory) indexLocked(id string) int {
	for i, item := range inv.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func cloneItem(item Item) Item {
	if item.Tags != nil {
		item.Tags = append([]string(nil), item.Tags...)
	}
	return item
}
