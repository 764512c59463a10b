// Package wardrobe holds the user's clothing inventory in memory.
package wardrobe

import (
	"strings"

	"github.com/diogo/vestry/internal/api"
)

// Categories an item can belong to
const (
	CategoryAll         = "All"
	CategoryTops        = "Tops"
	CategoryBottoms     = "Bottoms"
	CategoryDresses     = "Dresses"
	CategoryOuterwear   = "Outerwear"
	CategoryAccessories = "Accessories"
)

// Categories returns the filter values in display order, "All" first
func Categories() []string {
	return []string{
		CategoryAll,
		CategoryTops,
		CategoryBottoms,
		CategoryDresses,
		CategoryOuterwear,
		CategoryAccessories,
	}
}

// Item is one piece of clothing
type Item struct {
	ID        string   `yaml:"id,omitempty" json:"id,omitempty"`
	Name      string   `yaml:"name" json:"name"`
	Category  string   `yaml:"category" json:"category"`
	Color     string   `yaml:"color" json:"color"`
	Brand     string   `yaml:"brand,omitempty" json:"brand,omitempty"`
	Tags      []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Favorite  bool     `yaml:"favorite,omitempty" json:"favorite,omitempty"`
	TimesWorn int      `yaml:"times_worn,omitempty" json:"times_worn,omitempty"`
}

// Wire returns the fields sent to the stylist
func (i Item) Wire() api.WardrobeItem {
	var tags []string
	if len(i.Tags) > 0 {
		tags = append([]string(nil), i.Tags...)
	}
	return api.WardrobeItem{
		Name:     i.Name,
		Category: i.Category,
		Color:    i.Color,
		Brand:    i.Brand,
		Tags:     tags,
	}
}

// Filter selects items. Zero value matches everything.
type Filter struct {
	Category      string // "" or "All" matches any category
	Search        string // case-insensitive match on name or brand
	FavoritesOnly bool
}

// Match reports whether item passes the filter
func (f Filter) Match(item Item) bool {
	if f.Category != "" && f.Category != CategoryAll && item.Category != f.Category {
		return false
	}
	if f.FavoritesOnly && !item.Favorite {
		return false
	}
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(item.Name), q) ||
		(item.Brand != "" && strings.Contains(strings.ToLower(item.Brand), q))
}

// StarterItems returns the wardrobe shown before the user adds anything
func StarterItems() []Item {
	return []Item{
		{
			ID:        "1",
			Name:      "Silk Blouse",
			Category:  CategoryTops,
			Color:     "Ivory White",
			Brand:     "Massimo Dutti",
			Tags:      []string{"office", "versatile"},
			Favorite:  true,
			TimesWorn: 12,
		},
		{
			ID:        "2",
			Name:      "Double-Breasted Blazer",
			Category:  CategoryOuterwear,
			Color:     "Midnight Black",
			Brand:     "Zara",
			Tags:      []string{"formal", "classic"},
			TimesWorn: 8,
		},
		{
			ID:        "3",
			Name:      "Floral Midi Dress",
			Category:  CategoryDresses,
			Color:     "Dusty Rose",
			Brand:     "& Other Stories",
			Tags:      []string{"occasion", "feminine"},
			Favorite:  true,
			TimesWorn: 4,
		},
		{
			ID:        "4",
			Name:      "Wide-Leg Linen Trousers",
			Category:  CategoryBottoms,
			Color:     "Camel",
			Brand:     "Arket",
			Tags:      []string{"casual", "summer"},
			TimesWorn: 6,
		},
	}
}
