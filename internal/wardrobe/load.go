package wardrobe

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileFormat accepts either a bare list or {items: [...]}
type fileFormat struct {
	Items []Item `yaml:"items"`
}

// LoadFile reads a wardrobe description (YAML, or JSON which YAML accepts).
// A missing file yields the starter wardrobe.
func LoadFile(path string) (*Inventory, error) {
	if path == "" {
		return NewInventory(StarterItems()), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewInventory(StarterItems()), nil
		}
		return nil, fmt.Errorf("failed to read wardrobe file: %w", err)
	}

	items, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse wardrobe file %s: %w", path, err)
	}
	return NewInventory(items), nil
}

// Parse decodes wardrobe items from YAML or JSON
func Parse(data []byte) ([]Item, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	var items []Item
	switch node.Content[0].Kind {
	case yaml.SequenceNode:
		if err := node.Content[0].Decode(&items); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		var f fileFormat
		if err := node.Content[0].Decode(&f); err != nil {
			return nil, err
		}
		items = f.Items
	default:
		return nil, fmt.Errorf("expected a list of items")
	}

	for i, item := range items {
		if item.Name == "" {
			return nil, fmt.Errorf("item %d has no name", i+1)
		}
		if item.Category == "" {
			return nil, fmt.Errorf("item %q has no category", item.Name)
		}
	}
	return items, nil
}
