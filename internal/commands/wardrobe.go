package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/vestry/internal/relay"
	"github.com/diogo/vestry/internal/wardrobe"
)

var (
	itemNameStyle  = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	itemMetaStyle  = lipgloss.NewStyle().Foreground(colorTextDim)
	favoriteStyle  = lipgloss.NewStyle().Foreground(colorPrimary)
	categoryStyle  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Width(12)
	wardrobeHeader = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).MarginBottom(1)
)

// wardrobeOptions filter the listed items
type wardrobeOptions struct {
	category  string
	search    string
	favorites bool
	jsonOut   bool
}

// NewWardrobeCmd creates the wardrobe command and its subcommands
func NewWardrobeCmd(deps *Dependencies, o *rootOptions) *cobra.Command {
	wo := &wardrobeOptions{}
	cmd := &cobra.Command{
		Use:   "wardrobe",
		Short: "List the items the stylist can use",
		Long: `List the wardrobe sent with every stylist request.

Items come from the file set by --wardrobe or wardrobe_file in the config
(YAML or JSON). Without one, a small starter wardrobe is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := wardrobeFromConfig(o)
			if err != nil {
				return err
			}
			if !isCategory(wo.category) {
				return fmt.Errorf("unknown category %q (want one of %s)", wo.category, strings.Join(wardrobe.Categories(), ", "))
			}
			items := inv.Filter(wardrobe.Filter{
				Category:      canonicalCategory(wo.category),
				Search:        wo.search,
				FavoritesOnly: wo.favorites,
			})
			if wo.jsonOut {
				return writeItemsJSON(deps.Stdout, items)
			}
			printItems(deps.Stdout, items, inv.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&wo.category, "category", wardrobe.CategoryAll, "Only show this category")
	cmd.Flags().StringVarP(&wo.search, "search", "s", "", "Match name or brand")
	cmd.Flags().BoolVar(&wo.favorites, "favorites", false, "Only show favorites")
	cmd.Flags().BoolVar(&wo.jsonOut, "json", false, "Print items as JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "categories",
		Short: "List item categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range wardrobe.Categories()[1:] {
				fmt.Fprintln(deps.Stdout, c)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "prompt",
		Short: "Show the system prompt the relay builds from this wardrobe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := wardrobeFromConfig(o)
			if err != nil {
				return err
			}
			fmt.Fprintln(deps.Stdout, relay.BuildSystemPrompt(inv.Wire()))
			return nil
		},
	})

	return cmd
}

func wardrobeFromConfig(o *rootOptions) (*wardrobe.Inventory, error) {
	cfg, err := loadConfig(o)
	if err != nil {
		return nil, err
	}
	return loadWardrobe(cfg)
}

// canonicalCategory matches name against the known categories ignoring case
func canonicalCategory(name string) string {
	for _, c := range wardrobe.Categories() {
		if strings.EqualFold(c, name) {
			return c
		}
	}
	return name
}

func isCategory(name string) bool {
	if name == "" {
		return true
	}
	for _, c := range wardrobe.Categories() {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

func writeItemsJSON(w io.Writer, items []wardrobe.Item) error {
	if items == nil {
		items = []wardrobe.Item{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func printItems(w io.Writer, items []wardrobe.Item, total int) {
	fmt.Fprintln(w, wardrobeHeader.Render(fmt.Sprintf("👗 Wardrobe (%d of %d)", len(items), total)))
	if len(items) == 0 {
		fmt.Fprintln(w, itemMetaStyle.Render("  No items match."))
		return
	}

	for _, item := range items {
		star := "  "
		if item.Favorite {
			star = favoriteStyle.Render("♥ ")
		}
		meta := item.Color
		if item.Brand != "" {
			meta += " · " + item.Brand
		}
		if item.TimesWorn > 0 {
			meta += fmt.Sprintf(" · worn %d×", item.TimesWorn)
		}
		if len(item.Tags) > 0 {
			meta += " · " + truncate(strings.Join(item.Tags, ", "), 40)
		}
		fmt.Fprintf(w, "%s%s %s  %s\n",
			star,
			categoryStyle.Render(item.Category),
			itemNameStyle.Render(truncate(item.Name, 48)),
			itemMetaStyle.Render(meta),
		)
	}
}

// truncate shortens s to max runes, adding an ellipsis
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
